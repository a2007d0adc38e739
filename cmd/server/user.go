package main

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NOLLEN17/bookshelf/internal/auth"
	"github.com/NOLLEN17/bookshelf/internal/database"
	"github.com/NOLLEN17/bookshelf/internal/models"
)

var (
	// User flags
	username string
	email    string
	fullName string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account",
	Long: `Create an account without going through POST /register.

The password is prompted for when stdin is a terminal, otherwise the first
line of stdin is used.

Examples:
  bookshelf user add --username alice --email alice@example.com
  echo 's3cret!' | bookshelf user add --username bob`,
	RunE: runUserAdd,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an account and all of its books",
	RunE:  runUserDelete,
}

func init() {
	userAddCmd.Flags().StringVar(&username, "username", "", "Login name (3-50 characters)")
	userAddCmd.Flags().StringVar(&email, "email", "", "Optional email address")
	userAddCmd.Flags().StringVar(&fullName, "full-name", "", "Optional display name")
	_ = userAddCmd.MarkFlagRequired("username")

	userDeleteCmd.Flags().StringVar(&username, "username", "", "Account to delete")
	_ = userDeleteCmd.MarkFlagRequired("username")

	userCmd.AddCommand(userAddCmd, userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	req := models.RegisterRequest{Username: username, Password: password}
	if email != "" {
		req.Email = &email
	}
	if fullName != "" {
		req.FullName = &fullName
	}
	if err := models.Validate(&req); err != nil {
		return err
	}

	db, err := database.InitDB(cfg.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user, err := database.CreateUser(db, &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		FullName:     req.FullName,
	})
	if err != nil {
		return err
	}

	logger.WithField("user_id", user.ID).WithField("username", user.Username).Info("user created")
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg.DatabasePath, false)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	user, err := database.GetUserByUsername(db, username)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %q not found", username)
	}
	if err != nil {
		return err
	}
	if err := database.DeleteUser(db, user.ID); err != nil {
		return err
	}

	logger.WithField("user_id", user.ID).WithField("username", user.Username).Info("user deleted")
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s\n", user.Username)
	return nil
}

// readPassword reads without echo from a terminal, or the first line of any
// other input.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return trimLineEnding(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return trimLineEnding(line), nil
}

// trimLineEnding drops the line terminator only. Spaces are part of the
// password.
func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}
