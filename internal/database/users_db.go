package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/NOLLEN17/bookshelf/internal/models"
)

const userColumns = "id, username, password_hash, email, full_name, created_at"

// UserChanges lists the profile fields to overwrite. Nil fields are kept.
type UserChanges struct {
	Email        *string
	FullName     *string
	PasswordHash *string
}

// CreateUser inserts a new user whose password is already hashed. A taken
// username or email yields ErrUsernameTaken or ErrEmailTaken.
func CreateUser(db *sql.DB, user *models.User) (*models.User, error) {
	res, err := db.Exec(
		"INSERT INTO users(username, password_hash, email, full_name, created_at) VALUES(?, ?, ?, ?, ?)",
		user.Username, user.PasswordHash, user.Email, user.FullName, time.Now().UTC(),
	)
	if err != nil {
		return nil, conflictError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetUserByID(db, id)
}

// GetUserByID retrieves a user by their ID.
func GetUserByID(db *sql.DB, id int64) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetUserByUsername retrieves a user by their username.
func GetUserByUsername(db *sql.DB, username string) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

// GetUserByEmail retrieves a user by their email address.
func GetUserByEmail(db *sql.DB, email string) (*models.User, error) {
	return scanUser(db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// UpdateUser writes the non-nil fields of changes and returns the stored
// user. A missing user yields sql.ErrNoRows.
func UpdateUser(db *sql.DB, id int64, changes UserChanges) (*models.User, error) {
	var (
		sets []string
		args []interface{}
	)
	if changes.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *changes.Email)
	}
	if changes.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *changes.FullName)
	}
	if changes.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *changes.PasswordHash)
	}
	if len(sets) == 0 {
		return GetUserByID(db, id)
	}

	args = append(args, id)
	res, err := db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, conflictError(err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}
	return GetUserByID(db, id)
}

// DeleteUser removes a user and, through the foreign key cascade, all of
// their books.
func DeleteUser(db *sql.DB, id int64) error {
	res, err := db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// scanUser returns sql.ErrNoRows unchanged when the row is missing.
func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var email, fullName sql.NullString
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &email, &fullName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Email = nullableString(email)
	user.FullName = nullableString(fullName)
	return user, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
