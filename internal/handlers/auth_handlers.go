package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/NOLLEN17/bookshelf/internal/auth"
	"github.com/NOLLEN17/bookshelf/internal/database"
	"github.com/NOLLEN17/bookshelf/internal/models"
)

const tokenType = "bearer"

// Register creates an account from a JSON body and returns an access token
// for it.
func Register(db *sql.DB, tokens *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		// Check if user already exists
		_, err := database.GetUserByUsername(db, req.Username)
		if err == nil {
			RenderError(w, r, http.StatusBadRequest, "Username already exists")
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			RenderInternalError(w, r, err)
			return
		}

		if req.Email != nil {
			_, err = database.GetUserByEmail(db, *req.Email)
			if err == nil {
				RenderError(w, r, http.StatusBadRequest, "Email already registered")
				return
			}
			if !errors.Is(err, sql.ErrNoRows) {
				RenderInternalError(w, r, err)
				return
			}
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			RenderInternalError(w, r, err)
			return
		}

		// The unique constraints still decide if a concurrent request won.
		_, err = database.CreateUser(db, &models.User{
			Username:     req.Username,
			PasswordHash: hash,
			Email:        req.Email,
			FullName:     req.FullName,
		})
		if err != nil {
			renderUserWriteError(w, r, err)
			return
		}

		renderToken(w, r, tokens, req.Username)
	}
}

// Login exchanges form-encoded credentials for an access token.
func Login(db *sql.DB, tokens *auth.TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			RenderError(w, r, http.StatusUnprocessableEntity, "Error parsing form")
			return
		}

		req := models.LoginRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}
		if !validatePayload(w, r, req) {
			return
		}

		user, err := database.GetUserByUsername(db, req.Username)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			RenderInternalError(w, r, err)
			return
		}
		if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
			RenderError(w, r, http.StatusUnauthorized, "Invalid username or password")
			return
		}

		renderToken(w, r, tokens, user.Username)
	}
}

func renderToken(w http.ResponseWriter, r *http.Request, tokens *auth.TokenIssuer, username string) {
	token, err := tokens.Issue(username)
	if err != nil {
		RenderInternalError(w, r, err)
		return
	}
	RenderJSON(w, r, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: tokenType})
}

// renderUserWriteError maps a failed user insert or update to a response.
func renderUserWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrUsernameTaken):
		RenderError(w, r, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, database.ErrEmailTaken):
		RenderError(w, r, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, sql.ErrNoRows):
		RenderError(w, r, http.StatusNotFound, "User not found")
	default:
		RenderInternalError(w, r, err)
	}
}

// AuthMiddleware lets a request through only when it carries a valid bearer
// token for an existing user. The user is then available via CurrentUser.
func AuthMiddleware(db *sql.DB, tokens *auth.TokenIssuer) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil || claims.Subject == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				RenderError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}

			// The account may have been deleted after the token was issued.
			user, err := database.GetUserByUsername(db, claims.Subject)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					RenderError(w, r, http.StatusNotFound, "User not found")
				} else {
					RenderInternalError(w, r, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		}
	}
}

// CurrentUser returns the user authenticated by AuthMiddleware.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userKey).(*models.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
