package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/NOLLEN17/bookshelf/internal/auth"
	"github.com/NOLLEN17/bookshelf/internal/database"
	"github.com/NOLLEN17/bookshelf/internal/models"
)

// Me returns the caller's account.
func Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r)
	if !ok {
		RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
		return
	}
	RenderJSON(w, r, http.StatusOK, user)
}

// FullProfile returns the caller's account with all of their books.
func FullProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		books, err := database.ListBooks(db, user.ID, models.BookFilter{Limit: models.NoLimit})
		if err != nil {
			RenderInternalError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, models.NewProfile(user, books))
	}
}

// UpdateMe applies a partial profile update for the caller.
func UpdateMe(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var req models.UserUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		var changes database.UserChanges
		if req.Email != nil && (user.Email == nil || *req.Email != *user.Email) {
			_, err := database.GetUserByEmail(db, *req.Email)
			if err == nil {
				RenderError(w, r, http.StatusBadRequest, "Email already registered")
				return
			}
			if !errors.Is(err, sql.ErrNoRows) {
				RenderInternalError(w, r, err)
				return
			}
			changes.Email = req.Email
		}
		changes.FullName = req.FullName
		if req.Password != nil {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				RenderInternalError(w, r, err)
				return
			}
			changes.PasswordHash = &hash
		}

		updated, err := database.UpdateUser(db, user.ID, changes)
		if err != nil {
			renderUserWriteError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, updated)
	}
}
