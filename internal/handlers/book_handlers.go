package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/NOLLEN17/bookshelf/internal/database"
	"github.com/NOLLEN17/bookshelf/internal/models"
)

const defaultBookLimit = 100

// Books are looked up by (id, caller) everywhere, so another user's book
// answers exactly like a missing one.

// CreateBook adds a book to the caller's catalog.
func CreateBook(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var req models.BookRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		book, err := database.CreateBook(db, &models.Book{
			OwnerID:     user.ID,
			Title:       req.Title,
			Author:      req.Author,
			Year:        req.Year,
			Description: req.Description,
		})
		if err != nil {
			RenderInternalError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, book)
	}
}

// ListBooks returns the caller's books, newest first, honoring the skip,
// limit, author and title query parameters.
func ListBooks(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}

		skip, err := queryInt(r, "skip", 0)
		if err != nil || skip < 0 {
			RenderError(w, r, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
			return
		}
		limit, err := queryInt(r, "limit", defaultBookLimit)
		if err != nil || limit < 0 {
			RenderError(w, r, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}

		query := r.URL.Query()
		books, err := database.ListBooks(db, user.ID, models.BookFilter{
			Author: query.Get("author"),
			Title:  query.Get("title"),
			Skip:   skip,
			Limit:  limit,
		})
		if err != nil {
			RenderInternalError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, books)
	}
}

// GetBook returns one of the caller's books.
func GetBook(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		bookID, err := pathID(r)
		if err != nil {
			RenderError(w, r, http.StatusUnprocessableEntity, "Invalid book ID")
			return
		}

		book, err := database.GetBookForOwner(db, bookID, user.ID)
		if err != nil {
			renderBookError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, book)
	}
}

// UpdateBook replaces every editable field of one of the caller's books.
func UpdateBook(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		bookID, err := pathID(r)
		if err != nil {
			RenderError(w, r, http.StatusUnprocessableEntity, "Invalid book ID")
			return
		}

		var req models.BookRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		book, err := database.UpdateBook(db, &models.Book{
			ID:          bookID,
			OwnerID:     user.ID,
			Title:       req.Title,
			Author:      req.Author,
			Year:        req.Year,
			Description: req.Description,
		})
		if err != nil {
			renderBookError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, book)
	}
}

// DeleteBook removes one of the caller's books.
func DeleteBook(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if !ok {
			RenderError(w, r, http.StatusUnauthorized, "Not authenticated")
			return
		}
		bookID, err := pathID(r)
		if err != nil {
			RenderError(w, r, http.StatusUnprocessableEntity, "Invalid book ID")
			return
		}

		if err := database.DeleteBook(db, bookID, user.ID); err != nil {
			renderBookError(w, r, err)
			return
		}
		RenderJSON(w, r, http.StatusOK, models.MessageResponse{Message: "Book deleted successfully"})
	}
}

func renderBookError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		RenderError(w, r, http.StatusNotFound, "Book not found")
		return
	}
	RenderInternalError(w, r, err)
}
