package handlers

import (
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/NOLLEN17/bookshelf/internal/auth"
)

// NewRouter wires every endpoint to its handler. Everything except
// registration and login requires a bearer token.
func NewRouter(db *sql.DB, tokens *auth.TokenIssuer, logger logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()
	protected := AuthMiddleware(db, tokens)

	// Authentication Routes
	mux.HandleFunc("POST /register", Register(db, tokens))
	mux.HandleFunc("POST /login", Login(db, tokens))

	// Profile Routes
	mux.HandleFunc("GET /me", protected(Me))
	mux.HandleFunc("PUT /me", protected(UpdateMe(db)))
	mux.HandleFunc("GET /me/profile", protected(FullProfile(db)))

	// Book Routes
	mux.HandleFunc("POST /books", protected(CreateBook(db)))
	mux.HandleFunc("GET /books", protected(ListBooks(db)))
	mux.HandleFunc("GET /books/{id}", protected(GetBook(db)))
	mux.HandleFunc("PUT /books/{id}", protected(UpdateBook(db)))
	mux.HandleFunc("DELETE /books/{id}", protected(DeleteBook(db)))

	return RequestLogger(logger, mux)
}
