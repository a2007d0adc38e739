package models

import "time"

// User represents a registered account. PasswordHash never leaves the
// server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        *string   `json:"email"`
	FullName     *string   `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is a user together with every book they own, newest first.
type Profile struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      *string   `json:"email"`
	FullName   *string   `json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
	BooksCount int       `json:"books_count"`
	Books      []*Book   `json:"books"`
}

// NewProfile composes a Profile from a user and their books.
func NewProfile(user *User, books []*Book) *Profile {
	if books == nil {
		books = []*Book{}
	}
	return &Profile{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		CreatedAt:  user.CreatedAt,
		BooksCount: len(books),
		Books:      books,
	}
}
