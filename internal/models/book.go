package models

import "time"

// Book is a single record in a user's catalog.
type Book struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"-"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NoLimit as BookFilter.Limit returns every matching book.
const NoLimit = -1

// BookFilter narrows a listing of one owner's books.
type BookFilter struct {
	Author string // case-insensitive substring, empty means any
	Title  string // case-insensitive substring, empty means any
	Skip   int
	Limit  int // 0 returns nothing, NoLimit returns everything
}
