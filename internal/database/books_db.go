package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/NOLLEN17/bookshelf/internal/models"
)

const bookColumns = "id, owner_id, title, author, year, description, created_at"

// Every query below carries owner_id, so a book is only ever reachable
// through the account that owns it.

// CreateBook inserts book for book.OwnerID and returns the stored row.
func CreateBook(db *sql.DB, book *models.Book) (*models.Book, error) {
	res, err := db.Exec(
		"INSERT INTO books(owner_id, title, author, year, description, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		book.OwnerID, book.Title, book.Author, book.Year, book.Description, time.Now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetBookForOwner(db, id, book.OwnerID)
}

// GetBookForOwner retrieves a book by ID if ownerID owns it. Otherwise it
// returns sql.ErrNoRows, whether or not the book exists.
func GetBookForOwner(db *sql.DB, id, ownerID int64) (*models.Book, error) {
	return scanBook(db.QueryRow("SELECT "+bookColumns+" FROM books WHERE id = ? AND owner_id = ?", id, ownerID))
}

// ListBooks returns ownerID's books matching filter, newest first. The
// result is never nil.
func ListBooks(db *sql.DB, ownerID int64, filter models.BookFilter) ([]*models.Book, error) {
	query := "SELECT " + bookColumns + " FROM books WHERE owner_id = ?"
	args := []interface{}{ownerID}

	// SQLite's LIKE ignores case for ASCII letters.
	if filter.Author != "" {
		query += ` AND author LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(filter.Author))
	}
	if filter.Title != "" {
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, containsPattern(filter.Title))
	}

	// A negative LIMIT means no limit in SQLite.
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Skip)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*models.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// UpdateBook overwrites the editable fields of the book identified by
// book.ID and book.OwnerID. It returns sql.ErrNoRows if no such book exists.
func UpdateBook(db *sql.DB, book *models.Book) (*models.Book, error) {
	res, err := db.Exec(
		"UPDATE books SET title = ?, author = ?, year = ?, description = ? WHERE id = ? AND owner_id = ?",
		book.Title, book.Author, book.Year, book.Description, book.ID, book.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}
	return GetBookForOwner(db, book.ID, book.OwnerID)
}

// DeleteBook removes a book owned by ownerID. It returns sql.ErrNoRows if
// no such book exists.
func DeleteBook(db *sql.DB, id, ownerID int64) error {
	res, err := db.Exec("DELETE FROM books WHERE id = ? AND owner_id = ?", id, ownerID)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	book := &models.Book{}
	var (
		year        sql.NullInt64
		description sql.NullString
	)
	err := row.Scan(&book.ID, &book.OwnerID, &book.Title, &book.Author, &year, &description, &book.CreatedAt)
	if err != nil {
		return nil, err // This will include sql.ErrNoRows if not found
	}
	if year.Valid {
		y := int(year.Int64)
		book.Year = &y
	}
	book.Description = nullableString(description)
	return book, nil
}

// containsPattern builds a LIKE pattern matching s anywhere, with s's own
// wildcard characters taken literally.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
