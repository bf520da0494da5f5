package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/database"
	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// BookRepo encapsulates database operations for books.
type BookRepo struct {
	q Querier
}

// NewBookRepo constructs a BookRepo over a pool or a transaction.
func NewBookRepo(q Querier) *BookRepo {
	return &BookRepo{q: q}
}

// Exists reports whether a book with exactly this (title, author) exists.
func (r *BookRepo) Exists(ctx context.Context, title, author string) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE match_key = ?)`, MatchKey(title, author)).Scan(&ok)
	if err != nil {
		return false, errors.Wrap(err, "check book")
	}
	return ok, nil
}

// IDByTitleAuthor resolves a (title, author) pair to its book id.
func (r *BookRepo) IDByTitleAuthor(ctx context.Context, title, author string) (uint64, error) {
	var id uint64
	err := r.q.QueryRowContext(ctx,
		`SELECT book_id FROM books WHERE match_key = ?`, MatchKey(title, author)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrBookNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "get book id")
	}
	return id, nil
}

// Insert creates a book and returns its id.  A second insert of the same
// (title, author) fails with ErrDuplicateBook.
func (r *BookRepo) Insert(ctx context.Context, b *model.Book) (uint64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO books (title, author, genre, publisher, img_path, quantity, match_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Title, b.Author, b.Genre, b.Publisher, b.ImgPath, b.Quantity, MatchKey(b.Title, b.Author))
	if database.IsDuplicateKey(err) {
		return 0, ErrDuplicateBook
	}
	if err != nil {
		return 0, errors.Wrap(err, "insert book")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert book id")
	}
	b.ID = uint64(id)
	return b.ID, nil
}

// IncrementQuantity adds one copy to the book identified by (title, author).
func (r *BookRepo) IncrementQuantity(ctx context.Context, title, author string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE books SET quantity = quantity + 1 WHERE match_key = ?`, MatchKey(title, author))
	if err != nil {
		return errors.Wrap(err, "increment quantity")
	}
	return affectedOrErr(res, ErrBookNotFound)
}

// DecrementQuantity removes one copy.  The update is conditional on stock
// remaining, so a book at zero reports ErrOutOfStock instead of going
// negative.
func (r *BookRepo) DecrementQuantity(ctx context.Context, bookID uint64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE books SET quantity = quantity - 1 WHERE book_id = ? AND quantity > 0`, bookID)
	if err != nil {
		return errors.Wrap(err, "decrement quantity")
	}
	return affectedOrErr(res, ErrOutOfStock)
}
