package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// PostingRepo encapsulates database operations for postings.
type PostingRepo struct {
	q Querier
}

func NewPostingRepo(q Querier) *PostingRepo {
	return &PostingRepo{q: q}
}

const postingDetailQuery = `SELECT p.post_id, p.book_id, p.price, p.cond, p.descript,
       b.title, b.author, b.genre, b.publisher, b.img_path, b.quantity
  FROM postings p
  INNER JOIN books b ON p.book_id = b.book_id`

func (r *PostingRepo) queryDetails(ctx context.Context, op, query string, args ...any) ([]model.PostingDetail, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	out := []model.PostingDetail{}
	for rows.Next() {
		var d model.PostingDetail
		if err := rows.Scan(&d.PostID, &d.BookID, &d.Price, &d.Cond, &d.Descript,
			&d.Title, &d.Author, &d.Genre, &d.Publisher, &d.ImgPath, &d.Quantity); err != nil {
			return nil, errors.Wrap(err, op+": scan")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}
	return out, nil
}

// ListDetails returns every posting joined with its book.
func (r *PostingRepo) ListDetails(ctx context.Context) ([]model.PostingDetail, error) {
	return r.queryDetails(ctx, "list postings", postingDetailQuery+` ORDER BY p.post_id`)
}

// DetailsByID returns the joined row for one posting, or an empty slice.
func (r *PostingRepo) DetailsByID(ctx context.Context, postID uint64) ([]model.PostingDetail, error) {
	return r.queryDetails(ctx, "get posting", postingDetailQuery+` WHERE p.post_id = ?`, postID)
}

// DetailsByGenre returns the postings whose book has exactly this genre.
func (r *PostingRepo) DetailsByGenre(ctx context.Context, genre string) ([]model.PostingDetail, error) {
	return r.queryDetails(ctx, "filter postings", postingDetailQuery+` WHERE b.genre = ? ORDER BY p.post_id`, genre)
}

// LockBookID resolves a posting to its book id and row-locks the posting
// for the rest of the transaction.
func (r *PostingRepo) LockBookID(ctx context.Context, postID uint64) (uint64, error) {
	var bookID uint64
	err := r.q.QueryRowContext(ctx,
		`SELECT book_id FROM postings WHERE post_id = ? FOR UPDATE`, postID).Scan(&bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPostingNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "lock posting")
	}
	return bookID, nil
}

// Insert creates a posting and returns its id.
func (r *PostingRepo) Insert(ctx context.Context, p *model.Posting) (uint64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO postings (book_id, price, cond, descript) VALUES (?, ?, ?, ?)`,
		p.BookID, p.Price, p.Cond, p.Descript)
	if err != nil {
		return 0, errors.Wrap(err, "insert posting")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert posting id")
	}
	p.ID = uint64(id)
	return p.ID, nil
}

// Delete removes a posting, reporting ErrPostingNotFound when no row matched.
func (r *PostingRepo) Delete(ctx context.Context, postID uint64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM postings WHERE post_id = ?`, postID)
	if err != nil {
		return errors.Wrap(err, "delete posting")
	}
	return affectedOrErr(res, ErrPostingNotFound)
}
