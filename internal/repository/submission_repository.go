package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// SubmissionRepo encapsulates database operations for submissions.
type SubmissionRepo struct {
	q Querier
}

func NewSubmissionRepo(q Querier) *SubmissionRepo {
	return &SubmissionRepo{q: q}
}

const submissionColumns = `sub_id, title, author, genre, publisher, price, cond, descript`

func scanSubmission(row interface{ Scan(...any) error }, s *model.Submission) error {
	return row.Scan(&s.ID, &s.Title, &s.Author, &s.Genre, &s.Publisher, &s.Price, &s.Cond, &s.Descript)
}

// List returns the moderation queue, oldest first.
func (r *SubmissionRepo) List(ctx context.Context) ([]model.Submission, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY sub_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	defer rows.Close()

	out := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := scanSubmission(rows, &s); err != nil {
			return nil, errors.Wrap(err, "scan submission")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	return out, nil
}

// GetByID loads one submission or returns ErrSubmissionNotFound.
func (r *SubmissionRepo) GetByID(ctx context.Context, subID uint64) (*model.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE sub_id = ?`, subID)
}

// GetForUpdate is GetByID plus a row lock held until the transaction ends,
// so two concurrent approvals of the same submission serialize.
func (r *SubmissionRepo) GetForUpdate(ctx context.Context, subID uint64) (*model.Submission, error) {
	return r.get(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE sub_id = ? FOR UPDATE`, subID)
}

func (r *SubmissionRepo) get(ctx context.Context, query string, subID uint64) (*model.Submission, error) {
	var s model.Submission
	err := scanSubmission(r.q.QueryRowContext(ctx, query, subID), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get submission")
	}
	return &s, nil
}

// Insert queues a new submission and returns its id.
func (r *SubmissionRepo) Insert(ctx context.Context, s *model.Submission) (uint64, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO submissions (title, author, genre, publisher, price, cond, descript)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Title, s.Author, s.Genre, s.Publisher, s.Price, s.Cond, s.Descript)
	if err != nil {
		return 0, errors.Wrap(err, "insert submission")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert submission id")
	}
	s.ID = uint64(id)
	return s.ID, nil
}

// Delete removes a submission, reporting ErrSubmissionNotFound when no row
// matched.  Approve and reject both rely on this to consume a submission
// at most once.
func (r *SubmissionRepo) Delete(ctx context.Context, subID uint64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM submissions WHERE sub_id = ?`, subID)
	if err != nil {
		return errors.Wrap(err, "delete submission")
	}
	return affectedOrErr(res, ErrSubmissionNotFound)
}
