package service

import (
	"context"
	"database/sql"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
	"github.com/iliyamo/secondhand-bookstore/internal/repository"
)

type BookRepository interface {
	Exists(ctx context.Context, title, author string) (bool, error)
	IDByTitleAuthor(ctx context.Context, title, author string) (uint64, error)
	Insert(ctx context.Context, b *model.Book) (uint64, error)
	IncrementQuantity(ctx context.Context, title, author string) error
	DecrementQuantity(ctx context.Context, bookID uint64) error
}

type PostingRepository interface {
	ListDetails(ctx context.Context) ([]model.PostingDetail, error)
	DetailsByID(ctx context.Context, postID uint64) ([]model.PostingDetail, error)
	DetailsByGenre(ctx context.Context, genre string) ([]model.PostingDetail, error)
	LockBookID(ctx context.Context, postID uint64) (uint64, error)
	Insert(ctx context.Context, p *model.Posting) (uint64, error)
	Delete(ctx context.Context, postID uint64) error
}

type SubmissionRepository interface {
	List(ctx context.Context) ([]model.Submission, error)
	GetByID(ctx context.Context, subID uint64) (*model.Submission, error)
	GetForUpdate(ctx context.Context, subID uint64) (*model.Submission, error)
	Insert(ctx context.Context, s *model.Submission) (uint64, error)
	Delete(ctx context.Context, subID uint64) error
}

// Repos is the set of repositories bound to one connection scope.
type Repos struct {
	Books       BookRepository
	Postings    PostingRepository
	Submissions SubmissionRepository
}

// Store gives the workflows repositories either outside a transaction or
// inside one that commits only if fn returns nil.
type Store interface {
	Repos() Repos
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// GenreSource lists the genres offered by the storefront filter.
type GenreSource interface {
	List(ctx context.Context) ([]string, error)
}

// Publisher receives an event after the workflow that produced it commits.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// SQLStore is the MySQL-backed Store.
type SQLStore struct {
	store *repository.Store
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{store: repository.NewStore(db)}
}

func reposFor(q repository.Querier) Repos {
	return Repos{
		Books:       repository.NewBookRepo(q),
		Postings:    repository.NewPostingRepo(q),
		Submissions: repository.NewSubmissionRepo(q),
	}
}

func (s *SQLStore) Repos() Repos { return reposFor(s.store.DB()) }

func (s *SQLStore) InTx(ctx context.Context, fn func(r Repos) error) error {
	return s.store.InTx(ctx, func(q repository.Querier) error {
		return fn(reposFor(q))
	})
}
