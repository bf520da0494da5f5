// Package service implements the marketplace workflows on top of the
// repositories: purchase, checkout, submit, approve and reject, plus the
// read-side lookups the storefront and moderation pages use.
//
// Every workflow that touches more than one row runs in a single
// transaction, and consumption of a posting or submission goes through a
// row lock and a conditional delete, so concurrent requests for the same
// id cannot both succeed.
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/log"
	"github.com/iliyamo/secondhand-bookstore/internal/metrics"
	"github.com/iliyamo/secondhand-bookstore/internal/model"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
)

const DefaultImage = "data/imgs/default.png"

type Options struct {
	// DefaultImage is stored as img_path of every book created by Approve.
	DefaultImage string
	// Publisher receives events after commit; nil disables events.
	Publisher Publisher
	// Now is the clock used to stamp events.
	Now func() time.Time
}

type Marketplace struct {
	store        Store
	genres       GenreSource
	pub          Publisher
	validate     *validator.Validate
	defaultImage string
	now          func() time.Time
}

func New(store Store, genres GenreSource, opts Options) *Marketplace {
	m := &Marketplace{
		store:        store,
		genres:       genres,
		pub:          opts.Publisher,
		validate:     validator.New(),
		defaultImage: opts.DefaultImage,
		now:          opts.Now,
	}
	if m.pub == nil {
		m.pub = queue.Nop{}
	}
	if m.defaultImage == "" {
		m.defaultImage = DefaultImage
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// ListPostings returns every posting joined with its book.
func (m *Marketplace) ListPostings(ctx context.Context) ([]model.PostingDetail, error) {
	return m.store.Repos().Postings.ListDetails(ctx)
}

// PostingsByGenre returns the postings of one genre; no match is an empty
// slice, not an error.
func (m *Marketplace) PostingsByGenre(ctx context.Context, genre string) ([]model.PostingDetail, error) {
	return m.store.Repos().Postings.DetailsByGenre(ctx, genre)
}

// Genres returns the configured genre list.
func (m *Marketplace) Genres(ctx context.Context) ([]string, error) {
	return m.genres.List(ctx)
}

// Submissions returns the moderation queue.
func (m *Marketplace) Submissions(ctx context.Context) ([]model.Submission, error) {
	return m.store.Repos().Submissions.List(ctx)
}

// FindBook returns the joined posting/book row for postID, or ErrNotFound.
func (m *Marketplace) FindBook(ctx context.Context, postID uint64) (*model.PostingDetail, error) {
	rows, err := m.store.Repos().Postings.DetailsByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// FindSubmission returns one pending submission, or ErrNotFound.
func (m *Marketplace) FindSubmission(ctx context.Context, subID uint64) (*model.Submission, error) {
	s, err := m.store.Repos().Submissions.GetByID(ctx, subID)
	return s, translate(err)
}

// CheckBook reports whether a book with exactly this title and author exists.
func (m *Marketplace) CheckBook(ctx context.Context, title, author string) (bool, error) {
	return m.store.Repos().Books.Exists(ctx, title, author)
}

// GetBookID resolves (title, author) to a book id, or ErrNotFound.
func (m *Marketplace) GetBookID(ctx context.Context, title, author string) (uint64, error) {
	id, err := m.store.Repos().Books.IDByTitleAuthor(ctx, title, author)
	return id, translate(err)
}

// publish sends events once their transaction has committed.  A broker
// failure never fails the request; it is counted and logged.
func (m *Marketplace) publish(ctx context.Context, events ...queue.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, ev := range events {
		ev = ev.Stamp(m.now())
		if err := m.pub.Publish(ctx, ev); err != nil {
			metrics.EventPublishErrors.WithLabelValues(ev.Type).Inc()
			log.Warn("event not published", zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func observe(op string, err *error) {
	metrics.Workflows.WithLabelValues(op, result(*err)).Inc()
}
