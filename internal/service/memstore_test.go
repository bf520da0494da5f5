package service

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
	"github.com/iliyamo/secondhand-bookstore/internal/repository"
)

// memStore is an in-memory Store.  InTx runs transactions one at a time
// and restores a snapshot when fn fails, which is what the row locks and
// rollback of the MySQL store give the workflows.
type memStore struct {
	mu sync.Mutex
	st *memState

	// fail makes the named operation return the error.
	fail map[string]error
	// staleExists makes Books.Exists always answer false, simulating a
	// concurrent insert landing between the check and the insert.
	staleExists bool
}

type memState struct {
	books    map[uint64]model.Book
	postings map[uint64]model.Posting
	subs     map[uint64]model.Submission
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		st: &memState{
			books:    map[uint64]model.Book{},
			postings: map[uint64]model.Posting{},
			subs:     map[uint64]model.Submission{},
		},
		fail: map[string]error{},
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		books:    make(map[uint64]model.Book, len(s.books)),
		postings: make(map[uint64]model.Posting, len(s.postings)),
		subs:     make(map[uint64]model.Submission, len(s.subs)),
		nextID:   s.nextID,
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.postings {
		c.postings[k] = v
	}
	for k, v := range s.subs {
		c.subs[k] = v
	}
	return c
}

func (s *memState) id() uint64 {
	s.nextID++
	return s.nextID
}

func (m *memStore) Repos() Repos {
	return Repos{Books: memBooks{m}, Postings: memPostings{m}, Submissions: memSubs{m}}
}

func (m *memStore) InTx(_ context.Context, fn func(r Repos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.st.clone()
	if err := fn(m.Repos()); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

func (m *memStore) failure(op string) error { return m.fail[op] }

// seedBook and seedPosting set up fixtures directly.
func (m *memStore) seedBook(b model.Book) uint64 {
	b.ID = m.st.id()
	m.st.books[b.ID] = b
	return b.ID
}

func (m *memStore) seedPosting(p model.Posting) uint64 {
	p.ID = m.st.id()
	m.st.postings[p.ID] = p
	return p.ID
}

func (m *memStore) booksByPair(title, author string) []model.Book {
	var out []model.Book
	for _, b := range m.st.books {
		if b.Title == title && b.Author == author {
			out = append(out, b)
		}
	}
	return out
}

type memBooks struct{ m *memStore }

func (r memBooks) find(title, author string) (model.Book, bool) {
	for _, b := range r.m.st.books {
		if b.Title == title && b.Author == author {
			return b, true
		}
	}
	return model.Book{}, false
}

func (r memBooks) Exists(_ context.Context, title, author string) (bool, error) {
	if err := r.m.failure("books.exists"); err != nil {
		return false, err
	}
	if r.m.staleExists {
		return false, nil
	}
	_, ok := r.find(title, author)
	return ok, nil
}

func (r memBooks) IDByTitleAuthor(_ context.Context, title, author string) (uint64, error) {
	b, ok := r.find(title, author)
	if !ok {
		return 0, repository.ErrBookNotFound
	}
	return b.ID, nil
}

func (r memBooks) Insert(_ context.Context, b *model.Book) (uint64, error) {
	if err := r.m.failure("books.insert"); err != nil {
		return 0, err
	}
	if _, ok := r.find(b.Title, b.Author); ok {
		return 0, repository.ErrDuplicateBook
	}
	b.ID = r.m.st.id()
	r.m.st.books[b.ID] = *b
	return b.ID, nil
}

func (r memBooks) IncrementQuantity(_ context.Context, title, author string) error {
	b, ok := r.find(title, author)
	if !ok {
		return repository.ErrBookNotFound
	}
	b.Quantity++
	r.m.st.books[b.ID] = b
	return nil
}

func (r memBooks) DecrementQuantity(_ context.Context, bookID uint64) error {
	b, ok := r.m.st.books[bookID]
	if !ok || b.Quantity == 0 {
		return repository.ErrOutOfStock
	}
	b.Quantity--
	r.m.st.books[bookID] = b
	return nil
}

type memPostings struct{ m *memStore }

func (r memPostings) detail(p model.Posting) model.PostingDetail {
	b := r.m.st.books[p.BookID]
	return model.PostingDetail{
		PostID: p.ID, BookID: p.BookID, Price: p.Price, Cond: p.Cond, Descript: p.Descript,
		Title: b.Title, Author: b.Author, Genre: b.Genre, Publisher: b.Publisher,
		ImgPath: b.ImgPath, Quantity: b.Quantity,
	}
}

func (r memPostings) filter(keep func(model.PostingDetail) bool) []model.PostingDetail {
	out := []model.PostingDetail{}
	for _, p := range r.m.st.postings {
		if d := r.detail(p); keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PostID < out[j].PostID })
	return out
}

func (r memPostings) ListDetails(context.Context) ([]model.PostingDetail, error) {
	return r.filter(func(model.PostingDetail) bool { return true }), nil
}

func (r memPostings) DetailsByID(_ context.Context, postID uint64) ([]model.PostingDetail, error) {
	return r.filter(func(d model.PostingDetail) bool { return d.PostID == postID }), nil
}

func (r memPostings) DetailsByGenre(_ context.Context, genre string) ([]model.PostingDetail, error) {
	return r.filter(func(d model.PostingDetail) bool { return d.Genre == genre }), nil
}

func (r memPostings) LockBookID(_ context.Context, postID uint64) (uint64, error) {
	p, ok := r.m.st.postings[postID]
	if !ok {
		return 0, repository.ErrPostingNotFound
	}
	return p.BookID, nil
}

func (r memPostings) Insert(_ context.Context, p *model.Posting) (uint64, error) {
	if err := r.m.failure("postings.insert"); err != nil {
		return 0, err
	}
	p.ID = r.m.st.id()
	r.m.st.postings[p.ID] = *p
	return p.ID, nil
}

func (r memPostings) Delete(_ context.Context, postID uint64) error {
	if _, ok := r.m.st.postings[postID]; !ok {
		return repository.ErrPostingNotFound
	}
	delete(r.m.st.postings, postID)
	return nil
}

type memSubs struct{ m *memStore }

func (r memSubs) List(context.Context) ([]model.Submission, error) {
	out := []model.Submission{}
	for _, s := range r.m.st.subs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSubs) GetByID(_ context.Context, subID uint64) (*model.Submission, error) {
	s, ok := r.m.st.subs[subID]
	if !ok {
		return nil, repository.ErrSubmissionNotFound
	}
	return &s, nil
}

func (r memSubs) GetForUpdate(ctx context.Context, subID uint64) (*model.Submission, error) {
	return r.GetByID(ctx, subID)
}

func (r memSubs) Insert(_ context.Context, s *model.Submission) (uint64, error) {
	s.ID = r.m.st.id()
	r.m.st.subs[s.ID] = *s
	return s.ID, nil
}

func (r memSubs) Delete(_ context.Context, subID uint64) error {
	if _, ok := r.m.st.subs[subID]; !ok {
		return repository.ErrSubmissionNotFound
	}
	delete(r.m.st.subs, subID)
	return nil
}

type staticGenres []string

func (g staticGenres) List(context.Context) ([]string, error) { return g, nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
