package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/cart"
	"github.com/iliyamo/secondhand-bookstore/internal/metrics"
	"github.com/iliyamo/secondhand-bookstore/internal/model"
	"github.com/iliyamo/secondhand-bookstore/internal/queue"
	"github.com/iliyamo/secondhand-bookstore/internal/repository"
)

// Purchase sells one posting: its book loses one copy and the posting is
// removed, atomically.  A posting that does not exist (or was just bought
// by someone else) yields ErrNotFound; a book already at zero yields
// ErrOutOfStock and nothing changes.
func (m *Marketplace) Purchase(ctx context.Context, postID uint64) (err error) {
	defer observe("purchase", &err)

	var ev queue.Event
	err = m.store.InTx(ctx, func(r Repos) error {
		var err error
		ev, err = purchase(ctx, r, postID)
		return err
	})
	if err != nil {
		return translate(err)
	}
	m.publish(ctx, ev)
	return nil
}

func purchase(ctx context.Context, r Repos, postID uint64) (queue.Event, error) {
	bookID, err := r.Postings.LockBookID(ctx, postID)
	if err != nil {
		return queue.Event{}, err
	}
	ev := queue.Event{Type: queue.PostingPurchased, PostID: postID, BookID: bookID}
	if rows, err := r.Postings.DetailsByID(ctx, postID); err != nil {
		return ev, err
	} else if len(rows) > 0 {
		ev.Title, ev.Author, ev.Price = rows[0].Title, rows[0].Author, rows[0].Price
	}
	if err := r.Books.DecrementQuantity(ctx, bookID); err != nil {
		return ev, err
	}
	if err := r.Postings.Delete(ctx, postID); err != nil {
		return ev, err
	}
	return ev, nil
}

// Checkout buys every posting in postIDs as one unit: either all of them
// are sold or none is.  The ids go through a cart, so a repeated id is
// rejected with cart.ErrAlreadyInCart before anything is written.  The
// returned cart holds the purchased items and their total.
func (m *Marketplace) Checkout(ctx context.Context, postIDs []uint64) (c cart.Cart, err error) {
	defer observe("checkout", &err)
	if len(postIDs) == 0 {
		return c, ErrEmptyCart
	}

	var events []queue.Event
	err = m.store.InTx(ctx, func(r Repos) error {
		for _, id := range postIDs {
			if c.Contains(id) {
				return errors.Wrapf(cart.ErrAlreadyInCart, "post %d", id)
			}
			rows, err := r.Postings.DetailsByID(ctx, id)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return errors.Wrapf(repository.ErrPostingNotFound, "post %d", id)
			}
			if err := c.Add(cart.ItemFrom(rows[0])); err != nil {
				return err
			}
		}
		for _, id := range c.PostIDs() {
			ev, err := purchase(ctx, r, id)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	if err != nil {
		return cart.Cart{}, translate(err)
	}
	m.publish(ctx, events...)
	return c, nil
}

// Submit validates s against the submissions table constraints and queues
// it for moderation.
func (m *Marketplace) Submit(ctx context.Context, s *model.Submission) (err error) {
	defer observe("submit", &err)

	if err := m.validate.Struct(s); err != nil {
		return errors.Wrap(ErrInvalidSubmission, err.Error())
	}
	if _, err := m.store.Repos().Submissions.Insert(ctx, s); err != nil {
		return err
	}
	m.publish(ctx, queue.Event{
		Type: queue.SubmissionCreated, SubID: s.ID,
		Title: s.Title, Author: s.Author, Price: s.Price,
	})
	return nil
}

// Approve turns a submission into a public posting.  If no book with the
// same (title, author) exists one is created with quantity 1 and the
// default image; otherwise the existing book gains one copy.  The
// submission is consumed exactly once: approving it again, or approving it
// concurrently, yields ErrNotFound.
func (m *Marketplace) Approve(ctx context.Context, subID uint64) (err error) {
	defer observe("approve", &err)

	var ev queue.Event
	err = m.store.InTx(ctx, func(r Repos) error {
		sub, err := r.Submissions.GetForUpdate(ctx, subID)
		if err != nil {
			return err
		}
		ev = queue.Event{
			Type: queue.SubmissionApproved, SubID: subID,
			Title: sub.Title, Author: sub.Author, Price: sub.Price,
		}

		exists, err := r.Books.Exists(ctx, sub.Title, sub.Author)
		if err != nil {
			return err
		}
		if !exists {
			_, err = r.Books.Insert(ctx, &model.Book{
				Title:     sub.Title,
				Author:    sub.Author,
				Genre:     sub.Genre,
				Publisher: sub.Publisher,
				ImgPath:   m.defaultImage,
				Quantity:  1,
			})
			switch {
			case errors.Is(err, repository.ErrDuplicateBook):
				// created by a concurrent approval since the check
				exists = true
			case err != nil:
				return err
			default:
				ev.NewBook = true
			}
		}
		if exists {
			if err := r.Books.IncrementQuantity(ctx, sub.Title, sub.Author); err != nil {
				return err
			}
		}

		bookID, err := r.Books.IDByTitleAuthor(ctx, sub.Title, sub.Author)
		if err != nil {
			return err
		}
		p := sub.Posting(bookID)
		if _, err := r.Postings.Insert(ctx, &p); err != nil {
			return err
		}
		ev.BookID, ev.PostID = bookID, p.ID

		return r.Submissions.Delete(ctx, subID)
	})
	if err != nil {
		return translate(err)
	}
	if ev.NewBook {
		metrics.BooksCreated.Inc()
	}
	m.publish(ctx, ev)
	return nil
}

// Reject discards a submission.  Rejecting an id that does not exist
// yields ErrNotFound.
func (m *Marketplace) Reject(ctx context.Context, subID uint64) (err error) {
	defer observe("reject", &err)

	if err := m.store.Repos().Submissions.Delete(ctx, subID); err != nil {
		return translate(err)
	}
	m.publish(ctx, queue.Event{Type: queue.SubmissionRejected, SubID: subID})
	return nil
}
