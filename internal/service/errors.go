package service

import (
	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/repository"
)

var (
	// ErrNotFound means the posting, submission or book the caller named
	// does not exist, or was consumed by a concurrent request.
	ErrNotFound = errors.New("not found")
	// ErrOutOfStock means a purchase would take a book's quantity below zero.
	ErrOutOfStock = errors.New("out of stock")
	// ErrInvalidSubmission wraps validation failures of a new submission.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrEmptyCart is returned by Checkout when no postings were given.
	ErrEmptyCart = errors.New("cart is empty")
)

// translate maps repository sentinels onto the service's error set,
// keeping the original message for logs.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPostingNotFound),
		errors.Is(err, repository.ErrSubmissionNotFound),
		errors.Is(err, repository.ErrBookNotFound):
		return errors.Wrap(ErrNotFound, err.Error())
	case errors.Is(err, repository.ErrOutOfStock):
		return errors.Wrap(ErrOutOfStock, err.Error())
	}
	return err
}

// result labels a workflow outcome for metrics.
func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrInvalidSubmission):
		return "invalid"
	}
	return "error"
}
