// Package repository holds one struct per table.  Each method issues a
// single parameterized statement through a Querier, which is either the
// pooled *sql.DB or a *sql.Tx, so the same repositories serve both plain
// reads and the transactional workflows.
package repository

import "github.com/pkg/errors"

// ErrPostingNotFound is returned when no posting row matches the id, either
// on lookup or because a conditional delete removed nothing.
var ErrPostingNotFound = errors.New("posting not found")

// ErrSubmissionNotFound is the submission counterpart of ErrPostingNotFound.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrBookNotFound is returned when no book has the requested id or
// (title, author) pair.
var ErrBookNotFound = errors.New("book not found")

// ErrOutOfStock signals that a decrement would have taken a book's quantity
// below zero; nothing was changed.
var ErrOutOfStock = errors.New("book out of stock")

// ErrDuplicateBook is returned when inserting a (title, author) pair that
// already exists.
var ErrDuplicateBook = errors.New("duplicate book")
