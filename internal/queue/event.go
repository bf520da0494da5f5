// Package queue defines the marketplace events exchanged over RabbitMQ, the
// publisher the workflows use after commit, and the consumer that appends
// them to an audit log.
package queue

import (
	"time"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// Event types.
const (
	PostingPurchased   = "posting.purchased"
	SubmissionCreated  = "submission.created"
	SubmissionApproved = "submission.approved"
	SubmissionRejected = "submission.rejected"
)

// Event is published after a workflow commits.  Fields that do not apply to
// a given type are left zero and omitted.
type Event struct {
	Type       string      `json:"type"`
	PostID     uint64      `json:"post_id,omitempty"`
	BookID     uint64      `json:"book_id,omitempty"`
	SubID      uint64      `json:"sub_id,omitempty"`
	Title      string      `json:"title,omitempty"`
	Author     string      `json:"author,omitempty"`
	Price      model.Price `json:"price,omitempty"`
	NewBook    bool        `json:"new_book,omitempty"`
	OccurredAt string      `json:"occurred_at"`
}

// Stamp sets OccurredAt to now in RFC3339 UTC.
func (e Event) Stamp(now time.Time) Event {
	e.OccurredAt = now.UTC().Format(time.RFC3339)
	return e
}
