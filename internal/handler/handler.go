// Package handler exposes the storefront and moderation endpoints.  Error
// bodies are plain text: a lookup by id that matches nothing answers 404
// with NoResults, every other failure answers 500 with ServerError.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/secondhand-bookstore/internal/cart"
	"github.com/iliyamo/secondhand-bookstore/internal/log"
	"github.com/iliyamo/secondhand-bookstore/internal/middleware"
	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

const (
	ServerError = "Something went wrong on the server... Please try again later."
	NoResults   = "No results found."

	MsgPurchased  = "Successfully updated tables"
	MsgCheckedOut = "You have successfully made the purchase!"
	MsgSubmitted  = "The posting is successfully submitted for review"
	MsgApproved   = "This submission is entered as a public posting"
	MsgRejected   = "This submission is successfully removed"
)

// Marketplace is the service surface the handlers need.
type Marketplace interface {
	ListPostings(ctx context.Context) ([]model.PostingDetail, error)
	PostingsByGenre(ctx context.Context, genre string) ([]model.PostingDetail, error)
	FindBook(ctx context.Context, postID uint64) (*model.PostingDetail, error)
	Genres(ctx context.Context) ([]string, error)
	Submissions(ctx context.Context) ([]model.Submission, error)

	Purchase(ctx context.Context, postID uint64) error
	Checkout(ctx context.Context, postIDs []uint64) (cart.Cart, error)
	Submit(ctx context.Context, s *model.Submission) error
	Approve(ctx context.Context, subID uint64) error
	Reject(ctx context.Context, subID uint64) error
}

type Handler struct {
	svc     Marketplace
	timeout time.Duration
}

// New builds the handlers.  timeout bounds the database work of each
// request; zero means no bound beyond the client connection.
func New(svc Marketplace, timeout time.Duration) *Handler {
	return &Handler{svc: svc, timeout: timeout}
}

func (h *Handler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.timeout)
}

// serverError logs err and answers with the generic 500 text.
func serverError(c echo.Context, op string, err error) error {
	log.Error(op+" failed",
		zap.Error(err),
		zap.String("req_id", middleware.RequestID(c)),
		zap.String("route", c.Path()),
	)
	return c.String(http.StatusInternalServerError, ServerError)
}

func parseID(raw string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
}

// idForm carries the single id of /purchase, /add and /del.  json.Number
// accepts both "7" and 7 in a JSON body as well as a plain form value.
type idForm struct {
	PostID json.Number `form:"postid" json:"postid"`
	SubID  json.Number `form:"subid" json:"subid"`
}
