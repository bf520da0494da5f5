package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// Submissions handles GET /submissions, the admin moderation queue.
func (h *Handler) Submissions(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	subs, err := h.svc.Submissions(ctx)
	if err != nil {
		return serverError(c, "list submissions", err)
	}
	return c.JSON(http.StatusOK, subs)
}

// submissionForm leaves a text field nil when the request does not carry it
// at all, which is distinct from an empty value.
type submissionForm struct {
	Title       *string     `form:"title" json:"title"`
	Author      *string     `form:"author" json:"author"`
	Genre       *string     `form:"genre" json:"genre"`
	Price       json.Number `form:"price" json:"price"`
	Condition   json.Number `form:"condition" json:"condition"`
	Publisher   *string     `form:"publisher" json:"publisher"`
	Description *string     `form:"description" json:"description"`
}

// errMissingField is returned for a submission that omits a column the
// table requires.
var errMissingField = errors.New("missing field")

func (f submissionForm) submission() (*model.Submission, error) {
	for name, v := range map[string]*string{
		"title": f.Title, "author": f.Author, "genre": f.Genre,
		"publisher": f.Publisher, "description": f.Description,
	} {
		if v == nil {
			return nil, errors.Wrap(errMissingField, name)
		}
	}
	price, err := model.ParsePrice(f.Price.String())
	if err != nil {
		return nil, err
	}
	cond, err := strconv.ParseUint(strings.TrimSpace(f.Condition.String()), 10, 8)
	if err != nil {
		return nil, errors.Wrapf(err, "condition %q", f.Condition)
	}
	return &model.Submission{
		Title:     *f.Title,
		Author:    *f.Author,
		Genre:     *f.Genre,
		Publisher: *f.Publisher,
		Price:     price,
		Cond:      uint8(cond),
		Descript:  *f.Description,
	}, nil
}

// Submit handles POST /submission from the sell form.
func (h *Handler) Submit(c echo.Context) error {
	var f submissionForm
	if err := c.Bind(&f); err != nil {
		return serverError(c, "submit", err)
	}
	s, err := f.submission()
	if err != nil {
		return serverError(c, "submit", err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Submit(ctx, s); err != nil {
		return serverError(c, "submit", err)
	}
	return c.String(http.StatusOK, MsgSubmitted)
}

// Approve handles POST /add.
func (h *Handler) Approve(c echo.Context) error {
	return h.moderate(c, "approve", h.svc.Approve, MsgApproved)
}

// Reject handles POST /del.
func (h *Handler) Reject(c echo.Context) error {
	return h.moderate(c, "reject", h.svc.Reject, MsgRejected)
}

func (h *Handler) moderate(c echo.Context, op string, act func(ctx context.Context, subID uint64) error, ok string) error {
	var f idForm
	if err := c.Bind(&f); err != nil {
		return serverError(c, op, err)
	}
	id, err := parseID(f.SubID.String())
	if err != nil {
		return serverError(c, op, errors.Wrapf(err, "subid %q", f.SubID))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := act(ctx, id); err != nil {
		return serverError(c, op, err)
	}
	return c.String(http.StatusOK, ok)
}
