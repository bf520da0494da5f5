package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
	"github.com/iliyamo/secondhand-bookstore/internal/service"
)

// ListPostings handles GET /posting/all.
func (h *Handler) ListPostings(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.svc.ListPostings(ctx)
	if err != nil {
		return serverError(c, "list postings", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// GetPosting handles GET /posting/:id.  The body is an array holding the
// one matching row; an id that matches nothing, including one that is not
// a number, is a 404.
func (h *Handler) GetPosting(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.String(http.StatusNotFound, NoResults)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.svc.FindBook(ctx, id)
	if errors.Is(err, service.ErrNotFound) {
		return c.String(http.StatusNotFound, NoResults)
	}
	if err != nil {
		return serverError(c, "get posting", err)
	}
	return c.JSON(http.StatusOK, []model.PostingDetail{*d})
}

// Genres handles GET /book/filter.
func (h *Handler) Genres(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	genres, err := h.svc.Genres(ctx)
	if err != nil {
		return serverError(c, "list genres", err)
	}
	return c.JSON(http.StatusOK, genres)
}

// FilterByGenre handles GET /book/filter/:genre.  A genre nobody posted in
// is an empty array, never a 404.
func (h *Handler) FilterByGenre(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.svc.PostingsByGenre(ctx, c.Param("genre"))
	if err != nil {
		return serverError(c, "filter postings", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// Purchase handles POST /purchase.
func (h *Handler) Purchase(c echo.Context) error {
	var f idForm
	if err := c.Bind(&f); err != nil {
		return serverError(c, "purchase", err)
	}
	id, err := parseID(f.PostID.String())
	if err != nil {
		return serverError(c, "purchase", errors.Wrapf(err, "postid %q", f.PostID))
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.svc.Purchase(ctx, id); err != nil {
		return serverError(c, "purchase", err)
	}
	return c.String(http.StatusOK, MsgPurchased)
}

type checkoutForm struct {
	PostIDs []json.Number `form:"postid" json:"postid"`
}

// Checkout handles POST /checkout: every posting in the cart is bought in
// one transaction.  The cart total is returned in X-Cart-Total.
func (h *Handler) Checkout(c echo.Context) error {
	var f checkoutForm
	if err := c.Bind(&f); err != nil {
		return serverError(c, "checkout", err)
	}
	ids := make([]uint64, 0, len(f.PostIDs))
	for _, raw := range f.PostIDs {
		id, err := parseID(raw.String())
		if err != nil {
			return serverError(c, "checkout", errors.Wrapf(err, "postid %q", raw))
		}
		ids = append(ids, id)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	bought, err := h.svc.Checkout(ctx, ids)
	if err != nil {
		return serverError(c, "checkout", err)
	}
	c.Response().Header().Set("X-Cart-Total", bought.Total().String())
	return c.String(http.StatusOK, MsgCheckedOut)
}
