// Package cart models a shopper's cart: an ordered set of postings with a
// running total.  A posting can be in the cart at most once.
package cart

import (
	"github.com/pkg/errors"

	"github.com/iliyamo/secondhand-bookstore/internal/model"
)

// ErrAlreadyInCart carries the message the storefront shows the shopper.
var ErrAlreadyInCart = errors.New("This item is already in the cart.")

// Item is one posting in the cart.
type Item struct {
	PostID uint64      `json:"post_id"`
	Title  string      `json:"title"`
	Price  model.Price `json:"price"`
}

// ItemFrom builds an Item from a listing row.
func ItemFrom(d model.PostingDetail) Item {
	return Item{PostID: d.PostID, Title: d.Title, Price: d.Price}
}

// Cart is a value object; the zero value is an empty cart.
type Cart struct {
	items []Item
}

// Add appends it, rejecting a posting that is already present.
func (c *Cart) Add(it Item) error {
	if c.Contains(it.PostID) {
		return errors.Wrapf(ErrAlreadyInCart, "post %d", it.PostID)
	}
	c.items = append(c.items, it)
	return nil
}

// Remove drops the posting and reports whether it was present.
func (c *Cart) Remove(postID uint64) bool {
	for i, it := range c.items {
		if it.PostID == postID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() { c.items = nil }

func (c *Cart) Contains(postID uint64) bool {
	for _, it := range c.items {
		if it.PostID == postID {
			return true
		}
	}
	return false
}

// Total sums prices in cents, so no float drift accumulates.
func (c *Cart) Total() model.Price {
	var sum model.Price
	for _, it := range c.items {
		sum += it.Price
	}
	return sum
}

func (c *Cart) Len() int { return len(c.items) }

// Items returns a copy in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// PostIDs returns the posting ids in insertion order.
func (c *Cart) PostIDs() []uint64 {
	out := make([]uint64, len(c.items))
	for i, it := range c.items {
		out[i] = it.PostID
	}
	return out
}
