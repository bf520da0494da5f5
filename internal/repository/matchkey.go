package repository

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/unicode/norm"
)

// MatchKey is the indexed identity of a (title, author) pair.  Both parts
// are NFC-normalized so canonically equivalent encodings of the same text
// collide, but no case or whitespace folding happens: "Dune" and "dune"
// remain different books.
func MatchKey(title, author string) string {
	h := sha256.New()
	h.Write([]byte(norm.NFC.String(title)))
	h.Write([]byte{0x1f})
	h.Write([]byte(norm.NFC.String(author)))
	return hex.EncodeToString(h.Sum(nil))
}
