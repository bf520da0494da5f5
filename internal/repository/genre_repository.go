package repository

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// GenreRepo serves the genre list from a newline-delimited text file.  The
// file is re-read on every call so edits show up without a restart.
type GenreRepo struct {
	path string
}

func NewGenreRepo(path string) *GenreRepo {
	return &GenreRepo{path: path}
}

// List returns one genre per line.  A trailing "\r" is stripped from each
// line and the empty element left by a final newline is dropped; any other
// blank line is kept as-is.
func (r *GenreRepo) List(_ context.Context) ([]string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, errors.Wrap(err, "read genres")
	}
	return SplitGenres(string(raw)), nil
}

func SplitGenres(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
