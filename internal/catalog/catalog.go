// Package catalog holds the client-side state behind the snack counter admin
// screens: the grouped catalog, search filter, selection, and the single
// edit or upload draft. Every mutation is applied locally only after the
// snack API confirms it.
package catalog

import (
	stderrors "errors"
	"net/url"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// Catalog maps each supported category to its snacks in display order
type Catalog map[models.Category][]models.Snack

// GenericNotice is shown for failures the user cannot act on
const GenericNotice = "Something went wrong. Please try again."

// Group partitions snacks into the fixed category buckets, keeping their
// order. Snacks with an unsupported category are dropped.
func Group(snacks []models.Snack) Catalog {
	c := empty()
	for _, s := range snacks {
		if !s.Category.Valid() {
			continue
		}
		c[s.Category] = append(c[s.Category], s)
	}
	return c
}

// Filter returns, per category, the snacks whose name contains query
// case-insensitively. A blank query returns a copy of c.
func Filter(c Catalog, query string) Catalog {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make(Catalog, len(c))
	for cat, items := range c {
		kept := make([]models.Snack, 0, len(items))
		for _, s := range items {
			if q == "" || strings.Contains(strings.ToLower(s.Name), q) {
				kept = append(kept, s)
			}
		}
		out[cat] = kept
	}
	return out
}

// ResolveImage returns img unchanged when it is already absolute (has a
// scheme), otherwise joins it onto base.
func ResolveImage(base, img string) string {
	if img == "" {
		return ""
	}
	if u, err := url.Parse(img); err == nil && u.Scheme != "" {
		return img
	}
	if base == "" {
		return img
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(img, "/")
}

// Notice converts an operation error into the message shown to the user.
// Validation and not-found errors carry their own message; anything else
// gets GenericNotice.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	if errors.UserFacing(err) {
		var appErr *errors.Error
		if stderrors.As(err, &appErr) {
			return appErr.Message
		}
	}
	return GenericNotice
}

// Len returns the number of snacks across all categories
func (c Catalog) Len() int {
	n := 0
	for _, items := range c {
		n += len(items)
	}
	return n
}

// Find returns the category and index of id, or ok=false
func (c Catalog) Find(id string) (cat models.Category, idx int, ok bool) {
	for cat, items := range c {
		for i, s := range items {
			if s.ID == id {
				return cat, i, true
			}
		}
	}
	return "", -1, false
}

func (c Catalog) clone() Catalog {
	out := make(Catalog, len(c))
	for cat, items := range c {
		out[cat] = append([]models.Snack{}, items...)
	}
	return out
}

func empty() Catalog {
	c := make(Catalog, len(models.Categories))
	for _, cat := range models.Categories {
		c[cat] = []models.Snack{}
	}
	return c
}
