package catalog

import (
	"os"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/models"
)

func sampleSnacks() []models.Snack {
	return []models.Snack{
		{ID: "a", Name: "Chips", Price: 50, Category: models.Vegetarian, Img: "/uploads/chips.jpg"},
		{ID: "b", Name: "Chicken Puff", Price: 80, Category: models.NonVegetarian, Img: "/uploads/puff.jpg"},
		{ID: "c", Name: "Mango Juice", Price: 60, Category: models.Juice, Img: "https://cdn.example.com/mango.png"},
		{ID: "d", Name: "Popcorn", Price: 120, Category: models.Vegetarian, Img: "/uploads/popcorn.jpg"},
		{ID: "e", Name: "Brownie", Price: 90, Category: "Dessert", Img: "/uploads/brownie.jpg"},
	}
}

func TestGroup_BucketMembership(t *testing.T) {
	snacks := sampleSnacks()
	c := Group(snacks)

	if len(c) != len(models.Categories) {
		t.Fatalf("expected %d buckets, got %d", len(models.Categories), len(c))
	}
	for cat, items := range c {
		for _, s := range items {
			if s.Category != cat {
				t.Errorf("snack %s with category %q found in bucket %q", s.ID, s.Category, cat)
			}
		}
	}
	for _, s := range snacks {
		_, _, ok := c.Find(s.ID)
		if ok != s.Category.Valid() {
			t.Errorf("snack %s (category %q): present=%v", s.ID, s.Category, ok)
		}
	}
	if c.Len() != 4 {
		t.Errorf("expected 4 grouped snacks, got %d", c.Len())
	}
}

func TestGroup_KeepsOrder(t *testing.T) {
	c := Group(sampleSnacks())
	veg := c[models.Vegetarian]
	if len(veg) != 2 || veg[0].ID != "a" || veg[1].ID != "d" {
		t.Errorf("expected Vegetarian [a d], got %+v", veg)
	}
}

func TestGroup_Empty(t *testing.T) {
	c := Group(nil)
	for _, cat := range models.Categories {
		items, ok := c[cat]
		if !ok || items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil bucket for %q, got %#v", cat, items)
		}
	}
}

func TestFilter(t *testing.T) {
	c := Group(sampleSnacks())

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c", "d"}},
		{"   ", []string{"a", "b", "c", "d"}},
		{"ch", []string{"a", "b"}},
		{"CHIPS", []string{"a"}},
		{" juice ", []string{"c"}},
		{"pizza", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(c, tt.query)
			var ids []string
			for _, cat := range models.Categories {
				for _, s := range got[cat] {
					ids = append(ids, s.ID)
				}
			}
			if !reflect.DeepEqual(sortedCopy(ids), sortedCopy(tt.want)) {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, ids, tt.want)
			}
			if len(got) != len(c) {
				t.Errorf("expected every category in the filtered view, got %d", len(got))
			}
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	c := Group(sampleSnacks())
	for _, q := range []string{"", "ch", "o", "zzz"} {
		once := Filter(c, q)
		twice := Filter(once, q)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Filter not idempotent for %q", q)
		}
	}
}

func TestFilter_EmptyQueryUnchanged(t *testing.T) {
	c := Group(sampleSnacks())
	if got := Filter(c, ""); !reflect.DeepEqual(got, c) {
		t.Errorf("expected empty query to return the catalog unchanged")
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	c := Group(sampleSnacks())
	before := c.clone()
	Filter(c, "chips")
	if !reflect.DeepEqual(c, before) {
		t.Error("Filter modified its input")
	}
}

func TestResolveImage(t *testing.T) {
	tests := []struct {
		base string
		img  string
		want string
	}{
		{"http://localhost:5000", "/uploads/chips.jpg", "http://localhost:5000/uploads/chips.jpg"},
		{"http://localhost:5000/", "/uploads/chips.jpg", "http://localhost:5000/uploads/chips.jpg"},
		{"http://localhost:5000", "uploads/chips.jpg", "http://localhost:5000/uploads/chips.jpg"},
		{"http://localhost:5000", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"http://localhost:5000", "http://img.example.com/b.png", "http://img.example.com/b.png"},
		{"http://localhost:5000", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"", "/uploads/chips.jpg", "/uploads/chips.jpg"},
		{"http://localhost:5000", "", ""},
	}

	for _, tt := range tests {
		if got := ResolveImage(tt.base, tt.img); got != tt.want {
			t.Errorf("ResolveImage(%q, %q) = %q, want %q", tt.base, tt.img, got, tt.want)
		}
	}
}

func TestNotice(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", errors.Validation("All fields are required"), "All fields are required"},
		{"not found", errors.NotFound("Snack not found"), "Snack not found"},
		{"store", errors.Store("Error fetching snacks", nil), GenericNotice},
		{"transport", errors.Transport("request timed out", nil), GenericNotice},
		{"plain", os.ErrPermission, GenericNotice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Notice(tt.err); got != tt.want {
				t.Errorf("Notice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTempPreviews(t *testing.T) {
	dir := t.TempDir()
	p, err := TempPreviews{Dir: dir}.NewPreview(File{Name: "soda.jpg", Data: []byte("jpeg")})
	if err != nil {
		t.Fatalf("NewPreview failed: %v", err)
	}

	ref := p.Ref()
	if !strings.HasPrefix(ref, "file://") || !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("unexpected preview ref %q", ref)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one preview file, got %d", len(entries))
	}

	if err := p.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected preview file removed, %d left", len(entries))
	}
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
