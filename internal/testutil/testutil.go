package testutil

import (
	"context"
	"testing"

	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedSnack inserts a snack and fails the test on error
func SeedSnack(t *testing.T, repo repository.SnackRepository, name string, price float64, category models.Category) models.Snack {
	t.Helper()

	s, err := repo.CreateSnack(context.Background(), models.Snack{
		Name:     name,
		Price:    price,
		Category: category,
		Img:      "/uploads/" + name + ".jpg",
	})
	if err != nil {
		t.Fatalf("failed to seed snack %q: %v", name, err)
	}
	return *s
}
