package repository

import (
	"context"

	"github.com/abrezinsky/snackcounter/internal/models"
)

// SnackRepository defines snack data operations. Each write touches a single
// record and is atomic per record.
type SnackRepository interface {
	// ListSnacks returns all snacks, newest first
	ListSnacks(ctx context.Context) ([]models.Snack, error)
	GetSnack(ctx context.Context, id string) (*models.Snack, error)
	// CreateSnack assigns the identifier and timestamps and returns the stored record
	CreateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error)
	// UpdateSnack overwrites the record identified by snack.ID
	UpdateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error)
	DeleteSnack(ctx context.Context, id string) error
}

// Store is a SnackRepository with lifecycle and health methods
type Store interface {
	SnackRepository
	Ping(ctx context.Context) error
	Close() error
}

// Ensure both drivers implement the store
var (
	_ Store = (*Repository)(nil)
	_ Store = (*MongoRepository)(nil)
)
