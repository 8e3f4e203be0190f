package services

import (
	"context"

	"github.com/abrezinsky/snackcounter/internal/models"
)

// SnackServicer defines the interface for snack catalog operations
type SnackServicer interface {
	ListSnacks(ctx context.Context) ([]models.Snack, error)
	GetSnack(ctx context.Context, id string) (*models.Snack, error)
	CreateSnack(ctx context.Context, in CreateSnack) (*models.Snack, error)
	UpdateSnack(ctx context.Context, id string, in UpdateSnack) (*models.Snack, error)
	DeleteSnack(ctx context.Context, id string) error
}

// Broadcaster publishes confirmed catalog changes to connected clients
type Broadcaster interface {
	BroadcastMessage(msgType string, payload interface{})
}

// MutationRecorder observes the outcome of catalog writes
type MutationRecorder interface {
	ObserveMutation(op string, err error)
}

// FileRemover deletes a stored upload by its reference
type FileRemover interface {
	Remove(ctx context.Context, ref string) error
}

// Ensure concrete types implement interfaces
var _ SnackServicer = (*SnackService)(nil)
