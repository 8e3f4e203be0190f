package mock

import (
	"context"
	"sync"

	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.CreateSnackError = errors.New("database error")
//	svc := services.NewSnackService(log, mockRepo, nil)
type Repository struct {
	repository.SnackRepository

	ListSnacksError  error
	GetSnackError    error
	CreateSnackError error
	UpdateSnackError error
	DeleteSnackError error

	mu    sync.Mutex
	calls map[string]int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.SnackRepository) *Repository {
	return &Repository{
		SnackRepository: real,
		calls:           make(map[string]int),
	}
}

// Calls returns how many times the named method was invoked
func (m *Repository) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *Repository) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

func (m *Repository) ListSnacks(ctx context.Context) ([]models.Snack, error) {
	m.record("ListSnacks")
	if m.ListSnacksError != nil {
		return nil, m.ListSnacksError
	}
	return m.SnackRepository.ListSnacks(ctx)
}

func (m *Repository) GetSnack(ctx context.Context, id string) (*models.Snack, error) {
	m.record("GetSnack")
	if m.GetSnackError != nil {
		return nil, m.GetSnackError
	}
	return m.SnackRepository.GetSnack(ctx, id)
}

func (m *Repository) CreateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	m.record("CreateSnack")
	if m.CreateSnackError != nil {
		return nil, m.CreateSnackError
	}
	return m.SnackRepository.CreateSnack(ctx, snack)
}

func (m *Repository) UpdateSnack(ctx context.Context, snack models.Snack) (*models.Snack, error) {
	m.record("UpdateSnack")
	if m.UpdateSnackError != nil {
		return nil, m.UpdateSnackError
	}
	return m.SnackRepository.UpdateSnack(ctx, snack)
}

func (m *Repository) DeleteSnack(ctx context.Context, id string) error {
	m.record("DeleteSnack")
	if m.DeleteSnackError != nil {
		return m.DeleteSnackError
	}
	return m.SnackRepository.DeleteSnack(ctx, id)
}
