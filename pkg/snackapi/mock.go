package snackapi

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// MockClient is an in-memory snack API for testing
type MockClient struct {
	mu        sync.Mutex
	snacks    []models.Snack // newest first
	nextID    int
	assetBase string
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	hook      func(op string)
	calls     map[string]int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithSnacks seeds the catalog, newest first
func WithSnacks(snacks []models.Snack) MockOption {
	return func(m *MockClient) {
		m.snacks = append([]models.Snack(nil), snacks...)
	}
}

// WithListError sets an error to return from List
func WithListError(err error) MockOption {
	return func(m *MockClient) {
		m.listErr = err
	}
}

// WithCreateError sets an error to return from Create
func WithCreateError(err error) MockOption {
	return func(m *MockClient) {
		m.createErr = err
	}
}

// WithUpdateError sets an error to return from Update
func WithUpdateError(err error) MockOption {
	return func(m *MockClient) {
		m.updateErr = err
	}
}

// WithDeleteError sets an error to return from Delete
func WithDeleteError(err error) MockOption {
	return func(m *MockClient) {
		m.deleteErr = err
	}
}

// WithHook runs fn at the start of every call, before any state is read.
// Tests use it to hold a request in flight.
func WithHook(fn func(op string)) MockOption {
	return func(m *MockClient) {
		m.hook = fn
	}
}

// WithMockAssetBase sets the value returned by AssetBase
func WithMockAssetBase(base string) MockOption {
	return func(m *MockClient) {
		m.assetBase = base
	}
}

// NewMockClient creates a new mock client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		nextID:    1,
		assetBase: "http://localhost:5000",
		calls:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Calls returns how many times op ("List", "Create", ...) was invoked
func (m *MockClient) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of network operations issued
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// SetError changes the error returned by op after construction
func (m *MockClient) SetError(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch op {
	case "List":
		m.listErr = err
	case "Create":
		m.createErr = err
	case "Update":
		m.updateErr = err
	case "Delete":
		m.deleteErr = err
	}
}

// Snacks returns a copy of the server-side catalog
func (m *MockClient) Snacks() []models.Snack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Snack(nil), m.snacks...)
}

func (m *MockClient) enter(op string) {
	if m.hook != nil {
		m.hook(op)
	}
	m.mu.Lock()
	m.calls[op]++
	m.mu.Unlock()
}

func (m *MockClient) indexOf(id string) int {
	for i, s := range m.snacks {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// List returns the seeded catalog
func (m *MockClient) List(ctx context.Context) ([]models.Snack, error) {
	m.enter("List")
	if err := ctx.Err(); err != nil {
		return nil, errors.Transport("request canceled", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Snack{}, m.snacks...), nil
}

// Get returns a snack by ID
func (m *MockClient) Get(ctx context.Context, id string) (*models.Snack, error) {
	m.enter("Get")
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		s := m.snacks[i]
		return &s, nil
	}
	return nil, errors.NotFound("Snack not found")
}

// Create prepends a new snack with a generated ID
func (m *MockClient) Create(ctx context.Context, in models.Snack, file *File) (*models.Snack, error) {
	m.enter("Create")
	if err := ctx.Err(); err != nil {
		return nil, errors.Transport("request canceled", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if file != nil {
		in.Img = "/uploads/" + file.Name
	}
	if in.Name == "" || in.Category == "" || in.Img == "" {
		return nil, errors.Validation("All fields are required")
	}

	now := time.Now()
	in.ID = "mock-" + strconv.Itoa(m.nextID)
	in.CreatedAt, in.UpdatedAt = now, now
	m.nextID++
	m.snacks = append([]models.Snack{in}, m.snacks...)
	return &in, nil
}

// Update merges the patch over an existing snack
func (m *MockClient) Update(ctx context.Context, id string, patch models.SnackPatch, file *File) (*models.Snack, error) {
	m.enter("Update")
	if err := ctx.Err(); err != nil {
		return nil, errors.Transport("request canceled", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	i := m.indexOf(id)
	if i < 0 {
		return nil, errors.NotFound("Snack not found")
	}

	s := m.snacks[i]
	if patch.Name != nil && *patch.Name != "" {
		s.Name = *patch.Name
	}
	if patch.Price != nil {
		s.Price = *patch.Price
	}
	if patch.Category != nil && *patch.Category != "" {
		s.Category = *patch.Category
	}
	if patch.Img != nil && *patch.Img != "" {
		s.Img = *patch.Img
	}
	if file != nil {
		s.Img = "/uploads/" + file.Name
	}
	s.UpdatedAt = time.Now()
	m.snacks[i] = s
	return &s, nil
}

// Delete removes a snack
func (m *MockClient) Delete(ctx context.Context, id string) error {
	m.enter("Delete")
	if err := ctx.Err(); err != nil {
		return errors.Transport("request canceled", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	i := m.indexOf(id)
	if i < 0 {
		return errors.NotFound("Snack not found")
	}
	m.snacks = append(m.snacks[:i], m.snacks[i+1:]...)
	return nil
}

// AssetBase returns the configured asset origin
func (m *MockClient) AssetBase() string {
	return m.assetBase
}
