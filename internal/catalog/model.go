package catalog

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/pkg/snackapi"
)

// API is the subset of the snack API the model drives
type API interface {
	List(ctx context.Context) ([]models.Snack, error)
	Create(ctx context.Context, in models.Snack, file *snackapi.File) (*models.Snack, error)
	Update(ctx context.Context, id string, patch models.SnackPatch, file *snackapi.File) (*models.Snack, error)
	Delete(ctx context.Context, id string) error
}

// FetchState tracks the catalog load lifecycle
type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchPopulated
	FetchErrored
)

func (s FetchState) String() string {
	switch s {
	case FetchLoading:
		return "loading"
	case FetchPopulated:
		return "populated"
	case FetchErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Errors returned by model operations. All are validation errors except
// ErrSuperseded, which marks a result that arrived after its draft or
// session was gone and was therefore not applied.
var (
	ErrDraftOpen  = errors.Validation("Finish or cancel the open draft first")
	ErrBusy       = errors.Validation("A change is already being saved")
	ErrNoDraft    = errors.Validation("Nothing to save")
	ErrClosed     = errors.Validation("Catalog session is closed")
	ErrSuperseded = errors.Transport("result discarded", nil)
)

// Model is the catalog view-model for one admin session. It is safe for
// concurrent use; network calls run without holding the lock and their
// results are applied only if the session and draft that issued them are
// still current.
type Model struct {
	api       API
	log       logger.Logger
	assetBase string
	previews  PreviewFactory

	mu       sync.Mutex
	catalog  Catalog
	query    string
	selected map[string]bool
	fetch    FetchState
	fetchGen uint64
	draft    draft
	draftGen uint64
	closed   bool

	session    context.Context
	endSession context.CancelFunc
}

// Option configures a Model
type Option func(*Model)

// WithLogger sets the logger used for failed and discarded requests
func WithLogger(log logger.Logger) Option {
	return func(m *Model) {
		m.log = log
	}
}

// WithAssetBase sets the origin that relative image paths resolve against
func WithAssetBase(base string) Option {
	return func(m *Model) {
		m.assetBase = base
	}
}

// WithPreviews sets the factory used when a file is chosen for upload.
// A nil factory disables previews.
func WithPreviews(f PreviewFactory) Option {
	return func(m *Model) {
		m.previews = f
	}
}

// New creates a model over api. The asset base defaults to api.AssetBase()
// when api provides one.
func New(api API, opts ...Option) *Model {
	session, end := context.WithCancel(context.Background())
	m := &Model{
		api:        api,
		log:        logger.Discard(),
		previews:   TempPreviews{},
		catalog:    empty(),
		selected:   make(map[string]bool),
		session:    session,
		endSession: end,
	}
	if ab, ok := api.(interface{ AssetBase() string }); ok {
		m.assetBase = ab.AssetBase()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// call derives a request context that Close also cancels
func (m *Model) call(ctx context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.session, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (m *Model) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.UserFacing(err) {
		m.log.Warn(msg, args...)
		return
	}
	m.log.Error(msg, args...)
}

// Load fetches the full list and rebuilds the catalog. On failure the
// previous catalog is kept. A Load that is overtaken by a newer Load
// returns ErrSuperseded and changes nothing.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.fetchGen++
	gen := m.fetchGen
	m.fetch = FetchLoading
	m.mu.Unlock()

	callCtx, done := m.call(ctx)
	snacks, err := m.api.List(callCtx)
	done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.fetchGen {
		m.log.Debug("Discarding stale snack list", "generation", gen)
		return ErrSuperseded
	}
	if err != nil {
		m.fetch = FetchErrored
		m.logFailure("Error fetching snacks", err)
		return err
	}
	m.catalog = Group(snacks)
	m.fetch = FetchPopulated
	return nil
}

// FetchState returns the current load state
func (m *Model) FetchState() FetchState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetch
}

// Catalog returns a copy of the full grouped catalog
func (m *Model) Catalog() Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.clone()
}

// View returns the catalog filtered by the current query
func (m *Model) View() Catalog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Filter(m.catalog, m.query)
}

// SetQuery sets the free-text search
func (m *Model) SetQuery(q string) {
	m.mu.Lock()
	m.query = q
	m.mu.Unlock()
}

// Query returns the free-text search
func (m *Model) Query() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.query
}

// Toggle flips the selection flag for id
func (m *Model) Toggle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected[id] {
		delete(m.selected, id)
		return
	}
	m.selected[id] = true
}

// IsSelected reports whether id is selected
func (m *Model) IsSelected(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected[id]
}

// Selection returns the selected IDs as a set
func (m *Model) Selection() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]bool, len(m.selected))
	for id := range m.selected {
		out[id] = true
	}
	return out
}

// AssetBase returns the origin relative image paths resolve against
func (m *Model) AssetBase() string {
	return m.assetBase
}

// ImageURL resolves a snack's image for display
func (m *Model) ImageURL(s models.Snack) string {
	return ResolveImage(m.assetBase, s.Img)
}

// Export serializes the local catalog for inspection. It never writes to
// the server.
func (m *Model) Export() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.MarshalIndent(m.catalog, "", "  ")
}

// Close ends the session. In-flight requests are canceled, their results
// are discarded, and any upload preview is released.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.setDraft(draft{})
	m.endSession()
}
