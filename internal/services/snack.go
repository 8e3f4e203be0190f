package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/internal/repository"
)

// CreateSnack carries the fields for a new snack. Price is raw user text.
type CreateSnack struct {
	Name     string
	Price    string
	Category string
	Img      string
	// Uploaded marks Img as a freshly stored file that must be removed if
	// the snack is not created.
	Uploaded bool
}

// UpdateSnack carries the fields for an update. Empty strings mean "leave
// unchanged"; PriceSet distinguishes a supplied price from an omitted one.
type UpdateSnack struct {
	Name     string
	Price    string
	PriceSet bool
	Category string
	Img      string
	Uploaded bool
}

// SnackService handles snack-related business logic
type SnackService struct {
	log         logger.Logger
	repo        repository.SnackRepository
	files       FileRemover
	broadcaster Broadcaster
	recorder    MutationRecorder
}

// NewSnackService creates a new SnackService. files may be nil when uploads are disabled.
func NewSnackService(log logger.Logger, repo repository.SnackRepository, files FileRemover) *SnackService {
	return &SnackService{log: log, repo: repo, files: files}
}

// SetBroadcaster sets the event sink for confirmed mutations
func (s *SnackService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRecorder sets the metrics sink for mutations
func (s *SnackService) SetRecorder(r MutationRecorder) {
	s.recorder = r
}

// ListSnacks returns all snacks, newest first
func (s *SnackService) ListSnacks(ctx context.Context) ([]models.Snack, error) {
	snacks, err := s.repo.ListSnacks(ctx)
	if err != nil {
		return nil, errors.Store("Error fetching snacks", err)
	}
	return snacks, nil
}

// GetSnack returns a snack by ID
func (s *SnackService) GetSnack(ctx context.Context, id string) (*models.Snack, error) {
	snack, err := s.repo.GetSnack(ctx, id)
	if err != nil {
		return nil, translate(err, "Error fetching snack")
	}
	return snack, nil
}

// CreateSnack validates and stores a new snack
func (s *SnackService) CreateSnack(ctx context.Context, in CreateSnack) (snack *models.Snack, err error) {
	defer func() {
		if err != nil && in.Uploaded {
			s.discardUpload(in.Img)
		}
		s.observe("create", err)
	}()

	name := strings.TrimSpace(in.Name)
	category := models.Category(strings.TrimSpace(in.Category))
	img := strings.TrimSpace(in.Img)

	if name == "" || strings.TrimSpace(in.Price) == "" || category == "" || img == "" {
		return nil, errors.Validation("All fields are required")
	}
	price, err := models.ParsePrice(in.Price)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "Invalid price")
	}
	if !category.Valid() {
		return nil, errors.Validationf("Unknown category %q", category)
	}

	snack, err = s.repo.CreateSnack(ctx, models.Snack{
		Name:     name,
		Price:    price,
		Category: category,
		Img:      img,
	})
	if err != nil {
		return nil, errors.Store("Error adding snack", err)
	}

	s.log.Info("Snack created", "id", snack.ID, "name", snack.Name, "category", snack.Category)
	s.broadcast(models.EventSnackCreated, snack)
	return snack, nil
}

// UpdateSnack merges the supplied fields over the existing snack
func (s *SnackService) UpdateSnack(ctx context.Context, id string, in UpdateSnack) (snack *models.Snack, err error) {
	defer func() {
		if err != nil && in.Uploaded {
			s.discardUpload(in.Img)
		}
		s.observe("update", err)
	}()

	existing, err := s.repo.GetSnack(ctx, id)
	if err != nil {
		return nil, translate(err, "Error updating snack")
	}

	merged, err := mergeSnack(*existing, in)
	if err != nil {
		return nil, err
	}

	snack, err = s.repo.UpdateSnack(ctx, merged)
	if err != nil {
		return nil, translate(err, "Error updating snack")
	}

	s.log.Info("Snack updated", "id", snack.ID, "price", snack.Price)
	s.broadcast(models.EventSnackUpdated, snack)
	return snack, nil
}

// mergeSnack applies non-empty fields of in to existing. Price uses
// supplied-or-unchanged so that zero is a valid update.
func mergeSnack(existing models.Snack, in UpdateSnack) (models.Snack, error) {
	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if in.PriceSet {
		price, err := models.ParsePrice(in.Price)
		if err != nil {
			return existing, errors.Wrap(err, errors.ErrValidation, "Invalid price")
		}
		existing.Price = price
	}
	if c := models.Category(strings.TrimSpace(in.Category)); c != "" {
		if !c.Valid() {
			return existing, errors.Validationf("Unknown category %q", c)
		}
		existing.Category = c
	}
	if img := strings.TrimSpace(in.Img); img != "" {
		existing.Img = img
	}
	return existing, nil
}

// DeleteSnack permanently removes a snack
func (s *SnackService) DeleteSnack(ctx context.Context, id string) (err error) {
	defer func() { s.observe("delete", err) }()

	if err := s.repo.DeleteSnack(ctx, id); err != nil {
		return translate(err, "Error deleting snack")
	}

	s.log.Info("Snack deleted", "id", id)
	s.broadcast(models.EventSnackDeleted, map[string]string{"id": id})
	return nil
}

func translate(err error, msg string) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("Snack not found")
	}
	return errors.Store(msg, err)
}

func (s *SnackService) discardUpload(ref string) {
	if s.files == nil || ref == "" {
		return
	}
	if err := s.files.Remove(context.Background(), ref); err != nil {
		s.log.Warn("Failed to remove orphaned upload", "ref", ref, "error", err)
	}
}

func (s *SnackService) broadcast(eventType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(eventType, payload)
	}
}

func (s *SnackService) observe(op string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveMutation(op, err)
	}
}
