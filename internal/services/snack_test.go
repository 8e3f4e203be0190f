package services_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/models"
	"github.com/abrezinsky/snackcounter/internal/repository/mock"
	"github.com/abrezinsky/snackcounter/internal/services"
	"github.com/abrezinsky/snackcounter/internal/testutil"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *recordingBroadcaster) BroadcastMessage(msgType string, payload interface{}) {
	b.mu.Lock()
	b.events = append(b.events, msgType)
	b.mu.Unlock()
}

type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(ctx context.Context, ref string) error {
	r.removed = append(r.removed, ref)
	return nil
}

type recordingRecorder struct {
	ops  []string
	errs int
}

func (r *recordingRecorder) ObserveMutation(op string, err error) {
	r.ops = append(r.ops, op)
	if err != nil {
		r.errs++
	}
}

func newService(t *testing.T) (*services.SnackService, *mock.Repository, *recordingRemover, *recordingBroadcaster) {
	t.Helper()
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	files := &recordingRemover{}
	svc := services.NewSnackService(logger.Discard(), repo, files)
	b := &recordingBroadcaster{}
	svc.SetBroadcaster(b)
	return svc, repo, files, b
}

func validCreate() services.CreateSnack {
	return services.CreateSnack{
		Name:     "Samosa",
		Price:    "30",
		Category: string(models.Vegetarian),
		Img:      "/uploads/samosa.jpg",
	}
}

func TestSnackService_ListSnacks_Empty(t *testing.T) {
	svc, _, _, _ := newService(t)

	snacks, err := svc.ListSnacks(context.Background())
	if err != nil {
		t.Fatalf("ListSnacks failed: %v", err)
	}
	if snacks == nil || len(snacks) != 0 {
		t.Errorf("expected empty non-nil list, got %v", snacks)
	}
}

func TestSnackService_CreateSnack(t *testing.T) {
	svc, _, _, b := newService(t)
	ctx := context.Background()

	snack, err := svc.CreateSnack(ctx, validCreate())
	if err != nil {
		t.Fatalf("CreateSnack failed: %v", err)
	}
	if snack.ID == "" || snack.Name != "Samosa" || snack.Price != 30 {
		t.Errorf("unexpected snack %+v", snack)
	}
	if snack.CreatedAt.IsZero() || snack.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if len(b.events) != 1 || b.events[0] != models.EventSnackCreated {
		t.Errorf("expected one created event, got %v", b.events)
	}
}

func TestSnackService_CreateSnack_ZeroPrice(t *testing.T) {
	svc, _, _, _ := newService(t)
	in := validCreate()
	in.Price = "0"

	snack, err := svc.CreateSnack(context.Background(), in)
	if err != nil {
		t.Fatalf("expected zero price to be accepted, got %v", err)
	}
	if snack.Price != 0 {
		t.Errorf("expected price 0, got %v", snack.Price)
	}
}

func TestSnackService_CreateSnack_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*services.CreateSnack)
	}{
		{"missing name", func(in *services.CreateSnack) { in.Name = "  " }},
		{"missing price", func(in *services.CreateSnack) { in.Price = "" }},
		{"missing category", func(in *services.CreateSnack) { in.Category = "" }},
		{"missing img", func(in *services.CreateSnack) { in.Img = "" }},
		{"bad price", func(in *services.CreateSnack) { in.Price = "cheap" }},
		{"negative price", func(in *services.CreateSnack) { in.Price = "-1" }},
		{"unknown category", func(in *services.CreateSnack) { in.Category = "Dessert" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, b := newService(t)
			in := validCreate()
			tt.mutate(&in)

			_, err := svc.CreateSnack(context.Background(), in)
			if !errors.Is(err, errors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if repo.Calls("CreateSnack") != 0 {
				t.Error("expected repository not to be called")
			}
			if len(b.events) != 0 {
				t.Error("expected no broadcast on failure")
			}
		})
	}
}

func TestSnackService_CreateSnack_MissingFieldsMessage(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.CreateSnack(context.Background(), services.CreateSnack{})
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) || appErr.Message != "All fields are required" {
		t.Errorf("expected 'All fields are required', got %v", err)
	}
}

func TestSnackService_CreateSnack_RemovesUploadOnFailure(t *testing.T) {
	svc, repo, files, _ := newService(t)
	repo.CreateSnackError = stderrors.New("disk full")
	in := validCreate()
	in.Uploaded = true

	_, err := svc.CreateSnack(context.Background(), in)
	if !errors.Is(err, errors.ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != in.Img {
		t.Errorf("expected uploaded file to be removed, got %v", files.removed)
	}
}

func TestSnackService_CreateSnack_KeepsLinkedImageOnFailure(t *testing.T) {
	svc, _, files, _ := newService(t)
	in := validCreate()
	in.Category = "Dessert"

	svc.CreateSnack(context.Background(), in)
	if len(files.removed) != 0 {
		t.Errorf("expected non-uploaded image to be left alone, got %v", files.removed)
	}
}

func TestSnackService_GetSnack_NotFound(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.GetSnack(context.Background(), "999")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSnackService_UpdateSnack_PriceOnly(t *testing.T) {
	svc, repo, _, b := newService(t)
	ctx := context.Background()
	seeded := testutil.SeedSnack(t, repo, "Chips", 20, models.Vegetarian)

	updated, err := svc.UpdateSnack(ctx, seeded.ID, services.UpdateSnack{Price: "25", PriceSet: true})
	if err != nil {
		t.Fatalf("UpdateSnack failed: %v", err)
	}
	if updated.Price != 25 {
		t.Errorf("expected price 25, got %v", updated.Price)
	}
	if updated.Name != "Chips" || updated.Category != models.Vegetarian || updated.Img != seeded.Img {
		t.Errorf("expected other fields unchanged, got %+v", updated)
	}
	if !updated.UpdatedAt.After(seeded.UpdatedAt) && !updated.UpdatedAt.Equal(seeded.UpdatedAt) {
		t.Error("expected updatedAt not to move backwards")
	}
	if len(b.events) != 1 || b.events[0] != models.EventSnackUpdated {
		t.Errorf("expected one updated event, got %v", b.events)
	}
}

func TestSnackService_UpdateSnack_ZeroPrice(t *testing.T) {
	svc, repo, _, _ := newService(t)
	seeded := testutil.SeedSnack(t, repo, "Water", 10, models.Juice)

	updated, err := svc.UpdateSnack(context.Background(), seeded.ID, services.UpdateSnack{Price: "0", PriceSet: true})
	if err != nil {
		t.Fatalf("UpdateSnack failed: %v", err)
	}
	if updated.Price != 0 {
		t.Errorf("expected price 0 to be stored, got %v", updated.Price)
	}
}

func TestSnackService_UpdateSnack_OmittedPriceUnchanged(t *testing.T) {
	svc, repo, _, _ := newService(t)
	seeded := testutil.SeedSnack(t, repo, "Water", 10, models.Juice)

	updated, err := svc.UpdateSnack(context.Background(), seeded.ID, services.UpdateSnack{Name: "Mineral Water"})
	if err != nil {
		t.Fatalf("UpdateSnack failed: %v", err)
	}
	if updated.Name != "Mineral Water" || updated.Price != 10 {
		t.Errorf("unexpected merge result %+v", updated)
	}
}

func TestSnackService_UpdateSnack_Errors(t *testing.T) {
	svc, repo, files, _ := newService(t)
	ctx := context.Background()
	seeded := testutil.SeedSnack(t, repo, "Water", 10, models.Juice)

	if _, err := svc.UpdateSnack(ctx, "404", services.UpdateSnack{Name: "x"}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.UpdateSnack(ctx, seeded.ID, services.UpdateSnack{Price: "-3", PriceSet: true}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation for negative price, got %v", err)
	}
	if _, err := svc.UpdateSnack(ctx, seeded.ID, services.UpdateSnack{Category: "Dessert"}); !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected validation for unknown category, got %v", err)
	}

	repo.UpdateSnackError = stderrors.New("locked")
	_, err := svc.UpdateSnack(ctx, seeded.ID, services.UpdateSnack{Img: "/uploads/new.png", Uploaded: true})
	if !errors.Is(err, errors.ErrStore) {
		t.Errorf("expected store error, got %v", err)
	}
	if len(files.removed) != 1 || files.removed[0] != "/uploads/new.png" {
		t.Errorf("expected replacement upload to be removed, got %v", files.removed)
	}
}

func TestSnackService_DeleteSnack(t *testing.T) {
	svc, repo, _, b := newService(t)
	ctx := context.Background()
	seeded := testutil.SeedSnack(t, repo, "Chips", 20, models.Vegetarian)

	if err := svc.DeleteSnack(ctx, seeded.ID); err != nil {
		t.Fatalf("DeleteSnack failed: %v", err)
	}
	if _, err := svc.GetSnack(ctx, seeded.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected snack to be gone, got %v", err)
	}
	if err := svc.DeleteSnack(ctx, seeded.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected second delete to be not found, got %v", err)
	}
	if len(b.events) != 1 || b.events[0] != models.EventSnackDeleted {
		t.Errorf("expected exactly one deleted event, got %v", b.events)
	}
}

func TestSnackService_StoreErrors(t *testing.T) {
	svc, repo, _, _ := newService(t)
	ctx := context.Background()
	repo.ListSnacksError = stderrors.New("boom")
	repo.DeleteSnackError = stderrors.New("boom")

	if _, err := svc.ListSnacks(ctx); !errors.Is(err, errors.ErrStore) {
		t.Errorf("expected store error from list, got %v", err)
	}
	if err := svc.DeleteSnack(ctx, "1"); !errors.Is(err, errors.ErrStore) {
		t.Errorf("expected store error from delete, got %v", err)
	}
}

func TestSnackService_RecordsMutations(t *testing.T) {
	svc, _, _, _ := newService(t)
	rec := &recordingRecorder{}
	svc.SetRecorder(rec)
	ctx := context.Background()

	snack, _ := svc.CreateSnack(ctx, validCreate())
	svc.UpdateSnack(ctx, snack.ID, services.UpdateSnack{Name: "Big Samosa"})
	svc.DeleteSnack(ctx, "missing")

	want := []string{"create", "update", "delete"}
	if len(rec.ops) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, rec.ops)
	}
	for i := range want {
		if rec.ops[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], rec.ops[i])
		}
	}
	if rec.errs != 1 {
		t.Errorf("expected one failed mutation, got %d", rec.errs)
	}
}
