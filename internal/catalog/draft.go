package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/errors"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// DraftKind identifies which draft, if any, is open
type DraftKind int

const (
	DraftNone DraftKind = iota
	DraftEditing
	DraftUploading
)

func (k DraftKind) String() string {
	switch k {
	case DraftEditing:
		return "editing"
	case DraftUploading:
		return "uploading"
	default:
		return "none"
	}
}

// EditDraft is an inline price edit of one snack
type EditDraft struct {
	Category models.Category
	ID       string
	Price    string
}

// UploadDraft is the new-snack form
type UploadDraft struct {
	Category   models.Category
	Name       string
	Price      string
	File       *File
	PreviewRef string
}

// Confirmer asks the user to approve a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// DeletePrompt is the question put to the Confirmer before a delete
const DeletePrompt = "Delete this snack?"

// draft is the single open draft. gen changes whenever the draft is
// replaced; cancel is set while its request is in flight.
type draft struct {
	kind    DraftKind
	gen     uint64
	edit    EditDraft
	upload  UploadDraft
	preview Preview
	cancel  context.CancelFunc
}

// setDraft replaces the open draft, canceling its request and releasing
// its preview. Callers hold m.mu.
func (m *Model) setDraft(d draft) {
	if m.draft.cancel != nil {
		m.draft.cancel()
	}
	if m.draft.preview != nil {
		if err := m.draft.preview.Release(); err != nil {
			m.log.Warn("Failed to release upload preview", "error", err)
		}
	}
	m.draftGen++
	d.gen = m.draftGen
	m.draft = d
}

// DraftKind returns which draft is open
func (m *Model) DraftKind() DraftKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.kind
}

// Busy reports whether the open draft has a request in flight
func (m *Model) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.cancel != nil
}

// Editing returns the open edit draft
func (m *Model) Editing() (EditDraft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.edit, m.draft.kind == DraftEditing
}

// Uploading returns the open upload draft
func (m *Model) Uploading() (UploadDraft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.upload, m.draft.kind == DraftUploading
}

func invalidPrice(err error) error {
	return errors.Wrap(err, errors.ErrValidation, "Enter a valid price.")
}

// StartEdit opens a price edit for the snack id in category, seeded with its
// current price. An idle edit of another snack is replaced.
func (m *Model) StartEdit(category models.Category, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch {
	case m.draft.cancel != nil:
		return ErrBusy
	case m.draft.kind == DraftUploading:
		return ErrDraftOpen
	}

	for _, s := range m.catalog[category] {
		if s.ID == id {
			m.setDraft(draft{
				kind: DraftEditing,
				edit: EditDraft{Category: category, ID: id, Price: strconv.FormatFloat(s.Price, 'f', -1, 64)},
			})
			return nil
		}
	}
	return errors.NotFound("Snack not found")
}

// SetDraftPrice replaces the edit draft's price text
func (m *Model) SetDraftPrice(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft.kind != DraftEditing {
		return ErrNoDraft
	}
	if m.draft.cancel != nil {
		return ErrBusy
	}
	m.draft.edit.Price = s
	return nil
}

// CommitEdit sends the draft price to the server. An unparsable or negative
// price is rejected without a request and the draft stays open. The local
// price changes only after the server confirms; on failure the draft stays
// open for another try.
func (m *Model) CommitEdit(ctx context.Context) error {
	m.mu.Lock()
	if err := m.checkDraft(DraftEditing); err != nil {
		m.mu.Unlock()
		return err
	}
	edit := m.draft.edit
	price, err := models.ParsePrice(edit.Price)
	if err != nil {
		m.mu.Unlock()
		return invalidPrice(err)
	}
	callCtx, done := m.call(ctx)
	m.draft.cancel = done
	gen := m.draft.gen
	m.mu.Unlock()

	var updated *models.Snack
	if err = callCtx.Err(); err != nil {
		err = errors.Transport("request canceled", err)
	} else {
		updated, err = m.api.Update(callCtx, edit.ID, models.SnackPatch{Price: &price}, nil)
	}
	done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.draft.gen != gen {
		m.log.Debug("Discarding stale price update", "id", edit.ID)
		return ErrSuperseded
	}
	m.draft.cancel = nil
	if err != nil {
		m.logFailure("Error updating price", err, "id", edit.ID)
		return err
	}

	confirmed := price
	if updated != nil {
		confirmed = updated.Price
	}
	items := m.catalog[edit.Category]
	for i := range items {
		if items[i].ID == edit.ID {
			items[i].Price = confirmed
		}
	}
	m.setDraft(draft{})
	return nil
}

// CancelEdit discards the edit draft without contacting the server. A
// request already in flight is canceled and its result ignored.
func (m *Model) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft.kind == DraftEditing {
		m.setDraft(draft{})
	}
}

// checkDraft verifies that a draft of kind is open and idle. Callers hold m.mu.
func (m *Model) checkDraft(kind DraftKind) error {
	switch {
	case m.closed:
		return ErrClosed
	case m.draft.kind != kind:
		return ErrNoDraft
	case m.draft.cancel != nil:
		return ErrBusy
	}
	return nil
}

// OpenUpload opens the new-snack form with default values. Reopening an
// idle form resets it.
func (m *Model) OpenUpload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch {
	case m.draft.cancel != nil:
		return ErrBusy
	case m.draft.kind == DraftEditing:
		return ErrDraftOpen
	}
	m.setDraft(draft{
		kind:   DraftUploading,
		upload: UploadDraft{Category: models.Categories[0]},
	})
	return nil
}

func (m *Model) updateUpload(fn func(u *UploadDraft)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkDraft(DraftUploading); err != nil {
		return err
	}
	fn(&m.draft.upload)
	return nil
}

// SetUploadCategory selects the category of the new snack
func (m *Model) SetUploadCategory(c models.Category) error {
	if !c.Valid() {
		return errors.Validationf("Unknown category %q", c)
	}
	return m.updateUpload(func(u *UploadDraft) { u.Category = c })
}

// SetUploadName sets the name of the new snack
func (m *Model) SetUploadName(name string) error {
	return m.updateUpload(func(u *UploadDraft) { u.Name = name })
}

// SetUploadPrice sets the price text of the new snack
func (m *Model) SetUploadPrice(price string) error {
	return m.updateUpload(func(u *UploadDraft) { u.Price = price })
}

// ChooseFile attaches the image for the new snack. The previous preview is
// released before a new one is created. Choosing an empty file is ignored.
func (m *Model) ChooseFile(f File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkDraft(DraftUploading); err != nil {
		return err
	}
	if f.Name == "" && len(f.Data) == 0 {
		return nil
	}

	if m.draft.preview != nil {
		if err := m.draft.preview.Release(); err != nil {
			m.log.Warn("Failed to release upload preview", "error", err)
		}
		m.draft.preview = nil
	}
	m.draft.upload.PreviewRef = ""
	m.draft.upload.File = &f

	if m.previews == nil {
		return nil
	}
	p, err := m.previews.NewPreview(f)
	if err != nil {
		m.log.Warn("Failed to create upload preview", "file", f.Name, "error", err)
		return nil
	}
	m.draft.preview = p
	m.draft.upload.PreviewRef = p.Ref()
	return nil
}

// SubmitUpload creates the snack on the server. Name, price and file are
// required. On success the new snack is prepended to its category and the
// form closes; on failure the form stays open with its values.
func (m *Model) SubmitUpload(ctx context.Context) error {
	m.mu.Lock()
	if err := m.checkDraft(DraftUploading); err != nil {
		m.mu.Unlock()
		return err
	}
	u := m.draft.upload
	name := strings.TrimSpace(u.Name)
	if name == "" || strings.TrimSpace(u.Price) == "" || u.File == nil {
		m.mu.Unlock()
		return errors.Validation("Please fill all fields & select a photo.")
	}
	price, err := models.ParsePrice(u.Price)
	if err != nil {
		m.mu.Unlock()
		return invalidPrice(err)
	}
	callCtx, done := m.call(ctx)
	m.draft.cancel = done
	gen := m.draft.gen
	m.mu.Unlock()

	var created *models.Snack
	if err = callCtx.Err(); err != nil {
		err = errors.Transport("request canceled", err)
	} else {
		created, err = m.api.Create(callCtx, models.Snack{Name: name, Price: price, Category: u.Category}, u.File)
	}
	done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.draft.gen != gen {
		m.log.Debug("Discarding stale upload", "name", name)
		return ErrSuperseded
	}
	m.draft.cancel = nil
	if err != nil {
		m.logFailure("Error uploading snack", err, "name", name)
		return err
	}

	cat := created.Category
	if !cat.Valid() {
		cat = u.Category
	}
	m.catalog[cat] = append([]models.Snack{*created}, m.catalog[cat]...)
	m.setDraft(draft{})
	return nil
}

// CloseUpload discards the new-snack form without contacting the server. A
// request already in flight is canceled and its result ignored.
func (m *Model) CloseUpload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft.kind == DraftUploading {
		m.setDraft(draft{})
	}
}

// Delete removes the snack id from category after confirm approves it. The
// snack leaves the local catalog only once the server confirms. A declined
// confirmation returns nil without a request.
func (m *Model) Delete(ctx context.Context, category models.Category, id string, confirm Confirmer) error {
	if confirm == nil {
		return errors.Validation("Delete needs confirmation")
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	found := false
	for _, s := range m.catalog[category] {
		if s.ID == id {
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return errors.NotFound("Snack not found")
	}

	if !confirm.Confirm(DeletePrompt) {
		return nil
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.mu.Unlock()

	callCtx, done := m.call(ctx)
	err := m.api.Delete(callCtx, id)
	done()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("Discarding stale delete", "id", id)
		return ErrSuperseded
	}
	if err != nil {
		m.logFailure("Delete error", err, "id", id)
		return err
	}

	items := m.catalog[category]
	kept := items[:0:0]
	for _, s := range items {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	m.catalog[category] = kept
	delete(m.selected, id)
	if m.draft.kind == DraftEditing && m.draft.edit.ID == id {
		m.setDraft(draft{})
	}
	return nil
}
