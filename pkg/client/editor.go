package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmutasa/herdmarket-server/internal/models"
)

var (
	// ErrLastRow is returned when removal would leave the editor below its
	// minimum row count
	ErrLastRow = errors.New("cannot remove the last remaining row")
	// ErrBusy is returned when a submit is already in flight
	ErrBusy = errors.New("a request is already in progress")
	// ErrNotConfirmed is returned when a destructive action runs without
	// its confirmation step
	ErrNotConfirmed = errors.New("action has not been confirmed")
	// ErrNoDraft is returned when a submit runs with no draft rows staged
	ErrNoDraft = errors.New("no draft row to submit")
)

// Attachment is a locally selected photo with a preview release hook. The
// hook frees whatever preview resource the UI allocated for the thumbnail.
type Attachment struct {
	Name    string
	Content []byte
	release func()
}

// NewAttachment wraps selected file bytes; release may be nil
func NewAttachment(name string, content []byte, release func()) Attachment {
	return Attachment{Name: name, Content: content, release: release}
}

// Release frees the attachment's preview resource
func (a Attachment) Release() {
	if a.release != nil {
		a.release()
	}
}

// CollectionEditor manages the inline offspring rows of one breeding event:
// an array of local drafts with add/remove/edit controls, submitted either
// as a batch or one row at a time with photos.
type CollectionEditor struct {
	client  *Client
	eventID string

	// MinRows is the smallest allowed draft count; removal stops there
	MinRows int

	drafts      []models.OffspringDraft
	attachments []Attachment

	editingID    string
	keepPhotoIDs []string

	pendingDeleteID string
	processing      bool
}

// NewCollectionEditor creates an editor for one breeding event, seeded with
// MinRows default rows
func NewCollectionEditor(c *Client, eventID string) *CollectionEditor {
	e := &CollectionEditor{
		client:  c,
		eventID: eventID,
		MinRows: 1,
	}
	e.resetDrafts()
	return e
}

// defaultDraft is a fresh row with sensible defaults: today's date and the
// first enum option
func defaultDraft() models.OffspringDraft {
	return models.OffspringDraft{
		Species:   "goat",
		Sex:       "male",
		BirthDate: time.Now().Format("2006-01-02"),
	}
}

func (e *CollectionEditor) resetDrafts() {
	e.drafts = e.drafts[:0]
	for i := 0; i < e.MinRows; i++ {
		e.drafts = append(e.drafts, defaultDraft())
	}
}

// Drafts returns the current draft rows
func (e *CollectionEditor) Drafts() []models.OffspringDraft {
	return e.drafts
}

// Processing reports whether a submit is in flight
func (e *CollectionEditor) Processing() bool {
	return e.processing
}

// AddDraftRow appends one default row. No server call.
func (e *CollectionEditor) AddDraftRow() {
	e.drafts = append(e.drafts, defaultDraft())
}

// RemoveDraftRow removes the row at index. Removal is refused when it would
// leave fewer than MinRows rows. No server call.
func (e *CollectionEditor) RemoveDraftRow(index int) error {
	if index < 0 || index >= len(e.drafts) {
		return fmt.Errorf("no draft row at index %d", index)
	}
	if len(e.drafts) <= e.MinRows {
		return ErrLastRow
	}
	e.drafts = append(e.drafts[:index], e.drafts[index+1:]...)
	return nil
}

// UpdateDraftField sets one field on one row, leaving every other row
// untouched. No server call.
func (e *CollectionEditor) UpdateDraftField(index int, field, value string) error {
	if index < 0 || index >= len(e.drafts) {
		return fmt.Errorf("no draft row at index %d", index)
	}

	d := &e.drafts[index]
	switch field {
	case "name":
		d.Name = value
	case "species":
		d.Species = value
	case "breed":
		d.Breed = value
	case "sex":
		d.Sex = value
	case "ear_tag":
		d.EarTag = value
	case "birth_date":
		d.BirthDate = value
	case "markings":
		d.Markings = value
	default:
		return fmt.Errorf("unknown draft field %q", field)
	}
	return nil
}

// SubmitBatch sends every draft row as one request. On success the drafts
// are reset; on failure they are left intact for a manual retry.
func (e *CollectionEditor) SubmitBatch(ctx context.Context) error {
	if e.processing {
		return ErrBusy
	}
	e.processing = true
	defer func() { e.processing = false }()

	if err := e.client.CreateOffspringBatch(ctx, e.eventID, e.drafts); err != nil {
		return err
	}
	e.resetDrafts()
	return nil
}

// AddAttachment stages one selected photo for the single-row submit path
func (e *CollectionEditor) AddAttachment(a Attachment) {
	e.attachments = append(e.attachments, a)
}

// RemoveAttachment unstages one photo and releases its preview
func (e *CollectionEditor) RemoveAttachment(index int) error {
	if index < 0 || index >= len(e.attachments) {
		return fmt.Errorf("no attachment at index %d", index)
	}
	e.attachments[index].Release()
	e.attachments = append(e.attachments[:index], e.attachments[index+1:]...)
	return nil
}

// Attachments returns the staged photos
func (e *CollectionEditor) Attachments() []Attachment {
	return e.attachments
}

// SubmitSingle sends the first draft row with its staged photos as one
// multipart request. On success the draft and attachments are reset and
// every preview is released; on failure both are preserved for a retry.
func (e *CollectionEditor) SubmitSingle(ctx context.Context) (*models.AnimalWithPhotos, error) {
	if len(e.drafts) == 0 {
		return nil, ErrNoDraft
	}
	if e.processing {
		return nil, ErrBusy
	}
	e.processing = true
	defer func() { e.processing = false }()

	files := make([]FilePart, 0, len(e.attachments))
	for _, a := range e.attachments {
		files = append(files, FilePart{Field: "photos[]", Name: a.Name, Content: a.Content})
	}

	created, err := e.client.CreateOffspring(ctx, e.eventID, e.drafts[0], files)
	if err != nil {
		return nil, err
	}

	for _, a := range e.attachments {
		a.Release()
	}
	e.attachments = e.attachments[:0]
	e.resetDrafts()
	return created, nil
}

// BeginEdit switches an existing child into edit-in-place mode. The draft is
// rebuilt from the child's current server values, with the date-only string
// re-derived from the stored timestamp and existing photos kept by reference.
func (e *CollectionEditor) BeginEdit(child models.AnimalWithPhotos) {
	draft := models.OffspringDraft{
		Name:     child.Name,
		Species:  child.Species,
		Breed:    child.Breed,
		Sex:      child.Sex,
		Markings: child.Markings,
		WeightKg: child.WeightKg,
	}
	if child.EarTag != nil {
		draft.EarTag = *child.EarTag
	}
	if child.BirthDate != nil {
		draft.BirthDate = child.BirthDate.Format("2006-01-02")
	}

	e.editingID = child.ID
	e.drafts = []models.OffspringDraft{draft}
	e.keepPhotoIDs = e.keepPhotoIDs[:0]
	for _, photo := range child.Photos {
		e.keepPhotoIDs = append(e.keepPhotoIDs, photo.ID)
	}
}

// EditingID returns the id of the child being edited, or ""
func (e *CollectionEditor) EditingID() string {
	return e.editingID
}

// DropKeptPhoto removes an existing photo reference from the edit, so the
// server deletes it on submit
func (e *CollectionEditor) DropKeptPhoto(photoID string) {
	kept := e.keepPhotoIDs[:0]
	for _, id := range e.keepPhotoIDs {
		if id != photoID {
			kept = append(kept, id)
		}
	}
	e.keepPhotoIDs = kept
}

// SubmitEdit sends the edit as a method-override update, re-sending any
// newly attached photos alongside the unchanged existing-photo references
func (e *CollectionEditor) SubmitEdit(ctx context.Context) (*models.AnimalWithPhotos, error) {
	if e.editingID == "" {
		return nil, errors.New("no child is being edited")
	}
	if len(e.drafts) == 0 {
		return nil, ErrNoDraft
	}
	if e.processing {
		return nil, ErrBusy
	}
	e.processing = true
	defer func() { e.processing = false }()

	files := make([]FilePart, 0, len(e.attachments))
	for _, a := range e.attachments {
		files = append(files, FilePart{Field: "photos[]", Name: a.Name, Content: a.Content})
	}

	updated, err := e.client.UpdateOffspring(ctx, e.editingID, e.drafts[0], files, e.keepPhotoIDs)
	if err != nil {
		return nil, err
	}

	for _, a := range e.attachments {
		a.Release()
	}
	e.attachments = e.attachments[:0]
	e.editingID = ""
	e.keepPhotoIDs = e.keepPhotoIDs[:0]
	e.resetDrafts()
	return updated, nil
}

// RequestDeleteChild arms the confirmation step for one child
func (e *CollectionEditor) RequestDeleteChild(childID string) {
	e.pendingDeleteID = childID
}

// CancelDelete disarms the pending confirmation with no side effect
func (e *CollectionEditor) CancelDelete() {
	e.pendingDeleteID = ""
}

// ConfirmDeleteChild deletes the child armed by RequestDeleteChild
func (e *CollectionEditor) ConfirmDeleteChild(ctx context.Context, childID string) error {
	if e.pendingDeleteID != childID {
		return ErrNotConfirmed
	}
	e.pendingDeleteID = ""
	return e.client.DeleteOffspring(ctx, childID)
}

// ShowBatchForm reports whether the detail view should render the multi-row
// batch-add form: only before any offspring exist and before an actual
// kidding date has been recorded. With a kidding date set and no offspring,
// the view shows "no offspring recorded" instead.
func ShowBatchForm(detail *models.BreedingEventDetail) bool {
	return len(detail.Offspring) == 0 && detail.ActualKiddingDate == nil
}

// DeleteEventWarning returns the warning text the confirmation dialog must
// show before deleting an event that has offspring. Offspring survive the
// deletion; only their link to the event is cleared.
func DeleteEventWarning(detail *models.BreedingEventDetail) string {
	if detail.OffspringCount == 0 {
		return ""
	}
	return fmt.Sprintf(
		"This breeding event has %d offspring. They will not be deleted, but their link to this event will be removed.",
		detail.OffspringCount)
}
