package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/peekapeak/peekctl/internal/api"
	"github.com/peekapeak/peekctl/internal/exif"
	"github.com/peekapeak/peekctl/internal/logger"
	"github.com/peekapeak/peekctl/internal/peaksearch"
)

// Wizard steps
const (
	StepPhoto = iota
	StepReview
	StepUpload
	StepDone

	stepCount
)

var (
	// ErrNoPhoto is returned when a step needs a draft but no photo has
	// been attached yet
	ErrNoPhoto = errors.New("no photo attached")

	// ErrCapturedAtRequired blocks advancing past review until a capture
	// time is set
	ErrCapturedAtRequired = errors.New("captured date and time is required")

	// ErrSubmitInFlight guards against duplicate creates while a
	// submission is pending
	ErrSubmitInFlight = errors.New("a submission is already in flight")
)

// Submitter performs the create-photo call with a finalized draft
type Submitter interface {
	UploadPhoto(ctx context.Context, file io.Reader, filename string, create api.SummitPhotoCreate) (api.SummitPhoto, error)
}

// Wizard owns the ephemeral state of one upload dialog: the draft, the
// step sequencer, the peak searcher and the submission guard. It is
// created on dialog open and fully reset on close.
type Wizard struct {
	submitter  Submitter
	searcher   *peaksearch.Searcher
	stepper    *Stepper
	mu         sync.Mutex
	draft      *Draft
	submitting bool
	result     *api.SummitPhoto
}

// NewWizard creates a wizard at the photo step with no draft
func NewWizard(submitter Submitter, searcher *peaksearch.Searcher) *Wizard {
	return &Wizard{
		submitter: submitter,
		searcher:  searcher,
		stepper:   NewStepper(stepCount),
	}
}

// Step returns the active wizard step
func (w *Wizard) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepper.Current()
}

// Draft returns the working record, or nil before a photo is attached
func (w *Wizard) Draft() *Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// AttachPhoto starts a fresh draft from an image, merges whatever EXIF
// metadata the file carries and advances to review. Attaching again
// before advancing replaces the previous draft outright (last drop
// wins).
func (w *Wizard) AttachPhoto(fileName string, data []byte) *Draft {
	meta := exif.Extract(bytes.NewReader(data))

	draft := NewDraft(fileName, data)
	draft.applyMetadata(meta)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft = draft
	w.syncSearcher()
	if w.stepper.Current() == StepPhoto {
		w.stepper.Next()
	}
	logger.Debug("Attached %s (capturedAt=%v, location=%v)", fileName, meta.CapturedAt != nil, meta.HasLocation())
	return draft
}

// SetLocation edits the draft coordinate and keeps the searcher's origin
// in sync. A material move clears the peak selection on both sides.
func (w *Wizard) SetLocation(lat, lng float64, alt *float64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrNoPhoto
	}
	hadPeak := w.draft.Peak()
	w.draft.SetLocation(lat, lng, alt)
	if hadPeak != nil && w.draft.Peak() == nil {
		w.searcher.ClearSelection()
	}
	w.syncSearcher()
	return nil
}

// ClearLocation removes the draft coordinate, the peak selection and
// disables peak search
func (w *Wizard) ClearLocation() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrNoPhoto
	}
	w.draft.ClearLocation()
	w.searcher.ClearSelection()
	w.syncSearcher()
	return nil
}

// SelectPeak toggles a peak candidate through the searcher and mirrors
// the outcome into the draft
func (w *Wizard) SelectPeak(peak api.Peak) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrNoPhoto
	}
	if _, _, ok := w.draft.Location(); !ok {
		return peaksearch.ErrNoLocation
	}
	w.draft.SetPeak(w.searcher.Toggle(peak))
	return nil
}

// ConfirmReview validates the draft and advances from review to the
// upload step. Validation fires here, on the attempted advance, not on
// every edit.
func (w *Wizard) ConfirmReview() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.draft == nil {
		return ErrNoPhoto
	}
	if _, ok := w.draft.CapturedAt(); !ok {
		return ErrCapturedAtRequired
	}
	if w.stepper.Current() == StepReview {
		w.stepper.Next()
	}
	return nil
}

// Back retreats one step
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stepper.Back()
}

// Submit performs the create-photo call. Exactly one submission may be
// in flight; on failure the draft is left intact and the wizard stays on
// the upload step so the user can retry. A draft without a capture time
// is refused here too, so skipping the review gate cannot produce a
// zero-timestamp record.
func (w *Wizard) Submit(ctx context.Context) (api.SummitPhoto, error) {
	w.mu.Lock()
	if w.draft == nil {
		w.mu.Unlock()
		return api.SummitPhoto{}, ErrNoPhoto
	}
	if _, ok := w.draft.CapturedAt(); !ok {
		w.mu.Unlock()
		return api.SummitPhoto{}, ErrCapturedAtRequired
	}
	if w.submitting {
		w.mu.Unlock()
		return api.SummitPhoto{}, ErrSubmitInFlight
	}
	w.submitting = true
	draft := w.draft
	w.mu.Unlock()

	photo, err := w.submitter.UploadPhoto(ctx, bytes.NewReader(draft.FileData()), draft.FileName(), draft.CreateRequest())

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false

	if err != nil {
		logger.Warn("Photo upload failed: %v", err)
		return api.SummitPhoto{}, err
	}

	w.result = &photo
	if w.stepper.Current() == StepUpload {
		w.stepper.Next()
	}
	return photo, nil
}

// Result returns the server-created photo record after a successful
// submission
func (w *Wizard) Result() *api.SummitPhoto {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Close discards the draft and resets every piece of per-dialog state
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.draft = nil
	w.result = nil
	w.submitting = false
	w.stepper.Reset()
	w.searcher.Close()
}

// syncSearcher mirrors the draft's coordinate into the searcher; called
// with w.mu held
func (w *Wizard) syncSearcher() {
	if lat, lng, ok := w.draft.Location(); ok {
		w.searcher.SetLocation(lat, lng)
	} else {
		w.searcher.ClearLocation()
	}
}
