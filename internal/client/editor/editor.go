// Package editor drives the edit-shipment form: it buffers field values,
// validates each edit, submits through the API client and reacts to an
// expired session.
package editor

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ErlanBelekov/shiptrack/internal/client/api"
)

const (
	minRecipientName      = 3
	minRecipientAddress   = 8
	minPackageDescription = 8
	maxPackageWeightKG    = 100.0

	// HomePath is where the user is sent when the session expires.
	HomePath = "/home"
)

const (
	msgRecipientName      = "Recipient name should be at least 3 characters long"
	msgRecipientAddress   = "Recipient address should be at least 8 characters long"
	msgPackageDescription = "Package description should be at least 8 characters long"
	msgWeightNotPositive  = "Package weight should be a positive number"
	msgWeightTooHeavy     = "Package weight should be less than 100 kg"

	msgUpdated        = "Shipment updated successfully"
	msgSessionExpired = "Session expired"
)

var (
	ErrSubmitInFlight = errors.New("editor: submit already in flight")
	ErrNotEditing     = errors.New("editor: no shipment is open")
	ErrInvalidInput   = errors.New("editor: fix the highlighted fields first")
)

type State int

const (
	Closed State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// Buffer holds the form values exactly as typed.
type Buffer struct {
	RecipientName      string
	RecipientAddress   string
	PackageDescription string
	PackageWeight      string
}

// FieldErrors carries one message per field; empty means valid.
type FieldErrors struct {
	RecipientName      string
	RecipientAddress   string
	PackageDescription string
	PackageWeight      string
}

func (e FieldErrors) Any() bool {
	return e.RecipientName != "" || e.RecipientAddress != "" ||
		e.PackageDescription != "" || e.PackageWeight != ""
}

type shipmentUpdater interface {
	UpdateShipment(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error)
}

type sessionEnder interface {
	Logout()
}

// Notifier shows transient messages (toasts in a UI, lines in a CLI).
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Navigator interface {
	Navigate(path string)
}

type Editor struct {
	api     shipmentUpdater
	session sessionEnder
	list    *ShipmentList
	notify  Notifier
	nav     Navigator

	mu    sync.Mutex
	state State
	gen   uint64 // bumped by every Open and reset
	id    string
	buf   Buffer
	errs  FieldErrors
}

func New(client shipmentUpdater, session sessionEnder, list *ShipmentList, notify Notifier, nav Navigator) *Editor {
	return &Editor{
		api:     client,
		session: session,
		list:    list,
		notify:  notify,
		nav:     nav,
	}
}

// Open seeds the buffer from s. Seeded values are not validated until edited.
// It reports ErrSubmitInFlight and changes nothing while a submit is running.
func (e *Editor) Open(s api.Shipment) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Submitting {
		return ErrSubmitInFlight
	}

	e.gen++
	e.state = Editing
	e.id = s.ID
	e.buf = Buffer{
		RecipientName:      s.RecipientName,
		RecipientAddress:   s.RecipientAddress,
		PackageDescription: s.PackageDescription,
		PackageWeight:      strconv.FormatFloat(s.PackageWeight, 'f', -1, 64),
	}
	e.errs = FieldErrors{}
	return nil
}

func (e *Editor) SetRecipientName(v string) {
	e.edit(func() {
		e.buf.RecipientName = v
		e.errs.RecipientName = minLength(v, minRecipientName, msgRecipientName)
	})
}

func (e *Editor) SetRecipientAddress(v string) {
	e.edit(func() {
		e.buf.RecipientAddress = v
		e.errs.RecipientAddress = minLength(v, minRecipientAddress, msgRecipientAddress)
	})
}

func (e *Editor) SetPackageDescription(v string) {
	e.edit(func() {
		e.buf.PackageDescription = v
		e.errs.PackageDescription = minLength(v, minPackageDescription, msgPackageDescription)
	})
}

func (e *Editor) SetPackageWeight(v string) {
	e.edit(func() {
		e.buf.PackageWeight = v
		e.errs.PackageWeight = validateWeight(v)
	})
}

// edit applies fn only while the form is editable.
func (e *Editor) edit(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Editing {
		return
	}
	fn()
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Editor) Buffer() Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf
}

func (e *Editor) Errors() FieldErrors {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errs
}

// CanSubmit is false while any field is flagged or a submit is running.
func (e *Editor) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Editing && !e.errs.Any()
}

// Submit sends the buffer as an update. On success the shared list is
// updated and the editor closes. An expired token logs the session out and
// navigates home. Any other failure leaves the form open for another try.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.state == Submitting:
		e.mu.Unlock()
		return ErrSubmitInFlight
	case e.state != Editing:
		e.mu.Unlock()
		return ErrNotEditing
	case e.errs.Any():
		e.mu.Unlock()
		return ErrInvalidInput
	}
	e.state = Submitting
	gen, id, buf := e.gen, e.id, e.buf
	e.mu.Unlock()

	weight := strings.TrimSpace(buf.PackageWeight)
	updated, err := e.api.UpdateShipment(ctx, id, api.ShipmentInput{
		RecipientName:      &buf.RecipientName,
		RecipientAddress:   &buf.RecipientAddress,
		PackageDescription: &buf.PackageDescription,
		PackageWeight:      &weight,
	})

	switch {
	case err == nil:
		e.list.Merge(*updated)
		e.resetIfCurrent(gen)
		e.notify.Success(msgUpdated)
		return nil

	case errors.Is(err, api.ErrInvalidToken):
		e.session.Logout()
		e.resetIfCurrent(gen)
		e.nav.Navigate(HomePath)
		e.notify.Error(msgSessionExpired)
		return err

	default:
		e.mu.Lock()
		if e.gen == gen && e.state == Submitting {
			e.state = Editing
		}
		e.mu.Unlock()
		e.notify.Error(err.Error())
		return err
	}
}

// Cancel discards the buffer without calling the API.
func (e *Editor) Cancel() {
	e.reset()
}

// resetIfCurrent closes the form only if it still shows the submitted
// buffer; a form cancelled and reopened mid-submit is left alone.
func (e *Editor) resetIfCurrent(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.resetLocked()
	}
}

func (e *Editor) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Editor) resetLocked() {
	e.gen++
	e.state = Closed
	e.id = ""
	e.buf = Buffer{}
	e.errs = FieldErrors{}
}

func minLength(v string, n int, msg string) string {
	if utf8.RuneCountInString(v) < n {
		return msg
	}
	return ""
}

func validateWeight(v string) string {
	w, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(w) || w <= 0 {
		return msgWeightNotPositive
	}
	if w >= maxPackageWeightKG {
		return msgWeightTooHeavy
	}
	return ""
}
