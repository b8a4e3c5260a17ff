package editor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlanBelekov/shiptrack/internal/client/api"
	"github.com/ErlanBelekov/shiptrack/internal/client/session"
)

type fakeUpdater struct {
	update func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error)
}

func (f *fakeUpdater) UpdateShipment(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
	return f.update(ctx, id, in)
}

type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	paths     []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

var bob = api.Shipment{
	ID:                 "s-1",
	RecipientName:      "Bob",
	RecipientAddress:   "1 Main Street",
	PackageDescription: "Books and a lamp",
	PackageWeight:      2.5,
	ShipmentStatus:     "pending",
}

type fixture struct {
	editor  *Editor
	list    *ShipmentList
	session *session.Manager
	rec     *recorder
}

func newFixture(update func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error)) fixture {
	sess := session.NewManager()
	sess.Login("tok")
	list := NewShipmentList(bob)
	rec := &recorder{}
	return fixture{
		editor:  New(&fakeUpdater{update: update}, sess, list, rec, rec),
		list:    list,
		session: sess,
		rec:     rec,
	}
}

func echoUpdate(_ context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
	s := bob
	s.ID = id
	s.RecipientName = *in.RecipientName
	s.RecipientAddress = *in.RecipientAddress
	s.PackageDescription = *in.PackageDescription
	return &s, nil
}

func TestOpen_SeedsBuffer(t *testing.T) {
	f := newFixture(echoUpdate)
	f.editor.Open(bob)

	assert.Equal(t, Editing, f.editor.State())
	assert.Equal(t, Buffer{
		RecipientName:      "Bob",
		RecipientAddress:   "1 Main Street",
		PackageDescription: "Books and a lamp",
		PackageWeight:      "2.5",
	}, f.editor.Buffer())
	assert.True(t, f.editor.CanSubmit())
}

func TestAddressValidation(t *testing.T) {
	f := newFixture(echoUpdate)
	f.editor.Open(bob)

	f.editor.SetRecipientAddress("1 Elm")
	assert.Equal(t, "Recipient address should be at least 8 characters long", f.editor.Errors().RecipientAddress)
	assert.False(t, f.editor.CanSubmit())

	f.editor.SetRecipientAddress("12 Elm S")
	assert.Empty(t, f.editor.Errors().RecipientAddress)
	assert.True(t, f.editor.CanSubmit())
}

// Typing one character at a time: the 7th keeps the form blocked, the 8th unblocks it.
func TestAddressValidation_ValidatesNewValue(t *testing.T) {
	f := newFixture(echoUpdate)
	f.editor.Open(bob)

	typed := ""
	for _, r := range "12 Elm St" {
		typed += string(r)
		f.editor.SetRecipientAddress(typed)

		switch len(typed) {
		case 7:
			assert.False(t, f.editor.CanSubmit(), "7 characters")
		case 8:
			assert.True(t, f.editor.CanSubmit(), "8 characters")
		}
	}
}

func TestFieldValidation(t *testing.T) {
	cases := []struct {
		name string
		set  func(e *Editor)
		get  func(FieldErrors) string
		want string
	}{
		{"short name", func(e *Editor) { e.SetRecipientName("Al") }, func(fe FieldErrors) string { return fe.RecipientName }, msgRecipientName},
		{"name ok", func(e *Editor) { e.SetRecipientName("Ali") }, func(fe FieldErrors) string { return fe.RecipientName }, ""},
		{"short description", func(e *Editor) { e.SetPackageDescription("Books") }, func(fe FieldErrors) string { return fe.PackageDescription }, msgPackageDescription},
		{"weight text", func(e *Editor) { e.SetPackageWeight("heavy") }, func(fe FieldErrors) string { return fe.PackageWeight }, msgWeightNotPositive},
		{"weight zero", func(e *Editor) { e.SetPackageWeight("0") }, func(fe FieldErrors) string { return fe.PackageWeight }, msgWeightNotPositive},
		{"weight NaN", func(e *Editor) { e.SetPackageWeight("NaN") }, func(fe FieldErrors) string { return fe.PackageWeight }, msgWeightNotPositive},
		{"weight 100", func(e *Editor) { e.SetPackageWeight("100") }, func(fe FieldErrors) string { return fe.PackageWeight }, msgWeightTooHeavy},
		{"weight 99.9", func(e *Editor) { e.SetPackageWeight("99.9") }, func(fe FieldErrors) string { return fe.PackageWeight }, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(echoUpdate)
			f.editor.Open(bob)
			tc.set(f.editor)

			assert.Equal(t, tc.want, tc.get(f.editor.Errors()))
			assert.Equal(t, tc.want == "", f.editor.CanSubmit())
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	var gotID string
	var gotIn api.ShipmentInput
	f := newFixture(func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
		gotID, gotIn = id, in
		return echoUpdate(ctx, id, in)
	})
	f.editor.Open(bob)
	f.editor.SetRecipientAddress("12 Elm Street")

	require.NoError(t, f.editor.Submit(context.Background()))

	assert.Equal(t, "s-1", gotID)
	assert.Equal(t, "12 Elm Street", *gotIn.RecipientAddress)
	assert.Equal(t, "2.5", *gotIn.PackageWeight)

	assert.Equal(t, Closed, f.editor.State())
	assert.Equal(t, Buffer{}, f.editor.Buffer())
	assert.Equal(t, []string{"Shipment updated successfully"}, f.rec.successes)

	items := f.list.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "12 Elm Street", items[0].RecipientAddress)
}

func TestSubmit_InvalidToken_LogsOut(t *testing.T) {
	f := newFixture(func(_ context.Context, _ string, _ api.ShipmentInput) (*api.Shipment, error) {
		return nil, api.ErrInvalidToken
	})
	f.editor.Open(bob)

	err := f.editor.Submit(context.Background())
	assert.ErrorIs(t, err, api.ErrInvalidToken)

	assert.False(t, f.session.Authenticated())
	assert.Empty(t, f.session.Token())
	assert.Equal(t, []string{"/home"}, f.rec.paths)
	assert.Equal(t, []string{"Session expired"}, f.rec.errors)
	assert.Equal(t, Closed, f.editor.State())
	assert.Equal(t, "Bob", f.list.Items()[0].RecipientName)
}

func TestSubmit_OtherError_StaysOpen(t *testing.T) {
	f := newFixture(func(_ context.Context, _ string, _ api.ShipmentInput) (*api.Shipment, error) {
		return nil, &api.Error{StatusCode: 404, Message: "The shipment does not exist"}
	})
	f.editor.Open(bob)
	f.editor.SetRecipientName("Carol")

	require.Error(t, f.editor.Submit(context.Background()))

	assert.Equal(t, []string{"The shipment does not exist"}, f.rec.errors)
	assert.Equal(t, Editing, f.editor.State())
	assert.Equal(t, "Carol", f.editor.Buffer().RecipientName)
	assert.True(t, f.session.Authenticated())
	assert.Empty(t, f.rec.paths)
}

func TestSubmit_RejectsDoubleSubmit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	f := newFixture(func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
		calls++
		close(started)
		<-release
		return echoUpdate(ctx, id, in)
	})
	f.editor.Open(bob)

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(context.Background()) }()

	<-started
	assert.Equal(t, Submitting, f.editor.State())
	assert.False(t, f.editor.CanSubmit())
	assert.ErrorIs(t, f.editor.Submit(context.Background()), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
}

func TestOpen_WhileSubmitting_IsRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	f := newFixture(func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
		calls++
		close(started)
		<-release
		return echoUpdate(ctx, id, in)
	})
	require.NoError(t, f.editor.Open(bob))

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(context.Background()) }()
	<-started

	other := bob
	other.ID = "s-2"
	assert.ErrorIs(t, f.editor.Open(other), ErrSubmitInFlight)
	assert.Equal(t, Submitting, f.editor.State())
	assert.False(t, f.editor.CanSubmit())
	assert.ErrorIs(t, f.editor.Submit(context.Background()), ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Closed, f.editor.State())
}

// A form cancelled and reopened while the first submit is still running keeps
// the user's new edits when that submit completes.
func TestSubmit_CompletingAfterReopen_KeepsNewBuffer(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
		close(started)
		<-release
		return echoUpdate(ctx, id, in)
	})
	require.NoError(t, f.editor.Open(bob))

	done := make(chan error, 1)
	go func() { done <- f.editor.Submit(context.Background()) }()
	<-started

	f.editor.Cancel()
	other := bob
	other.ID = "s-2"
	require.NoError(t, f.editor.Open(other))
	f.editor.SetRecipientName("Dave")

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, Editing, f.editor.State())
	assert.Equal(t, "Dave", f.editor.Buffer().RecipientName)
	assert.Equal(t, []string{"Shipment updated successfully"}, f.rec.successes)
}

func TestSubmit_SendsTrimmedWeight(t *testing.T) {
	var sent string
	f := newFixture(func(ctx context.Context, id string, in api.ShipmentInput) (*api.Shipment, error) {
		sent = *in.PackageWeight
		return echoUpdate(ctx, id, in)
	})
	require.NoError(t, f.editor.Open(bob))
	f.editor.SetPackageWeight(" 5 ")
	require.True(t, f.editor.CanSubmit())

	require.NoError(t, f.editor.Submit(context.Background()))
	assert.Equal(t, "5", sent)
}

func TestSubmit_BlockedByFieldError(t *testing.T) {
	f := newFixture(func(_ context.Context, _ string, _ api.ShipmentInput) (*api.Shipment, error) {
		t.Fatal("API must not be called with invalid input")
		return nil, nil
	})
	f.editor.Open(bob)
	f.editor.SetPackageWeight("150")

	assert.ErrorIs(t, f.editor.Submit(context.Background()), ErrInvalidInput)
}

func TestSubmit_NotOpen(t *testing.T) {
	f := newFixture(echoUpdate)
	assert.ErrorIs(t, f.editor.Submit(context.Background()), ErrNotEditing)
}

func TestCancel_ClearsWithoutCall(t *testing.T) {
	f := newFixture(func(_ context.Context, _ string, _ api.ShipmentInput) (*api.Shipment, error) {
		t.Fatal("Cancel must not call the API")
		return nil, nil
	})
	f.editor.Open(bob)
	f.editor.SetRecipientName("Carol")
	f.editor.Cancel()

	assert.Equal(t, Closed, f.editor.State())
	assert.Equal(t, Buffer{}, f.editor.Buffer())
	assert.Equal(t, "Bob", f.list.Items()[0].RecipientName)

	f.editor.SetRecipientName("Dave")
	assert.Equal(t, Buffer{}, f.editor.Buffer(), "edits after close are ignored")
}

func TestShipmentList_Merge(t *testing.T) {
	l := NewShipmentList(bob)

	updated := bob
	updated.RecipientName = "Robert"
	l.Merge(updated)
	l.Merge(api.Shipment{ID: "s-2"})

	items := l.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Robert", items[0].RecipientName)
	assert.Equal(t, "s-2", items[1].ID)
}

func TestSubmit_PropagatesNonAPIError(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	f := newFixture(func(_ context.Context, _ string, _ api.ShipmentInput) (*api.Shipment, error) {
		return nil, boom
	})
	f.editor.Open(bob)

	assert.ErrorIs(t, f.editor.Submit(context.Background()), boom)
	assert.Equal(t, []string{boom.Error()}, f.rec.errors)
}
