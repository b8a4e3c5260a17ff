package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	create      func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

type fakeShipmentRepo struct {
	create          func(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error)
	listWithOwner   func(ctx context.Context) ([]*domain.Shipment, error)
	listByUser      func(ctx context.Context, userID string) ([]*domain.Shipment, error)
	getWithOwner    func(ctx context.Context, id string) (*domain.Shipment, error)
	getTrackingView func(ctx context.Context, id string) (*domain.TrackingView, error)
	update          func(ctx context.Context, id string, patch domain.ShipmentPatch) error
	delete          func(ctx context.Context, id string) error
}

func (r *fakeShipmentRepo) Create(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error) {
	return r.create(ctx, s)
}

func (r *fakeShipmentRepo) ListWithOwner(ctx context.Context) ([]*domain.Shipment, error) {
	return r.listWithOwner(ctx)
}

func (r *fakeShipmentRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error) {
	return r.listByUser(ctx, userID)
}

func (r *fakeShipmentRepo) GetWithOwner(ctx context.Context, id string) (*domain.Shipment, error) {
	return r.getWithOwner(ctx, id)
}

func (r *fakeShipmentRepo) GetTrackingView(ctx context.Context, id string) (*domain.TrackingView, error) {
	return r.getTrackingView(ctx, id)
}

func (r *fakeShipmentRepo) Update(ctx context.Context, id string, patch domain.ShipmentPatch) error {
	return r.update(ctx, id, patch)
}

func (r *fakeShipmentRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

// memCache is a map-backed TrackingCache that records invalidations.
type memCache struct {
	entries     map[string]*domain.TrackingView
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*domain.TrackingView{}}
}

func (c *memCache) Get(_ context.Context, id string) (*domain.TrackingView, error) {
	return c.entries[id], nil
}

func (c *memCache) Set(_ context.Context, v *domain.TrackingView) error {
	c.entries[v.ID] = v
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}
