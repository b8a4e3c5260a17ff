package repository

import (
	"context"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

// ShipmentRepository is the Shipment Store. Usecases depend on this
// interface so tests can substitute a fake.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error)

	// ListWithOwner returns every shipment with Owner populated.
	ListWithOwner(ctx context.Context) ([]*domain.Shipment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error)

	GetWithOwner(ctx context.Context, id string) (*domain.Shipment, error)
	GetTrackingView(ctx context.Context, id string) (*domain.TrackingView, error)

	// Update applies patch and reports domain.ErrShipmentNotFound when no row matched.
	Update(ctx context.Context, id string, patch domain.ShipmentPatch) error
	Delete(ctx context.Context, id string) error
}

// TrackingCache holds public tracking projections keyed by shipment ID.
// Get returns (nil, nil) on a miss.
type TrackingCache interface {
	Get(ctx context.Context, id string) (*domain.TrackingView, error)
	Set(ctx context.Context, v *domain.TrackingView) error
	Invalidate(ctx context.Context, id string) error
}
