package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ErlanBelekov/shiptrack/internal/auth"
	"github.com/ErlanBelekov/shiptrack/internal/domain"
	"github.com/ErlanBelekov/shiptrack/internal/metrics"
	"github.com/ErlanBelekov/shiptrack/internal/repository"
)

type ShipmentUsecase struct {
	repo   repository.ShipmentRepository
	users  repository.UserRepository
	cache  repository.TrackingCache // nil disables caching
	logger *slog.Logger
}

func NewShipmentUsecase(repo repository.ShipmentRepository, users repository.UserRepository, cache repository.TrackingCache, logger *slog.Logger) *ShipmentUsecase {
	return &ShipmentUsecase{
		repo:   repo,
		users:  users,
		cache:  cache,
		logger: logger.With("component", "shipment_usecase"),
	}
}

type CreateShipmentInput struct {
	RecipientName      string
	RecipientAddress   string
	PackageDescription string
	PackageWeight      float64
	Status             domain.ShipmentStatus
	UserID             *string // defaults to the caller
}

func (u *ShipmentUsecase) List(ctx context.Context) ([]*domain.Shipment, error) {
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return nil, domain.ErrUnauthenticated
	}

	shipments, err := u.repo.ListWithOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}

// GetByTrackingID is the public lookup. It never requires an identity.
func (u *ShipmentUsecase) GetByTrackingID(ctx context.Context, id string) (*domain.TrackingView, error) {
	id, ok := canonicalID(id)
	if !ok {
		return nil, domain.ErrInvalidTrackingID
	}

	if u.cache != nil {
		v, err := u.cache.Get(ctx, id)
		if err != nil {
			u.logger.WarnContext(ctx, "tracking cache get", "shipment_id", id, "error", err)
		} else if v != nil {
			metrics.TrackingCacheLookups.WithLabelValues("hit").Inc()
			return v, nil
		}
		metrics.TrackingCacheLookups.WithLabelValues("miss").Inc()
	}

	v, err := u.repo.GetTrackingView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tracking view: %w", err)
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, v); err != nil {
			u.logger.WarnContext(ctx, "tracking cache set", "shipment_id", id, "error", err)
		}
	}
	return v, nil
}

func (u *ShipmentUsecase) Create(ctx context.Context, input CreateShipmentInput) (*domain.Shipment, error) {
	caller, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	if input.Status == "" {
		input.Status = domain.StatusPending
	}
	owner := input.UserID
	if owner == nil {
		owner = &caller.UserID
	}

	created, err := u.repo.Create(ctx, &domain.Shipment{
		RecipientName:      input.RecipientName,
		RecipientAddress:   input.RecipientAddress,
		PackageDescription: input.PackageDescription,
		PackageWeight:      input.PackageWeight,
		Status:             input.Status,
		UserID:             owner,
	})
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	metrics.ShipmentMutationsTotal.WithLabelValues("create").Inc()
	return created, nil
}

// Update applies patch and returns the refreshed shipment with its owner.
// Concurrent updates to the same ID are last-writer-wins.
func (u *ShipmentUsecase) Update(ctx context.Context, id string, patch domain.ShipmentPatch) (*domain.Shipment, error) {
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return nil, domain.ErrUnauthenticated
	}
	id, ok := canonicalID(id)
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}

	if patch.Empty() {
		// Nothing to write; still enforce existence.
		s, err := u.repo.GetWithOwner(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get shipment: %w", err)
		}
		return s, nil
	}

	if err := u.repo.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("update shipment: %w", err)
	}
	u.invalidate(ctx, id)

	s, err := u.repo.GetWithOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload shipment: %w", err)
	}
	// A read-through that started before the write may have cached the old view.
	u.invalidate(ctx, id)

	metrics.ShipmentMutationsTotal.WithLabelValues("update").Inc()
	return s, nil
}

func (u *ShipmentUsecase) Delete(ctx context.Context, id string) error {
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return domain.ErrUnauthenticated
	}
	id, ok := canonicalID(id)
	if !ok {
		return domain.ErrShipmentNotFound
	}

	if err := u.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	u.invalidate(ctx, id)

	metrics.ShipmentMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (u *ShipmentUsecase) ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error) {
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return nil, domain.ErrUnauthenticated
	}
	userID, ok := canonicalID(userID)
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	shipments, err := u.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shipments by user: %w", err)
	}
	return shipments, nil
}

func (u *ShipmentUsecase) invalidate(ctx context.Context, id string) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Invalidate(ctx, id); err != nil {
		u.logger.WarnContext(ctx, "tracking cache invalidate", "shipment_id", id, "error", err)
	}
}

// canonicalID maps any form uuid.Parse accepts (braces, urn prefix, upper case)
// to the lowercase hyphenated form used as store key and cache key.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
