package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
)

const shipmentColumns = `
	s.id, s.recipient_name, s.recipient_address, s.package_description,
	s.package_weight, s.status, s.user_id, s.created_at, s.updated_at`

type ShipmentRepository struct {
	pool *pgxpool.Pool
}

func NewShipmentRepository(pool *pgxpool.Pool) *ShipmentRepository {
	return &ShipmentRepository{pool: pool}
}

func (r *ShipmentRepository) Create(ctx context.Context, s *domain.Shipment) (*domain.Shipment, error) {
	query := `
		INSERT INTO shipments AS s (
			recipient_name, recipient_address, package_description,
			package_weight, status, user_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + shipmentColumns

	row := r.pool.QueryRow(ctx, query,
		s.RecipientName,
		s.RecipientAddress,
		s.PackageDescription,
		s.PackageWeight,
		string(s.Status),
		s.UserID,
	)

	created, err := scanShipment(row)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	return created, nil
}

func (r *ShipmentRepository) ListWithOwner(ctx context.Context) ([]*domain.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `, u.name, u.address
		FROM shipments s
		LEFT JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	shipments := []*domain.Shipment{}
	for rows.Next() {
		s, err := scanShipmentWithOwner(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

func (r *ShipmentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `
		FROM shipments s
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list shipments by user: %w", err)
	}
	defer rows.Close()

	shipments := []*domain.Shipment{}
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, rows.Err()
}

func (r *ShipmentRepository) GetWithOwner(ctx context.Context, id string) (*domain.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + `, u.name, u.address
		FROM shipments s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`

	return scanShipmentWithOwner(r.pool.QueryRow(ctx, query, id))
}

func (r *ShipmentRepository) GetTrackingView(ctx context.Context, id string) (*domain.TrackingView, error) {
	query := `
		SELECT s.id, s.recipient_address, s.package_description,
		       s.package_weight, s.status, u.address
		FROM shipments s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`

	var v domain.TrackingView
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.RecipientAddress, &v.PackageDescription,
		&v.PackageWeight, &v.Status, &v.OwnerAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("scan tracking view: %w", err)
	}
	return &v, nil
}

// Update writes only the non-nil patch fields; COALESCE keeps the rest.
func (r *ShipmentRepository) Update(ctx context.Context, id string, p domain.ShipmentPatch) error {
	var status *string
	if p.Status != nil {
		v := string(*p.Status)
		status = &v
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE shipments
		SET    recipient_name      = COALESCE($2, recipient_name),
		       recipient_address   = COALESCE($3, recipient_address),
		       package_description = COALESCE($4, package_description),
		       package_weight      = COALESCE($5, package_weight),
		       status              = COALESCE($6, status),
		       user_id             = COALESCE($7::uuid, user_id),
		       updated_at          = NOW()
		WHERE id = $1`,
		id, p.RecipientName, p.RecipientAddress, p.PackageDescription,
		p.PackageWeight, status, p.UserID,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *ShipmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*domain.Shipment, error) {
	var s domain.Shipment
	err := row.Scan(
		&s.ID, &s.RecipientName, &s.RecipientAddress, &s.PackageDescription,
		&s.PackageWeight, &s.Status, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	return &s, nil
}

func scanShipmentWithOwner(row rowScanner) (*domain.Shipment, error) {
	var (
		s            domain.Shipment
		ownerName    *string
		ownerAddress *string
	)
	err := row.Scan(
		&s.ID, &s.RecipientName, &s.RecipientAddress, &s.PackageDescription,
		&s.PackageWeight, &s.Status, &s.UserID, &s.CreatedAt, &s.UpdatedAt,
		&ownerName, &ownerAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("scan shipment: %w", err)
	}
	if ownerName != nil {
		s.Owner = &domain.OwnerSummary{Name: *ownerName}
		if ownerAddress != nil {
			s.Owner.Address = *ownerAddress
		}
	}
	return &s, nil
}

// mapConstraintError turns store-side rejections of shipment attributes into
// domain.ErrInvalidShipment, keeping the constraint name for the caller.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation, pgCheckViolation, pgInvalidText:
			return fmt.Errorf("%w: %s", domain.ErrInvalidShipment, pgErr.Message)
		}
	}
	return fmt.Errorf("write shipment: %w", err)
}
