package domain

import (
	"errors"
	"time"
)

var (
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrInvalidTrackingID = errors.New("invalid tracking id")
	ErrInvalidShipment   = errors.New("shipment rejected by store constraints")
)

type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusReturned       ShipmentStatus = "returned"
)

// MaxPackageWeightKG is the exclusive upper bound on a package's weight.
const MaxPackageWeightKG = 100.0

// OwnerSummary is the subset of User copied into shipment read projections.
type OwnerSummary struct {
	Name    string
	Address string
}

type Shipment struct {
	ID                 string
	RecipientName      string
	RecipientAddress   string
	PackageDescription string
	PackageWeight      float64 // kg
	Status             ShipmentStatus
	UserID             *string       // nil when the owner was removed
	Owner              *OwnerSummary // populated only by joined reads
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TrackingView is what anonymous callers see when looking up a tracking ID.
// RecipientName is deliberately absent.
type TrackingView struct {
	ID                 string
	RecipientAddress   string
	PackageDescription string
	PackageWeight      float64
	Status             ShipmentStatus
	OwnerAddress       *string
}

// ShipmentPatch carries a partial update; nil fields are left unchanged.
type ShipmentPatch struct {
	RecipientName      *string
	RecipientAddress   *string
	PackageDescription *string
	PackageWeight      *float64
	Status             *ShipmentStatus
	UserID             *string
}

// Empty reports whether the patch would change nothing.
func (p ShipmentPatch) Empty() bool {
	return p.RecipientName == nil &&
		p.RecipientAddress == nil &&
		p.PackageDescription == nil &&
		p.PackageWeight == nil &&
		p.Status == nil &&
		p.UserID == nil
}
