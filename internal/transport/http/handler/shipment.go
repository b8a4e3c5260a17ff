package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
	"github.com/ErlanBelekov/shiptrack/internal/usecase"
)

type shipmentUsecaser interface {
	List(ctx context.Context) ([]*domain.Shipment, error)
	GetByTrackingID(ctx context.Context, id string) (*domain.TrackingView, error)
	Create(ctx context.Context, input usecase.CreateShipmentInput) (*domain.Shipment, error)
	Update(ctx context.Context, id string, patch domain.ShipmentPatch) (*domain.Shipment, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Shipment, error)
}

type ShipmentHandler struct {
	uc     shipmentUsecaser
	logger *slog.Logger
}

func NewShipmentHandler(uc shipmentUsecaser, logger *slog.Logger) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, logger: logger.With("component", "shipment_handler")}
}

// weightKG accepts both 2.5 and "2.5"; HTML number inputs submit strings.
type weightKG float64

func (w *weightKG) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("packageWeight: %q is not a number", s)
		}
		*w = weightKG(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("packageWeight: %w", err)
	}
	*w = weightKG(f)
	return nil
}

type createShipmentRequest struct {
	RecipientName      string                `json:"recipientName"      binding:"required,min=3,max=255"`
	RecipientAddress   string                `json:"recipientAddress"   binding:"required,min=8,max=512"`
	PackageDescription string                `json:"packageDescription" binding:"required,min=8,max=2000"`
	PackageWeight      weightKG              `json:"packageWeight"      binding:"required,gt=0,lt=100"`
	ShipmentStatus     domain.ShipmentStatus `json:"shipmentStatus"     binding:"omitempty,oneof=pending in_transit out_for_delivery delivered returned"`
	UserID             *string               `json:"userId"             binding:"omitempty,uuid"`
}

type updateShipmentRequest struct {
	RecipientName      *string                `json:"recipientName"      binding:"omitempty,min=3,max=255"`
	RecipientAddress   *string                `json:"recipientAddress"   binding:"omitempty,min=8,max=512"`
	PackageDescription *string                `json:"packageDescription" binding:"omitempty,min=8,max=2000"`
	PackageWeight      *weightKG              `json:"packageWeight"      binding:"omitempty,gt=0,lt=100"`
	ShipmentStatus     *domain.ShipmentStatus `json:"shipmentStatus"     binding:"omitempty,oneof=pending in_transit out_for_delivery delivered returned"`
	UserID             *string                `json:"userId"             binding:"omitempty,uuid"`
}

func (r updateShipmentRequest) patch() domain.ShipmentPatch {
	p := domain.ShipmentPatch{
		RecipientName:      r.RecipientName,
		RecipientAddress:   r.RecipientAddress,
		PackageDescription: r.PackageDescription,
		Status:             r.ShipmentStatus,
		UserID:             r.UserID,
	}
	if r.PackageWeight != nil {
		w := float64(*r.PackageWeight)
		p.PackageWeight = &w
	}
	return p
}

type ownerResponse struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type shipmentResponse struct {
	ID                 string                `json:"id"`
	RecipientName      string                `json:"recipientName"`
	RecipientAddress   string                `json:"recipientAddress"`
	PackageDescription string                `json:"packageDescription"`
	PackageWeight      float64               `json:"packageWeight"`
	ShipmentStatus     domain.ShipmentStatus `json:"shipmentStatus"`
	UserID             *string               `json:"userId"`
	User               *ownerResponse        `json:"user,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// trackingResponse omits recipientName; it is served to anonymous callers.
type trackingResponse struct {
	ID                 string                `json:"id"`
	RecipientAddress   string                `json:"recipientAddress"`
	PackageDescription string                `json:"packageDescription"`
	PackageWeight      float64               `json:"packageWeight"`
	ShipmentStatus     domain.ShipmentStatus `json:"shipmentStatus"`
	User               *ownerResponse        `json:"user"`
}

func toShipmentResponse(s *domain.Shipment) shipmentResponse {
	resp := shipmentResponse{
		ID:                 s.ID,
		RecipientName:      s.RecipientName,
		RecipientAddress:   s.RecipientAddress,
		PackageDescription: s.PackageDescription,
		PackageWeight:      s.PackageWeight,
		ShipmentStatus:     s.Status,
		UserID:             s.UserID,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if s.Owner != nil {
		resp.User = &ownerResponse{Name: s.Owner.Name, Address: s.Owner.Address}
	}
	return resp
}

func toShipmentList(shipments []*domain.Shipment) []shipmentResponse {
	items := make([]shipmentResponse, len(shipments))
	for i, s := range shipments {
		items[i] = toShipmentResponse(s)
	}
	return items
}

// GET /shipments/all
func (h *ShipmentHandler) List(ctx *gin.Context) {
	shipments, err := h.uc.List(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, "list shipments", err)
		return
	}
	ctx.JSON(http.StatusOK, toShipmentList(shipments))
}

// GET /shipments/:id (public)
// Unknown ID is a 400; a malformed ID or store failure reports "Invalid tracking ID".
func (h *ShipmentHandler) GetByTrackingID(ctx *gin.Context) {
	id := ctx.Param("id")

	v, err := h.uc.GetByTrackingID(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errTrackIDNotFound})
			return
		}
		if !errors.Is(err, domain.ErrInvalidTrackingID) {
			h.logger.ErrorContext(ctx.Request.Context(), "get shipment by tracking id", "shipment_id", id, "error", err)
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInvalidTrackingID})
		return
	}

	resp := trackingResponse{
		ID:                 v.ID,
		RecipientAddress:   v.RecipientAddress,
		PackageDescription: v.PackageDescription,
		PackageWeight:      v.PackageWeight,
		ShipmentStatus:     v.Status,
	}
	if v.OwnerAddress != nil {
		resp.User = &ownerResponse{Address: *v.OwnerAddress}
	}
	ctx.JSON(http.StatusOK, resp)
}

// POST /shipments
func (h *ShipmentHandler) Create(ctx *gin.Context) {
	var req createShipmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	s, err := h.uc.Create(ctx.Request.Context(), usecase.CreateShipmentInput{
		RecipientName:      req.RecipientName,
		RecipientAddress:   req.RecipientAddress,
		PackageDescription: req.PackageDescription,
		PackageWeight:      float64(req.PackageWeight),
		Status:             req.ShipmentStatus,
		UserID:             req.UserID,
	})
	if err != nil {
		h.fail(ctx, "create shipment", err)
		return
	}

	ctx.JSON(http.StatusAccepted, toShipmentResponse(s))
}

// PUT /shipments/:id
func (h *ShipmentHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req updateShipmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	s, err := h.uc.Update(ctx.Request.Context(), id, req.patch())
	if err != nil {
		h.fail(ctx, "update shipment", err, "shipment_id", id)
		return
	}

	ctx.JSON(http.StatusOK, toShipmentResponse(s))
}

// DELETE /shipments/:id
func (h *ShipmentHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.uc.Delete(ctx.Request.Context(), id); err != nil {
		h.fail(ctx, "delete shipment", err, "shipment_id", id)
		return
	}

	ctx.Status(http.StatusOK)
}

// GET /shipments/user/:id
func (h *ShipmentHandler) ListByUser(ctx *gin.Context) {
	userID := ctx.Param("id")

	shipments, err := h.uc.ListByUser(ctx.Request.Context(), userID)
	if err != nil {
		h.fail(ctx, "list shipments by user", err, "owner_id", userID)
		return
	}
	ctx.JSON(http.StatusOK, toShipmentList(shipments))
}

// fail maps usecase errors on the authenticated shipment routes to responses.
func (h *ShipmentHandler) fail(ctx *gin.Context, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		ctx.JSON(http.StatusForbidden, gin.H{"error": errNotAuthenticated})
	case errors.Is(err, domain.ErrShipmentNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errShipmentNotFound})
	case errors.Is(err, domain.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrInvalidShipment):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidShipment})
	default:
		h.logger.ErrorContext(ctx.Request.Context(), op, append(attrs, "error", err)...)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
