// Package api is a typed HTTP client for the shiptrack REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// invalidTokenMessage is what the server's auth gate answers with.
const invalidTokenMessage = "Invalid token"

// ErrInvalidToken means the bearer token was missing, malformed or expired.
var ErrInvalidToken = errors.New(invalidTokenMessage)

// Error is a non-2xx response. Message is the server's "error" or "message" text.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

type tokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  tokenSource
}

// New returns a client for baseURL. tokens may be nil for public calls only.
func New(baseURL string, tokens tokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type Owner struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type Shipment struct {
	ID                 string    `json:"id"`
	RecipientName      string    `json:"recipientName"`
	RecipientAddress   string    `json:"recipientAddress"`
	PackageDescription string    `json:"packageDescription"`
	PackageWeight      float64   `json:"packageWeight"`
	ShipmentStatus     string    `json:"shipmentStatus"`
	UserID             *string   `json:"userId"`
	User               *Owner    `json:"user,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// TrackingView is the public projection returned by GetShipment.
type TrackingView struct {
	ID                 string  `json:"id"`
	RecipientAddress   string  `json:"recipientAddress"`
	PackageDescription string  `json:"packageDescription"`
	PackageWeight      float64 `json:"packageWeight"`
	ShipmentStatus     string  `json:"shipmentStatus"`
	User               *Owner  `json:"user"`
}

// ShipmentInput is the create/update body. Nil fields are left out, so an
// update only touches what is set. PackageWeight is sent as typed by the user.
type ShipmentInput struct {
	RecipientName      *string `json:"recipientName,omitempty"`
	RecipientAddress   *string `json:"recipientAddress,omitempty"`
	PackageDescription *string `json:"packageDescription,omitempty"`
	PackageWeight      *string `json:"packageWeight,omitempty"`
	ShipmentStatus     *string `json:"shipmentStatus,omitempty"`
	UserID             *string `json:"userId,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Verify reports whether the current token is accepted by the server.
func (c *Client) Verify(ctx context.Context) (bool, error) {
	var resp struct {
		Result bool `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/is-verify", true, nil, &resp); err != nil {
		return false, err
	}
	return resp.Result, nil
}

func (c *Client) ListShipments(ctx context.Context) ([]Shipment, error) {
	var out []Shipment
	if err := c.do(ctx, http.MethodGet, "/shipments/all", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetShipment is the anonymous tracking lookup.
func (c *Client) GetShipment(ctx context.Context, id string) (*TrackingView, error) {
	var out TrackingView
	if err := c.do(ctx, http.MethodGet, "/shipments/"+url.PathEscape(id), false, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateShipment(ctx context.Context, in ShipmentInput) (*Shipment, error) {
	var out Shipment
	if err := c.do(ctx, http.MethodPost, "/shipments", true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateShipment(ctx context.Context, id string, in ShipmentInput) (*Shipment, error) {
	var out Shipment
	if err := c.do(ctx, http.MethodPut, "/shipments/"+url.PathEscape(id), true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteShipment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/shipments/"+url.PathEscape(id), true, nil, nil)
}

func (c *Client) ListUserShipments(ctx context.Context, userID string) ([]Shipment, error) {
	var out []Shipment
	if err := c.do(ctx, http.MethodGet, "/shipments/user/"+url.PathEscape(userID), true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if authed && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.Error
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}

	if resp.StatusCode == http.StatusUnauthorized && msg == invalidTokenMessage {
		return ErrInvalidToken
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}
