// Package client is a small Go client for the BAKETRAK API. It keeps the
// bearer token, role and username from the last successful login in memory
// and attaches the token to every subsequent request until Logout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// APIError is returned when the server answers with a non-2xx status. The
// message is taken from the error envelope when the body carries one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// Client talks to a BAKETRAK server. Not safe for concurrent use: the
// session state is plain fields guarded by nothing.
type Client struct {
	baseURL string
	http    *http.Client

	token    string
	role     string
	username string
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Authenticated reports whether a login session is active.
func (c *Client) Authenticated() bool { return c.token != "" }

// Role returns the role of the logged-in user, or "" when logged out.
func (c *Client) Role() string { return c.role }

// Username returns the username of the logged-in user, or "" when logged out.
func (c *Client) Username() string { return c.username }

// Token returns the raw bearer token, or "" when logged out.
func (c *Client) Token() string { return c.token }

// Logout discards the session. The token itself stays valid server-side
// until it expires; logout is purely a client-side operation.
func (c *Client) Logout() {
	c.token = ""
	c.role = ""
	c.username = ""
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResult is the server's acknowledgement of a new account.
type RegisterResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// Register creates a customer account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	var out RegisterResult
	err := c.do(ctx, http.MethodPost, "/api/register", credentialsRequest{username, password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type loginResult struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// Login authenticates and stores the session. A failed login leaves any
// previous session untouched.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out loginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", credentialsRequest{username, password}, &out); err != nil {
		return err
	}
	c.token = out.Token
	c.role = out.Role
	c.username = out.Username
	return nil
}

// Product is a catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

// Products lists the catalog. Works logged out.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderItem is one line of a new order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order is the server's view of an order.
type Order struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourierID string    `json:"courier_id"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type placeOrderRequest struct {
	Address string      `json:"address"`
	Items   []OrderItem `json:"items"`
}

// PlaceOrder places a new order for the logged-in customer.
func (c *Client) PlaceOrder(ctx context.Context, address string, items []OrderItem) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", placeOrderRequest{address, items}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders lists the orders visible to the logged-in user. status narrows the
// result within that visible set; pass "" for all.
func (c *Client) Orders(ctx context.Context, status string) ([]Order, error) {
	path := "/api/orders"
	if status != "" {
		path += "?status=" + status
	}
	var out []Order
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderLine is one line of an existing order, with the price captured at
// order time.
type OrderLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// OrderDetails returns the line items of an order.
func (c *Client) OrderDetails(ctx context.Context, orderID string) ([]OrderLine, error) {
	var out []OrderLine
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID+"/details", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TrackingEntry is one step of an order's status history.
type TrackingEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes"`
}

// Tracking returns the status history of an order, oldest first.
func (c *Client) Tracking(ctx context.Context, orderID string) ([]TrackingEntry, error) {
	var out []TrackingEntry
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+orderID+"/tracking", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder cancels an order that has not been delivered yet.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/cancel", nil, nil)
}

type assignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

// AssignCourier assigns a courier to an order. Administrator only.
func (c *Client) AssignCourier(ctx context.Context, orderID, courierID string) error {
	return c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/assign", assignCourierRequest{courierID}, nil)
}

// MarkDelivered marks an order as delivered. Courier only.
func (c *Client) MarkDelivered(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPut, "/api/orders/"+orderID+"/deliver", nil, nil)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser creates an account with an explicit role. Administrator only.
func (c *Client) CreateUser(ctx context.Context, username, password, role string) (*RegisterResult, error) {
	var out RegisterResult
	err := c.do(ctx, http.MethodPost, "/api/users", createUserRequest{username, password, role}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			if envelope.Error != "" {
				apiErr.Message = envelope.Error
			} else if envelope.Message != "" {
				apiErr.Message = envelope.Message
			}
		}
		return apiErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
