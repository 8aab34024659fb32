package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type placeOrderRequest struct {
	Address string             `json:"address" validate:"required"`
	Items   []orderItemRequest `json:"items"   validate:"required,min=1,dive"`
}

type assignCourierRequest struct {
	CourierID string `json:"courier_id" validate:"required"`
}

// Response-only types owned by the transport layer, kept separate from
// domain types so the JSON contract is not coupled to internal changes.

type orderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type historyEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

type orderResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CourierID string    `json:"courier_id,omitempty"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	Total     float64   `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}
