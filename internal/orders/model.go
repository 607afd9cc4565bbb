// Package orders records finalized booking requests for the operator to quote.
package orders

import (
	"errors"
	"strings"
	"time"

	"github.com/tayritours/booking-assistant/internal/booking"
)

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("orders: order not found")

// Order is one captured booking request. An order is written every time a
// customer's session reaches a complete summary, including amended re-summaries.
type Order struct {
	ID           string         `json:"id"`
	CustomerID   string         `json:"customer_id"`
	CustomerName string         `json:"customer_name,omitempty"`
	Language     string         `json:"language"`
	Fields       booking.Fields `json:"fields"`
	CreatedAt    time.Time      `json:"created_at"`
}

// CreateOrderRequest carries the session snapshot being persisted.
type CreateOrderRequest struct {
	CustomerID   string
	CustomerName string
	Language     string
	Fields       booking.Fields
}

func (r *CreateOrderRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return errors.New("orders: customer id is required")
	}
	if !r.Fields.Complete() {
		return errors.New("orders: booking fields are incomplete")
	}
	return nil
}
