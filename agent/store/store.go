// Package store is the boundary to the CartUp entity database. The runtime
// treats it as an external collaborator with per-entity consistency; tool
// handlers are its only callers.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports a missing entity. Tool handlers convert it into a
// structured "not found" result so the model can ask the user to retry.
var ErrNotFound = errors.New("record not found")

// EntityType selects an ID sequence. IDs are short alphanumeric tokens with
// a one-letter type prefix, always lower-case.
type EntityType string

const (
	EntityUser    EntityType = "user"
	EntityOrder   EntityType = "order"
	EntityTicket  EntityType = "ticket"
	EntityProduct EntityType = "product"
)

// idPrefixes maps an entity type to its user-facing ID prefix.
var idPrefixes = map[EntityType]string{
	EntityUser:    "u",
	EntityOrder:   "o",
	EntityTicket:  "t",
	EntityProduct: "p",
}

// seedCounters are the initial sequence values; generated IDs continue from
// the seeded data (u101..u303, o301..o402, t501, p001..p005).
var seedCounters = map[EntityType]int64{
	EntityUser:    200,
	EntityOrder:   500,
	EntityTicket:  600,
	EntityProduct: 100,
}

type User struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Email  string   `json:"email"`
	Orders []string `json:"orders"`
}

type Product struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	InStock       bool    `json:"in_stock"`
	StockQuantity int     `json:"stock_quantity"`
}

type Order struct {
	OrderID      string   `json:"order_id"`
	UserID       string   `json:"user_id"`
	Status       string   `json:"status"`
	Items        []string `json:"items"`
	Amount       float64  `json:"amount"`
	DeliveryDate string   `json:"delivery_date,omitempty"`
	Address      string   `json:"address,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
}

type Ticket struct {
	TicketID  string `json:"ticket_id"`
	OrderID   string `json:"order_id"`
	Issue     string `json:"issue"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Return struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	RefundStatus string `json:"refund_status"`
	Reason       string `json:"reason,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Store is the CRUD contract for CartUp entities. Lookups take already
// normalized IDs; implementations are case-sensitive on purpose.
type Store interface {
	User(ctx context.Context, userID string) (User, error)
	Order(ctx context.Context, orderID string) (Order, error)
	Product(ctx context.Context, productID string) (Product, error)
	Ticket(ctx context.Context, ticketID string) (Ticket, error)
	Return(ctx context.Context, orderID string) (Return, error)

	UpdateOrderAddress(ctx context.Context, orderID, address string) error
	CreateTicket(ctx context.Context, t Ticket) error
	CreateReturn(ctx context.Context, r Return) error
	UpdateRefundStatus(ctx context.Context, orderID, refundStatus string) error

	Recommendations(ctx context.Context, userID string) ([]string, error)
	Wishlist(ctx context.Context, userID string) ([]string, error)
	AddToWishlist(ctx context.Context, userID, productID string) error

	NextID(ctx context.Context, entity EntityType) (string, error)
}
