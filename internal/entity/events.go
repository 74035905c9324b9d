package entity

import (
	"encoding/json"
	"time"
)

// Event represents a domain event.
type Event interface {
	EventType() string
}

// CartCreated is emitted when a cart is lazily created for a new identity.
type CartCreated struct {
	CartID    string    `json:"cart_id"`
	UserID    string    `json:"user_id,omitempty"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

func (e CartCreated) EventType() string { return "CartCreated" }

// ItemAddedToCart is emitted when a product is dropped into a cart. Quantity
// is the amount added; NewQuantity is the line total after the merge.
type ItemAddedToCart struct {
	CartID      string    `json:"cart_id"`
	ItemID      string    `json:"item_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	NewQuantity int       `json:"new_quantity"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (e ItemAddedToCart) EventType() string { return "ItemAddedToCart" }

// CartItemQuantityChanged is emitted when a line quantity is set explicitly.
type CartItemQuantityChanged struct {
	CartID     string    `json:"cart_id"`
	ItemID     string    `json:"item_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e CartItemQuantityChanged) EventType() string { return "CartItemQuantityChanged" }

// ItemRemovedFromCart is emitted when a line is removed.
type ItemRemovedFromCart struct {
	CartID     string    `json:"cart_id"`
	ItemID     string    `json:"item_id"`
	ProductID  string    `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e ItemRemovedFromCart) EventType() string { return "ItemRemovedFromCart" }

// EventEnvelope is the wire form of an event on the cart events topic.
type EventEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
