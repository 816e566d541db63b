//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"time"
)

// Order is the live order row as far as the archival job is concerned.
// The request/response CRUD surface owns the rest of its lifecycle.
type Order struct {
	ID          string          `json:"id"           db:"id"`
	OrderNumber string          `json:"order_number" db:"order_number"`
	Status      OrderStatus     `json:"status"       db:"status"`
	CustomerID  *string         `json:"customer_id,omitempty" db:"customer_id"`
	TotalAmount float64         `json:"total_amount" db:"total_amount"`
	Items       json.RawMessage `json:"items"        db:"items"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"   db:"updated_at"`
}

// OrderStatus represents the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	// OrderStatusDelivered is the terminal state eligible for archival.
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of the order status.
func (s OrderStatus) String() string {
	return string(s)
}

// ArchivedOrder is an immutable snapshot of an Order taken at archive time.
// Rows are written once, keyed by the original order id, and never updated.
type ArchivedOrder struct {
	ID              string          `json:"id"                db:"id"`
	OriginalOrderID string          `json:"original_order_id" db:"original_order_id"`
	OrderNumber     string          `json:"order_number"      db:"order_number"`
	Status          OrderStatus     `json:"status"            db:"status"`
	CustomerID      *string         `json:"customer_id,omitempty" db:"customer_id"`
	TotalAmount     float64         `json:"total_amount"      db:"total_amount"`
	Items           json.RawMessage `json:"items"             db:"items"`
	OrderCreatedAt  time.Time       `json:"order_created_at"  db:"order_created_at"`
	OrderUpdatedAt  time.Time       `json:"order_updated_at"  db:"order_updated_at"`
	ArchivedAt      time.Time       `json:"archived_at"       db:"archived_at"`
	ArchivedBy      string          `json:"archived_by"       db:"archived_by"`
}

// SnapshotOf builds the archive snapshot for an order.
func SnapshotOf(order *Order, archivedBy string, archivedAt time.Time) *ArchivedOrder {
	return &ArchivedOrder{
		OriginalOrderID: order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		CustomerID:      order.CustomerID,
		TotalAmount:     order.TotalAmount,
		Items:           order.Items,
		OrderCreatedAt:  order.CreatedAt,
		OrderUpdatedAt:  order.UpdatedAt,
		ArchivedAt:      archivedAt,
		ArchivedBy:      archivedBy,
	}
}
