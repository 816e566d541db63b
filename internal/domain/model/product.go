//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Product carries the stock fields the low-stock scan and daily summary read.
type Product struct {
	ID                string    `json:"id"                  db:"id"`
	SKU               string    `json:"sku"                 db:"sku"`
	Name              string    `json:"name"                db:"name"`
	Quantity          int       `json:"quantity"            db:"quantity"`
	MinimumStockLevel int       `json:"minimum_stock_level" db:"minimum_stock_level"`
	UpdatedBy         *string   `json:"updated_by,omitempty" db:"updated_by"`
	UpdatedAt         time.Time `json:"updated_at"          db:"updated_at"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinimumStockLevel
}
