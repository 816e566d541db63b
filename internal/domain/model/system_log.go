//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// DailySystemLog aggregates one calendar day of warehouse activity.
// LogDate is unique at day granularity: re-running the summary for a day
// updates the existing row instead of inserting a second one.
type DailySystemLog struct {
	ID                string    `json:"id"                 db:"id"`
	LogDate           time.Time `json:"log_date"           db:"log_date"`
	OrderCount        int       `json:"order_count"        db:"order_count"`
	OrderRevenue      float64   `json:"order_revenue"      db:"order_revenue"`
	ReceivingCount    int       `json:"receiving_count"    db:"receiving_count"`
	ReceivingQuantity int       `json:"receiving_quantity" db:"receiving_quantity"`
	TasksCreated      int       `json:"tasks_created"      db:"tasks_created"`
	TasksCompleted    int       `json:"tasks_completed"    db:"tasks_completed"`
	LowStockCount     int       `json:"low_stock_count"    db:"low_stock_count"`
	ActiveUserCount   int       `json:"active_user_count"  db:"active_user_count"`
	CreatedAt         time.Time `json:"created_at"         db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"         db:"updated_at"`
}

// OrderDayStats holds the order aggregates for one calendar day.
type OrderDayStats struct {
	Count   int     `db:"count"`
	Revenue float64 `db:"revenue"`
}

// ReceivingDayStats holds the receiving aggregates for one calendar day.
type ReceivingDayStats struct {
	Count    int `db:"count"`
	Quantity int `db:"quantity"`
}

// TaskDayStats holds the task aggregates for one calendar day.
type TaskDayStats struct {
	Created   int `db:"created"`
	Completed int `db:"completed"`
}

// UpsertSystemLogRequest carries the aggregates to persist for a day.
type UpsertSystemLogRequest struct {
	LogDate           time.Time
	OrderCount        int
	OrderRevenue      float64
	ReceivingCount    int
	ReceivingQuantity int
	TasksCreated      int
	TasksCompleted    int
	LowStockCount     int
	ActiveUserCount   int
}
