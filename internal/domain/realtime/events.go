package realtime

import (
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// Event names pushed to live clients.
const (
	EventLowStockAlert         = "lowStockAlert"
	EventDailySummaryGenerated = "dailySummaryGenerated"
	EventNotificationCreated   = "notificationCreated"
	EventNotificationRead      = "notificationRead"
	EventAllNotificationsRead  = "allNotificationsRead"
	EventNotificationDeleted   = "notificationDeleted"
)

// LowStockAlertPayload is pushed once per affected product.
type LowStockAlertPayload struct {
	ProductID         string    `json:"productId"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Quantity          int       `json:"quantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	UpdatedBy         string    `json:"updatedBy,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewLowStockAlert builds the payload for a low-stock product.
func NewLowStockAlert(p *model.Product, now time.Time) LowStockAlertPayload {
	payload := LowStockAlertPayload{
		ProductID:         p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		Quantity:          p.Quantity,
		MinimumStockLevel: p.MinimumStockLevel,
		Timestamp:         now,
	}
	if p.UpdatedBy != nil {
		payload.UpdatedBy = *p.UpdatedBy
	}
	return payload
}

// DailySummaryMetrics are the headline numbers of one calendar day.
type DailySummaryMetrics struct {
	OrderCount     int     `json:"orderCount"`
	OrderRevenue   float64 `json:"orderRevenue"`
	ReceivingCount int     `json:"receivingCount"`
	TasksCompleted int     `json:"tasksCompleted"`
	LowStockItems  int     `json:"lowStockItems"`
	ActiveUsers    int     `json:"activeUsers"`
}

// DailySummaryPayload is broadcast after the daily summary is persisted.
type DailySummaryPayload struct {
	Date      string              `json:"date"` // YYYY-MM-DD
	Metrics   DailySummaryMetrics `json:"metrics"`
	Timestamp time.Time           `json:"timestamp"`
}

// NotificationEventPayload covers the notification lifecycle events.
// Count is set only for allNotificationsRead.
type NotificationEventPayload struct {
	NotificationID string    `json:"notificationId,omitempty"`
	Count          int       `json:"count,omitempty"`
	UserID         string    `json:"userId"`
	Timestamp      time.Time `json:"timestamp"`
}
