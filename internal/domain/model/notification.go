//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const maxNotificationTitleLen = 255

// Notification represents a durable per-user notification record.
// Live pushes are layered on top of these rows; the row is the source of truth.
type Notification struct {
	ID          string           `json:"id"                   db:"id"`
	Title       string           `json:"title"                db:"title"`
	Message     string           `json:"message"              db:"message"`
	RecipientID string           `json:"recipient_id"         db:"recipient_id"`
	Type        NotificationType `json:"type"                 db:"type"`
	Metadata    json.RawMessage  `json:"metadata,omitempty"   db:"metadata"`
	ReadStatus  bool             `json:"read_status"          db:"read_status"`
	ReadAt      *time.Time       `json:"read_at,omitempty"    db:"read_at"`
	IsDeleted   bool             `json:"is_deleted"           db:"is_deleted"`
	DeletedAt   *time.Time       `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedAt   time.Time        `json:"created_at"           db:"created_at"`
}

// NotificationType categorizes a notification for client-side filtering.
type NotificationType string

const (
	NotificationTypeLowStock       NotificationType = "LOW_STOCK"
	NotificationTypeOrderStatus    NotificationType = "ORDER_STATUS"
	NotificationTypeTaskAssignment NotificationType = "TASK_ASSIGNMENT"
	NotificationTypeSystemAlert    NotificationType = "SYSTEM_ALERT"
)

// Valid returns true if the notification type is one of the known values.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeLowStock, NotificationTypeOrderStatus,
		NotificationTypeTaskAssignment, NotificationTypeSystemAlert:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type.
func (t NotificationType) String() string {
	return string(t)
}

// CreateNotificationRequest contains fields to create a new notification.
type CreateNotificationRequest struct {
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	RecipientID string           `json:"recipient_id"`
	Type        NotificationType `json:"type"`
	Metadata    json.RawMessage  `json:"metadata,omitempty"`
}

// Normalize trims whitespace-only fields in place.
func (r *CreateNotificationRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Message = strings.TrimSpace(r.Message)
	r.RecipientID = strings.TrimSpace(r.RecipientID)
}

// Validate checks the request for required fields and value constraints.
func (r *CreateNotificationRequest) Validate() error {
	if r.Title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(r.Title) > maxNotificationTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if r.Message == "" {
		return errors.New("message is required and cannot be empty")
	}
	if r.RecipientID == "" {
		return errors.New("recipient_id is required and cannot be empty")
	}
	if !r.Type.Valid() {
		return errors.New("type must be one of LOW_STOCK, ORDER_STATUS, TASK_ASSIGNMENT, SYSTEM_ALERT")
	}
	return nil
}

// NotificationListOptions controls filtering and pagination for per-user listings.
type NotificationListOptions struct {
	UnreadOnly bool
	Type       *NotificationType
	Limit      int
	Offset     int
}

// NotificationPage is one page of a user's notifications plus paging counts.
type NotificationPage struct {
	Items       []*Notification `json:"items"`
	Total       int             `json:"total"`
	UnreadCount int             `json:"unread_count"`
}
