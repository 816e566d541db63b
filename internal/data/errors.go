package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrNotificationNotFound is returned when a notification does not
	// exist or is not owned by the requesting user.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecipientInvalid is returned when a notification recipient is
	// missing, inactive, or soft-deleted.
	ErrRecipientInvalid = errors.New("recipient not found or inactive")

	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrArchiveNotFound is returned when no snapshot exists for an order.
	ErrArchiveNotFound = errors.New("archived order not found")

	// ErrSystemLogNotFound is returned when no daily log exists for a date.
	ErrSystemLogNotFound = errors.New("daily system log not found")
)
