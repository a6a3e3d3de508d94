package model

import "time"

// NotificationType names events emitted to the notification sink.
type NotificationType string

const (
	NotifyOccurrenceMissed NotificationType = "OccurrenceMissed"
	NotifyConflictDetected NotificationType = "ConflictDetected"
)

// Notification is a best-effort event consumed asynchronously by an
// external notification service.
type Notification struct {
	Type           NotificationType
	SubscriptionID int64
	Date           time.Time
	Detail         string
}
