package model

import "time"

// Audit actions recorded for dispute handling.
const (
	AuditResolve      = "resolve"
	AuditForceResolve = "force_resolve"
	AuditSweepMissed  = "sweep_missed"
)

// AuditEntry records who resolved which occurrence and when.
type AuditEntry struct {
	ID             int64
	Actor          string
	Action         string
	SubscriptionID int64
	OccurrenceDate *time.Time
	EventID        *int64
	Detail         string
	CreatedAt      time.Time
}
