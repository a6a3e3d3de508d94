package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Subscriptions() SubscriptionRepository
	Events() DeliveryEventRepository
	Calendar() CalendarRepository
	Missed() MissedRepository
	Audit() AuditRepository
}
