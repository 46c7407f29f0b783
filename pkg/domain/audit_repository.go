package domain

// AuditRepository persists the audit trail.
type AuditRepository interface {
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
}
