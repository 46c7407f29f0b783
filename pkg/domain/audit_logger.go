package domain

// AuditLogger appends an action to the audit trail of the active session.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]interface{}) error
}
