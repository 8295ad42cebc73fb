package domain

import "time"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	AccountID *int64 // nil for anonymous events such as login_failure
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
