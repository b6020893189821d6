package models

import "time"

// Audited actions.
const (
	AuditActionLogin         = "LOGIN"
	AuditActionProfileCreate = "PROFILE_CREATE"
	AuditActionProfileUpdate = "PROFILE_UPDATE"
	AuditActionProfileDelete = "PROFILE_DELETE"
	AuditActionPaymentCreate = "PAYMENT_CREATE"
)

// Audited resources.
const (
	AuditResourceSession = "session"
	AuditResourceStudent = "student"
	AuditResourceTeacher = "teacher"
	AuditResourcePayment = "payment"
)

// AuditLog is one row of the studio's audit trail. Payload holds a JSON
// snapshot of the record after the change.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Payload    []byte    `db:"payload" json:"payload,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
