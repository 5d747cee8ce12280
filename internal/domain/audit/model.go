package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event maps to the audit_event table. One row per authenticated API
// request, written by the access audit middleware.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ActorID    string    `db:"actor_id" json:"actor_id"`
	ActorName  string    `db:"actor_name" json:"actor_name"`
	ActorRoles []string  `db:"actor_roles" json:"actor_roles"`
	Resource   string    `db:"resource" json:"resource"`
	Action     string    `db:"action" json:"action"`
	HospitalID string    `db:"hospital_id" json:"hospital_id"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	Path       string    `db:"path" json:"path"`
	Method     string    `db:"method" json:"method"`
	RequestID  string    `db:"request_id" json:"request_id"`
	StatusCode int       `db:"status_code" json:"status_code"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
