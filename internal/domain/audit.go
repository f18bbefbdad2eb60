package domain

import (
	"encoding/json"
	"time"
)

// AuditEntry records a single mutating operation with before/after snapshots.
// Snapshots are arbitrary JSON keyed by entity type; Metadata carries
// forward-compatible extras.
type AuditEntry struct {
	ID         int32           `json:"id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   int32           `json:"entity_id"`
	ActorID    *int32          `json:"actor_id,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Audit action names. Kept as constants so log queries stay stable.
const (
	AuditActionSubmit       = "pre_application.submit"
	AuditActionResubmit     = "pre_application.resubmit"
	AuditActionDecide       = "pre_application.decide"
	AuditActionArchive      = "pre_application.archive"
	AuditActionCodeSent     = "pre_application.code_sent"
	AuditActionCodeCreate   = "invite_code.create"
	AuditActionCodeImport   = "invite_code.import"
	AuditActionCodeMarkUsed = "invite_code.mark_used"
	AuditActionCodeInvalidate = "invite_code.invalidate"
	AuditActionCodeDelete   = "invite_code.delete"
	AuditActionCodeIssue    = "invite_code.issue"
	AuditActionUserCreate   = "user.create"
)
