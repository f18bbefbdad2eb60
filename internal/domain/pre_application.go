package domain

import "time"

type PreApplicationStatus string

const (
	PreApplicationStatusPending  PreApplicationStatus = "PENDING"
	PreApplicationStatusApproved PreApplicationStatus = "APPROVED"
	PreApplicationStatusRejected PreApplicationStatus = "REJECTED"
	PreApplicationStatusArchived PreApplicationStatus = "ARCHIVED"
)

type ReviewDecision string

const (
	ReviewDecisionApprove ReviewDecision = "APPROVE"
	ReviewDecisionReject  ReviewDecision = "REJECT"
)

// PreApplication is a prospective member's essay awaiting staff review.
// It is never hard-deleted; terminal states are ARCHIVED or a long-lived
// APPROVED/REJECTED.
type PreApplication struct {
	ID             int32                `json:"id"`
	UserID         int32                `json:"user_id"`
	Email          string               `json:"email"`
	Essay          string               `json:"essay"`
	Source         string               `json:"source"`
	RequestedGroup string               `json:"requested_group"`
	Guidance       *string              `json:"guidance,omitempty"`
	Status         PreApplicationStatus `json:"status"`
	ResubmitCount  int32                `json:"resubmit_count"`
	QueryToken     string               `json:"query_token"`
	InviteCodeID   *int32               `json:"invite_code_id,omitempty"`
	ReviewedByID   *int32               `json:"reviewed_by_id,omitempty"`
	ReviewedAt     *time.Time           `json:"reviewed_at,omitempty"`
	CodeSent       bool                 `json:"code_sent"`
	CodeSentAt     *time.Time           `json:"code_sent_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Resubmittable reports whether the owner may submit a revised essay.
// The resubmit counter bound is checked separately against site settings.
func (a *PreApplication) Resubmittable() bool {
	return a.Status == PreApplicationStatusPending || a.Status == PreApplicationStatusRejected
}

// Active reports whether the application blocks the owner from submitting
// another one.
func (a *PreApplication) Active() bool {
	return a.Status == PreApplicationStatusPending || a.Status == PreApplicationStatusApproved
}

// PreApplicationVersion is an immutable snapshot of an application taken
// before a resubmission or review decision mutates the live record.
// Version numbers are monotonic per application; display order is descending.
type PreApplicationVersion struct {
	ID               int32                `json:"id"`
	PreApplicationID int32                `json:"pre_application_id"`
	Version          int32                `json:"version"`
	Essay            string               `json:"essay"`
	Guidance         *string              `json:"guidance,omitempty"`
	Status           PreApplicationStatus `json:"status"`
	ReviewedByID     *int32               `json:"reviewed_by_id,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}
