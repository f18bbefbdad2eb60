package domain

import "time"

// InviteCode is a single-use token granting entry to the target community.
// Soft state is encoded as three nullable timestamps: used_at, expires_at and
// deleted_at. Expired+deleted combinations are legal; availability checks all
// of them.
type InviteCode struct {
	ID             int32      `json:"id"`
	Code           string     `json:"code"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	UsedByID       *int32     `json:"used_by_id,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	IssuedToEmail  *string    `json:"issued_to_email,omitempty"`
	IssuedToUserID *int32     `json:"issued_to_user_id,omitempty"`
	BatchTokenID   *int32     `json:"batch_token_id,omitempty"`
	CheckValid     *bool      `json:"check_valid,omitempty"`
	CheckMessage   *string    `json:"check_message,omitempty"`
	CheckedAt      *time.Time `json:"checked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	// AssignedToApplicationID is populated by read queries when a
	// pre-application references this code.
	AssignedToApplicationID *int32 `json:"assigned_to_application_id,omitempty"`
}

// Expired reports whether the code's expiry, if any, has passed.
func (c *InviteCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}

// Available reports whether the code satisfies the availability invariant:
// unused, undeleted, unexpired and not issued or assigned to anyone.
func (c *InviteCode) Available(now time.Time) bool {
	return c.UsedAt == nil &&
		c.DeletedAt == nil &&
		!c.Expired(now) &&
		c.IssuedToEmail == nil &&
		c.IssuedToUserID == nil &&
		c.AssignedToApplicationID == nil
}

// InviteCodeQueryToken maps an opaque batch-level token to a set of
// bulk-issued invite codes not tied to any application. QueriedAt is set once
// on first successful lookup and never changes afterwards.
type InviteCodeQueryToken struct {
	ID        int32      `json:"id"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	QueriedAt *time.Time `json:"queried_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CheckResult is one entry of an external validator response after the
// displayed code has been mapped back to the stored one.
type CheckResult struct {
	Code    string  `json:"code"`
	Valid   *bool   `json:"valid"`
	Message string  `json:"message"`
	Updated int64   `json:"updated"`
}
