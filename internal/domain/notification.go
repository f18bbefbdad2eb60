package domain

import "time"

// Notification is a user-facing {title, content} pair composed from a review
// decision. The composition is deterministic; delivery is a separate,
// best-effort concern.
type Notification struct {
	ID        int32             `json:"id"`
	UserID    int32             `json:"user_id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	IsRead    bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
