package service

import (
	"context"
	"fmt"

	"gatehouse-backend/internal/domain"
	"gatehouse-backend/internal/logger"
	"gatehouse-backend/internal/repository"
)

type notifier struct {
	noteRepo repository.NotificationRepository
	email    EmailSender
}

func NewNotifier(noteRepo repository.NotificationRepository, email EmailSender) Notifier {
	return &notifier{noteRepo: noteRepo, email: email}
}

// ComposeDecisionNotice derives the user-facing {title, content} pair from
// decision data. Deterministic: the same inputs always produce the same pair.
func ComposeDecisionNotice(app *domain.PreApplication, reviewer *domain.User, code *domain.InviteCode) (string, string) {
	switch app.Status {
	case domain.PreApplicationStatusApproved:
		title := "Your application has been approved"
		content := fmt.Sprintf("Congratulations! Your application was approved by %s.", reviewer.Name)
		if code != nil {
			content += fmt.Sprintf("\n\nYour invite code: %s", code.Code)
			if code.ExpiresAt != nil {
				content += fmt.Sprintf("\nThis code expires on %s.", code.ExpiresAt.Format("2006-01-02"))
			}
		}
		if app.Guidance != nil && *app.Guidance != "" {
			content += fmt.Sprintf("\n\nReviewer notes: %s", *app.Guidance)
		}
		return title, content
	case domain.PreApplicationStatusRejected:
		title := "Your application was not approved"
		content := fmt.Sprintf("Your application was reviewed by %s and not approved.", reviewer.Name)
		if app.Guidance != nil && *app.Guidance != "" {
			content += fmt.Sprintf("\n\nGuidance: %s", *app.Guidance)
		}
		content += "\n\nYou may revise your essay and resubmit if the resubmission limit has not been reached."
		return title, content
	default:
		return "Application update", fmt.Sprintf("Your application status is now %s.", app.Status)
	}
}

// NotifyDecision persists an in-app notification and sends an email.
// Both legs are best-effort; the decision itself already committed.
func (n *notifier) NotifyDecision(ctx context.Context, app *domain.PreApplication, reviewer *domain.User, code *domain.InviteCode) {
	title, content := ComposeDecisionNotice(app, reviewer, code)

	note := &domain.Notification{
		UserID:  app.UserID,
		Title:   title,
		Content: content,
		Attributes: map[string]string{
			"pre_application_id": fmt.Sprint(app.ID),
			"status":             string(app.Status),
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to persist decision notification", "application_id", app.ID, "error", err)
	}

	if err := n.email.Send(ctx, app.Email, title, content); err != nil {
		logger.Error("Failed to send decision email", "application_id", app.ID, "error", err)
	}
}
