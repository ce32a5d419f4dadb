package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sahilshirsath0/gov-website/libs/mailer"
)

// applicationTransitions is the Nagrik Seva decision machine. Approved and
// rejected are terminal; every decision starts from pending.
var applicationTransitions = map[string][]string{
	"pending":  {"approved", "rejected"},
	"approved": {},
	"rejected": {},
}

// feedbackStatuses are all mutually reachable, so triage only checks
// membership, not the current state.
var feedbackStatuses = map[string]bool{
	"pending":  true,
	"reviewed": true,
	"resolved": true,
}

func invalidTransition(from, to string) error {
	return &apiError{
		Status:  http.StatusConflict,
		Code:    "invalid_status_transition",
		Message: fmt.Sprintf("Cannot move an application from %s to %s", from, to),
	}
}

// decideApplication moves one application to approved or rejected. The
// current status is always re-read from the content API before the guard
// runs, so a stale console tab cannot re-decide an already decided
// application. The applicant notification is best effort: a mail failure
// never rolls back the decision.
func (a *App) decideApplication(ctx context.Context, id, nextStatus string) error {
	items, err := a.applications.refetch(ctx)
	if err != nil {
		return err
	}
	var current SevaApplication
	var found bool
	for _, item := range items {
		if item.ID == id {
			current, found = item, true
			break
		}
	}
	if !found {
		return &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "Application not found"}
	}

	if !containsString(applicationTransitions[current.Status], nextStatus) {
		return invalidTransition(current.Status, nextStatus)
	}

	if err := a.setApplicationStatus(ctx, id, nextStatus); err != nil {
		return withFallbackMessage(err, "Failed to update application status")
	}

	if _, err := a.applications.refetch(ctx); err != nil {
		a.logger.Warn("post-decision refetch failed", "application_id", id, "error", err)
	}

	if current.Email != "" {
		msg := a.buildDecisionEmail(current, nextStatus)
		if _, err := a.mailer.Send(ctx, msg); err != nil {
			a.logger.Error("decision email failed", "application_id", id, "error", err)
		} else {
			a.logger.Info("decision email sent", "application_id", id, "status", nextStatus, "provider", a.mailer.ProviderName())
		}
	}
	return nil
}

// triageFeedback records a new triage status plus the reviewer's notes.
// Unlike applications, every feedback status can move to every other.
func (a *App) triageFeedback(ctx context.Context, id, nextStatus, adminNotes string) error {
	if !feedbackStatuses[nextStatus] {
		return &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Unknown feedback status"}
	}

	_, found, err := a.feedback.find(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "Feedback not found"}
	}

	if err := a.setFeedbackStatus(ctx, id, nextStatus, adminNotes); err != nil {
		return withFallbackMessage(err, "Failed to update feedback status")
	}

	if _, err := a.feedback.refetch(ctx); err != nil {
		a.logger.Warn("post-triage refetch failed", "feedback_id", id, "error", err)
	}
	return nil
}

func (a *App) buildDecisionEmail(app SevaApplication, status string) mailer.Message {
	applicant := strings.TrimSpace(app.FirstName + " " + app.LastName)
	if applicant == "" {
		applicant = "Applicant"
	}

	var subject, headline, detail string
	if status == "approved" {
		subject = "Your Nagrik Seva application has been approved"
		headline = "Application approved"
		detail = "Your application has been approved. You will be contacted about the next steps shortly."
	} else {
		subject = "Update on your Nagrik Seva application"
		headline = "Application not approved"
		detail = "After review, your application could not be approved. You can contact the office for details or submit a new application."
	}

	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; line-height: 1.6; color: #333;">
			<h2>Dear %s,</h2>
			<h3>%s</h3>
			<p>%s</p>
			<hr style="margin-top: 40px; border: 0; border-top: 1px solid #eee;" />
			<p style="font-size: 12px; color: #999; text-align: center;">
				This is an automated message from the Gram Panchayat office. Please do not reply.
			</p>
		</div>
	`, applicant, headline, detail)

	text := fmt.Sprintf("Dear %s,\n\n%s\n\n%s\n", applicant, headline, detail)

	return mailer.Message{
		To:      []string{app.Email},
		Subject: subject,
		HTML:    html,
		Text:    text,
	}
}
