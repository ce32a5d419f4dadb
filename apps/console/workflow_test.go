package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sahilshirsath0/gov-website/libs/mailer"
)

type failingMailProvider struct{}

func (failingMailProvider) Name() string { return "failing" }

func (failingMailProvider) Send(context.Context, mailer.Message) (mailer.SendResult, error) {
	return mailer.SendResult{}, errors.New("smtp down")
}

func newFailingMailer() *mailer.Mailer {
	return mailer.New(failingMailProvider{}, "noreply@test.local")
}

func TestDecideApplicationApprovesFromPending(t *testing.T) {
	app, capture := newTestApp(t)
	listCalls := 0
	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		listCalls++
		return []SevaApplication{
			{ID: "s1", FirstName: "Asha", LastName: "Pawar", Email: "asha@example.com", Status: "pending"},
		}, nil
	}
	var gotID, gotStatus string
	app.setApplicationStatus = func(ctx context.Context, id, status string) error {
		gotID, gotStatus = id, status
		return nil
	}

	if err := app.decideApplication(context.Background(), "s1", "approved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "s1" || gotStatus != "approved" {
		t.Fatalf("unexpected upstream call: %s %s", gotID, gotStatus)
	}
	if listCalls < 2 {
		t.Fatalf("expected a refetch after the decision, got %d list calls", listCalls)
	}

	sent := capture.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one decision email, got %d", len(sent))
	}
	if sent[0].To[0] != "asha@example.com" {
		t.Fatalf("unexpected recipient: %v", sent[0].To)
	}
	if !strings.Contains(sent[0].Subject, "approved") {
		t.Fatalf("unexpected subject: %s", sent[0].Subject)
	}
}

func TestDecideApplicationRejectsTerminalStates(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
	}{
		{name: "approved is terminal", current: "approved", next: "rejected"},
		{name: "rejected is terminal", current: "rejected", next: "approved"},
		{name: "re-approving", current: "approved", next: "approved"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newTestApp(t)
			app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
				return []SevaApplication{{ID: "s1", Status: tc.current}}, nil
			}
			upstreamCalled := false
			app.setApplicationStatus = func(ctx context.Context, id, status string) error {
				upstreamCalled = true
				return nil
			}

			err := app.decideApplication(context.Background(), "s1", tc.next)
			var apiErr *apiError
			if !errors.As(err, &apiErr) || apiErr.Code != "invalid_status_transition" {
				t.Fatalf("expected invalid_status_transition, got %v", err)
			}
			if upstreamCalled {
				t.Fatal("invalid transition must never reach the upstream")
			}
		})
	}
}

func TestDecideApplicationChecksFreshStatus(t *testing.T) {
	app, _ := newTestApp(t)
	// The cached snapshot still says pending, but the record was decided
	// elsewhere in the meantime. The decision must be guarded against the
	// fresh upstream state, not the cache.
	app.applications.mu.Lock()
	app.applications.items = []SevaApplication{{ID: "s1", Status: "pending"}}
	app.applications.loaded = true
	app.applications.mu.Unlock()

	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		return []SevaApplication{{ID: "s1", Status: "approved"}}, nil
	}
	upstreamCalled := false
	app.setApplicationStatus = func(ctx context.Context, id, status string) error {
		upstreamCalled = true
		return nil
	}

	err := app.decideApplication(context.Background(), "s1", "rejected")
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_status_transition" {
		t.Fatalf("expected invalid_status_transition against the fresh state, got %v", err)
	}
	if upstreamCalled {
		t.Fatal("stale cached status must not reach the upstream")
	}
}

func TestDecideApplicationUnknownID(t *testing.T) {
	app, _ := newTestApp(t)
	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		return []SevaApplication{}, nil
	}

	err := app.decideApplication(context.Background(), "missing", "approved")
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Code != "not_found" {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestDecideApplicationSkipsEmailWithoutAddress(t *testing.T) {
	app, capture := newTestApp(t)
	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		return []SevaApplication{{ID: "s1", Status: "pending"}}, nil
	}
	app.setApplicationStatus = func(ctx context.Context, id, status string) error { return nil }

	if err := app.decideApplication(context.Background(), "s1", "rejected"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capture.messages()) != 0 {
		t.Fatal("expected no email when the application has no address")
	}
}

func TestDecideApplicationMailFailureDoesNotFailDecision(t *testing.T) {
	app, _ := newTestApp(t)
	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		return []SevaApplication{{ID: "s1", Email: "a@example.com", Status: "pending"}}, nil
	}
	app.setApplicationStatus = func(ctx context.Context, id, status string) error { return nil }
	app.mailer = newFailingMailer()

	if err := app.decideApplication(context.Background(), "s1", "approved"); err != nil {
		t.Fatalf("decision must survive a mail failure, got: %v", err)
	}
}

func TestTriageFeedbackAllStatusesReachable(t *testing.T) {
	from := []string{"pending", "reviewed", "resolved"}
	to := []string{"pending", "reviewed", "resolved"}
	for _, current := range from {
		for _, next := range to {
			app, _ := newTestApp(t)
			app.feedback.listFn = func(ctx context.Context) ([]FeedbackEntry, error) {
				return []FeedbackEntry{{ID: "f1", Status: current}}, nil
			}
			var gotStatus, gotNotes string
			app.setFeedbackStatus = func(ctx context.Context, id, status, adminNotes string) error {
				gotStatus, gotNotes = status, adminNotes
				return nil
			}

			if err := app.triageFeedback(context.Background(), "f1", next, "checked on site"); err != nil {
				t.Fatalf("%s -> %s: unexpected error: %v", current, next, err)
			}
			if gotStatus != next || gotNotes != "checked on site" {
				t.Fatalf("%s -> %s: unexpected upstream call: %s %q", current, next, gotStatus, gotNotes)
			}
		}
	}
}

func TestTriageFeedbackRejectsUnknownStatus(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.triageFeedback(context.Background(), "f1", "archived", "")
	var apiErr *apiError
	if !errors.As(err, &apiErr) || apiErr.Code != "invalid_payload" {
		t.Fatalf("expected invalid_payload, got %v", err)
	}
}

func TestBuildDecisionEmailRejected(t *testing.T) {
	app, _ := newTestApp(t)
	msg := app.buildDecisionEmail(SevaApplication{FirstName: "Asha", LastName: "Pawar", Email: "a@example.com"}, "rejected")
	if msg.To[0] != "a@example.com" {
		t.Fatalf("unexpected recipient: %v", msg.To)
	}
	if !strings.Contains(msg.Text, "Asha Pawar") {
		t.Fatalf("expected applicant name in body: %s", msg.Text)
	}
	if strings.Contains(strings.ToLower(msg.Subject), "approved") && !strings.Contains(strings.ToLower(msg.Subject), "not") {
		t.Fatalf("rejection subject reads like an approval: %s", msg.Subject)
	}
}
