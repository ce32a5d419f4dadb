package main

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sampleApplications() []SevaApplication {
	return []SevaApplication{
		{ID: "s1", FirstName: "Asha", LastName: "Pawar", WhatsappNumber: "9890000001", Email: "asha@example.com", Status: "pending"},
		{ID: "s2", FirstName: "Vikram", LastName: "Shinde", WhatsappNumber: "9890000002", Email: "vikram@example.com", Status: "approved"},
	}
}

func TestBuildApplicationsCSV(t *testing.T) {
	data, err := buildApplicationsCSV(sampleApplications())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(rows))
	}
	if rows[0][1] != "first_name" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "s1" || rows[1][1] != "Asha" || rows[1][10] != "pending" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
}

func TestBuildFeedbackCSVEscapesFields(t *testing.T) {
	entries := []FeedbackEntry{
		{ID: "f1", Name: `Quote "me"`, Subject: "Road, drainage", Message: "line1\nline2", Status: "pending"},
	}
	data, err := buildFeedbackCSV(entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if rows[1][1] != `Quote "me"` || rows[1][4] != "Road, drainage" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
	if rows[1][5] != "line1\nline2" {
		t.Fatalf("newline not preserved: %q", rows[1][5])
	}
}

func TestBuildApplicationsPDF(t *testing.T) {
	data, err := buildApplicationsPDF(sampleApplications(), time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatalf("expected a PDF document, got %d bytes", len(data))
	}
}

func TestExportEndpointHonorsFiltersAndFetchesFresh(t *testing.T) {
	app, _ := newTestApp(t)
	listCalls := 0
	app.applications.listFn = func(ctx context.Context) ([]SevaApplication, error) {
		listCalls++
		return sampleApplications(), nil
	}
	router := newTestRouter(t, app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, app, http.MethodGet, "/admin/api/nagrik-seva/applications/export?format=csv&status=approved", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "applications.csv") {
		t.Fatalf("unexpected disposition: %s", rec.Header().Get("Content-Disposition"))
	}
	if listCalls != 1 {
		t.Fatalf("expected a fresh fetch, got %d list calls", listCalls)
	}

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "s2" {
		t.Fatalf("expected only the approved application, got %v", rows)
	}
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	app, _ := newTestApp(t)
	router := newTestRouter(t, app)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, app, http.MethodGet, "/admin/api/feedback/export?format=xlsx", ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBuildFeedbackPDFEmptyList(t *testing.T) {
	data, err := buildFeedbackPDF(nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Fatal("expected a PDF document")
	}
}
