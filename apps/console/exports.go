package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
)

// handleExportApplications streams the filtered application list as CSV or
// a summary PDF. Filters match the list endpoint so what the operator sees
// is what gets exported; the data is always fetched fresh so an export never
// serves a stale snapshot.
func (a *App) handleExportApplications(c *gin.Context) {
	items, err := a.applications.refetch(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}
	filtered := filterRecords(items, c.Query("search"), c.Query("status"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := buildApplicationsCSV(filtered)
		if err != nil {
			a.writeError(c, err)
			return
		}
		sendExport(c, "applications.csv", "text/csv", []byte(data))
	case "pdf":
		data, err := buildApplicationsPDF(filtered, time.Now())
		if err != nil {
			a.writeError(c, err)
			return
		}
		sendExport(c, "applications.pdf", "application/pdf", data)
	default:
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "format must be csv or pdf"})
	}
}

func (a *App) handleExportFeedback(c *gin.Context) {
	items, err := a.feedback.refetch(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}
	filtered := filterRecords(items, c.Query("search"), c.Query("status"))

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := buildFeedbackCSV(filtered)
		if err != nil {
			a.writeError(c, err)
			return
		}
		sendExport(c, "feedback.csv", "text/csv", []byte(data))
	case "pdf":
		data, err := buildFeedbackPDF(filtered, time.Now())
		if err != nil {
			a.writeError(c, err)
			return
		}
		sendExport(c, "feedback.pdf", "application/pdf", data)
	default:
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "format must be csv or pdf"})
	}
}

func sendExport(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

func buildApplicationsCSV(apps []SevaApplication) (string, error) {
	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	headers := []string{"id", "first_name", "middle_name", "last_name", "date_of_birth", "whatsapp_number", "email", "aadhaar_number", "certificate_holder_name", "date_of_registration", "status", "created_at"}
	if err := writer.Write(headers); err != nil {
		return "", err
	}
	for _, app := range apps {
		row := []string{
			app.ID,
			app.FirstName,
			app.MiddleName,
			app.LastName,
			app.DateOfBirth,
			app.WhatsappNumber,
			app.Email,
			app.AadhaarNumber,
			app.CertificateHolderName,
			app.DateOfRegistration,
			app.Status,
			app.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

func buildFeedbackCSV(entries []FeedbackEntry) (string, error) {
	buffer := bytes.NewBuffer(nil)
	writer := csv.NewWriter(buffer)
	headers := []string{"id", "name", "email", "phone", "subject", "message", "status", "admin_notes", "reviewed_at", "created_at"}
	if err := writer.Write(headers); err != nil {
		return "", err
	}
	for _, entry := range entries {
		row := []string{
			entry.ID,
			entry.Name,
			entry.Email,
			entry.Phone,
			entry.Subject,
			entry.Message,
			entry.Status,
			entry.AdminNotes,
			entry.ReviewedAt,
			entry.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

func buildApplicationsPDF(apps []SevaApplication, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, "Nagrik Seva applications")

	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total applications: %d", len(apps)))
	pdf.Ln(10)

	writeStatusDistribution(pdf, statusCountsOf(apps))

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Applications")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, app := range apps {
		name := app.FirstName + " " + app.LastName
		pdf.Cell(0, 6, fmt.Sprintf("- %s (%s) %s", name, app.WhatsappNumber, app.Status))
		pdf.Ln(6)
	}

	buffer := bytes.NewBuffer(nil)
	if err := pdf.Output(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func buildFeedbackPDF(entries []FeedbackEntry, generatedAt time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 16)
	pdf.Cell(0, 10, "Citizen feedback")

	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total entries: %d", len(entries)))
	pdf.Ln(10)

	writeStatusDistribution(pdf, statusCountsOf(entries))

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Entries")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, entry := range entries {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %s (%s)", entry.Name, entry.Subject, entry.Status))
		pdf.Ln(6)
	}

	buffer := bytes.NewBuffer(nil)
	if err := pdf.Output(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func statusCountsOf[T adminRecord](items []T) map[string]int {
	counts := map[string]int{}
	for _, item := range items {
		counts[item.statusKey()]++
	}
	return counts
}

func writeStatusDistribution(pdf *fpdf.Fpdf, counts map[string]int) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, "Status distribution")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return counts[keys[i]] > counts[keys[j]] })
	for _, key := range keys {
		pdf.Cell(0, 6, fmt.Sprintf("- %s: %d", key, counts[key]))
		pdf.Ln(6)
	}
}
