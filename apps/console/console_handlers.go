package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(r *gin.Engine) {
	admin := r.Group("/admin/api")
	admin.POST("/login", a.handleAdminLogin)

	authed := admin.Group("")
	authed.Use(a.requireAdminSession())
	{
		authed.POST("/logout", a.handleAdminLogout)
		authed.GET("/session", a.handleAdminSessionInfo)

		authed.POST("/uploads", a.handleStageUpload)
		authed.GET("/uploads/:id/preview", a.handleUploadPreview)
		authed.DELETE("/uploads/:id", a.handleReleaseUpload)

		authed.GET("/announcements", listHandler(a, a.announcements))
		authed.POST("/announcements", a.handleCreateAnnouncement)
		authed.PUT("/announcements/:id", a.handleUpdateAnnouncement)
		authed.DELETE("/announcements/:id", deleteHandler(a, a.announcements, "Failed to delete announcement"))

		authed.GET("/gallery", listHandler(a, a.gallery))
		authed.POST("/gallery", a.handleCreateGalleryItem)
		authed.PUT("/gallery/:id", a.handleUpdateGalleryItem)
		authed.DELETE("/gallery/:id", deleteHandler(a, a.gallery, "Failed to delete gallery item"))

		authed.GET("/awards", listHandler(a, a.awards))
		authed.POST("/awards", a.handleCreateAward)
		authed.PUT("/awards/:id", a.handleUpdateAward)
		authed.DELETE("/awards/:id", deleteHandler(a, a.awards, "Failed to delete award"))

		authed.GET("/members", listHandler(a, a.members))
		authed.POST("/members", a.handleCreateMember)
		authed.PUT("/members/:id", a.handleUpdateMember)
		authed.DELETE("/members/:id", deleteHandler(a, a.members, "Failed to delete member"))

		authed.GET("/programs", listHandler(a, a.programs))
		authed.POST("/programs", a.handleCreateProgram)
		authed.PUT("/programs/:id", a.handleUpdateProgram)
		authed.DELETE("/programs/:id", deleteHandler(a, a.programs, "Failed to delete program"))

		authed.GET("/village-details", listHandler(a, a.villageDetails))
		authed.POST("/village-details", a.handleCreateVillageDetail)
		authed.PUT("/village-details/:id", a.handleUpdateVillageDetail)
		authed.DELETE("/village-details/:id", deleteHandler(a, a.villageDetails, "Failed to delete village detail"))

		authed.GET("/feedback", listHandler(a, a.feedback))
		authed.GET("/feedback/export", a.handleExportFeedback)
		authed.PUT("/feedback/:id/status", a.handleFeedbackStatus)
		authed.DELETE("/feedback/:id", deleteHandler(a, a.feedback, "Failed to delete feedback"))

		authed.GET("/nagrik-seva/applications", listHandler(a, a.applications))
		authed.GET("/nagrik-seva/applications/export", a.handleExportApplications)
		authed.PATCH("/nagrik-seva/applications/:id/status", a.handleApplicationStatus)

		authed.GET("/nagrik-seva/header", a.handleGetSevaHeader)
		authed.POST("/nagrik-seva/header", a.handleUpdateSevaHeader)

		authed.GET("/dashboard/stats", a.handleDashboardStats)
	}
}

func (a *App) handleAdminSessionInfo(c *gin.Context) {
	session, ok := adminSessionFrom(c)
	if !ok {
		writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Admin session required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"username": session.Username}})
}

// listHandler serves a collection with the shared search and status filter.
// refresh=true forces an upstream fetch; otherwise the cached snapshot is
// used once loaded.
func listHandler[T adminRecord](a *App, res *resource[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var items []T
		var err error
		if c.Query("refresh") == "true" {
			items, err = res.refetch(ctx)
		} else {
			items, err = res.ensureLoaded(ctx)
		}
		if err != nil {
			a.writeError(c, err)
			return
		}

		filtered := filterRecords(items, c.Query("search"), c.Query("status"))
		c.JSON(http.StatusOK, gin.H{"data": filtered})
	}
}

func deleteHandler[T adminRecord](a *App, res *resource[T], failureMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := res.deleteFn(ctx, c.Param("id")); err != nil {
			a.writeError(c, asDeleteError(err, failureMessage))
			return
		}
		if _, err := res.refetch(ctx); err != nil {
			a.logger.Warn("post-delete refetch failed", "path", res.path, "error", err)
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
	}
}

// asDeleteError recodes an upstream rejection of a delete so the client can
// tell it apart from a failed save.
func asDeleteError(err error, fallback string) error {
	apiErr, ok := err.(*apiError)
	if !ok || apiErr.Code != "upstream_rejected" {
		return err
	}
	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = fallback
	}
	return &apiError{Status: apiErr.Status, Code: "delete_failed", Message: message}
}

func submitHandler[T adminRecord](a *App, res *resource[T], c *gin.Context, sub submission) {
	if err := runSubmission(c.Request.Context(), a, res, sub); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

func bindSubmission(c *gin.Context, form any) bool {
	if err := c.ShouldBindJSON(form); err != nil {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Request body is not valid JSON"})
		return false
	}
	return true
}

// Per-entity forms. Each knows its required fields and the payload keys the
// content API stores, nothing else.

type announcementForm struct {
	Message  string `json:"message"`
	IsActive *bool  `json:"isActive"`
}

func (f announcementForm) validate() error {
	if strings.TrimSpace(f.Message) == "" {
		return missingField("Message is required")
	}
	return nil
}

func (f announcementForm) payload() map[string]any {
	return map[string]any{
		"message":  strings.TrimSpace(f.Message),
		"isActive": boolOrTrue(f.IsActive),
	}
}

type galleryForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (f galleryForm) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return missingField("Name is required")
	}
	return nil
}

func (f galleryForm) payload() map[string]any {
	return map[string]any{
		"name":        strings.TrimSpace(f.Name),
		"description": strings.TrimSpace(f.Description),
		"isActive":    boolOrTrue(f.IsActive),
	}
}

type awardForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AwardDate   string `json:"awardDate"`
	IsActive    *bool  `json:"isActive"`
}

func (f awardForm) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return missingField("Name is required")
	}
	return nil
}

func (f awardForm) payload() map[string]any {
	p := map[string]any{
		"name":        strings.TrimSpace(f.Name),
		"description": strings.TrimSpace(f.Description),
		"isActive":    boolOrTrue(f.IsActive),
	}
	if date := strings.TrimSpace(f.AwardDate); date != "" {
		p["awardDate"] = date
	}
	return p
}

type memberForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    string `json:"position"`
	Department  string `json:"department"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	IsActive    *bool  `json:"isActive"`
}

func (f memberForm) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return missingField("Name is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		return missingField("Description is required")
	}
	return nil
}

func (f memberForm) payload() map[string]any {
	return map[string]any{
		"name":        strings.TrimSpace(f.Name),
		"description": strings.TrimSpace(f.Description),
		"position":    strings.TrimSpace(f.Position),
		"department":  strings.TrimSpace(f.Department),
		"email":       strings.TrimSpace(f.Email),
		"phone":       strings.TrimSpace(f.Phone),
		"isActive":    boolOrTrue(f.IsActive),
	}
}

type programForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (f programForm) validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return missingField("Name is required")
	}
	if strings.TrimSpace(f.Description) == "" {
		return missingField("Description is required")
	}
	return nil
}

func (f programForm) payload() map[string]any {
	return map[string]any{
		"name":        strings.TrimSpace(f.Name),
		"description": strings.TrimSpace(f.Description),
		"isActive":    boolOrTrue(f.IsActive),
	}
}

type villageDetailForm struct {
	Title       LocalizedText `json:"title"`
	Description LocalizedText `json:"description"`
	IsActive    *bool         `json:"isActive"`
}

func (f villageDetailForm) validate() error {
	if strings.TrimSpace(f.Title.En) == "" {
		return missingField("English title is required")
	}
	if strings.TrimSpace(f.Title.Mr) == "" {
		return missingField("Marathi title is required")
	}
	if strings.TrimSpace(f.Description.En) == "" {
		return missingField("English description is required")
	}
	if strings.TrimSpace(f.Description.Mr) == "" {
		return missingField("Marathi description is required")
	}
	return nil
}

func (f villageDetailForm) payload() map[string]any {
	p := map[string]any{
		"title": map[string]string{
			"en": strings.TrimSpace(f.Title.En),
			"mr": strings.TrimSpace(f.Title.Mr),
		},
		"description": map[string]string{
			"en": strings.TrimSpace(f.Description.En),
			"mr": strings.TrimSpace(f.Description.Mr),
		},
	}
	// Village details keep their stored visibility on edit, so isActive only
	// travels when the client sent it.
	if f.IsActive != nil {
		p["isActive"] = *f.IsActive
	}
	return p
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

var (
	announcementSubmit = submitOptions{
		forceActiveOnEdit: true,
		failureMessage:    "Failed to save announcement",
	}
	gallerySubmit = submitOptions{
		imageAllowed:          true,
		imageRequiredOnCreate: true,
		forceActiveOnEdit:     true,
		failureMessage:        "Failed to save gallery item",
	}
	awardSubmit = submitOptions{
		imageAllowed:          true,
		imageRequiredOnCreate: true,
		forceActiveOnEdit:     true,
		failureMessage:        "Failed to save award",
	}
	memberSubmit = submitOptions{
		imageAllowed:      true,
		forceActiveOnEdit: true,
		failureMessage:    "Failed to save member",
	}
	programSubmit = submitOptions{
		imageAllowed:          true,
		imageRequiredOnCreate: true,
		imageAllowedOnEdit:    true,
		forceActiveOnEdit:     true,
		failureMessage:        "Failed to save program",
	}
	villageDetailSubmit = submitOptions{
		imageAllowed:          true,
		imageRequiredOnCreate: true,
		imageAllowedOnEdit:    true,
		failureMessage:        "Failed to save village detail",
	}
)

func (a *App) handleCreateAnnouncement(c *gin.Context) {
	var req struct {
		announcementForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.announcements, c, submission{mode: "create", form: req.announcementForm, uploadID: req.UploadID, opts: announcementSubmit})
}

func (a *App) handleUpdateAnnouncement(c *gin.Context) {
	var req struct {
		announcementForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.announcements, c, submission{mode: "edit", recordID: c.Param("id"), form: req.announcementForm, uploadID: req.UploadID, opts: announcementSubmit})
}

func (a *App) handleCreateGalleryItem(c *gin.Context) {
	var req struct {
		galleryForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.gallery, c, submission{mode: "create", form: req.galleryForm, uploadID: req.UploadID, opts: gallerySubmit})
}

func (a *App) handleUpdateGalleryItem(c *gin.Context) {
	var req struct {
		galleryForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.gallery, c, submission{mode: "edit", recordID: c.Param("id"), form: req.galleryForm, uploadID: req.UploadID, opts: gallerySubmit})
}

func (a *App) handleCreateAward(c *gin.Context) {
	var req struct {
		awardForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.awards, c, submission{mode: "create", form: req.awardForm, uploadID: req.UploadID, opts: awardSubmit})
}

func (a *App) handleUpdateAward(c *gin.Context) {
	var req struct {
		awardForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.awards, c, submission{mode: "edit", recordID: c.Param("id"), form: req.awardForm, uploadID: req.UploadID, opts: awardSubmit})
}

func (a *App) handleCreateMember(c *gin.Context) {
	var req struct {
		memberForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.members, c, submission{mode: "create", form: req.memberForm, uploadID: req.UploadID, opts: memberSubmit})
}

func (a *App) handleUpdateMember(c *gin.Context) {
	var req struct {
		memberForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.members, c, submission{mode: "edit", recordID: c.Param("id"), form: req.memberForm, uploadID: req.UploadID, opts: memberSubmit})
}

func (a *App) handleCreateProgram(c *gin.Context) {
	var req struct {
		programForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.programs, c, submission{mode: "create", form: req.programForm, uploadID: req.UploadID, opts: programSubmit})
}

func (a *App) handleUpdateProgram(c *gin.Context) {
	var req struct {
		programForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.programs, c, submission{mode: "edit", recordID: c.Param("id"), form: req.programForm, uploadID: req.UploadID, opts: programSubmit})
}

func (a *App) handleCreateVillageDetail(c *gin.Context) {
	var req struct {
		villageDetailForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.villageDetails, c, submission{mode: "create", form: req.villageDetailForm, uploadID: req.UploadID, opts: villageDetailSubmit})
}

func (a *App) handleUpdateVillageDetail(c *gin.Context) {
	var req struct {
		villageDetailForm
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	submitHandler(a, a.villageDetails, c, submission{mode: "edit", recordID: c.Param("id"), form: req.villageDetailForm, uploadID: req.UploadID, opts: villageDetailSubmit})
}

func (a *App) handleFeedbackStatus(c *gin.Context) {
	var req struct {
		Status     string `json:"status" binding:"required"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Status is required"})
		return
	}
	if err := a.triageFeedback(c.Request.Context(), c.Param("id"), req.Status, strings.TrimSpace(req.AdminNotes)); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

func (a *App) handleApplicationStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Status is required"})
		return
	}
	if err := a.decideApplication(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

func (a *App) handleGetSevaHeader(c *gin.Context) {
	header, err := a.getSevaHeader(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": header})
}

// handleUpdateSevaHeader replaces the citizen-service banner. The banner is
// image-only, so a staged upload is mandatory.
func (a *App) handleUpdateSevaHeader(c *gin.Context) {
	var req struct {
		UploadID string `json:"uploadId"`
	}
	if !bindSubmission(c, &req) {
		return
	}
	if req.UploadID == "" {
		writeAPIError(c, missingField("Please select an image"))
		return
	}

	const guardKey = "/nagrik-seva/header:edit:"
	if !a.beginSubmission(guardKey) {
		writeAPIError(c, &apiError{Status: http.StatusConflict, Code: "submission_in_flight", Message: "A submission is already in progress"})
		return
	}
	defer a.endSubmission(guardKey)

	candidate, ok := a.uploads.get(req.UploadID)
	if !ok {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "The selected image is no longer available, please choose it again"})
		return
	}

	encoded, err := encodeUpload(candidate, bytes.NewReader(candidate.Bytes))
	if err != nil {
		a.writeError(c, err)
		return
	}

	payload := map[string]any{
		"imageData":   encoded.Data,
		"contentType": encoded.ContentType,
		"filename":    encoded.Filename,
		"size":        encoded.Size,
	}
	if err := a.updateSevaHeader(c.Request.Context(), payload); err != nil {
		a.writeError(c, withFallbackMessage(err, "Failed to update header image"))
		return
	}

	a.uploads.release(req.UploadID)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

func (a *App) handleStageUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "A file field is required"})
		return
	}

	candidate, err := readUploadCandidate(fileHeader)
	if err != nil {
		writeAPIError(c, err)
		return
	}

	id := a.uploads.put(candidate)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"uploadId":    id,
		"previewUrl":  "/admin/api/uploads/" + id + "/preview",
		"filename":    candidate.Filename,
		"contentType": candidate.ContentType,
		"size":        candidate.Size,
	}})
}

func (a *App) handleUploadPreview(c *gin.Context) {
	candidate, ok := a.uploads.get(c.Param("id"))
	if !ok {
		writeAPIError(c, &apiError{Status: http.StatusNotFound, Code: "not_found", Message: "Upload not found"})
		return
	}
	c.Data(http.StatusOK, candidate.ContentType, candidate.Bytes)
}

func (a *App) handleReleaseUpload(c *gin.Context) {
	a.uploads.release(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

// handleDashboardStats aggregates per-collection counts. A failing
// collection degrades to zero instead of failing the whole dashboard.
func (a *App) handleDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	stats := gin.H{
		"announcements":       a.countOf(ctx, "announcements", func(ctx context.Context) (int, error) { return countItems(ctx, a.announcements) }),
		"gallery":             a.countOf(ctx, "gallery", func(ctx context.Context) (int, error) { return countItems(ctx, a.gallery) }),
		"awards":              a.countOf(ctx, "awards", func(ctx context.Context) (int, error) { return countItems(ctx, a.awards) }),
		"members":             a.countOf(ctx, "members", func(ctx context.Context) (int, error) { return countItems(ctx, a.members) }),
		"programs":            a.countOf(ctx, "programs", func(ctx context.Context) (int, error) { return countItems(ctx, a.programs) }),
		"villageDetails":      a.countOf(ctx, "village-details", func(ctx context.Context) (int, error) { return countItems(ctx, a.villageDetails) }),
		"pendingFeedback":     a.countOf(ctx, "feedback", func(ctx context.Context) (int, error) { return countByStatus(ctx, a.feedback, "pending") }),
		"pendingApplications": a.countOf(ctx, "applications", func(ctx context.Context) (int, error) { return countByStatus(ctx, a.applications, "pending") }),
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (a *App) countOf(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) int {
	count, err := fn(ctx)
	if err != nil {
		a.logger.Warn("dashboard count failed", "collection", name, "error", err)
		return 0
	}
	return count
}

func countItems[T adminRecord](ctx context.Context, res *resource[T]) (int, error) {
	items, err := res.ensureLoaded(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func countByStatus[T adminRecord](ctx context.Context, res *resource[T], status string) (int, error) {
	items, err := res.ensureLoaded(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, item := range items {
		if item.statusKey() == status {
			count++
		}
	}
	return count, nil
}

// Upstream operations outside the generic resource shape.

func (a *App) fetchSevaHeaderUpstream(ctx context.Context) (*SevaHeader, error) {
	var header SevaHeader
	if err := a.upstream.do(ctx, http.MethodGet, "/nagrik-seva/header", nil, &header); err != nil {
		return nil, err
	}
	return &header, nil
}

func (a *App) updateSevaHeaderUpstream(ctx context.Context, payload map[string]any) error {
	return a.upstream.do(ctx, http.MethodPost, "/nagrik-seva/header", payload, nil)
}

func (a *App) setFeedbackStatusUpstream(ctx context.Context, id, status, adminNotes string) error {
	body := map[string]any{"status": status, "adminNotes": adminNotes}
	return a.upstream.do(ctx, http.MethodPut, "/feedback/"+id+"/status", body, nil)
}

func (a *App) setApplicationStatusUpstream(ctx context.Context, id, status string) error {
	body := map[string]any{"status": status}
	return a.upstream.do(ctx, http.MethodPatch, "/nagrik-seva/applications/"+id+"/status", body, nil)
}
