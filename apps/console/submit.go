package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
)

// submitOptions captures how one entity treats images and the active flag
// during create and edit. The rules differ per collection and are fixed at
// wiring time, never derived from the request.
type submitOptions struct {
	// imageAllowed marks entities that carry an image at all; when false a
	// staged upload is ignored in every mode.
	imageAllowed bool
	// imageRequiredOnCreate rejects a create with no staged upload.
	imageRequiredOnCreate bool
	// imageAllowedOnEdit lets an edit replace the stored image; when false a
	// staged upload is ignored on edit.
	imageAllowedOnEdit bool
	// forceActiveOnEdit sets isActive true on every update payload, matching
	// how the public site decides visibility.
	forceActiveOnEdit bool
	// failureMessage is surfaced when the content API rejects the write
	// without a message of its own.
	failureMessage string
}

// entityForm is the submit-side view of one entity's request body: validate
// reports the first missing required field, payload emits the entity fields
// keyed the way the content API stores them.
type entityForm interface {
	validate() error
	payload() map[string]any
}

func missingField(message string) error {
	return &apiError{Status: http.StatusBadRequest, Code: "missing_required_field", Message: message}
}

// submission is one create or update run through the shared pipeline.
type submission struct {
	mode     string // "create" or "edit"
	recordID string
	form     entityForm
	uploadID string
	opts     submitOptions
}

// runSubmission executes the full write pipeline: double-submit guard, form
// validation, staged-upload resolution, encoding, payload assembly, the
// upstream write and a single refetch on success. A staged upload is only
// released once the upstream write succeeds so a failed submit can be
// retried with the same file.
func runSubmission[T adminRecord](ctx context.Context, a *App, res *resource[T], sub submission) error {
	guardKey := res.path + ":" + sub.mode + ":" + sub.recordID
	if !a.beginSubmission(guardKey) {
		return &apiError{Status: http.StatusConflict, Code: "submission_in_flight", Message: "A submission is already in progress"}
	}
	defer a.endSubmission(guardKey)

	if err := sub.form.validate(); err != nil {
		return err
	}

	imageWanted := sub.opts.imageAllowed && (sub.mode == "create" || sub.opts.imageAllowedOnEdit)

	var candidate UploadCandidate
	var staged bool
	if imageWanted && sub.uploadID != "" {
		candidate, staged = a.uploads.get(sub.uploadID)
		if !staged {
			return &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "The selected image is no longer available, please choose it again"}
		}
	}
	if sub.mode == "create" && sub.opts.imageRequiredOnCreate && !staged {
		return missingField("Please select an image")
	}

	payload := sub.form.payload()
	if staged {
		encoded, err := encodeUpload(candidate, bytes.NewReader(candidate.Bytes))
		if err != nil {
			return err
		}
		payload["imageData"] = encoded.Data
		payload["contentType"] = encoded.ContentType
		payload["filename"] = encoded.Filename
		payload["size"] = encoded.Size
	}
	if sub.mode == "edit" && sub.opts.forceActiveOnEdit {
		payload["isActive"] = true
	}

	var err error
	if sub.mode == "create" {
		err = res.createFn(ctx, payload)
	} else {
		err = res.updateFn(ctx, sub.recordID, payload)
	}
	if err != nil {
		return withFallbackMessage(err, sub.opts.failureMessage)
	}

	if staged {
		a.uploads.release(sub.uploadID)
	}
	if _, err := res.refetch(ctx); err != nil {
		a.logger.Warn("post-submit refetch failed", "path", res.path, "error", err)
	}
	return nil
}

// withFallbackMessage fills an upstream_rejected error's message when the
// content API sent none.
func withFallbackMessage(err error, fallback string) error {
	apiErr, ok := err.(*apiError)
	if !ok || apiErr.Code != "upstream_rejected" {
		return err
	}
	if strings.TrimSpace(apiErr.Message) == "" {
		return &apiError{Status: apiErr.Status, Code: apiErr.Code, Message: fallback}
	}
	return err
}

func (a *App) beginSubmission(key string) bool {
	a.inflightMu.Lock()
	defer a.inflightMu.Unlock()
	if a.inflight[key] {
		return false
	}
	a.inflight[key] = true
	return true
}

func (a *App) endSubmission(key string) {
	a.inflightMu.Lock()
	delete(a.inflight, key)
	a.inflightMu.Unlock()
}
