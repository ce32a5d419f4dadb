package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UploadCandidate is a validated image selected for an in-progress
// submission. It lives in the staging store between file selection and a
// successful submit (or explicit discard / TTL expiry) and nowhere else.
type UploadCandidate struct {
	Filename    string
	ContentType string
	Size        int64
	Bytes       []byte
}

// EncodedImage is the wire form the content API expects embedded in JSON:
// a base64 data URI plus the original file metadata. Derived once from a
// candidate and never modified afterwards.
type EncodedImage struct {
	Data        string
	ContentType string
	Filename    string
	Size        int64
}

func validateUpload(candidate UploadCandidate) error {
	if !strings.HasPrefix(candidate.ContentType, "image/") {
		return &apiError{Status: http.StatusBadRequest, Code: "invalid_file_type", Message: "Please select a valid image file"}
	}
	if candidate.Size > maxUploadBytes {
		return &apiError{Status: http.StatusBadRequest, Code: "file_too_large", Message: "File size must be less than 10MB"}
	}
	return nil
}

// encodeUpload reads the candidate's bytes and produces the data-URI payload.
// A failed read surfaces as encode_failed so the submission aborts before
// anything reaches the upstream.
func encodeUpload(candidate UploadCandidate, r io.Reader) (EncodedImage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return EncodedImage{}, &apiError{Status: http.StatusUnprocessableEntity, Code: "encode_failed", Message: "Could not read the selected file"}
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	return EncodedImage{
		Data:        fmt.Sprintf("data:%s;base64,%s", candidate.ContentType, encoded),
		ContentType: candidate.ContentType,
		Filename:    candidate.Filename,
		Size:        candidate.Size,
	}, nil
}

// readUploadCandidate pulls the uploaded file out of a multipart form. The
// limit reader caps reads one byte past the allowed maximum so oversized
// files are detected without buffering them whole.
func readUploadCandidate(fileHeader *multipart.FileHeader) (UploadCandidate, error) {
	opened, err := fileHeader.Open()
	if err != nil {
		return UploadCandidate{}, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Could not open uploaded file"}
	}
	defer opened.Close()

	data, err := io.ReadAll(io.LimitReader(opened, maxUploadBytes+1))
	if err != nil {
		return UploadCandidate{}, &apiError{Status: http.StatusUnprocessableEntity, Code: "encode_failed", Message: "Could not read the selected file"}
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	name := strings.TrimSpace(fileHeader.Filename)
	if name == "" {
		name = "upload"
	}

	candidate := UploadCandidate{
		Filename:    name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Bytes:       data,
	}
	if err := validateUpload(candidate); err != nil {
		return UploadCandidate{}, err
	}
	return candidate, nil
}

type stagedUpload struct {
	candidate UploadCandidate
	stagedAt  time.Time
}

// uploadStore holds staged candidates between selection and submission. Each
// entry backs a preview URL handed to the client; entries must be released on
// successful submit, explicit removal, or TTL sweep so repeated selections
// cannot accumulate.
type uploadStore struct {
	mu      sync.Mutex
	entries map[string]stagedUpload
}

func newUploadStore() *uploadStore {
	return &uploadStore{entries: make(map[string]stagedUpload)}
}

func (s *uploadStore) put(candidate UploadCandidate) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = stagedUpload{candidate: candidate, stagedAt: time.Now()}
	s.mu.Unlock()
	return id
}

func (s *uploadStore) get(id string) (UploadCandidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	return entry.candidate, ok
}

func (s *uploadStore) release(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

func (s *uploadStore) prune(now time.Time, maxAge time.Duration) {
	s.mu.Lock()
	for id, entry := range s.entries {
		if now.Sub(entry.stagedAt) >= maxAge {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}

func (s *uploadStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (a *App) startUploadCleanup(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-a.shutdown:
				return
			case now := <-ticker.C:
				a.uploads.prune(now, stagedUploadTTL)
			}
		}
	}()
}
