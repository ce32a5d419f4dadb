package main

import "strings"

// ImageAttachment mirrors how the content API stores an uploaded image:
// a self-describing base64 data URI plus the original file metadata.
type ImageAttachment struct {
	Data        string `json:"data,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// AuditUser is the server-assigned author reference on managed records.
type AuditUser struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// LocalizedText holds the bilingual fields used by village details.
type LocalizedText struct {
	En string `json:"en"`
	Mr string `json:"mr"`
}

type Announcement struct {
	ID        string     `json:"_id"`
	Message   string     `json:"message"`
	IsActive  bool       `json:"isActive"`
	CreatedBy *AuditUser `json:"createdBy,omitempty"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

type GalleryItem struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Image       *ImageAttachment `json:"image,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedBy   *AuditUser       `json:"createdBy,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

type Award struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	AwardDate   string           `json:"awardDate,omitempty"`
	Image       *ImageAttachment `json:"image,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedBy   *AuditUser       `json:"createdBy,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

type Member struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Position    string           `json:"position,omitempty"`
	Department  string           `json:"department,omitempty"`
	Email       string           `json:"email,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Image       *ImageAttachment `json:"image,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedBy   *AuditUser       `json:"createdBy,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

type Program struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       *ImageAttachment `json:"image,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedBy   *AuditUser       `json:"createdBy,omitempty"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

type VillageDetail struct {
	ID          string           `json:"_id"`
	Title       LocalizedText    `json:"title"`
	Description LocalizedText    `json:"description"`
	Image       *ImageAttachment `json:"image,omitempty"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   string           `json:"createdAt,omitempty"`
}

type FeedbackEntry struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	AdminNotes string     `json:"adminNotes,omitempty"`
	ReviewedBy *AuditUser `json:"reviewedBy,omitempty"`
	ReviewedAt string     `json:"reviewedAt,omitempty"`
	CreatedAt  string     `json:"createdAt,omitempty"`
}

type SevaApplication struct {
	ID                    string           `json:"_id"`
	FirstName             string           `json:"firstName"`
	MiddleName            string           `json:"middleName,omitempty"`
	LastName              string           `json:"lastName"`
	DateOfBirth           string           `json:"dateOfBirth,omitempty"`
	WhatsappNumber        string           `json:"whatsappNumber"`
	Email                 string           `json:"email"`
	AadhaarNumber         string           `json:"aadhaarNumber,omitempty"`
	CertificateHolderName string           `json:"certificateHolderName,omitempty"`
	DateOfRegistration    string           `json:"dateOfRegistration,omitempty"`
	PaymentScreenshot     *ImageAttachment `json:"paymentScreenshot,omitempty"`
	Status                string           `json:"status"`
	CreatedAt             string           `json:"createdAt,omitempty"`
}

// SevaHeader is the single banner image shown on the citizen-service page.
type SevaHeader struct {
	ID        string           `json:"_id,omitempty"`
	Image     *ImageAttachment `json:"image,omitempty"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
}

// adminRecord is what the generic list/filter machinery needs from a managed
// record: a stable identity, the fields free-text search runs over, and the
// value the status filter compares against.
type adminRecord interface {
	recordID() string
	searchFields() []string
	statusKey() string
}

func activeKey(isActive bool) string {
	if isActive {
		return "active"
	}
	return "inactive"
}

func (a Announcement) recordID() string       { return a.ID }
func (a Announcement) searchFields() []string { return []string{a.Message} }
func (a Announcement) statusKey() string      { return activeKey(a.IsActive) }

func (g GalleryItem) recordID() string       { return g.ID }
func (g GalleryItem) searchFields() []string { return []string{g.Name, g.Description} }
func (g GalleryItem) statusKey() string      { return activeKey(g.IsActive) }

func (a Award) recordID() string       { return a.ID }
func (a Award) searchFields() []string { return []string{a.Name, a.Description} }
func (a Award) statusKey() string      { return activeKey(a.IsActive) }

func (m Member) recordID() string { return m.ID }
func (m Member) searchFields() []string {
	return []string{m.Name, m.Description, m.Position, m.Department}
}
func (m Member) statusKey() string { return activeKey(m.IsActive) }

func (p Program) recordID() string       { return p.ID }
func (p Program) searchFields() []string { return []string{p.Name, p.Description} }
func (p Program) statusKey() string      { return activeKey(p.IsActive) }

func (v VillageDetail) recordID() string { return v.ID }
func (v VillageDetail) searchFields() []string {
	return []string{v.Title.En, v.Title.Mr, v.Description.En, v.Description.Mr}
}
func (v VillageDetail) statusKey() string { return activeKey(v.IsActive) }

func (f FeedbackEntry) recordID() string { return f.ID }
func (f FeedbackEntry) searchFields() []string {
	return []string{f.Name, f.Email, f.Subject, f.Message}
}
func (f FeedbackEntry) statusKey() string { return f.Status }

func (s SevaApplication) recordID() string { return s.ID }
func (s SevaApplication) searchFields() []string {
	return []string{strings.TrimSpace(s.FirstName + " " + s.LastName), s.Email, s.WhatsappNumber}
}
func (s SevaApplication) statusKey() string { return s.Status }
