package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusKeys(t *testing.T) {
	assert.Equal(t, "active", Announcement{IsActive: true}.statusKey())
	assert.Equal(t, "inactive", Announcement{IsActive: false}.statusKey())
	assert.Equal(t, "pending", FeedbackEntry{Status: "pending"}.statusKey())
	assert.Equal(t, "approved", SevaApplication{Status: "approved"}.statusKey())
}

func TestApplicationSearchFieldsCombineName(t *testing.T) {
	app := SevaApplication{FirstName: "Asha", LastName: "Pawar", Email: "a@example.com", WhatsappNumber: "9890000001"}
	fields := app.searchFields()
	assert.Contains(t, fields, "Asha Pawar")
	assert.Contains(t, fields, "a@example.com")
	assert.Contains(t, fields, "9890000001")
}

func TestVillageDetailSearchFieldsAreBilingual(t *testing.T) {
	detail := VillageDetail{
		Title:       LocalizedText{En: "History", Mr: "Itihas"},
		Description: LocalizedText{En: "Old village", Mr: "June gaon"},
	}
	assert.Len(t, detail.searchFields(), 4)
}

func TestFormValidationRequiredFields(t *testing.T) {
	cases := []struct {
		name string
		form entityForm
		ok   bool
	}{
		{name: "announcement needs message", form: announcementForm{}, ok: false},
		{name: "announcement with message", form: announcementForm{Message: "Gram sabha"}, ok: true},
		{name: "gallery needs name", form: galleryForm{Description: "x"}, ok: false},
		{name: "award needs name", form: awardForm{Description: "x"}, ok: false},
		{name: "member needs description", form: memberForm{Name: "A"}, ok: false},
		{name: "member complete", form: memberForm{Name: "A", Description: "Sarpanch"}, ok: true},
		{name: "program needs description", form: programForm{Name: "Drive"}, ok: false},
		{name: "village detail needs marathi title", form: villageDetailForm{Title: LocalizedText{En: "History"}, Description: LocalizedText{En: "x", Mr: "y"}}, ok: false},
		{name: "whitespace does not count", form: announcementForm{Message: "   "}, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.form.validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestAwardPayloadOmitsEmptyDate(t *testing.T) {
	payload := awardForm{Name: "Clean Village Award"}.payload()
	_, present := payload["awardDate"]
	assert.False(t, present)

	payload = awardForm{Name: "Clean Village Award", AwardDate: "2025-01-26"}.payload()
	assert.Equal(t, "2025-01-26", payload["awardDate"])
}

func TestPayloadTrimsWhitespace(t *testing.T) {
	payload := memberForm{Name: "  Asha  ", Description: " Sarpanch "}.payload()
	assert.Equal(t, "Asha", payload["name"])
	assert.Equal(t, "Sarpanch", payload["description"])
}
