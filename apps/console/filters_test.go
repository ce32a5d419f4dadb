package main

import "testing"

func sampleMembers() []Member {
	return []Member{
		{ID: "m1", Name: "Alpha Deshmukh", Description: "Sarpanch", Position: "Sarpanch", IsActive: true},
		{ID: "m2", Name: "Bravo Patil", Description: "Clerk", Department: "Revenue", IsActive: false},
		{ID: "m3", Name: "Charlie Jadhav", Description: "Water supply", Position: "Member", IsActive: true},
	}
}

func memberIDs(items []Member) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestFilterRecordsNoFiltersKeepsOrder(t *testing.T) {
	cases := []struct {
		name   string
		search string
		status string
	}{
		{name: "empty", search: "", status: ""},
		{name: "all status", search: "", status: "all"},
		{name: "whitespace search", search: "   ", status: "all"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := filterRecords(sampleMembers(), tc.search, tc.status)
			ids := memberIDs(got)
			if len(ids) != 3 || ids[0] != "m1" || ids[1] != "m2" || ids[2] != "m3" {
				t.Fatalf("unexpected result: %v", ids)
			}
		})
	}
}

func TestFilterRecordsSearchIsCaseInsensitive(t *testing.T) {
	got := filterRecords(sampleMembers(), "ALP", "all")
	if len(got) != 1 || got[0].ID != "m1" {
		t.Fatalf("unexpected result: %v", memberIDs(got))
	}
}

func TestFilterRecordsSearchMatchesAnyField(t *testing.T) {
	// "revenue" only appears in the department field.
	got := filterRecords(sampleMembers(), "revenue", "all")
	if len(got) != 1 || got[0].ID != "m2" {
		t.Fatalf("unexpected result: %v", memberIDs(got))
	}
}

func TestFilterRecordsStatusFilter(t *testing.T) {
	got := filterRecords(sampleMembers(), "", "active")
	ids := memberIDs(got)
	if len(ids) != 2 || ids[0] != "m1" || ids[1] != "m3" {
		t.Fatalf("unexpected result: %v", ids)
	}
}

func TestFilterRecordsSearchAndStatusCombine(t *testing.T) {
	entries := []FeedbackEntry{
		{ID: "f1", Name: "Asha", Subject: "Road repair", Status: "pending"},
		{ID: "f2", Name: "Vikram", Subject: "Road lights", Status: "resolved"},
		{ID: "f3", Name: "Asha", Subject: "Water", Status: "resolved"},
	}
	got := filterRecords(entries, "road", "resolved")
	if len(got) != 1 || got[0].ID != "f2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterRecordsNoMatches(t *testing.T) {
	got := filterRecords(sampleMembers(), "zzz", "all")
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", memberIDs(got))
	}
}

func TestFilterRecordsDoesNotMutateInput(t *testing.T) {
	items := sampleMembers()
	_ = filterRecords(items, "alpha", "active")
	if len(items) != 3 || items[1].ID != "m2" {
		t.Fatalf("input slice was mutated: %v", memberIDs(items))
	}
}
