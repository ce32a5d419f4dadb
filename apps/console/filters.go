package main

import "strings"

// filterRecords narrows a collection the same way every admin list screen
// does: a case-insensitive substring match of the search term against the
// record's configured fields (any field matching is enough), combined with an
// exact status filter where "all" passes everything. The input order is
// preserved and the source slice is never mutated.
func filterRecords[T adminRecord](items []T, searchTerm, statusFilter string) []T {
	term := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && !matchesSearchTerm(item.searchFields(), term) {
			continue
		}
		if statusFilter != "" && statusFilter != "all" && item.statusKey() != statusFilter {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearchTerm(fields []string, lowerTerm string) bool {
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), lowerTerm) {
			return true
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
