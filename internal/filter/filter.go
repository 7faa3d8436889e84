package filter

import (
	"slices"
	"strings"
	"time"

	"depot-helpdesk/internal/models"
)

// All disables the status or type filter.
const All = "All"

// Criteria are the selections of the request table.
type Criteria struct {
	Search string
	Status string
	Type   string
}

// Entry is a matching request with its position in the full list.
type Entry struct {
	Index   int
	Request models.Request
}

// undated sorts after every real ETA.
var undated = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// FilterAndSort keeps the requests matching all of c and orders them by
// ETA date, earliest first. Requests without a usable ETA go last in their
// input order.
func FilterAndSort(requests []models.Request, c Criteria) []Entry {
	term := strings.ToLower(c.Search)
	status := strings.TrimSpace(c.Status)
	typeFilter := strings.TrimSpace(c.Type)

	wantType, typeOK := models.RequestType(""), true
	if !isAll(typeFilter) {
		wantType, typeOK = models.ParseRequestType(typeFilter)
	}

	entries := make([]Entry, 0, len(requests))
	for i, r := range requests {
		if term != "" && !strings.Contains(strings.ToLower(r.Dump()), term) {
			continue
		}
		if !isAll(status) && models.NormalizeStatus(r.Status) != models.NormalizeStatus(status) {
			continue
		}
		if !isAll(typeFilter) && (!typeOK || r.Type != wantType) {
			continue
		}
		entries = append(entries, Entry{Index: i, Request: r})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return etaKey(a.Request).Compare(etaKey(b.Request))
	})
	return entries
}

// Requests strips the indices from entries.
func Requests(entries []Entry) []models.Request {
	out := make([]models.Request, len(entries))
	for i, e := range entries {
		out[i] = e.Request
	}
	return out
}

// IsOverdue reports whether the ETA is before today's date and the request
// is still open.
func IsOverdue(r models.Request, today time.Time) bool {
	eta, ok := models.ParseDate(r.ETADate)
	if !ok {
		return false
	}
	y, m, d := today.Date()
	return eta.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)) && !models.IsClosedStatus(r.Status)
}

func etaKey(r models.Request) time.Time {
	if eta, ok := models.ParseDate(r.ETADate); ok {
		return eta
	}
	return undated
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, All)
}
