package reports

import (
	"time"

	"depot-helpdesk/internal/filter"
	"depot-helpdesk/internal/models"
)

// Summary holds the counts shown on the dashboard and given to the assistant
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByType   map[string]int `json:"by_type"`
	Overdue  int            `json:"overdue"`
	// Indices of overdue requests, earliest ETA first
	OverdueIndices []int `json:"overdue_indices"`
}

// Summarize counts requests by status and type and collects the overdue ones
// as of today.
func Summarize(requests []models.Request, today time.Time) Summary {
	s := Summary{
		Total:          len(requests),
		ByStatus:       make(map[string]int),
		ByType:         make(map[string]int),
		OverdueIndices: []int{},
	}

	for _, r := range requests {
		status := models.NormalizeStatus(r.Status)
		if status == "" {
			status = "UNSET"
		}
		s.ByStatus[status]++
		s.ByType[string(r.Type)]++
	}

	// Sorted view so the overdue list reads by ETA
	for _, e := range filter.FilterAndSort(requests, filter.Criteria{}) {
		if filter.IsOverdue(e.Request, today) {
			s.Overdue++
			s.OverdueIndices = append(s.OverdueIndices, e.Index)
		}
	}
	return s
}
