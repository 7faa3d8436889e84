package reports

import (
	"testing"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	requests := []models.Request{
		{Type: models.TypePurchase, Status: "PENDING", ETADate: "2025-05-20"},
		{Type: models.TypeSales, Status: "READY", ETADate: "2025-01-01"},
		{Type: models.TypePurchase, Status: "in_transit", ETADate: "2025-04-01"},
		{Type: models.TypeSales, Status: "", ETADate: ""},
	}

	s := Summarize(requests, today)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, map[string]int{"PENDING": 1, "READY": 1, "IN TRANSIT": 1, "UNSET": 1}, s.ByStatus)
	assert.Equal(t, map[string]int{"Purchase": 2, "Sales": 2}, s.ByType)
	assert.Equal(t, 2, s.Overdue)
	assert.Equal(t, []int{2, 0}, s.OverdueIndices)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, time.Now())
	assert.Zero(t, s.Total)
	assert.Empty(t, s.OverdueIndices)
}
