package handlers

import (
	"bytes"
	"io"
	"net/http"

	"depot-helpdesk/internal/export"
	"depot-helpdesk/internal/filter"
	"depot-helpdesk/internal/reports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// --- GET: /api/reports ---
func (h *Handler) GetReport(c *gin.Context) {
	c.JSON(http.StatusOK, reports.Summarize(h.Repo.List(), h.now()))
}

// --- GET: /api/export.csv ---
// Exports the rows matching the same filters as the list.
func (h *Handler) ExportCSV(c *gin.Context) {
	h.writeExport(c, "csv", csvContentType, export.WriteCSV)
}

// --- GET: /api/export.xlsx ---
func (h *Handler) ExportXLSX(c *gin.Context) {
	h.writeExport(c, "xlsx", xlsxContentType, export.WriteXLSX)
}

func (h *Handler) writeExport(c *gin.Context, ext, contentType string, write func(io.Writer, []export.Row) error) {
	entries := filter.FilterAndSort(h.Repo.List(), criteria(c))
	rows := export.ToFlatRows(filter.Requests(entries))

	var buf bytes.Buffer
	if err := write(&buf, rows); err != nil {
		log.Error().Err(err).Str("format", ext).Msg("Export failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := export.Filename(h.now(), ext)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
