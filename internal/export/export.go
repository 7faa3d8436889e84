package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/xuri/excelize/v2"
)

// ListSeparator joins list values into one cell.
const ListSeparator = ";"

// excluded are keys that never leave the system, compared lowercased.
var excluded = map[string]bool{
	"attachments":     true,
	"status-history":  true,
	"status_history":  true,
	"comments":        true,
	"comment-history": true,
	"comment_history": true,
}

// Cell is one column of a flattened row.
type Cell struct {
	Key   string
	Value string
}

// Row is one flattened request in column order.
type Row []Cell

// Get returns the value under key.
func (r Row) Get(key string) (string, bool) {
	for _, c := range r {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

// ToFlatRows flattens requests into string cells. List values are joined
// with ListSeparator.
func ToFlatRows(requests []models.Request) []Row {
	rows := make([]Row, 0, len(requests))
	for _, r := range requests {
		var row Row
		for _, f := range r.Fields() {
			if excluded[strings.ToLower(f.Name)] {
				continue
			}
			row = append(row, Cell{Key: f.Name, Value: flatten(f.Value)})
		}
		rows = append(rows, row)
	}
	return rows
}

// Header is the union of row keys in first-seen order.
func Header(rows []Row) []string {
	seen := make(map[string]bool)
	var header []string
	for _, row := range rows {
		for _, c := range row {
			if !seen[c.Key] {
				seen[c.Key] = true
				header = append(header, c.Key)
			}
		}
	}
	return header
}

// Table lays rows out under Header, leaving missing cells empty.
func Table(rows []Row) ([]string, [][]string) {
	header := Header(rows)
	col := make(map[string]int, len(header))
	for i, k := range header {
		col[k] = i
	}
	records := make([][]string, len(rows))
	for i, row := range rows {
		rec := make([]string, len(header))
		for _, c := range row {
			rec[col[c.Key]] = c.Value
		}
		records[i] = rec
	}
	return header, records
}

// WriteCSV writes rows as UTF-8 CSV with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	header, records := Table(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// WriteXLSX writes rows as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Requests"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header, records := Table(rows)
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, rec := range records {
		if err := setRow(f, sheet, i+2, rec); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// Filename names an export written on day now, e.g.
// requests_export_2025-03-01.csv.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("requests_export_%s.%s", now.Format(models.DateLayout), strings.TrimPrefix(ext, "."))
}

func setRow(f *excelize.File, sheet string, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}

func flatten(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ListSeparator)
	case []models.Quantity:
		return models.JoinQuantities(val, ListSeparator)
	case json.RawMessage:
		return flattenRaw(val)
	default:
		return fmt.Sprint(val)
	}
}

// flattenRaw renders an unknown key: arrays are joined, strings unquoted,
// null is empty and anything else is kept as JSON text.
func flattenRaw(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = flattenRaw(item)
		}
		return strings.Join(parts, ListSeparator)
	}
	return string(raw)
}
