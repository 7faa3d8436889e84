package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() []models.Request {
	return []models.Request{
		{
			Type:        models.TypePurchase,
			OrderRef:    "PO-1",
			Status:      models.StatusPending,
			Description: []string{"bolt", "nut", "washer"},
			Quantity:    []models.Quantity{models.Numeric(1), models.RawText("two"), models.Numeric(3)},
			PartnerName: "Acme",
			Encargado:   "Luz",
			Extra: map[string]json.RawMessage{
				"Attachments":    json.RawMessage(`["a.pdf"]`),
				"status_history": json.RawMessage(`[]`),
				"Tags":           json.RawMessage(`["urgent", 2]`),
				"Note":           json.RawMessage(`"fragile"`),
			},
		},
		{
			Type:        models.TypeSales,
			OrderRef:    "SO-2",
			Status:      models.StatusConfirmed,
			Description: []string{"gadget"},
			Quantity:    []models.Quantity{models.Numeric(4)},
			PartnerName: "Beta",
			Encargado:   "Tito",
		},
	}
}

func TestToFlatRows(t *testing.T) {
	rows := ToFlatRows(sample())
	require.Len(t, rows, 2)

	row := rows[0]
	for _, key := range []string{"Attachments", "status_history"} {
		_, ok := row.Get(key)
		assert.False(t, ok, key)
	}
	v, _ := row.Get("Quantity")
	assert.Equal(t, "1;two;3", v)
	v, _ = row.Get("Description")
	assert.Equal(t, "bolt;nut;washer", v)
	v, _ = row.Get("Tags")
	assert.Equal(t, "urgent;2", v)
	v, _ = row.Get("Note")
	assert.Equal(t, "fragile", v)
	v, _ = row.Get("Proveedor")
	assert.Equal(t, "Acme", v)

	v, _ = rows[1].Get("Cliente")
	assert.Equal(t, "Beta", v)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ToFlatRows(sample())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, []string{
		"Type", "Order#", "Invoice", "Date", "Status", "Shipping Method", "ETA Date",
		"Description", "Quantity", "Proveedor", "Encargado", "Pago", "Note", "Tags", "Cliente",
	}, header)

	// Cliente is only on the second row, Proveedor only on the first
	assert.Equal(t, "", records[1][14])
	assert.Equal(t, "Beta", records[2][14])
	assert.Equal(t, "", records[2][9])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, ToFlatRows(sample())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Requests")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Type", rows[0][0])
	assert.Equal(t, "PO-1", rows[1][1])
	assert.Equal(t, "1;two;3", rows[1][8])
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "requests_export_2025-03-01.csv", Filename(now, "csv"))
	assert.Equal(t, "requests_export_2025-03-01.xlsx", Filename(now, ".xlsx"))
}
