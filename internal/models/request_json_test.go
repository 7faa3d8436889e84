package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestUnmarshalLegacy(t *testing.T) {
	doc := `{"Type": "🛒", "Order#": "SO-9", "Status": "PENDING", "Shipping Method": " ",
		"Description": "single item", "Quantity": "4", "Cliente": "Beta", "Encargado": " Luz ",
		"Pago": " ", "attachments": ["x.pdf"]}`

	var r Request
	require.NoError(t, json.Unmarshal([]byte(doc), &r))

	assert.Equal(t, TypeSales, r.Type)
	assert.Equal(t, "SO-9", r.OrderRef)
	assert.Equal(t, "", r.ShippingMethod)
	assert.Equal(t, "", r.PaymentMethod)
	assert.Equal(t, "Luz", r.Encargado)
	assert.Equal(t, "Beta", r.PartnerName)
	assert.Equal(t, []string{"single item"}, r.Description)
	require.Len(t, r.Quantity, 1)
	assert.Equal(t, "4", r.Quantity[0].String())
	assert.JSONEq(t, `["x.pdf"]`, string(r.Extra["attachments"]))
}

func TestRequestMarshalKeyOrder(t *testing.T) {
	r := Request{
		Type:        TypePurchase,
		OrderRef:    "PO-1",
		Status:      StatusPending,
		Description: []string{"widget <big>"},
		Quantity:    []Quantity{Numeric(2)},
		PartnerName: "Acme & Co",
		Encargado:   "Tito",
		Extra:       map[string]json.RawMessage{"zeta": json.RawMessage(`1`), "alpha": json.RawMessage(`"a"`)},
	}
	b, err := json.Marshal(r)
	require.NoError(t, err)

	s := string(b)
	order := []string{`"Type"`, `"Order#"`, `"Invoice"`, `"Date"`, `"Status"`, `"Shipping Method"`, `"ETA Date"`,
		`"Description"`, `"Quantity"`, `"Proveedor"`, `"Encargado"`, `"Pago"`, `"alpha"`, `"zeta"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		require.GreaterOrEqual(t, i, 0, key)
		assert.Greater(t, i, last, key)
		last = i
	}
	assert.NotContains(t, s, `"Cliente"`)

	var back Request
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r.PartnerName, back.PartnerName)
	assert.Equal(t, r.Description, back.Description)
	assert.Len(t, back.Extra, 2)
}

func TestRequestEmptyListsSerialize(t *testing.T) {
	b, err := json.Marshal(Request{Type: TypeSales})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"Description":[]`)
	assert.Contains(t, string(b), `"Quantity":[]`)
	assert.Contains(t, string(b), `"Cliente":""`)
}

func TestDumpKeepsText(t *testing.T) {
	r := Request{Type: TypePurchase, PartnerName: "Café & Ñandú"}
	assert.Contains(t, r.Dump(), "Café & Ñandú")
}

func TestParseRequestType(t *testing.T) {
	for in, want := range map[string]RequestType{
		"Purchase":   TypePurchase,
		"sales":      TypeSales,
		"💲":          TypePurchase,
		"🛒 Sales":    TypeSales,
		"💲 Purchase": TypePurchase,
	} {
		got, ok := ParseRequestType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseRequestType("Refund")
	assert.False(t, ok)
}

func TestStatuses(t *testing.T) {
	assert.Equal(t, StatusInTransit, NormalizeStatus(" in_transit "))
	assert.True(t, ValidStatus(TypeSales, StatusConfirmed))
	assert.False(t, ValidStatus(TypePurchase, StatusConfirmed))
	assert.True(t, ValidStatus(TypePurchase, StatusOrdered))
	assert.True(t, IsClosedStatus("ready"))
	assert.True(t, IsClosedStatus(StatusCancelled))
	assert.False(t, IsClosedStatus(StatusPending))
}

func TestExtraKeyShadowedByPartnerField(t *testing.T) {
	r := Request{
		Type:        TypeSales,
		PartnerName: "Beta",
		Extra:       map[string]json.RawMessage{KeyCliente: json.RawMessage(`"stale"`), "note": json.RawMessage(`1`)},
	}

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), `"Cliente"`))
	assert.Contains(t, string(out), `"Cliente":"Beta"`)
	assert.Contains(t, string(out), `"note":1`)

	var back Request
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "Beta", back.PartnerName)
}
