package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Document keys of a stored request.
const (
	KeyType           = "Type"
	KeyOrderRef       = "Order#"
	KeyInvoice        = "Invoice"
	KeyDate           = "Date"
	KeyStatus         = "Status"
	KeyShippingMethod = "Shipping Method"
	KeyETADate        = "ETA Date"
	KeyDescription    = "Description"
	KeyQuantity       = "Quantity"
	KeyProveedor      = "Proveedor"
	KeyCliente        = "Cliente"
	KeyEncargado      = "Encargado"
	KeyPago           = "Pago"
)

// Field is one key/value of a request in document order. Value is a string,
// []string, []Quantity or json.RawMessage (unknown keys).
type Field struct {
	Name  string
	Value any
}

// Fields lists the request's keys in document order, unknown keys last
// sorted by name.
func (r Request) Fields() []Field {
	fields := []Field{
		{KeyType, string(r.Type)},
		{KeyOrderRef, r.OrderRef},
		{KeyInvoice, r.TrackingOrInvoice},
		{KeyDate, r.OrderDate},
		{KeyStatus, r.Status},
		{KeyShippingMethod, r.ShippingMethod},
		{KeyETADate, r.ETADate},
		{KeyDescription, nonNilStrings(r.Description)},
		{KeyQuantity, nonNilQuantities(r.Quantity)},
		{r.Type.PartnerKey(), r.PartnerName},
		{KeyEncargado, r.Encargado},
		{KeyPago, r.PaymentMethod},
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	// An unknown key that a type change turned into a known one is shadowed
	// by the field.
	extra := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fields = append(fields, Field{k, r.Extra[k]})
	}
	return fields
}

// MarshalJSON keeps the document key order of Fields.
func (r Request) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if raw, ok := f.Value.(json.RawMessage); ok {
			val = raw
		} else if val, err = marshalNoEscape(f.Value); err != nil {
			return nil, fmt.Errorf("encode %q: %w", f.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a stored request. Legacy icon types, single-value
// Description/Quantity and " " placeholders for unset selects are accepted.
func (r *Request) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	var out Request
	str := func(key string) (string, error) {
		raw, ok := doc[key]
		if !ok {
			return "", nil
		}
		delete(doc, key)
		var s string
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return "", nil
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("field %q: %w", key, err)
		}
		return s, nil
	}

	typ, err := str(KeyType)
	if err != nil {
		return err
	}
	if t, ok := ParseRequestType(typ); ok {
		out.Type = t
	} else {
		out.Type = RequestType(typ)
	}

	for _, f := range []struct {
		key  string
		dst  *string
		trim bool
	}{
		{KeyOrderRef, &out.OrderRef, false},
		{KeyInvoice, &out.TrackingOrInvoice, false},
		{KeyDate, &out.OrderDate, false},
		{KeyStatus, &out.Status, false},
		{KeyShippingMethod, &out.ShippingMethod, true},
		{KeyETADate, &out.ETADate, false},
		{KeyEncargado, &out.Encargado, true},
		{KeyPago, &out.PaymentMethod, true},
		{out.Type.PartnerKey(), &out.PartnerName, false},
	} {
		s, err := str(f.key)
		if err != nil {
			return err
		}
		if f.trim {
			s = strings.TrimSpace(s)
		}
		*f.dst = s
	}

	if raw, ok := doc[KeyDescription]; ok {
		delete(doc, KeyDescription)
		if out.Description, err = decodeList[string](raw); err != nil {
			return fmt.Errorf("field %q: %w", KeyDescription, err)
		}
	}
	if raw, ok := doc[KeyQuantity]; ok {
		delete(doc, KeyQuantity)
		if out.Quantity, err = decodeList[Quantity](raw); err != nil {
			return fmt.Errorf("field %q: %w", KeyQuantity, err)
		}
	}

	if len(doc) > 0 {
		out.Extra = doc
	}
	*r = out
	return nil
}

// Dump is the full textual form of the request used for free-text search.
func (r Request) Dump() string {
	b, err := marshalNoEscape(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeList reads either a JSON array or a single value as a list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if len(raw) > 0 && raw[0] == '[' {
		var list []T
		err := json.Unmarshal(raw, &list)
		return list, err
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// marshalNoEscape is json.Marshal without HTML escaping or trailing newline.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilQuantities(q []Quantity) []Quantity {
	if q == nil {
		return []Quantity{}
	}
	return q
}
