package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// QuantityKind tells which side of a Quantity is set.
type QuantityKind uint8

const (
	RawTextQuantity QuantityKind = iota
	NumericQuantity
)

// Quantity is an item count. Input that does not parse as a number is kept
// as the text the user typed instead of being rejected.
type Quantity struct {
	kind QuantityKind
	n    int64
	raw  string
	// number marks raw as a JSON number literal outside int64 (2.5, 1e3)
	// read from a stored document; it is written back unquoted.
	number bool
}

func Numeric(n int64) Quantity  { return Quantity{kind: NumericQuantity, n: n} }
func RawText(s string) Quantity { return Quantity{kind: RawTextQuantity, raw: s} }

// ParseQuantity trims s and parses it as a number truncated toward zero
// ("2.9" is 2, "1e3" is 1000). Anything else, NaN and infinities included,
// becomes RawText.
func ParseQuantity(s string) Quantity {
	t := strings.TrimSpace(s)
	if t == "" {
		return RawText("")
	}
	if n, err := strconv.ParseInt(t, 10, 64); err == nil {
		return Numeric(n)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= math.MaxInt64 {
		return RawText(t)
	}
	return Numeric(int64(f))
}

func (q Quantity) Kind() QuantityKind { return q.kind }

// Int returns the numeric value, ok is false for raw text.
func (q Quantity) Int() (int64, bool) {
	return q.n, q.kind == NumericQuantity
}

// IsBlank reports an empty raw-text quantity.
func (q Quantity) IsBlank() bool {
	return q.kind == RawTextQuantity && strings.TrimSpace(q.raw) == ""
}

func (q Quantity) String() string {
	if q.kind == NumericQuantity {
		return strconv.FormatInt(q.n, 10)
	}
	return q.raw
}

// MarshalJSON writes numbers as JSON numbers and raw text as strings.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.kind == NumericQuantity {
		return []byte(strconv.FormatInt(q.n, 10)), nil
	}
	if q.number {
		return []byte(q.raw), nil
	}
	return marshalNoEscape(q.raw)
}

// UnmarshalJSON accepts a number or a string. Strings holding a number are
// parsed so form edits ("5") become numeric; other strings stay verbatim.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*q = RawText("")
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if parsed := ParseQuantity(s); parsed.kind == NumericQuantity {
			*q = parsed
		} else {
			*q = RawText(s)
		}
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("quantity must be a number or a string: %w", err)
	}
	if n, err := num.Int64(); err == nil {
		*q = Numeric(n)
		return nil
	}
	// Stored numbers are kept as written so a load/save leaves them alone.
	*q = Quantity{kind: RawTextQuantity, raw: num.String(), number: true}
	return nil
}

// JoinQuantities renders quantities joined by sep, keeping order.
func JoinQuantities(qs []Quantity, sep string) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = q.String()
	}
	return strings.Join(parts, sep)
}
