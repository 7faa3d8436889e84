package models

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for Date and ETA Date.
const DateLayout = "2006-01-02"

// RequestType - Purchase (supplier side) or Sales (customer side)
type RequestType string

const (
	TypePurchase RequestType = "Purchase"
	TypeSales    RequestType = "Sales"
)

// Older documents stored the type as an icon.
const (
	purchaseIcon = "💲"
	salesIcon    = "🛒"
)

// ParseRequestType accepts "Purchase", "Sales" (any case) and the legacy
// icon forms, including "💲 Purchase" as shown in the old type selector.
func ParseRequestType(s string) (RequestType, bool) {
	for _, word := range strings.Fields(s) {
		switch {
		case word == purchaseIcon || strings.EqualFold(word, string(TypePurchase)):
			return TypePurchase, true
		case word == salesIcon || strings.EqualFold(word, string(TypeSales)):
			return TypeSales, true
		}
	}
	return "", false
}

// PartnerKey is the document key holding the counterparty name.
func (t RequestType) PartnerKey() string {
	if t == TypeSales {
		return "Cliente"
	}
	return "Proveedor"
}

// Status values. Purchase requests use ORDERED, sales orders use CONFIRMED.
const (
	StatusPending    = "PENDING"
	StatusOrdered    = "ORDERED"
	StatusConfirmed  = "CONFIRMED"
	StatusReady      = "READY"
	StatusCancelled  = "CANCELLED"
	StatusInTransit  = "IN TRANSIT"
	StatusIncomplete = "INCOMPLETE"
)

var (
	purchaseStatuses = []string{StatusPending, StatusOrdered, StatusReady, StatusCancelled, StatusInTransit, StatusIncomplete}
	salesStatuses    = []string{StatusPending, StatusConfirmed, StatusReady, StatusCancelled, StatusInTransit, StatusIncomplete}
)

// StatusesFor lists the statuses allowed for a request type.
func StatusesFor(t RequestType) []string {
	if t == TypeSales {
		return salesStatuses
	}
	return purchaseStatuses
}

// NormalizeStatus upper-cases a status and maps IN_TRANSIT to IN TRANSIT.
func NormalizeStatus(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "_", " ")
}

// ValidStatus reports whether an already normalized status belongs to t.
func ValidStatus(t RequestType, status string) bool {
	return contains(StatusesFor(t), status)
}

// Closed requests are never overdue.
func IsClosedStatus(status string) bool {
	s := NormalizeStatus(status)
	return s == StatusReady || s == StatusCancelled
}

var (
	ShippingMethods = []string{"Nivel 1 PU", "Nivel 3 PU", "Nivel 3 DEL"}
	PaymentMethods  = []string{"Wire", "Cheque", "Credito", "Efectivo"}
	Encargados      = []string{"Andres", "Tito", "Luz", "David", "Marcela", "John", "Carolina", "Thea"}
)

// Optional selects (shipping, payment) accept "" for unset.
func IsShippingMethod(s string) bool { return s == "" || contains(ShippingMethods, s) }
func IsPaymentMethod(s string) bool  { return s == "" || contains(PaymentMethods, s) }
func IsEncargado(s string) bool      { return contains(Encargados, s) }

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Request - one purchase request or sales order. Its identity is its
// position in the stored sequence.
type Request struct {
	Type              RequestType
	OrderRef          string
	TrackingOrInvoice string
	OrderDate         string
	Status            string
	ShippingMethod    string
	ETADate           string
	Description       []string
	Quantity          []Quantity
	PartnerName       string // Proveedor or Cliente depending on Type
	Encargado         string
	PaymentMethod     string

	// Extra keeps keys this version does not know about so they survive a save.
	Extra map[string]json.RawMessage
}

// Clone returns a deep copy.
func (r Request) Clone() Request {
	out := r
	out.Description = append([]string(nil), r.Description...)
	out.Quantity = append([]Quantity(nil), r.Quantity...)
	if r.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// Comment - one message in a request's thread
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	When   string `json:"when,omitempty"`
}

// CommentBuckets maps the decimal request index to its thread.
type CommentBuckets map[string][]Comment

// Clone returns a deep copy.
func (b CommentBuckets) Clone() CommentBuckets {
	out := make(CommentBuckets, len(b))
	for k, v := range b {
		out[k] = append([]Comment(nil), v...)
	}
	return out
}

// RequestDraft is what the submission form sends for a new request.
type RequestDraft struct {
	Type              string      `json:"type" validate:"required,request_type"`
	OrderRef          string      `json:"order_ref"`
	TrackingOrInvoice string      `json:"invoice"`
	OrderDate         string      `json:"order_date" validate:"omitempty,iso_date"`
	Status            string      `json:"status" validate:"required"`
	ShippingMethod    string      `json:"shipping_method" validate:"shipping_method"`
	ETADate           string      `json:"eta_date" validate:"omitempty,iso_date"`
	Items             []ItemDraft `json:"items"`
	PartnerName       string      `json:"partner_name"`
	Encargado         string      `json:"encargado" validate:"required,encargado"`
	PaymentMethod     string      `json:"payment_method" validate:"payment_method"`
}

// ItemDraft is one Description/Quantity row of the form.
type ItemDraft struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
}

// RequestPatch is a sparse update. Nil fields are left untouched; keys match
// the stored document.
type RequestPatch struct {
	Type              *string     `json:"Type"`
	OrderRef          *string     `json:"Order#"`
	TrackingOrInvoice *string     `json:"Invoice"`
	OrderDate         *string     `json:"Date"`
	Status            *string     `json:"Status"`
	ShippingMethod    *string     `json:"Shipping Method"`
	ETADate           *string     `json:"ETA Date"`
	Description       *[]string   `json:"Description"`
	Quantity          *[]Quantity `json:"Quantity"`
	Proveedor         *string     `json:"Proveedor"`
	Cliente           *string     `json:"Cliente"`
	Encargado         *string     `json:"Encargado"`
	PaymentMethod     *string     `json:"Pago"`
}

// IsEmpty reports whether the patch changes nothing.
func (p RequestPatch) IsEmpty() bool {
	return p == RequestPatch{}
}
