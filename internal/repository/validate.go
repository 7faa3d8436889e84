package repository

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"depot-helpdesk/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	validate.RegisterValidation("request_type", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRequestType(fl.Field().String())
		return ok
	})
	validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDate(fl.Field().String())
		return ok
	})
	validate.RegisterValidation("shipping_method", func(fl validator.FieldLevel) bool {
		return models.IsShippingMethod(fl.Field().String())
	})
	validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return models.IsPaymentMethod(fl.Field().String())
	})
	validate.RegisterValidation("encargado", func(fl validator.FieldLevel) bool {
		return models.IsEncargado(fl.Field().String())
	})
}

// validationFromStruct turns the first validator failure into a ValidationError.
func validationFromStruct(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: fe.Field(), Message: "is required"}
	case "iso_date":
		return &ValidationError{Field: fe.Field(), Message: "must be a YYYY-MM-DD date"}
	default:
		return &ValidationError{Field: fe.Field(), Message: fmt.Sprintf("invalid value %q", fe.Value())}
	}
}

// normalizeDraft validates a draft and turns it into the request to store.
// Rows with a blank description are dropped; each kept row needs a quantity.
func normalizeDraft(d models.RequestDraft, today time.Time) (models.Request, error) {
	d.Type = strings.TrimSpace(d.Type)
	d.OrderRef = strings.TrimSpace(d.OrderRef)
	d.TrackingOrInvoice = strings.TrimSpace(d.TrackingOrInvoice)
	d.OrderDate = strings.TrimSpace(d.OrderDate)
	d.Status = models.NormalizeStatus(d.Status)
	d.ShippingMethod = strings.TrimSpace(d.ShippingMethod)
	d.ETADate = strings.TrimSpace(d.ETADate)
	d.PartnerName = strings.TrimSpace(d.PartnerName)
	d.Encargado = strings.TrimSpace(d.Encargado)
	d.PaymentMethod = strings.TrimSpace(d.PaymentMethod)

	if err := validate.Struct(d); err != nil {
		return models.Request{}, validationFromStruct(err)
	}

	typ, _ := models.ParseRequestType(d.Type)
	if !models.ValidStatus(typ, d.Status) {
		return models.Request{}, &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a %s status", d.Status, typ),
		}
	}

	req := models.Request{
		Type:              typ,
		OrderRef:          d.OrderRef,
		TrackingOrInvoice: d.TrackingOrInvoice,
		OrderDate:         d.OrderDate,
		Status:            d.Status,
		ShippingMethod:    d.ShippingMethod,
		ETADate:           d.ETADate,
		PartnerName:       d.PartnerName,
		Encargado:         d.Encargado,
		PaymentMethod:     d.PaymentMethod,
		Description:       []string{},
		Quantity:          []models.Quantity{},
	}
	if req.OrderDate == "" {
		req.OrderDate = today.Format(models.DateLayout)
	}

	for i, item := range d.Items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		qty := models.ParseQuantity(item.Quantity)
		if qty.IsBlank() {
			return models.Request{}, &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "is required",
			}
		}
		req.Description = append(req.Description, desc)
		req.Quantity = append(req.Quantity, qty)
	}
	if len(req.Description) == 0 {
		return models.Request{}, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	return req, nil
}

// applyPatch merges the non-nil fields of p into r and validates the result.
func applyPatch(r models.Request, p models.RequestPatch) (models.Request, error) {
	out := r.Clone()

	if p.Type != nil {
		t, ok := models.ParseRequestType(*p.Type)
		if !ok {
			return r, &ValidationError{Field: models.KeyType, Message: fmt.Sprintf("invalid value %q", *p.Type)}
		}
		out.Type = t
		delete(out.Extra, t.PartnerKey())
	}
	setString(&out.OrderRef, p.OrderRef)
	setString(&out.TrackingOrInvoice, p.TrackingOrInvoice)
	setString(&out.PartnerName, partnerValue(out.Type, p))

	if p.OrderDate != nil {
		if _, ok := models.ParseDate(*p.OrderDate); !ok {
			return r, &ValidationError{Field: models.KeyDate, Message: "must be a YYYY-MM-DD date"}
		}
		out.OrderDate = strings.TrimSpace(*p.OrderDate)
	}
	if p.ETADate != nil {
		eta := strings.TrimSpace(*p.ETADate)
		if _, ok := models.ParseDate(eta); eta != "" && !ok {
			return r, &ValidationError{Field: models.KeyETADate, Message: "must be a YYYY-MM-DD date"}
		}
		out.ETADate = eta
	}
	if p.Status != nil {
		out.Status = models.NormalizeStatus(*p.Status)
	}
	if p.Status != nil || p.Type != nil {
		if !models.ValidStatus(out.Type, out.Status) {
			return r, &ValidationError{
				Field:   models.KeyStatus,
				Message: fmt.Sprintf("%q is not a %s status", out.Status, out.Type),
			}
		}
	}
	if p.ShippingMethod != nil {
		v := strings.TrimSpace(*p.ShippingMethod)
		if !models.IsShippingMethod(v) {
			return r, &ValidationError{Field: models.KeyShippingMethod, Message: fmt.Sprintf("invalid value %q", v)}
		}
		out.ShippingMethod = v
	}
	if p.PaymentMethod != nil {
		v := strings.TrimSpace(*p.PaymentMethod)
		if !models.IsPaymentMethod(v) {
			return r, &ValidationError{Field: models.KeyPago, Message: fmt.Sprintf("invalid value %q", v)}
		}
		out.PaymentMethod = v
	}
	if p.Encargado != nil {
		v := strings.TrimSpace(*p.Encargado)
		if !models.IsEncargado(v) {
			return r, &ValidationError{Field: models.KeyEncargado, Message: fmt.Sprintf("invalid value %q", v)}
		}
		out.Encargado = v
	}

	if p.Description != nil || p.Quantity != nil {
		if p.Description != nil {
			out.Description = append([]string(nil), (*p.Description)...)
		}
		if p.Quantity != nil {
			out.Quantity = append([]models.Quantity(nil), (*p.Quantity)...)
		}
		items, err := cleanItems(out.Description, out.Quantity)
		if err != nil {
			return r, err
		}
		out.Description, out.Quantity = items.desc, items.qty
	}
	return out, nil
}

type itemLists struct {
	desc []string
	qty  []models.Quantity
}

// cleanItems pairs edited rows back up. Rows blank on both sides are
// dropped, as the edit form leaves them behind when rows are added.
func cleanItems(desc []string, qty []models.Quantity) (itemLists, error) {
	if len(desc) != len(qty) {
		return itemLists{}, &ValidationError{
			Field:   models.KeyDescription,
			Message: fmt.Sprintf("has %d entries but Quantity has %d", len(desc), len(qty)),
		}
	}
	out := itemLists{desc: []string{}, qty: []models.Quantity{}}
	for i := range desc {
		d := strings.TrimSpace(desc[i])
		if d == "" {
			if qty[i].IsBlank() {
				continue
			}
			return itemLists{}, &ValidationError{
				Field:   fmt.Sprintf("%s[%d]", models.KeyDescription, i),
				Message: "is required when a quantity is given",
			}
		}
		out.desc = append(out.desc, d)
		out.qty = append(out.qty, qty[i])
	}
	if len(out.desc) == 0 {
		return itemLists{}, &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	return out, nil
}

// partnerValue picks the patch key matching the request type. A patch that
// only sends the other key still updates the partner name.
func partnerValue(t models.RequestType, p models.RequestPatch) *string {
	if t == models.TypeSales {
		if p.Cliente != nil {
			return p.Cliente
		}
		return p.Proveedor
	}
	if p.Proveedor != nil {
		return p.Proveedor
	}
	return p.Cliente
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
