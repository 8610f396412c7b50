package kiotviet

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lamdong-labs/kvsync-cli/internal/core/domain"
)

// KiotViet timestamps come without a timezone and with a varying number
// of fractional digits.
var timeLayouts = []string{
	"2006-01-02T15:04:05.0000000",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// apiTimeLayout is the format used for outgoing date-filter parameters.
const apiTimeLayout = "2006-01-02T15:04:05"

// Transform maps one raw API item into a normalised cache record.
//
// The mapping is deterministic and best-effort: missing numeric fields
// degrade to zero, a missing active flag means active, and unparseable
// timestamps degrade to the zero time. Only a structurally malformed
// item returns an error; callers skip it rather than failing the batch.
func Transform(resource domain.ResourceType, raw json.RawMessage) (domain.Record, error) {
	switch resource {
	case domain.ResourceProducts:
		return transformProduct(raw)
	case domain.ResourceCustomers:
		return transformCustomer(raw)
	case domain.ResourceOrders:
		return transformOrder(raw)
	case domain.ResourceInvoices:
		return transformInvoice(raw)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, resource)
	}
}

func transformProduct(raw json.RawMessage) (domain.Record, error) {
	var p rawProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}

	name := p.Name
	if name == "" {
		name = p.FullName
	}

	// Stock is the sum across branches.
	var onHand float64
	for _, inv := range p.Inventories {
		onHand += inv.OnHand
	}

	return domain.Product{
		ID:           p.ID,
		Code:         p.Code,
		Name:         name,
		CategoryName: p.CategoryName,
		BasePrice:    floatOrZero(p.BasePrice),
		OnHand:       onHand,
		Unit:         p.Unit,
		IsActive:     boolOrTrue(p.IsActive),
		ModifiedAt:   parseTime(p.ModifiedDate, p.CreatedDate),
	}, nil
}

func transformCustomer(raw json.RawMessage) (domain.Record, error) {
	var c rawCustomer
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}

	return domain.Customer{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		ContactNumber: c.ContactNumber,
		Email:         c.Email,
		Address:       c.Address,
		LocationName:  c.LocationName,
		ModifiedAt:    parseTime(c.ModifiedDate, c.CreatedDate),
	}, nil
}

func transformOrder(raw json.RawMessage) (domain.Record, error) {
	var o rawOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}

	return domain.Order{
		ID:           o.ID,
		Code:         o.Code,
		Status:       statusOrUnknown(o.StatusValue),
		Total:        floatOrZero(o.Total),
		CustomerName: o.CustomerName,
		PurchaseDate: parseTime(o.PurchaseDate),
		ModifiedAt:   parseTime(o.ModifiedDate, o.CreatedDate),
	}, nil
}

func transformInvoice(raw json.RawMessage) (domain.Record, error) {
	var i rawInvoice
	if err := json.Unmarshal(raw, &i); err != nil {
		return nil, fmt.Errorf("unmarshal invoice: %w", err)
	}

	return domain.Invoice{
		ID:           i.ID,
		Code:         i.Code,
		Status:       statusOrUnknown(i.StatusValue),
		Total:        floatOrZero(i.Total),
		CustomerName: i.CustomerName,
		PurchaseDate: parseTime(i.PurchaseDate),
		ModifiedAt:   parseTime(i.ModifiedDate, i.CreatedDate),
	}, nil
}

// parseTime tries each candidate string against the known layouts and
// returns the first parse that succeeds, or the zero time.
func parseTime(candidates ...string) time.Time {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// boolOrTrue treats an absent active flag as active; only an explicit
// false deactivates a record.
func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func statusOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
