package domain

import "github.com/shopspring/decimal"

// TaxRate is the flat 18% tax applied to every order subtotal.
var TaxRate = decimal.RequireFromString("0.18")

// OrderDetail is an order with its line items. Totals are derived on every
// call and rounded half-to-even to two places.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

func (d OrderDetail) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range d.Items {
		sum = sum.Add(it.TotalPrice())
	}
	return sum
}

func (d OrderDetail) TaxAmount() decimal.Decimal {
	return d.Subtotal().Mul(TaxRate).RoundBank(2)
}

func (d OrderDetail) GrandTotal() decimal.Decimal {
	return d.Subtotal().Add(d.TaxAmount()).RoundBank(2)
}

func (d OrderDetail) ItemCount() int {
	n := 0
	for _, it := range d.Items {
		n += it.Quantity
	}
	return n
}

// MinorUnits converts an amount to the smallest currency unit, truncating
// anything below it.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// Totals is the JSON shape of the derived values.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
}

func (d OrderDetail) Totals() Totals {
	return Totals{
		Subtotal:   d.Subtotal(),
		TaxAmount:  d.TaxAmount(),
		GrandTotal: d.GrandTotal(),
		ItemCount:  d.ItemCount(),
	}
}
