package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineTotal is qty × rate plus that amount's tax share.
func LineTotal(item InvoiceItem) decimal.Decimal {
	base := item.Qty.Mul(item.Rate)
	return base.Add(base.Mul(item.Tax).Div(hundred))
}

// ComputeTotal sums LineTotal over items. It does not validate; negative
// inputs yield negative totals.
func ComputeTotal(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}
