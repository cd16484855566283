// Package gmv implements the hybrid Gross Merchandise Value rule. Templates
// embed its canonical pipeline expression and the synthesizer's validator
// substitutes it for whatever arithmetic the model invented, so there is one
// source of truth for monetary correctness.
package gmv

import (
	"github.com/shopspring/decimal"
)

// Item is one order line.
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int64
}

// Order carries the fields the GMV rule depends on. Partner-sourced orders may
// carry an authoritative negotiated price in ThirdUserPrice; shortage transfers
// never do.
type Order struct {
	ID               string
	PartnerID        string
	OriginPharmacyID string
	ThirdUserPrice   *decimal.Decimal
	Items            []Item
}

// Breakdown partitions GMV into ecommerce vs shortage buckets.
type Breakdown struct {
	Ecommerce decimal.Decimal
	Shortage  decimal.Decimal
}

// Result is a computed GMV aggregate, never stored.
type Result struct {
	Total      decimal.Decimal
	OrderCount int
	Breakdown  *Breakdown
}

// Compute applies the hybrid rule to one order: a present partner-supplied
// price wins verbatim, otherwise sum unit price times quantity over the lines.
func Compute(o Order) decimal.Decimal {
	if o.ThirdUserPrice != nil {
		return *o.ThirdUserPrice
	}
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return total
}

// ComputeTotal sums Compute over the set. With breakdown the set is
// partitioned into ecommerce (orders with a partner reference) and shortage
// (everything else), so Total == Ecommerce + Shortage holds by construction.
func ComputeTotal(orders []Order, breakdown bool) Result {
	res := Result{Total: decimal.Zero, OrderCount: len(orders)}
	if breakdown {
		res.Breakdown = &Breakdown{Ecommerce: decimal.Zero, Shortage: decimal.Zero}
	}

	for _, o := range orders {
		amount := Compute(o)
		res.Total = res.Total.Add(amount)
		if res.Breakdown == nil {
			continue
		}
		if IsEcommerce(o) {
			res.Breakdown.Ecommerce = res.Breakdown.Ecommerce.Add(amount)
		} else {
			res.Breakdown.Shortage = res.Breakdown.Shortage.Add(amount)
		}
	}

	return res
}

// IsEcommerce reports the classification used by the breakdown partition.
func IsEcommerce(o Order) bool {
	return o.PartnerID != ""
}
