package card

import (
	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// Discount is one applied card discount.
type Discount struct {
	Service string `json:"service"`
	Label   string `json:"label"`
	Amount  int64  `json:"amount"`
}

// Resolve looks up flat card discounts for the selected card services. The
// selected label must match a table option exactly. Returns nil, not an
// empty slice, when no card produced a discount; callers distinguish the two.
func Resolve(snap selection.Snapshot, cat *catalog.Catalog) []Discount {
	if len(snap) == 0 || cat == nil {
		return nil
	}

	var discounts []Discount
	for _, key := range cat.CardServiceKeys() {
		sel, ok := snap.Get(key)
		if !ok {
			continue
		}
		entry, ok := sel.First()
		if !ok || !entry.Chosen() {
			continue
		}
		table := cat.CardDiscounts[key]
		for _, opt := range table.Options {
			if opt.Label == entry.Label {
				discounts = append(discounts, Discount{
					Service: key,
					Label:   table.Name + " - " + opt.Label,
					Amount:  opt.Amount,
				})
				break
			}
		}
	}
	return discounts
}

// Total sums the applied card discount amounts.
func Total(discounts []Discount) int64 {
	var total int64
	for _, d := range discounts {
		total += d.Amount
	}
	return total
}
