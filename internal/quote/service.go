package quote

import (
	"github.com/geonokwon/autoquote-web/internal/benefit"
	"github.com/geonokwon/autoquote-web/internal/bundle"
	"github.com/geonokwon/autoquote-web/internal/card"
	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/combo"
	"github.com/geonokwon/autoquote-web/internal/common"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// Context carries the caller-owned evaluation flags.
type Context struct {
	IsBusiness         bool
	ExcludedCombos     []string
	ApplyCardDiscounts bool
}

// ComboBenefits is the printable breakdown of applied combo discounts.
type ComboBenefits struct {
	Title    string   `json:"title"`
	GiftCard int64    `json:"giftCard"`
	Cash     int64    `json:"cash"`
	Items    []string `json:"items"`
}

// ComboDiscount summarizes the applied monthly combo discounts.
type ComboDiscount struct {
	MonthlyDiscount int64         `json:"monthlyDiscount"`
	Benefits        ComboBenefits `json:"benefits"`
}

// Summary is the full structured result of one evaluation.
type Summary struct {
	OriginalTotal   int64           `json:"originalTotal"`
	DiscountTotal   int64           `json:"discountTotal"`
	FinalTotal      int64           `json:"finalTotal"`
	ProductBenefits benefit.Summary `json:"productBenefits"`
	ExtraBenefits   bundle.Summary  `json:"extraBenefits"`
	ComboDiscount   *ComboDiscount  `json:"comboDiscount"`
	CardDiscounts   []card.Discount `json:"cardDiscounts"`
}

// Service evaluates selection snapshots against one rule catalog. Evaluation
// is pure: the catalog and snapshot are never mutated and identical inputs
// yield identical summaries.
type Service struct {
	Catalog *catalog.Catalog
	// SuppressCashlessPrefixes overrides benefit.DefaultSuppressedPrefixes
	// when non-nil.
	SuppressCashlessPrefixes []string
}

// Evaluate runs the four resolvers over the snapshot and combines their
// results with the price totals.
func (s *Service) Evaluate(snap selection.Snapshot, ctx Context) Summary {
	if s == nil || s.Catalog == nil {
		return Summary{
			ProductBenefits: benefit.Summary{Items: []string{}, Products: []benefit.Line{}},
			ExtraBenefits:   bundle.Summary{Benefits: []bundle.Benefit{}},
		}
	}

	prefixes := s.SuppressCashlessPrefixes
	if prefixes == nil {
		prefixes = benefit.DefaultSuppressedPrefixes
	}
	calc := benefit.Calculator{Catalog: s.Catalog, SuppressCashlessPrefixes: prefixes}

	discounts := combo.Resolve(snap, s.Catalog.ComboRules, ctx.ExcludedCombos)

	summary := Summary{
		ProductBenefits: calc.Calculate(snap, benefit.Context{IsBusiness: ctx.IsBusiness}),
		ExtraBenefits:   bundle.Resolve(snap, s.Catalog.BenefitRules),
		CardDiscounts:   card.Resolve(snap, s.Catalog),
	}

	if len(discounts) > 0 {
		items := make([]string, 0, len(discounts))
		for _, d := range discounts {
			items = append(items, d.Label+" "+common.FormatWon(d.Amount))
		}
		summary.ComboDiscount = &ComboDiscount{
			MonthlyDiscount: combo.Total(discounts),
			Benefits:        ComboBenefits{Title: "결합 할인", Items: items},
		}
	}

	summary.OriginalTotal = s.originalTotal(snap)
	summary.DiscountTotal = s.discountTotal(snap, discounts, summary.CardDiscounts, ctx.ApplyCardDiscounts)
	summary.FinalTotal = summary.OriginalTotal - abs(summary.DiscountTotal)
	return summary
}

// originalTotal sums the positive prices of selections for services that are
// neither discount nor card-discount entries of the form.
func (s *Service) originalTotal(snap selection.Snapshot) int64 {
	var total int64
	for _, svc := range s.Catalog.Services {
		if svc.IsDiscount || svc.IsCardDiscount {
			continue
		}
		sel, ok := snap.Get(svc.Key)
		if !ok {
			continue
		}
		for _, entry := range sel.Entries() {
			if entry.Price > 0 {
				total += entry.Price
			}
		}
	}
	return total
}

// discountTotal aggregates every negative-priced entry across all services,
// the combo discount total, and, when card discounts are applied, the
// resolved card discount amounts. The result is negative; its absolute value
// is the discounted amount.
func (s *Service) discountTotal(snap selection.Snapshot, discounts []combo.Discount, cards []card.Discount, applyCards bool) int64 {
	var total int64
	for _, sel := range snap {
		for _, entry := range sel.Entries() {
			if entry.Price < 0 {
				total += -entry.Price
			}
		}
	}
	total += combo.Total(discounts)
	if applyCards {
		total += card.Total(cards)
	}
	return -total
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
