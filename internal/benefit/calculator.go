package benefit

import (
	"fmt"
	"strings"

	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/common"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// Service keys handled outside the generic rule-table loop.
const (
	ServiceHighorder     = "highorder"
	ServiceExtraBenefit  = "extraBenefit"
	ServiceSmallBusiness = "smallBusinessBenefit"
)

const smallBusinessLabel = "소상공인 혜택"

// DefaultSuppressedPrefixes names the product families whose cashless
// highorder lines are withheld from the printable breakdown.
var DefaultSuppressedPrefixes = []string{"알림판"}

// Context carries the evaluation flags that drive exclusion handling.
type Context struct {
	IsBusiness bool
}

// Line is one benefit attributed to a selected product.
type Line struct {
	Title    string `json:"title"`
	Service  string `json:"service"`
	Label    string `json:"label,omitempty"`
	GiftCard int64  `json:"giftCard"`
	Cash     int64  `json:"cash"`
}

// Summary accumulates the per-option benefits of one evaluation.
type Summary struct {
	GiftCard int64    `json:"giftCard"`
	Cash     int64    `json:"cash"`
	Items    []string `json:"items"`
	Products []Line   `json:"productBenefits"`
}

// Calculator computes per-selected-option monetary benefits against the
// catalog's product benefit table.
type Calculator struct {
	Catalog *catalog.Catalog
	// SuppressCashlessPrefixes withholds highorder line items whose display
	// label starts with one of these prefixes and whose cash payout is zero.
	// The payout still counts toward the totals.
	SuppressCashlessPrefixes []string
}

// Calculate walks the snapshot and accumulates benefits: rule-table services
// first, then highorder aggregation, embedded extra benefits, and the small
// business sentinel.
func (c Calculator) Calculate(snap selection.Snapshot, ctx Context) Summary {
	out := Summary{Items: []string{}, Products: []Line{}}
	if c.Catalog == nil || len(snap) == 0 {
		return out
	}

	officeInternet := hasOfficeInternet(snap)
	table := c.Catalog.ProductBenefits

	for _, key := range orderedKeys(c.Catalog, snap) {
		if key == ServiceHighorder || key == ServiceExtraBenefit || key == ServiceSmallBusiness {
			continue
		}
		sel := snap[key]
		for _, entry := range sel.Entries() {
			if !entry.Matchable() {
				continue
			}
			rule, ok := table.Rule(key, entry.Label)
			if !ok {
				continue
			}
			payout := ResolveTier(rule, entry.Qty())
			giftCard, cash := applyExclusions(rule, payout, ctx.IsBusiness, officeInternet)
			out.GiftCard += giftCard
			out.Cash += cash
			if giftCard <= 0 && cash <= 0 {
				continue
			}
			line := Line{Title: table.Title(key), Service: key, GiftCard: giftCard, Cash: cash}
			if sel.IsMulti() {
				line.Label = entry.Label
			}
			out.Products = append(out.Products, line)
			appendItems(&out, c.Catalog.ServiceName(key), giftCard, cash)
		}
	}

	c.addHighorder(snap, &out)
	addExtraBenefits(snap, &out)
	addSmallBusiness(snap, &out)
	return out
}

// addHighorder computes highorder benefits once per distinct label using the
// summed quantity of every entry sharing that label.
func (c Calculator) addHighorder(snap selection.Snapshot, out *Summary) {
	sel, ok := snap.Get(ServiceHighorder)
	if !ok || !sel.IsMulti() {
		return
	}
	entries := sel.Entries()
	table := c.Catalog.ProductBenefits
	processed := make(map[string]bool, len(entries))

	for _, entry := range entries {
		if processed[entry.Label] {
			continue
		}
		rule, ok := table.Rule(ServiceHighorder, entry.Label)
		if !ok {
			continue
		}
		total := 0
		for _, other := range entries {
			if other.Label == entry.Label {
				total += other.Qty()
			}
		}
		payout := ResolveTier(rule, total)
		out.GiftCard += payout.GiftCard
		out.Cash += payout.Cash
		processed[entry.Label] = true

		if payout.GiftCard <= 0 && payout.Cash <= 0 {
			continue
		}
		base := displayLabel(entry.Label)
		if payout.Cash == 0 && c.suppressed(base) {
			continue
		}
		label := base
		if total > 1 {
			label = fmt.Sprintf("%s (x%d)", base, total)
		}
		out.Products = append(out.Products, Line{
			Title:    base,
			Service:  ServiceHighorder,
			Label:    label,
			GiftCard: payout.GiftCard,
			Cash:     payout.Cash,
		})
		appendItems(out, label, payout.GiftCard, payout.Cash)
	}
}

func addExtraBenefits(snap selection.Snapshot, out *Summary) {
	sel, ok := snap.Get(ServiceExtraBenefit)
	if !ok {
		return
	}
	for _, entry := range sel.Entries() {
		if entry.Benefits == nil {
			continue
		}
		giftCard, cash := entry.Benefits.GiftCard, entry.Benefits.Cash
		out.GiftCard += giftCard
		out.Cash += cash
		if giftCard <= 0 && cash <= 0 {
			continue
		}
		title := entry.Label
		if title == "" {
			title = "추가 혜택"
		}
		out.Products = append(out.Products, Line{Title: title, Service: ServiceExtraBenefit, GiftCard: giftCard, Cash: cash})
		appendItems(out, title, giftCard, cash)
	}
}

func addSmallBusiness(snap selection.Snapshot, out *Summary) {
	sel, ok := snap.Get(ServiceSmallBusiness)
	if !ok {
		return
	}
	entry, ok := sel.First()
	if !ok || entry.Label != smallBusinessLabel || entry.Benefits == nil {
		return
	}
	giftCard, cash := entry.Benefits.GiftCard, entry.Benefits.Cash
	out.GiftCard += giftCard
	out.Cash += cash
	out.Products = append(out.Products, Line{Title: "지니원혜택", Service: ServiceSmallBusiness, GiftCard: giftCard, Cash: cash})
	if giftCard > 0 {
		out.Items = append(out.Items, smallBusinessLabel+" 상품권 "+common.FormatWon(giftCard))
	}
	if cash > 0 {
		out.Items = append(out.Items, smallBusinessLabel+" 현금사은품 "+common.FormatWon(cash))
	}
}

func (c Calculator) suppressed(label string) bool {
	for _, prefix := range c.SuppressCashlessPrefixes {
		if prefix != "" && strings.HasPrefix(label, prefix) {
			return true
		}
	}
	return false
}

func applyExclusions(rule catalog.ProductBenefitRule, payout catalog.Payout, business, officeInternet bool) (int64, int64) {
	giftCard, cash := payout.GiftCard, payout.Cash
	if business && rule.ExcludeGiftCardIfBusiness {
		giftCard = 0
	}
	if business && rule.ExcludeCashIfBusiness {
		cash = 0
	}
	if officeInternet && rule.ExcludeGiftCardIfOfficeInternet {
		giftCard = 0
	}
	if officeInternet && rule.ExcludeCashIfOfficeInternet {
		cash = 0
	}
	return giftCard, cash
}

func appendItems(out *Summary, name string, giftCard, cash int64) {
	if giftCard > 0 {
		out.Items = append(out.Items, name+" 상품권 "+common.FormatWon(giftCard))
	}
	if cash > 0 {
		out.Items = append(out.Items, name+" 현금사은품 "+common.FormatWon(cash))
	}
}

// hasOfficeInternet reports whether the internet selection is a family or
// office plan, which gates the office-internet exclusion flags.
func hasOfficeInternet(snap selection.Snapshot) bool {
	sel, ok := snap.Get("internet")
	if !ok {
		return false
	}
	entry, ok := sel.First()
	if !ok {
		return false
	}
	return strings.Contains(entry.Label, "패밀리") || strings.Contains(entry.Label, "오피스")
}

// displayLabel strips everything after the first hyphen of a highorder label.
func displayLabel(label string) string {
	if idx := strings.Index(label, "-"); idx >= 0 {
		return strings.TrimSpace(label[:idx])
	}
	return label
}

// orderedKeys iterates snapshot services in catalog declaration order, then
// any snapshot-only keys in sorted order, so repeated evaluations of the same
// inputs produce identical output.
func orderedKeys(cat *catalog.Catalog, snap selection.Snapshot) []string {
	seen := make(map[string]bool, len(snap))
	keys := make([]string, 0, len(snap))
	for _, svc := range cat.Services {
		if _, ok := snap[svc.Key]; ok && !seen[svc.Key] {
			seen[svc.Key] = true
			keys = append(keys, svc.Key)
		}
	}
	for _, key := range snap.Keys() {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	return keys
}
