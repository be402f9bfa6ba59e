package combo

import (
	"sort"

	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// Discount is one applied monthly combo discount.
type Discount struct {
	Key    string `json:"key"`
	Type   string `json:"type"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Resolve selects a conflict-free set of monthly combo discounts from every
// rule matching the snapshot. Rules whose key or family the operator vetoed
// are skipped outright. Candidates are walked in ascending priority; a
// candidate applies only when no applied rule shares its category and every
// applied rule opts into the combination from both sides. Discounts of one
// won or less are informational and suppressed from the output.
func Resolve(snap selection.Snapshot, rules []catalog.ComboRule, excludedKeys []string) []Discount {
	if len(snap) == 0 || len(rules) == 0 {
		return nil
	}

	excluded := make(map[string]bool, len(excludedKeys))
	excludedCategories := make(map[string]bool, len(excludedKeys))
	for _, key := range excludedKeys {
		excluded[key] = true
		excludedCategories[catalog.CategoryOf(key)] = true
	}

	var candidates []catalog.ComboRule
	for _, rule := range rules {
		if excluded[rule.Key] || excludedCategories[rule.Category] {
			continue
		}
		if matches(snap, rule.Conditions) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	var applied []catalog.ComboRule
	appliedKeys := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		if appliedKeys[cand.Key] {
			continue
		}
		if conflicts(applied, cand) {
			continue
		}
		applied = append(applied, cand)
		appliedKeys[cand.Key] = true
	}

	var out []Discount
	for _, rule := range applied {
		if rule.MonthlyDiscount > 1 {
			out = append(out, Discount{Key: rule.Key, Type: "monthly", Label: rule.Title, Amount: rule.MonthlyDiscount})
		}
	}
	return out
}

// Total sums the applied discount amounts.
func Total(discounts []Discount) int64 {
	var total int64
	for _, d := range discounts {
		total += d.Amount
	}
	return total
}

// conflicts reports whether the candidate clashes with any applied rule:
// same category, or either side missing the bidirectional combinability
// opt-in. An empty canCombineWith list makes a rule exclusive.
func conflicts(applied []catalog.ComboRule, cand catalog.ComboRule) bool {
	for _, a := range applied {
		if a.Category == cand.Category {
			return true
		}
		if len(a.CanCombineWith) == 0 || len(cand.CanCombineWith) == 0 {
			return true
		}
		if !a.Combinable(cand.Key) || !cand.Combinable(a.Key) {
			return true
		}
	}
	return false
}

// matches requires every listed service to be present and, for every option
// condition, the selection's label to be exactly one of the allowed labels.
func matches(snap selection.Snapshot, cond catalog.Conditions) bool {
	for _, service := range cond.Required {
		sel, ok := snap.Get(service)
		if !ok || !sel.Present() {
			return false
		}
	}
	for service, allowed := range cond.Options {
		sel, ok := snap.Get(service)
		if !ok || !anyLabelAllowed(sel, allowed) {
			return false
		}
	}
	return true
}

func anyLabelAllowed(sel selection.Selection, allowed []string) bool {
	for _, entry := range sel.Entries() {
		if entry.Label == "" {
			continue
		}
		for _, a := range allowed {
			if a == entry.Label {
				return true
			}
		}
	}
	return false
}
