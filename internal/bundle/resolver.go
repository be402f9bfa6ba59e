package bundle

import (
	"sort"
	"strings"

	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

// Benefit is one applied cross-service payout.
type Benefit struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Service  string `json:"service"`
	GiftCard int64  `json:"giftCard"`
	Cash     int64  `json:"cash"`
}

// Summary totals the applied bundle benefits.
type Summary struct {
	GiftCard int64     `json:"giftCard"`
	Cash     int64     `json:"cash"`
	Benefits []Benefit `json:"productBenefits"`
}

// Resolve selects a conflict-free set of bundle-benefit rules. Resolution
// works like combo discounts, ascending priority with bidirectional
// combinability, except that rules of the same family may stack. Label
// matching tolerates drift: containment in either direction counts.
func Resolve(snap selection.Snapshot, rules []catalog.BenefitRule) Summary {
	out := Summary{Benefits: []Benefit{}}
	if len(snap) == 0 || len(rules) == 0 {
		return out
	}

	var candidates []catalog.BenefitRule
	for _, rule := range rules {
		if matches(snap, rule.Conditions) {
			candidates = append(candidates, rule)
		}
	}
	if len(candidates) == 0 {
		return out
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	var applied []catalog.BenefitRule
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

		out.GiftCard += cand.GiftCard
		out.Cash += cand.Cash
		if cand.GiftCard+cand.Cash > 0 {
			out.Benefits = append(out.Benefits, Benefit{
				Key:      cand.Key,
				Title:    cand.Title,
				Service:  "benefit",
				GiftCard: cand.GiftCard,
				Cash:     cand.Cash,
			})
		}
	}
	return out
}

func conflicts(applied []catalog.BenefitRule, cand catalog.BenefitRule) bool {
	for _, a := range applied {
		if len(a.CanCombineWith) == 0 || len(cand.CanCombineWith) == 0 {
			return true
		}
		if !a.Combinable(cand.Key) || !cand.Combinable(a.Key) {
			return true
		}
	}
	return false
}

func matches(snap selection.Snapshot, cond catalog.Conditions) bool {
	for _, service := range cond.Required {
		sel, ok := snap.Get(service)
		if !ok || !sel.Present() {
			return false
		}
	}
	for service, allowed := range cond.Options {
		sel, ok := snap.Get(service)
		if !ok || !anyLabelMatches(sel, allowed) {
			return false
		}
	}
	return true
}

func anyLabelMatches(sel selection.Selection, allowed []string) bool {
	for _, entry := range sel.Entries() {
		if entry.Label == "" {
			continue
		}
		for _, a := range allowed {
			if labelMatches(entry.Label, a) {
				return true
			}
		}
	}
	return false
}

func labelMatches(label, allowed string) bool {
	return label == allowed || strings.Contains(label, allowed) || strings.Contains(allowed, label)
}
