package benefit

import "github.com/geonokwon/autoquote-web/internal/catalog"

// ResolveTier resolves the payout for a quantity against a rule's quantity
// tier table. An exact tier wins outright; otherwise the largest tier at or
// below the quantity applies; a quantity below the smallest tier, or a rule
// without tiers, falls back to the base rate multiplied by the quantity
// unless the rule opts out of quantity multiplication.
func ResolveTier(rule catalog.ProductBenefitRule, qty int) catalog.Payout {
	if len(rule.PerQuantity) > 0 {
		if payout, ok := rule.PerQuantity[qty]; ok {
			return payout
		}
		best := 0
		var bestPayout catalog.Payout
		for tier, payout := range rule.PerQuantity {
			if tier <= qty && tier > best {
				best = tier
				bestPayout = payout
			}
		}
		if best > 0 {
			return bestPayout
		}
	}
	factor := int64(1)
	if rule.MultiplyByQuantity {
		factor = int64(qty)
	}
	return catalog.Payout{GiftCard: rule.GiftCard * factor, Cash: rule.Cash * factor}
}
