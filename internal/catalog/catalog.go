package catalog

import (
	"sort"
	"strings"
)

// Payout is a gift-card/cash amount pair.
type Payout struct {
	GiftCard int64 `json:"giftCard"`
	Cash     int64 `json:"cash"`
}

// ServiceOption is one selectable option declared for a service.
type ServiceOption struct {
	Label string `json:"label"`
	Price int64  `json:"price,omitempty"`
}

// Service describes one service column of the quote form. Discount and
// card-discount services are excluded from the original total.
type Service struct {
	Key            string
	Name           string
	MultiSelect    bool
	IsDiscount     bool
	IsCardDiscount bool
	Options        []ServiceOption
}

// ProductBenefitRule is the normalized per-option benefit rule the evaluation
// path operates on. PerQuantity keys are already integer quantities.
type ProductBenefitRule struct {
	GiftCard                        int64
	Cash                            int64
	MultiplyByQuantity              bool
	PerQuantity                     map[int]Payout
	ExcludeGiftCardIfBusiness       bool
	ExcludeCashIfBusiness           bool
	ExcludeGiftCardIfOfficeInternet bool
	ExcludeCashIfOfficeInternet     bool
}

// ProductBenefitTable indexes benefit rules by service key and option label.
type ProductBenefitTable struct {
	titles map[string]string
	rules  map[string]map[string]ProductBenefitRule
}

// Rule looks up the rule for a service/option pair.
func (t ProductBenefitTable) Rule(service, label string) (ProductBenefitRule, bool) {
	byLabel, ok := t.rules[service]
	if !ok {
		return ProductBenefitRule{}, false
	}
	rule, ok := byLabel[label]
	return rule, ok
}

// Title returns the display title recorded for a service's benefit rows,
// falling back to the empty string when the service has none.
func (t ProductBenefitTable) Title(service string) string {
	return t.titles[service]
}

// Conditions gate a combo or bundle-benefit rule on the current selections.
type Conditions struct {
	Required []string
	Options  map[string][]string
}

// ComboRule is one monthly combined-service discount.
type ComboRule struct {
	Key             string
	Title           string
	Category        string
	MonthlyDiscount int64
	Priority        int
	CanCombineWith  []string
	Conditions      Conditions
}

// Combinable reports whether the rule declares the other key as stackable.
func (r ComboRule) Combinable(key string) bool {
	return containsKey(r.CanCombineWith, key)
}

// BenefitRule is one cross-service gift-card/cash payout rule.
type BenefitRule struct {
	Key            string
	Title          string
	GiftCard       int64
	Cash           int64
	Priority       int
	CanCombineWith []string
	Conditions     Conditions
}

// Combinable reports whether the rule declares the other key as stackable.
func (r BenefitRule) Combinable(key string) bool {
	return containsKey(r.CanCombineWith, key)
}

// CardOption is one discount tier of a card product.
type CardOption struct {
	Label  string
	Amount int64
}

// CardDiscountEntry is the discount table of one card service.
type CardDiscountEntry struct {
	Name    string
	Options []CardOption
}

// Catalog is the immutable, request-scoped view of all rule tables. The
// engine only reads it; authoring happens elsewhere.
type Catalog struct {
	Services        []Service
	ProductBenefits ProductBenefitTable
	ComboRules      []ComboRule
	BenefitRules    []BenefitRule
	CardDiscounts   map[string]CardDiscountEntry
}

// Service returns the declared service for a key.
func (c *Catalog) Service(key string) (Service, bool) {
	if c == nil {
		return Service{}, false
	}
	for _, svc := range c.Services {
		if svc.Key == key {
			return svc, true
		}
	}
	return Service{}, false
}

// ServiceName resolves a service key to its display name, falling back to the
// key itself for unknown services.
func (c *Catalog) ServiceName(key string) string {
	if svc, ok := c.Service(key); ok && svc.Name != "" {
		return svc.Name
	}
	return key
}

// CardServiceKeys returns the card service keys in sorted order.
func (c *Catalog) CardServiceKeys() []string {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, len(c.CardDiscounts))
	for key := range c.CardDiscounts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CategoryOf derives a rule's discount family from its key: the text before
// the first underscore.
func CategoryOf(key string) string {
	if idx := strings.Index(key, "_"); idx >= 0 {
		return key[:idx]
	}
	return key
}

func containsKey(list []string, key string) bool {
	for _, k := range list {
		if k == key {
			return true
		}
	}
	return false
}
