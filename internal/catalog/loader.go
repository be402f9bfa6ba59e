package catalog

import (
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// ProductBenefitRow is the JSON row shape the admin console exports for one
// service/option benefit.
type ProductBenefitRow struct {
	ServiceKey                      string            `json:"serviceKey" validate:"required"`
	Option                          string            `json:"option" validate:"required"`
	GiftCard                        int64             `json:"giftCard" validate:"min=0"`
	Cash                            int64             `json:"cash" validate:"min=0"`
	MultiplyByQuantity              *bool             `json:"multiplyByQuantity,omitempty"`
	PerQuantity                     map[string]Payout `json:"perQuantity,omitempty"`
	ExcludeGiftCardIfBusiness       bool              `json:"excludeGiftCardIfBusiness,omitempty"`
	ExcludeCashIfBusiness           bool              `json:"excludeCashIfBusiness,omitempty"`
	ExcludeGiftCardIfOfficeInternet bool              `json:"excludeGiftCardIfOfficeInternet,omitempty"`
	ExcludeCashIfOfficeInternet     bool              `json:"excludeCashIfOfficeInternet,omitempty"`
}

// ConditionsRow is the JSON shape of a rule's gating conditions.
type ConditionsRow struct {
	Required []string            `json:"required"`
	Options  map[string][]string `json:"options"`
}

// ComboRuleRow is the JSON row shape of one combo discount rule.
type ComboRuleRow struct {
	Key             string         `json:"key" validate:"required"`
	Title           string         `json:"title" validate:"required"`
	Category        string         `json:"category,omitempty"`
	MonthlyDiscount int64          `json:"monthlyDiscount" validate:"min=0"`
	Priority        int            `json:"priority"`
	CanCombineWith  []string       `json:"canCombineWith,omitempty"`
	Conditions      *ConditionsRow `json:"conditions,omitempty"`
}

// BenefitRuleRow is the JSON row shape of one cross-service benefit rule.
type BenefitRuleRow struct {
	Key            string         `json:"key" validate:"required"`
	Title          string         `json:"title" validate:"required"`
	GiftCard       int64          `json:"giftCard" validate:"min=0"`
	Cash           int64          `json:"cash" validate:"min=0"`
	Priority       int            `json:"priority"`
	CanCombineWith []string       `json:"canCombineWith,omitempty"`
	Conditions     *ConditionsRow `json:"conditions,omitempty"`
}

// CardOptionRow is one card discount tier as exported.
type CardOptionRow struct {
	Label  string `json:"label" validate:"required"`
	Amount int64  `json:"amount" validate:"min=0"`
}

// CardEntryRow is one card service's discount table as exported.
type CardEntryRow struct {
	Name    string          `json:"name" validate:"required"`
	Options []CardOptionRow `json:"options" validate:"dive"`
}

// ServiceRow is one service declaration as exported.
type ServiceRow struct {
	Key            string          `json:"key" validate:"required"`
	Name           string          `json:"name"`
	MultiSelect    bool            `json:"multiSelect,omitempty"`
	IsDiscount     bool            `json:"isDiscount,omitempty"`
	IsCardDiscount bool            `json:"isCardDiscount,omitempty"`
	Options        []ServiceOption `json:"options,omitempty"`
}

// Input bundles the raw tables of one catalog export.
type Input struct {
	Services        []ServiceRow            `json:"services"`
	ProductBenefits []ProductBenefitRow     `json:"productBenefits"`
	ComboRules      []ComboRuleRow          `json:"comboRules"`
	BenefitRules    []BenefitRuleRow        `json:"benefitRules"`
	CardDiscounts   map[string]CardEntryRow `json:"cardDiscounts"`
}

// Load validates the raw tables and builds the normalized catalog the
// evaluation path operates on. Monetary invariants are enforced here so the
// resolvers never see a negative amount. Recoverable authoring noise
// (unparseable tier keys, rules without conditions) is dropped with a warning
// instead of failing the load.
func Load(in Input, log zerolog.Logger) (*Catalog, error) {
	var errs []error

	cat := &Catalog{
		CardDiscounts: make(map[string]CardDiscountEntry, len(in.CardDiscounts)),
	}

	names := make(map[string]string, len(in.Services))
	for i, row := range in.Services {
		if err := validate.Struct(row); err != nil {
			errs = append(errs, fmt.Errorf("services[%d] (%s): %w", i, row.Key, err))
			continue
		}
		cat.Services = append(cat.Services, Service{
			Key:            row.Key,
			Name:           row.Name,
			MultiSelect:    row.MultiSelect,
			IsDiscount:     row.IsDiscount,
			IsCardDiscount: row.IsCardDiscount,
			Options:        row.Options,
		})
		names[row.Key] = row.Name
	}

	table := ProductBenefitTable{
		titles: make(map[string]string),
		rules:  make(map[string]map[string]ProductBenefitRule),
	}
	for i, row := range in.ProductBenefits {
		if err := validate.Struct(row); err != nil {
			errs = append(errs, fmt.Errorf("productBenefits[%d] (%s/%s): %w", i, row.ServiceKey, row.Option, err))
			continue
		}
		if _, ok := table.rules[row.ServiceKey]; !ok {
			title := names[row.ServiceKey]
			if title == "" {
				title = row.ServiceKey
			}
			table.titles[row.ServiceKey] = title
			table.rules[row.ServiceKey] = make(map[string]ProductBenefitRule)
		}
		table.rules[row.ServiceKey][row.Option] = normalizeBenefitRow(row, log)
	}
	cat.ProductBenefits = table

	for i, row := range in.ComboRules {
		if err := validate.Struct(row); err != nil {
			errs = append(errs, fmt.Errorf("comboRules[%d] (%s): %w", i, row.Key, err))
			continue
		}
		if row.Conditions == nil {
			log.Warn().Str("table", "comboRules").Str("key", row.Key).Msg("rule has no conditions, dropped")
			continue
		}
		category := row.Category
		if category == "" {
			category = CategoryOf(row.Key)
		}
		cat.ComboRules = append(cat.ComboRules, ComboRule{
			Key:             row.Key,
			Title:           row.Title,
			Category:        category,
			MonthlyDiscount: row.MonthlyDiscount,
			Priority:        row.Priority,
			CanCombineWith:  append([]string(nil), row.CanCombineWith...),
			Conditions:      normalizeConditions(row.Conditions),
		})
	}

	for i, row := range in.BenefitRules {
		if err := validate.Struct(row); err != nil {
			errs = append(errs, fmt.Errorf("benefitRules[%d] (%s): %w", i, row.Key, err))
			continue
		}
		if row.Conditions == nil {
			log.Warn().Str("table", "benefitRules").Str("key", row.Key).Msg("rule has no conditions, dropped")
			continue
		}
		cat.BenefitRules = append(cat.BenefitRules, BenefitRule{
			Key:            row.Key,
			Title:          row.Title,
			GiftCard:       row.GiftCard,
			Cash:           row.Cash,
			Priority:       row.Priority,
			CanCombineWith: append([]string(nil), row.CanCombineWith...),
			Conditions:     normalizeConditions(row.Conditions),
		})
	}

	for key, row := range in.CardDiscounts {
		if err := validate.Struct(row); err != nil {
			errs = append(errs, fmt.Errorf("cardDiscounts[%s]: %w", key, err))
			continue
		}
		entry := CardDiscountEntry{Name: row.Name}
		for _, opt := range row.Options {
			entry.Options = append(entry.Options, CardOption{Label: opt.Label, Amount: opt.Amount})
		}
		cat.CardDiscounts[key] = entry
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cat, nil
}

func normalizeBenefitRow(row ProductBenefitRow, log zerolog.Logger) ProductBenefitRule {
	rule := ProductBenefitRule{
		GiftCard:                        row.GiftCard,
		Cash:                            row.Cash,
		MultiplyByQuantity:              row.MultiplyByQuantity == nil || *row.MultiplyByQuantity,
		ExcludeGiftCardIfBusiness:       row.ExcludeGiftCardIfBusiness,
		ExcludeCashIfBusiness:           row.ExcludeCashIfBusiness,
		ExcludeGiftCardIfOfficeInternet: row.ExcludeGiftCardIfOfficeInternet,
		ExcludeCashIfOfficeInternet:     row.ExcludeCashIfOfficeInternet,
	}
	if len(row.PerQuantity) == 0 {
		return rule
	}
	rule.PerQuantity = make(map[int]Payout, len(row.PerQuantity))
	for key, payout := range row.PerQuantity {
		qty, ok := leadingInt(key)
		if !ok || qty <= 0 {
			log.Warn().
				Str("service", row.ServiceKey).
				Str("option", row.Option).
				Str("tier", key).
				Msg("unparseable quantity tier key, dropped")
			continue
		}
		rule.PerQuantity[qty] = payout
	}
	return rule
}

func normalizeConditions(row *ConditionsRow) Conditions {
	cond := Conditions{
		Required: append([]string(nil), row.Required...),
	}
	if len(row.Options) > 0 {
		cond.Options = make(map[string][]string, len(row.Options))
		for svc, allowed := range row.Options {
			cond.Options[svc] = append([]string(nil), allowed...)
		}
	}
	return cond
}

// leadingInt parses the integer prefix of a tier key. Keys may carry unit
// suffixes such as "6대".
func leadingInt(key string) (int, bool) {
	s := strings.TrimSpace(key)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n := 0
	for _, c := range s[:end] {
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, false
		}
	}
	return n, true
}
