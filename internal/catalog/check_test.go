package catalog_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/geonokwon/autoquote-web/internal/catalog"
)

func TestCheckReportsUnknownReferences(t *testing.T) {
	cat, err := catalog.Load(catalog.Input{
		Services: []catalog.ServiceRow{
			{Key: "internet", Name: "인터넷", Options: []catalog.ServiceOption{{Label: "100M"}, {Label: "500M"}}},
		},
		ComboRules: []catalog.ComboRuleRow{
			{Key: "internet_tv", Title: "결합", MonthlyDiscount: 10_000, Conditions: &catalog.ConditionsRow{
				Required: []string{"internet", "tv"},
				Options:  map[string][]string{"internet": {"100M", "1G"}},
			}},
		},
		CardDiscounts: map[string]catalog.CardEntryRow{
			"kt_card": {Name: "KT 제휴카드", Options: []catalog.CardOptionRow{{Label: "기본", Amount: 10_000}}},
		},
	}, zerolog.Nop())
	require.NoError(t, err)

	issues := cat.Check()
	require.Len(t, issues, 3)

	reasons := make(map[string]int)
	for _, issue := range issues {
		reasons[issue.Reason]++
	}
	require.Equal(t, 1, reasons["required service not in catalog"])
	require.Equal(t, 1, reasons["option not declared for service"])
	require.Equal(t, 1, reasons["unknown card service"])
}

func TestCheckCleanCatalog(t *testing.T) {
	cat, err := catalog.Load(catalog.Input{
		Services: []catalog.ServiceRow{
			{Key: "internet", Options: []catalog.ServiceOption{{Label: "100M"}}},
			{Key: "kt_card", IsCardDiscount: true},
		},
		ComboRules: []catalog.ComboRuleRow{
			{Key: "internet_only", Title: "결합", MonthlyDiscount: 10_000, Conditions: &catalog.ConditionsRow{
				Required: []string{"internet"},
				Options:  map[string][]string{"internet": {"100M"}},
			}},
		},
		CardDiscounts: map[string]catalog.CardEntryRow{
			"kt_card": {Name: "KT 제휴카드", Options: []catalog.CardOptionRow{{Label: "기본", Amount: 10_000}}},
		},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Empty(t, cat.Check())
}

func TestCheckBenefitRulesUseContainment(t *testing.T) {
	cat, err := catalog.Load(catalog.Input{
		Services: []catalog.ServiceRow{
			{Key: "internet", Options: []catalog.ServiceOption{{Label: "500M 프리미엄"}}},
		},
		BenefitRules: []catalog.BenefitRuleRow{
			{Key: "bundle_a", Title: "혜택", GiftCard: 10_000, Conditions: &catalog.ConditionsRow{
				Required: []string{"internet"},
				Options:  map[string][]string{"internet": {"500M"}},
			}},
		},
	}, zerolog.Nop())
	require.NoError(t, err)
	require.Empty(t, cat.Check(), "drifted labels that still match by containment are not issues")
}
