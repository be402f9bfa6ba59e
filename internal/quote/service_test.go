package quote_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/geonokwon/autoquote-web/internal/catalog"
	"github.com/geonokwon/autoquote-web/internal/quote"
	"github.com/geonokwon/autoquote-web/internal/selection"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(catalog.Input{
		Services: []catalog.ServiceRow{
			{Key: "internet", Name: "인터넷"},
			{Key: "tv", Name: "TV"},
			{Key: "highorder", Name: "하이오더", MultiSelect: true},
			{Key: "manual_discount", Name: "직접 할인", MultiSelect: true, IsDiscount: true},
			{Key: "kt_card", Name: "KT 카드", IsCardDiscount: true},
		},
		ProductBenefits: []catalog.ProductBenefitRow{
			{ServiceKey: "internet", Option: "100M", GiftCard: 40_000, Cash: 50_000},
		},
		ComboRules: []catalog.ComboRuleRow{
			{Key: "internet_tv", Title: "인터넷+TV 결합", MonthlyDiscount: 11_000, Priority: 1, Conditions: &catalog.ConditionsRow{
				Required: []string{"internet", "tv"},
				Options:  map[string][]string{"internet": {"100M"}},
			}},
		},
		BenefitRules: []catalog.BenefitRuleRow{
			{Key: "bundle_internet_tv", Title: "동시가입 혜택", GiftCard: 30_000, Priority: 1, Conditions: &catalog.ConditionsRow{
				Required: []string{"internet", "tv"},
			}},
		},
		CardDiscounts: map[string]catalog.CardEntryRow{
			"kt_card": {Name: "KT 제휴카드", Options: []catalog.CardOptionRow{{Label: "월 30만원 이상", Amount: 15_000}}},
		},
	}, zerolog.Nop())
	require.NoError(t, err)
	return cat
}

func TestEvaluateTotalsScenario(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet":        selection.Single(selection.Entry{Label: "100M", Price: 30_000}),
		"manual_discount": selection.Multi(selection.Entry{Label: "프로모션", Price: -5_000}),
	}

	got := svc.Evaluate(snap, quote.Context{})
	require.Equal(t, int64(30_000), got.OriginalTotal)
	require.Equal(t, int64(-5_000), got.DiscountTotal)
	require.Equal(t, int64(25_000), got.FinalTotal)
}

func TestEvaluateFullScenario(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet": selection.Single(selection.Entry{Label: "100M", Price: 30_000, Quantity: 1}),
		"tv":       selection.Single(selection.Entry{Label: "베이직", Price: 15_000}),
	}

	got := svc.Evaluate(snap, quote.Context{})

	require.Equal(t, int64(45_000), got.OriginalTotal)
	require.Equal(t, int64(40_000), got.ProductBenefits.GiftCard)
	require.Equal(t, int64(50_000), got.ProductBenefits.Cash)

	require.NotNil(t, got.ComboDiscount)
	require.Equal(t, int64(11_000), got.ComboDiscount.MonthlyDiscount)
	require.Equal(t, "결합 할인", got.ComboDiscount.Benefits.Title)
	require.Equal(t, []string{"인터넷+TV 결합 11,000원"}, got.ComboDiscount.Benefits.Items)

	require.Equal(t, int64(30_000), got.ExtraBenefits.GiftCard)
	require.Len(t, got.ExtraBenefits.Benefits, 1)

	require.Nil(t, got.CardDiscounts, "no card selected")
	require.Equal(t, int64(-11_000), got.DiscountTotal)
	require.Equal(t, int64(34_000), got.FinalTotal)
}

func TestEvaluateIdempotent(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet": selection.Single(selection.Entry{Label: "100M", Price: 30_000}),
		"tv":       selection.Single(selection.Entry{Label: "베이직", Price: 15_000}),
		"highorder": selection.Multi(
			selection.Entry{Label: "단말 - A", Quantity: 2},
			selection.Entry{Label: "단말 - B", Quantity: 1},
		),
		"kt_card": selection.Single(selection.Entry{Label: "월 30만원 이상", Price: 15_000}),
	}
	ctx := quote.Context{ApplyCardDiscounts: true, ExcludedCombos: []string{"security_tv"}}

	first := svc.Evaluate(snap, ctx)
	second := svc.Evaluate(snap, ctx)
	require.Equal(t, first, second)
}

func TestEvaluateCardDiscountToggle(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet": selection.Single(selection.Entry{Label: "100M", Price: 30_000}),
		"kt_card":  selection.Single(selection.Entry{Label: "월 30만원 이상", Price: 15_000}),
	}

	plain := svc.Evaluate(snap, quote.Context{})
	require.Equal(t, int64(30_000), plain.OriginalTotal, "card-discount services stay out of the original total")
	require.Equal(t, int64(0), plain.DiscountTotal)
	require.Len(t, plain.CardDiscounts, 1)
	require.Equal(t, "KT 제휴카드 - 월 30만원 이상", plain.CardDiscounts[0].Label)

	applied := svc.Evaluate(snap, quote.Context{ApplyCardDiscounts: true})
	require.Equal(t, int64(-15_000), applied.DiscountTotal)
	require.Equal(t, int64(15_000), applied.FinalTotal)
}

func TestEvaluateAppliedCardAmountComesFromTable(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet": selection.Single(selection.Entry{Label: "100M", Price: 30_000}),
		"kt_card":  selection.Single(selection.Entry{Label: "월 30만원 이상"}),
	}

	got := svc.Evaluate(snap, quote.Context{ApplyCardDiscounts: true})
	require.Len(t, got.CardDiscounts, 1)
	require.Equal(t, int64(-15_000), got.DiscountTotal, "discount uses the resolved table amount, not the entry price")
	require.Equal(t, int64(15_000), got.FinalTotal)
}

func TestEvaluateExcludedCombos(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	snap := selection.Snapshot{
		"internet": selection.Single(selection.Entry{Label: "100M"}),
		"tv":       selection.Single(selection.Entry{Label: "베이직"}),
	}

	got := svc.Evaluate(snap, quote.Context{ExcludedCombos: []string{"internet_tv"}})
	require.Nil(t, got.ComboDiscount)
	require.Zero(t, got.DiscountTotal)
}

func TestEvaluateBusinessContextPropagates(t *testing.T) {
	cat, err := catalog.Load(catalog.Input{
		Services: []catalog.ServiceRow{{Key: "internet", Name: "인터넷"}},
		ProductBenefits: []catalog.ProductBenefitRow{
			{ServiceKey: "internet", Option: "100M", Cash: 50_000, ExcludeCashIfBusiness: true},
		},
	}, zerolog.Nop())
	require.NoError(t, err)

	svc := &quote.Service{Catalog: cat}
	snap := selection.Snapshot{"internet": selection.Single(selection.Entry{Label: "100M"})}

	require.Zero(t, svc.Evaluate(snap, quote.Context{IsBusiness: true}).ProductBenefits.Cash)
	require.Equal(t, int64(50_000), svc.Evaluate(snap, quote.Context{}).ProductBenefits.Cash)
}

func TestEvaluateWithoutCatalog(t *testing.T) {
	var svc *quote.Service
	got := svc.Evaluate(selection.Snapshot{}, quote.Context{})
	require.Zero(t, got.OriginalTotal)
	require.Nil(t, got.ComboDiscount)
	require.Nil(t, got.CardDiscounts)
	require.Empty(t, got.ProductBenefits.Items)
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	svc := &quote.Service{Catalog: testCatalog(t)}
	got := svc.Evaluate(selection.Snapshot{}, quote.Context{})
	require.Zero(t, got.OriginalTotal)
	require.Zero(t, got.FinalTotal)
	require.Nil(t, got.ComboDiscount)
	require.Nil(t, got.CardDiscounts)
	require.Empty(t, got.ProductBenefits.Products)
	require.Empty(t, got.ExtraBenefits.Benefits)
}
