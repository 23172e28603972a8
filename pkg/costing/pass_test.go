package costing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seasonplan/entities"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func assertFinite(t *testing.T, s PassSummary) {
	t.Helper()
	for name, v := range map[string]float64{
		"total_cost":            s.TotalCost,
		"cost_per_field_acre":   s.CostPerFieldAcre,
		"cost_per_treated_acre": s.CostPerTreatedAcre,
		"avg_acres_percentage":  s.AvgAcresPercentage,
		"n":                     s.Nutrients.N,
		"dry_lbs":               s.PhysicalQuantity.TotalDryLbs,
		"liquid_gal":            s.PhysicalQuantity.TotalLiquidGal,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is not finite: %v", name, v)
		}
	}
}

var (
	preEmerge = entities.ApplicationTiming{TimingID: 1, Name: "Pre-emerge", Order: 1}
	sideDress = entities.ApplicationTiming{TimingID: 2, Name: "Side-dress", Order: 2}

	liquid10 = entities.Product{ProductID: 10, Name: "Liquid N", Form: "liquid", Price: 10, PriceUnit: "gal",
		Nutrients: entities.Nutrients{N: 3.5}}
	dry1 = entities.Product{ProductID: 20, Name: "Potash", Form: "dry", Price: 1, PriceUnit: "lbs",
		Nutrients: entities.Nutrients{K: 0.6}}
)

func TestSummarizePass_ScenarioA(t *testing.T) {
	crop := entities.Crop{TotalAcres: 1000, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 50},
	}}

	s := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, nil)

	require.Len(t, s.Applications, 1)
	line := s.Applications[0]
	nearlyEqual(t, "costPerTreatedAcre", line.CostPerTreatedAcre, 10)
	nearlyEqual(t, "costPerFieldAcre", line.CostPerFieldAcre, 5)
	nearlyEqual(t, "totalCost", s.TotalCost, 5000)
	nearlyEqual(t, "pass costPerFieldAcre", s.CostPerFieldAcre, 5)
	nearlyEqual(t, "liquid gal", s.PhysicalQuantity.TotalLiquidGal, 500)
	nearlyEqual(t, "nitrogen", s.Nutrients.N, 1.75)
	assert.Equal(t, TierSelective, line.Tier)
	assert.Equal(t, PatternSelective, s.Pattern)
}

func TestSummarizePass_ScenarioB(t *testing.T) {
	crop := entities.Crop{TotalAcres: 1000, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 20, Rate: 2, RateUnit: "lbs", AcresPercentage: 100},
		{ApplicationID: 2, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 50},
	}}

	s := SummarizePass(preEmerge, crop, []entities.Product{liquid10, dry1}, nil)

	nearlyEqual(t, "totalCost", s.TotalCost, 7000)
	nearlyEqual(t, "costPerFieldAcre", s.CostPerFieldAcre, 7)
	nearlyEqual(t, "costPerTreatedAcre", s.CostPerTreatedAcre, 12)
	nearlyEqual(t, "avgAcresPercentage", s.AvgAcresPercentage, 75)
	nearlyEqual(t, "dry lbs", s.PhysicalQuantity.TotalDryLbs, 2000)
	nearlyEqual(t, "liquid gal", s.PhysicalQuantity.TotalLiquidGal, 500)
	nearlyEqual(t, "potassium", s.Nutrients.K, 1.2)
	require.Len(t, s.CoverageGroups, 2)
	assert.Equal(t, TierCore, s.CoverageGroups[0].Tier)
	assert.Equal(t, PatternSelective, s.Pattern)
}

func TestSummarizePass_ScenarioC_ContainerPricing(t *testing.T) {
	product := entities.Product{ProductID: 30, Name: "Insecticide", Form: "dry", Price: 900, PriceUnit: "case",
		ContainerSize: floatPtr(1800), ContainerUnit: "g"}
	crop := entities.Crop{TotalAcres: 1000, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 30, Rate: 10, RateUnit: "g", AcresPercentage: 100},
	}}

	s := SummarizePass(preEmerge, crop, []entities.Product{product}, nil)

	require.Len(t, s.Applications, 1)
	nearlyEqual(t, "costPerTreatedAcre", s.Applications[0].CostPerTreatedAcre, 5)
	nearlyEqual(t, "totalCost", s.TotalCost, 5000)
	assert.Equal(t, PatternUniform, s.Pattern)
}

func TestSummarizePass_FullCoverageFieldEqualsTreated(t *testing.T) {
	for _, rate := range []float64{0, 0.5, 3, 17.25} {
		crop := entities.Crop{TotalAcres: 640, Applications: []entities.Application{
			{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: rate, RateUnit: "qt", AcresPercentage: 100},
		}}
		line := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, nil).Applications[0]
		assert.Equal(t, line.CostPerTreatedAcre, line.CostPerFieldAcre)
	}
}

func TestSummarizePass_Empty(t *testing.T) {
	s := SummarizePass(preEmerge, entities.Crop{TotalAcres: 0}, nil, nil)

	assert.Equal(t, 0.0, s.TotalCost)
	assert.Equal(t, PatternUniform, s.Pattern)
	assert.Empty(t, s.Applications)
	assert.Empty(t, s.CoverageGroups)
	assertFinite(t, s)
}

func TestSummarizePass_ZeroAcresIsGuarded(t *testing.T) {
	crop := entities.Crop{TotalAcres: 0, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
	}}

	s := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, nil)
	assertFinite(t, s)
	assert.Equal(t, 0.0, s.CostPerFieldAcre)
	nearlyEqual(t, "costPerTreatedAcre", s.CostPerTreatedAcre, 10)
}

func TestSummarizePass_DegradedInputIsRecovered(t *testing.T) {
	unpriced := entities.Product{ProductID: 40, Name: "Adjuvant", Form: "liquid"}
	crop := entities.Crop{TotalAcres: 100, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 99, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
		{ApplicationID: 2, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "lbs", AcresPercentage: 100},
		{ApplicationID: 3, TimingID: 1, ProductID: 40, Rate: 4, RateUnit: "oz", AcresPercentage: 100},
		{ApplicationID: 4, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
	}}

	s := SummarizePass(preEmerge, crop, []entities.Product{liquid10, unpriced}, nil)

	require.Len(t, s.Applications, 4)
	assert.Equal(t, IssueMissingProduct, s.Applications[0].Issue)
	assert.Equal(t, IssueInvalidUnit, s.Applications[1].Issue)
	assert.Equal(t, IssueUnpriced, s.Applications[2].Issue)
	assert.ErrorIs(t, s.Applications[2].Issue.Err(), ErrMissingPrice)
	assert.Equal(t, IssueNone, s.Applications[3].Issue)

	assert.Equal(t, 2, s.SkippedCount)
	assert.Equal(t, 1, s.UnpricedCount)
	assert.True(t, s.Unpriced)
	nearlyEqual(t, "totalCost", s.TotalCost, 1000)
	nearlyEqual(t, "liquid gal", s.PhysicalQuantity.TotalLiquidGal, 100+100*4.0/128)
}

func TestSummarizePass_OnlyCountsItsTiming(t *testing.T) {
	crop := entities.Crop{TotalAcres: 10, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
		{ApplicationID: 2, TimingID: 2, ProductID: 10, Rate: 5, RateUnit: "gal", AcresPercentage: 100},
	}}

	s := SummarizePass(sideDress, crop, []entities.Product{liquid10}, nil)
	require.Len(t, s.Applications, 1)
	assert.Equal(t, uint(2), s.Applications[0].ApplicationID)
	nearlyEqual(t, "totalCost", s.TotalCost, 500)
}

func TestSummarizePass_UsesPriceBookWhenGiven(t *testing.T) {
	crop := entities.Crop{TotalAcres: 100, Applications: []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: 1, RateUnit: "gal", AcresPercentage: 100},
	}}
	ctx := &PriceBookContext{SeasonYear: 2025, PriceBook: []entities.PriceBookEntry{
		{ProductID: uintPtr(10), SeasonYear: 2025, Price: 8, PriceUOM: "gal", Source: "awarded"},
	}}

	without := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, nil)
	with := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, ctx)

	nearlyEqual(t, "without", without.TotalCost, 1000)
	nearlyEqual(t, "with", with.TotalCost, 800)
	assert.Equal(t, SourceAwarded, with.Applications[0].PriceSource)
}

func TestSummarizePass_DoesNotMutateInputs(t *testing.T) {
	override := "trial"
	apps := []entities.Application{
		{ApplicationID: 1, TimingID: 1, ProductID: 10, Rate: -3, RateUnit: "gal", AcresPercentage: 140, TierOverride: &override},
	}
	crop := entities.Crop{TotalAcres: 10, Applications: apps}

	s := SummarizePass(preEmerge, crop, []entities.Product{liquid10}, nil)

	assert.Equal(t, -3.0, apps[0].Rate)
	assert.Equal(t, 140.0, apps[0].AcresPercentage)
	assert.Equal(t, 100.0, s.Applications[0].AcresPercentage)
	assert.Equal(t, TierTrial, s.Applications[0].Tier)
	assertFinite(t, s)
}
