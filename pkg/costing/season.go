package costing

import (
	"sort"

	"seasonplan/entities"
)

// SummarizeSeason costs every pass of crop in Order. TotalCost is the plain sum
// of the pass totals.
func SummarizeSeason(crop entities.Crop, products []entities.Product, ctx *PriceBookContext) SeasonSummary {
	idx := indexProducts(products)

	timings := make([]entities.ApplicationTiming, len(crop.Timings))
	copy(timings, crop.Timings)
	sort.SliceStable(timings, func(i, j int) bool { return timings[i].Order < timings[j].Order })

	s := SeasonSummary{
		CropID:     crop.CropID,
		SeasonYear: crop.SeasonYear,
		TotalAcres: crop.TotalAcres,
		Passes:     make([]PassSummary, 0, len(timings)),
	}
	if ctx != nil {
		s.SeasonYear = ctx.SeasonYear
	}
	for _, t := range timings {
		p := summarizePass(t, crop, idx, ctx)
		s.TotalCost += p.TotalCost
		s.Nutrients = addNutrients(s.Nutrients, p.Nutrients)
		s.PhysicalQuantity = s.PhysicalQuantity.add(p.PhysicalQuantity)
		s.Unpriced = s.Unpriced || p.Unpriced
		s.Passes = append(s.Passes, p)
	}
	s.CostPerAcre = safeDiv(s.TotalCost, crop.TotalAcres)
	return s
}
