package costing

import "seasonplan/entities"

type productIndex map[uint]*entities.Product

func indexProducts(products []entities.Product) productIndex {
	idx := make(productIndex, len(products))
	for i := range products {
		idx[products[i].ProductID] = &products[i]
	}
	return idx
}

// SummarizePass costs every application of crop scheduled in timing.
func SummarizePass(timing entities.ApplicationTiming, crop entities.Crop, products []entities.Product, ctx *PriceBookContext) PassSummary {
	return summarizePass(timing, crop, indexProducts(products), ctx)
}

func summarizePass(timing entities.ApplicationTiming, crop entities.Crop, products productIndex, ctx *PriceBookContext) PassSummary {
	totalAcres := finite(crop.TotalAcres)
	if totalAcres < 0 {
		totalAcres = 0
	}

	s := PassSummary{
		TimingID:     timing.TimingID,
		TimingName:   timing.Name,
		Order:        timing.Order,
		Applications: []ApplicationLine{},
	}

	var pctSum float64
	for _, app := range crop.Applications {
		if app.TimingID != timing.TimingID {
			continue
		}
		line := costApplication(app, products[app.ProductID], totalAcres, ctx)
		pctSum += line.AcresPercentage

		switch line.Issue {
		case IssueMissingProduct, IssueInvalidUnit:
			s.SkippedCount++
		case IssueUnpriced:
			s.UnpricedCount++
		}

		s.TotalCost += line.TotalCost
		s.CostPerTreatedAcre += line.CostPerTreatedAcre
		s.Nutrients = addNutrients(s.Nutrients, line.NutrientsPerFieldAcre)
		s.PhysicalQuantity = s.PhysicalQuantity.add(line.PhysicalQuantity)
		s.Applications = append(s.Applications, line)
	}

	s.CostPerFieldAcre = safeDiv(s.TotalCost, totalAcres)
	s.AvgAcresPercentage = safeDiv(pctSum, float64(len(s.Applications)))
	s.CoverageGroups = GroupByCoverage(s.Applications, totalAcres)
	if s.CoverageGroups == nil {
		s.CoverageGroups = []CoverageGroup{}
	}
	s.Pattern = PassPattern(s.CoverageGroups)
	s.Unpriced = s.UnpricedCount > 0
	return s
}

// costApplication never fails: a missing product or an unusable unit yields a zero
// line carrying an Issue, and an unpriced product keeps its quantities at zero cost.
func costApplication(app entities.Application, product *entities.Product, totalAcres float64, ctx *PriceBookContext) ApplicationLine {
	pct := clampPercent(app.AcresPercentage)
	rate := finite(app.Rate)
	if rate < 0 {
		rate = 0
	}

	line := ApplicationLine{
		ApplicationID:   app.ApplicationID,
		ProductID:       app.ProductID,
		Rate:            rate,
		RateUnit:        app.RateUnit,
		AcresPercentage: pct,
		Tier:            ResolveTier(app),
		AcresTreated:    finite(totalAcres * pct / 100),
		PriceSource:     SourceNone,
	}

	if product == nil {
		line.Issue = IssueMissingProduct
		return line
	}
	line.ProductName = product.Name
	line.Form = product.Form

	canonical, unit, err := ToCanonical(rate, app.RateUnit, product.Form)
	if err != nil {
		line.Issue = IssueInvalidUnit
		return line
	}
	line.CanonicalRate = canonical
	line.CanonicalUnit = unit

	line.NutrientsPerTreatedAcre = scaleNutrients(product.Nutrients, canonical)
	line.NutrientsPerFieldAcre = scaleNutrients(product.Nutrients, canonical*pct/100)

	qty := finite(canonical * line.AcresTreated)
	if product.Form == entities.FormLiquid {
		line.PhysicalQuantity.TotalLiquidGal = qty
	} else {
		line.PhysicalQuantity.TotalDryLbs = qty
	}

	price := EffectivePrice(*product, product.Offerings, ctx)
	line.PriceSource = price.Source
	line.Priced = price.Priced
	if !price.Priced {
		line.Issue = IssueUnpriced
		return line
	}
	line.UnitPrice = price.Price
	line.CostPerTreatedAcre = finite(canonical * price.Price)
	line.CostPerFieldAcre = finite(line.CostPerTreatedAcre * pct / 100)
	line.TotalCost = finite(line.CostPerFieldAcre * totalAcres)
	return line
}
