// Package costing turns a crop plan snapshot into pass and season cost summaries.
// Every function here is pure: inputs are never mutated and results are freshly built.
package costing

import "seasonplan/entities"

// PriceBookContext is the season price book handed to the engine per call.
// A nil *PriceBookContext means no price book is in play.
type PriceBookContext struct {
	ProductMasters []entities.ProductMaster  `json:"product_masters" yaml:"product_masters"`
	PriceBook      []entities.PriceBookEntry `json:"price_book" yaml:"price_book"`
	SeasonYear     int                       `json:"season_year" yaml:"season_year"`
}

type Pattern string

const (
	PatternUniform   Pattern = "uniform"
	PatternSelective Pattern = "selective"
	PatternTrial     Pattern = "trial"
)

// IssueCode marks an application line that was recovered locally instead of failing the summary.
type IssueCode string

const (
	IssueNone           IssueCode = ""
	IssueMissingProduct IssueCode = "missing_product"
	IssueInvalidUnit    IssueCode = "invalid_unit"
	IssueUnpriced       IssueCode = "unpriced"
)

type PhysicalQuantity struct {
	TotalDryLbs    float64 `json:"total_dry_lbs"`
	TotalLiquidGal float64 `json:"total_liquid_gal"`
}

func (q PhysicalQuantity) add(o PhysicalQuantity) PhysicalQuantity {
	return PhysicalQuantity{
		TotalDryLbs:    q.TotalDryLbs + o.TotalDryLbs,
		TotalLiquidGal: q.TotalLiquidGal + o.TotalLiquidGal,
	}
}

// ApplicationLine is the costed form of one Application.
type ApplicationLine struct {
	ApplicationID   uint        `json:"application_id"`
	ProductID       uint        `json:"product_id"`
	ProductName     string      `json:"product_name,omitempty"`
	Form            string      `json:"form,omitempty"`
	Rate            float64     `json:"rate"`
	RateUnit        string      `json:"rate_unit"`
	CanonicalRate   float64     `json:"canonical_rate"`
	CanonicalUnit   string      `json:"canonical_unit,omitempty"`
	AcresPercentage float64     `json:"acres_percentage"`
	Tier            Tier        `json:"tier"`
	AcresTreated    float64     `json:"acres_treated"`
	UnitPrice       float64     `json:"unit_price"`
	PriceSource     PriceSource `json:"price_source"`
	Priced          bool        `json:"priced"`

	CostPerTreatedAcre float64 `json:"cost_per_treated_acre"`
	CostPerFieldAcre   float64 `json:"cost_per_field_acre"`
	TotalCost          float64 `json:"total_cost"`

	NutrientsPerTreatedAcre entities.Nutrients `json:"nutrients_per_treated_acre"`
	NutrientsPerFieldAcre   entities.Nutrients `json:"nutrients_per_field_acre"`
	PhysicalQuantity        PhysicalQuantity   `json:"physical_quantity"`

	Issue IssueCode `json:"issue,omitempty"`
}

type CoverageGroup struct {
	AcresPercentage float64           `json:"acres_percentage"`
	Tier            Tier              `json:"tier"`
	TierLabel       string            `json:"tier_label"`
	Applications    []ApplicationLine `json:"applications"`
	AcresTreated    float64           `json:"acres_treated"`
	// Nutrients are per treated acre.
	Nutrients          entities.Nutrients `json:"nutrients"`
	CostPerTreatedAcre float64            `json:"cost_per_treated_acre"`
	CostPerFieldAcre   float64            `json:"cost_per_field_acre"`
	TotalCost          float64            `json:"total_cost"`
}

type PassSummary struct {
	TimingID   uint   `json:"timing_id"`
	TimingName string `json:"timing_name"`
	Order      int    `json:"order"`

	TotalCost          float64 `json:"total_cost"`
	CostPerFieldAcre   float64 `json:"cost_per_field_acre"`
	CostPerTreatedAcre float64 `json:"cost_per_treated_acre"`
	AvgAcresPercentage float64 `json:"avg_acres_percentage"`

	Nutrients        entities.Nutrients `json:"nutrients"`
	PhysicalQuantity PhysicalQuantity   `json:"physical_quantity"`
	CoverageGroups   []CoverageGroup    `json:"coverage_groups"`
	Pattern          Pattern            `json:"pass_pattern"`
	Applications     []ApplicationLine  `json:"applications"`

	Unpriced      bool `json:"unpriced"`
	UnpricedCount int  `json:"unpriced_count"`
	SkippedCount  int  `json:"skipped_count"`
}

type SeasonSummary struct {
	CropID     uint    `json:"crop_id"`
	SeasonYear int     `json:"season_year"`
	TotalAcres float64 `json:"total_acres"`

	TotalCost   float64 `json:"total_cost"`
	CostPerAcre float64 `json:"cost_per_acre"`

	Nutrients        entities.Nutrients `json:"nutrients"`
	PhysicalQuantity PhysicalQuantity   `json:"physical_quantity"`
	Passes           []PassSummary      `json:"passes"`
	Unpriced         bool               `json:"unpriced"`
}
