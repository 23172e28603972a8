package service

import (
	"context"
	"errors"

	"seasonplan/entities"
	"seasonplan/pkg/costing"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SummaryOptions selects the price book for a summary. SeasonYear 0 means the
// crop's season, falling back to the configured default.
type SummaryOptions struct {
	UsePriceBook bool `json:"use_price_book"`
	SeasonYear   int  `json:"season_year"`
}

// ApplicationPatch changes only the non-nil fields. An empty TierOverride clears it.
type ApplicationPatch struct {
	TimingID        *uint    `json:"timing_id"`
	ProductID       *uint    `json:"product_id"`
	Rate            *float64 `json:"rate"`
	RateUnit        *string  `json:"rate_unit"`
	AcresPercentage *float64 `json:"acres_percentage"`
	TierOverride    *string  `json:"tier_override"`
}

type CropService interface {
	CreateCrop(ctx context.Context, c *entities.Crop) (*entities.Crop, error)
	GetCrop(ctx context.Context, id uint, growerID string) (*entities.Crop, error)
	ListCrops(ctx context.Context, growerID string) ([]entities.Crop, error)
	DeleteCrop(ctx context.Context, id uint, growerID string) error

	AddTiming(ctx context.Context, cropID uint, growerID string, t *entities.ApplicationTiming) (*entities.ApplicationTiming, error)

	AddApplication(ctx context.Context, cropID uint, growerID string, a *entities.Application) (*entities.Application, error)
	UpdateApplication(ctx context.Context, appID uint, growerID string, p ApplicationPatch) (*entities.Application, error)
	RemoveApplication(ctx context.Context, appID uint, growerID string) error

	PassSummary(ctx context.Context, cropID, timingID uint, growerID string, opts SummaryOptions) (*costing.PassSummary, error)
	SeasonSummary(ctx context.Context, cropID uint, growerID string, opts SummaryOptions) (*costing.SeasonSummary, error)
}
