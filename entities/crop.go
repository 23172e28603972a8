package entities

import "time"

type Crop struct {
	CropID     uint    `gorm:"primaryKey" json:"crop_id"`
	GrowerID   string  `json:"grower_id" gorm:"index"`
	Name       string  `json:"name" validate:"required,max=120"`
	CropType   string  `json:"crop_type"` // corn|soybeans|wheat|...
	SeasonYear int     `json:"season_year" validate:"gte=0"`
	TotalAcres float64 `json:"total_acres" validate:"gte=0"`

	Timings      []ApplicationTiming `gorm:"foreignKey:CropID;constraint:OnDelete:CASCADE" json:"timings"`
	Applications []Application       `gorm:"foreignKey:CropID;constraint:OnDelete:CASCADE" json:"applications"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplicationTiming is one pass of a crop plan. Only ID, Name and Order feed the
// cost engine; the bucket and growth stages are display metadata.
type ApplicationTiming struct {
	TimingID         uint   `gorm:"primaryKey" json:"timing_id"`
	CropID           uint   `gorm:"index" json:"crop_id"`
	Name             string `json:"name" validate:"required,max=120"`
	Order            int    `gorm:"column:sort_order" json:"order"`
	TimingBucket     string `json:"timing_bucket,omitempty"` // pre_plant|at_plant|in_season|post_harvest
	GrowthStageStart string `json:"growth_stage_start,omitempty"`
	GrowthStageEnd   string `json:"growth_stage_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Application struct {
	ApplicationID   uint    `gorm:"primaryKey" json:"application_id"`
	CropID          uint    `gorm:"index" json:"crop_id"`
	TimingID        uint    `gorm:"index" json:"timing_id" validate:"required"`
	ProductID       uint    `gorm:"index" json:"product_id" validate:"required"`
	Rate            float64 `json:"rate" validate:"gte=0"`
	RateUnit        string  `json:"rate_unit" validate:"required"`
	AcresPercentage float64 `json:"acres_percentage" validate:"gte=0,lte=100"`
	// TierOverride replaces the coverage tier derived from AcresPercentage when set.
	TierOverride *string `json:"tier_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
