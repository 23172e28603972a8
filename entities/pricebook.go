package entities

import "time"

const (
	PriceSourceAwarded        = "awarded"
	PriceSourceManualOverride = "manual_override"
	PriceSourceEstimated      = "estimated"
)

// PriceBookEntry is a season-keyed price. Entries are matched to a product either
// directly by ProductID or through the product's master.
type PriceBookEntry struct {
	EntryID         uint    `gorm:"primaryKey" json:"entry_id"`
	ProductID       *uint   `gorm:"index" json:"product_id,omitempty"`
	ProductMasterID *uint   `gorm:"index" json:"product_master_id,omitempty"`
	VendorID        *uint   `gorm:"index" json:"vendor_id,omitempty"`
	ProductName     string  `json:"product_name"`
	SeasonYear      int     `gorm:"index" json:"season_year" validate:"gt=0"`
	Price           float64 `json:"price" validate:"gt=0"`
	PriceUOM        string  `json:"price_uom" validate:"required"`
	Source          string  `gorm:"index" json:"source" validate:"oneof=awarded manual_override estimated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
