package entities

import "time"

const (
	FormLiquid = "liquid"
	FormDry    = "dry"
)

// Nutrients holds pounds of N, P, K and S. On a Product it is the content of one
// canonical unit (one gallon or one pound).
type Nutrients struct {
	N float64 `json:"n" gorm:"column:n"`
	P float64 `json:"p" gorm:"column:p"`
	K float64 `json:"k" gorm:"column:k"`
	S float64 `json:"s" gorm:"column:s"`
}

type Product struct {
	ProductID       uint    `gorm:"primaryKey" json:"product_id"`
	Name            string  `json:"name" validate:"required,max=160"`
	Form            string  `json:"form" validate:"oneof=liquid dry"`
	Price           float64 `json:"price" validate:"gte=0"` // manual estimate
	PriceUnit       string  `json:"price_unit"`
	VendorID        *uint   `gorm:"index" json:"vendor_id,omitempty"`
	ProductMasterID *uint   `gorm:"index" json:"product_master_id,omitempty"`

	ContainerSize *float64 `json:"container_size,omitempty" validate:"omitempty,gt=0"`
	ContainerUnit string   `json:"container_unit,omitempty"`

	Nutrients Nutrients `gorm:"embedded;embeddedPrefix:nutrient_" json:"nutrients"`

	Offerings []VendorOffering `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"offerings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductMaster struct {
	ProductMasterID uint   `gorm:"primaryKey" json:"product_master_id"`
	Name            string `gorm:"uniqueIndex" json:"name" validate:"required,max=160"`
	Form            string `json:"form" validate:"oneof=liquid dry"`

	CreatedAt time.Time `json:"created_at"`
}

type Vendor struct {
	VendorID uint   `gorm:"primaryKey" json:"vendor_id"`
	Name     string `gorm:"uniqueIndex" json:"name" validate:"required,max=160"`

	CreatedAt time.Time `json:"created_at"`
}

type VendorOffering struct {
	OfferingID    uint     `gorm:"primaryKey" json:"offering_id"`
	ProductID     uint     `gorm:"index" json:"product_id"`
	VendorID      uint     `gorm:"index" json:"vendor_id" validate:"required"`
	Price         float64  `json:"price" validate:"gt=0"`
	PriceUnit     string   `json:"price_unit" validate:"required"`
	ContainerSize *float64 `json:"container_size,omitempty" validate:"omitempty,gt=0"`
	ContainerUnit string   `json:"container_unit,omitempty"`
	Active        bool     `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
