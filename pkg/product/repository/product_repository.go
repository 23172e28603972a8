package repository

import (
	"context"

	"seasonplan/entities"
)

type ProductRepository interface {
	Create(ctx context.Context, p *entities.Product) error
	List(ctx context.Context) ([]entities.Product, error)
	FindByID(ctx context.Context, id uint) (*entities.Product, error)
	// FindByIDs loads the listed products with their offerings. Unknown ids are ignored.
	FindByIDs(ctx context.Context, ids []uint) ([]entities.Product, error)
	FindByName(ctx context.Context, name string) (*entities.Product, error)

	CreateOffering(ctx context.Context, o *entities.VendorOffering) error
	FindOffering(ctx context.Context, id uint) (*entities.VendorOffering, error)
	SaveOffering(ctx context.Context, o *entities.VendorOffering) error

	CreateVendor(ctx context.Context, v *entities.Vendor) error
	ListVendors(ctx context.Context) ([]entities.Vendor, error)
	FindVendorByName(ctx context.Context, name string) (*entities.Vendor, error)

	CreateMaster(ctx context.Context, m *entities.ProductMaster) error
	ListMasters(ctx context.Context) ([]entities.ProductMaster, error)
	FindMaster(ctx context.Context, id uint) (*entities.ProductMaster, error)
	FindMasterByName(ctx context.Context, name string) (*entities.ProductMaster, error)
}
