package repositoryImp

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/product/repository"
)

type productRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ProductRepository { return &productRepo{db} }

func (r *productRepo) Create(ctx context.Context, p *entities.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) List(ctx context.Context) ([]entities.Product, error) {
	out := []entities.Product{}
	err := r.db.WithContext(ctx).Preload("Offerings").Order("name asc, product_id asc").Find(&out).Error
	return out, err
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*entities.Product, error) {
	var p entities.Product
	if err := r.db.WithContext(ctx).Preload("Offerings").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uint) ([]entities.Product, error) {
	out := []entities.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Preload("Offerings").Where("product_id IN ?", ids).Order("product_id asc").Find(&out).Error
	return out, err
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*entities.Product, error) {
	var p entities.Product
	err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).Order("product_id asc").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) CreateOffering(ctx context.Context, o *entities.VendorOffering) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *productRepo) FindOffering(ctx context.Context, id uint) (*entities.VendorOffering, error) {
	var o entities.VendorOffering
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *productRepo) SaveOffering(ctx context.Context, o *entities.VendorOffering) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *productRepo) CreateVendor(ctx context.Context, v *entities.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productRepo) ListVendors(ctx context.Context) ([]entities.Vendor, error) {
	out := []entities.Vendor{}
	return out, r.db.WithContext(ctx).Order("name asc").Find(&out).Error
}

func (r *productRepo) FindVendorByName(ctx context.Context, name string) (*entities.Vendor, error) {
	var v entities.Vendor
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *productRepo) CreateMaster(ctx context.Context, m *entities.ProductMaster) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *productRepo) ListMasters(ctx context.Context) ([]entities.ProductMaster, error) {
	out := []entities.ProductMaster{}
	return out, r.db.WithContext(ctx).Order("name asc").Find(&out).Error
}

func (r *productRepo) FindMaster(ctx context.Context, id uint) (*entities.ProductMaster, error) {
	var m entities.ProductMaster
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *productRepo) FindMasterByName(ctx context.Context, name string) (*entities.ProductMaster, error) {
	var m entities.ProductMaster
	if err := r.db.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
