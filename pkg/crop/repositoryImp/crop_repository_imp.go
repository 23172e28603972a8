package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/crop/repository"
)

type cropRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.CropRepository { return &cropRepo{db} }

func (r *cropRepo) Create(ctx context.Context, c *entities.Crop) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cropRepo) FindByID(ctx context.Context, id uint, growerID string) (*entities.Crop, error) {
	var c entities.Crop
	err := r.db.WithContext(ctx).
		Preload("Timings", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc, timing_id asc") }).
		Preload("Applications", func(db *gorm.DB) *gorm.DB { return db.Order("application_id asc") }).
		Where("crop_id = ? AND grower_id = ?", id, growerID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cropRepo) ListByGrower(ctx context.Context, growerID string) ([]entities.Crop, error) {
	out := []entities.Crop{}
	err := r.db.WithContext(ctx).Where("grower_id = ?", growerID).Order("season_year desc, crop_id asc").Find(&out).Error
	return out, err
}

func (r *cropRepo) Delete(ctx context.Context, c *entities.Crop) error {
	return r.db.WithContext(ctx).Select("Timings", "Applications").Delete(c).Error
}

func (r *cropRepo) CreateTiming(ctx context.Context, t *entities.ApplicationTiming) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *cropRepo) CreateApplication(ctx context.Context, a *entities.Application) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *cropRepo) FindApplication(ctx context.Context, id uint) (*entities.Application, error) {
	var a entities.Application
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *cropRepo) SaveApplication(ctx context.Context, a *entities.Application) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *cropRepo) DeleteApplication(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entities.Application{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
