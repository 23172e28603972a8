package repositoryImp

import (
	"context"

	"gorm.io/gorm"

	"seasonplan/entities"
	"seasonplan/pkg/pricebook/repository"
)

type priceBookRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.PriceBookRepository { return &priceBookRepo{db} }

func (r *priceBookRepo) Create(ctx context.Context, e *entities.PriceBookEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *priceBookRepo) ListBySeason(ctx context.Context, season int) ([]entities.PriceBookEntry, error) {
	q := r.db.WithContext(ctx).Model(&entities.PriceBookEntry{})
	if season > 0 {
		q = q.Where("season_year = ?", season)
	}
	out := []entities.PriceBookEntry{}
	return out, q.Order("season_year asc, product_name asc, entry_id asc").Find(&out).Error
}

func (r *priceBookRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entities.PriceBookEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
