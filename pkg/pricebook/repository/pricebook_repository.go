package repository

import (
	"context"

	"seasonplan/entities"
)

type PriceBookRepository interface {
	Create(ctx context.Context, e *entities.PriceBookEntry) error
	// ListBySeason returns the entries of season, or every entry when season is 0.
	ListBySeason(ctx context.Context, season int) ([]entities.PriceBookEntry, error)
	Delete(ctx context.Context, id uint) error
}
