package service

import (
	"context"
	"errors"

	"seasonplan/entities"
	"seasonplan/pkg/pricebook/sheet"
)

var ErrInvalidEntry = errors.New("invalid price book entry")

type ImportReport struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []sheet.RowError `json:"errors"`
}

type PriceBookService interface {
	Create(ctx context.Context, e *entities.PriceBookEntry) (*entities.PriceBookEntry, error)
	List(ctx context.Context, season int) ([]entities.PriceBookEntry, error)
	Delete(ctx context.Context, id uint) error

	// Import stores rows, resolving product, master and vendor names. Rows without a
	// season get defaultSeason. Rows equal to a stored entry are skipped.
	Import(ctx context.Context, rows []sheet.Row, defaultSeason int) (ImportReport, error)
	Export(ctx context.Context, season int) ([]sheet.Row, error)
}
