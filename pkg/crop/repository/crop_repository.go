package repository

import (
	"context"

	"seasonplan/entities"
)

type CropRepository interface {
	Create(ctx context.Context, c *entities.Crop) error
	// FindByID loads the crop of growerID with timings in pass order and its applications.
	FindByID(ctx context.Context, id uint, growerID string) (*entities.Crop, error)
	ListByGrower(ctx context.Context, growerID string) ([]entities.Crop, error)
	Delete(ctx context.Context, c *entities.Crop) error

	CreateTiming(ctx context.Context, t *entities.ApplicationTiming) error

	CreateApplication(ctx context.Context, a *entities.Application) error
	FindApplication(ctx context.Context, id uint) (*entities.Application, error)
	SaveApplication(ctx context.Context, a *entities.Application) error
	DeleteApplication(ctx context.Context, id uint) error
}
