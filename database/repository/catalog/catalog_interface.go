package catalogRepo

import (
	"context"

	"repairhub/models"
)

// CatalogRepository defines access to the device catalog and booking options.
type CatalogRepository interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Brands(ctx context.Context, categoryID string) ([]models.Brand, error)
	Devices(ctx context.Context, brandID string) ([]models.Device, error)
	// FindDevice resolves a brand's model name to its catalog entry.
	FindDevice(ctx context.Context, brandID, model string) (*models.Device, error)
	// Faults returns active faults for a device.
	Faults(ctx context.Context, deviceID string) ([]models.Fault, error)
	ServiceTypes(ctx context.Context) ([]models.ServiceType, error)
	DurationTypes(ctx context.Context) ([]models.DurationType, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CreateBrand(ctx context.Context, b *models.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	CreateDevice(ctx context.Context, d *models.Device) error
	DeleteDevice(ctx context.Context, id string) error
	CreateFault(ctx context.Context, f *models.Fault) error
	DeactivateFault(ctx context.Context, id string) error
	UpdateDurationCharge(ctx context.Context, id string, extraCharge float64) error
}
