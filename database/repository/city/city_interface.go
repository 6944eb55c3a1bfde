package cityRepo

import (
	"context"

	"repairhub/models"
)

// CityRepository defines methods for service city and state access.
type CityRepository interface {
	// ListSummaries returns id and name of every city ordered by name.
	ListSummaries(ctx context.Context) ([]models.CitySummary, error)
	// ListActive returns active cities including their pincode sets.
	ListActive(ctx context.Context) ([]models.City, error)
	GetByID(ctx context.Context, id string) (*models.City, error)
	Create(ctx context.Context, city *models.City) error
	UpdatePincodes(ctx context.Context, id string, pincodes []string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	// GetState retrieves a state by its ID.
	GetState(ctx context.Context, id string) (*models.State, error)
}
