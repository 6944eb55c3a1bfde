package admin

import (
	"context"

	"repairhub/models"
)

// AdminService covers the back-office operations of the marketplace.
type AdminService interface {
	CreateCity(ctx context.Context, in CityInput) (*models.City, error)
	UpdatePincodes(ctx context.Context, cityID string, pincodes []string) ([]string, error)
	SetCityActive(ctx context.Context, cityID string, active bool) error
	DeleteCity(ctx context.Context, cityID string) error

	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateBrand(ctx context.Context, categoryID, name string) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
	CreateDevice(ctx context.Context, categoryID, brandID, model string) (*models.Device, error)
	DeleteDevice(ctx context.Context, id string) error
	CreateFault(ctx context.Context, in FaultInput) (*models.Fault, error)
	DeactivateFault(ctx context.Context, id string) error
	UpdateDurationCharge(ctx context.Context, id string, extraCharge float64) error

	PendingApplications(ctx context.Context) ([]models.AgentApplication, error)
	ApproveApplication(ctx context.Context, id, notes string) (*models.Agent, error)
	RejectApplication(ctx context.Context, id, notes string) error
	SetAgentOnline(ctx context.Context, agentID string, online bool) error
}

// CityInput is the body of a city creation request.
type CityInput struct {
	Name      string   `json:"name" binding:"required"`
	StateID   string   `json:"state_id" binding:"required"`
	Pincodes  []string `json:"pincodes"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// FaultInput is the body of a fault creation request.
type FaultInput struct {
	DeviceID    string  `json:"device_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}
