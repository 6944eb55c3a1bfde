package agentRepo

import (
	"context"

	"repairhub/models"
)

// AgentRepository defines methods for agent data access.
type AgentRepository interface {
	// FindEligible returns approved, online agents in a city that have coordinates.
	FindEligible(ctx context.Context, cityID string) ([]models.Agent, error)
	// GetByID retrieves an agent by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	// Upsert creates or replaces an agent record.
	Upsert(ctx context.Context, agent *models.Agent) error
	// SetOnline flips an agent's availability flag.
	SetOnline(ctx context.Context, id string, online bool) error
	// SetStatus changes an agent's approval status.
	SetStatus(ctx context.Context, id, status string) error
}

// ApplicationRepository defines methods for agent application access.
type ApplicationRepository interface {
	ListByStatus(ctx context.Context, status string) ([]models.AgentApplication, error)
	GetByID(ctx context.Context, id string) (*models.AgentApplication, error)
	SetStatus(ctx context.Context, id, status, notes string) error
}
