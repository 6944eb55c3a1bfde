package ranking

import (
	"context"
	"sort"

	"repairhub/models"
	"repairhub/utils"

	"go.uber.org/zap"
)

// AgentSource supplies candidate agents for a city. Implementations may
// pre-filter but the engine re-checks eligibility itself.
type AgentSource interface {
	FindEligible(ctx context.Context, cityID string) ([]models.Agent, error)
}

// Result is the outcome of one ranking. Agents replaces any previous list.
type Result struct {
	Agents  []models.RankedAgent `json:"agents"`
	Skipped bool                 `json:"skipped,omitempty"`
	Err     string               `json:"error,omitempty"`
}

// Engine ranks eligible agents by distance from a customer pin.
type Engine struct {
	Source AgentSource
	Logger *zap.Logger
}

func NewEngine(source AgentSource, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Source: source, Logger: logger}
}

// Rank returns the eligible agents of cityID sorted nearest first. Without a
// city or a full pin no query is made and the result is marked skipped. A
// failed fetch yields an empty list and a retryable message, never an error.
func (e *Engine) Rank(ctx context.Context, cityID string, lat, lng *float64) Result {
	if cityID == "" || lat == nil || lng == nil {
		utils.AgentRankingsTotal.WithLabelValues("skipped").Inc()
		return Result{Agents: []models.RankedAgent{}, Skipped: true}
	}

	candidates, err := e.Source.FindEligible(ctx, cityID)
	if err != nil {
		e.Logger.Error("agent fetch failed", zap.String("cityID", cityID), zap.Error(err))
		utils.AgentRankingsTotal.WithLabelValues("error").Inc()
		return Result{Agents: []models.RankedAgent{}, Err: utils.TryAgainMessage}
	}

	ranked := make([]models.RankedAgent, 0, len(candidates))
	for _, a := range candidates {
		if !Eligible(a, cityID) {
			continue
		}
		ranked = append(ranked, models.RankedAgent{
			Agent:    a,
			Distance: Haversine(*lat, *lng, *a.Latitude, *a.Longitude),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].ID < ranked[j].ID
	})

	utils.AgentRankingsTotal.WithLabelValues("ok").Inc()
	utils.RankedAgentsCount.Observe(float64(len(ranked)))
	e.Logger.Debug("ranked agents", zap.String("cityID", cityID), zap.Int("count", len(ranked)))
	return Result{Agents: ranked}
}

// Eligible reports whether an agent may take bookings in cityID.
func Eligible(a models.Agent, cityID string) bool {
	return a.Status == models.AgentStatusApproved &&
		a.IsOnline &&
		a.HasCoordinates() &&
		a.CityID == cityID
}
