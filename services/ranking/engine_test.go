package ranking

import (
	"context"
	"errors"
	"testing"

	"repairhub/models"
	"repairhub/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) FindEligible(ctx context.Context, cityID string) ([]models.Agent, error) {
	args := m.Called(ctx, cityID)
	agents, _ := args.Get(0).([]models.Agent)
	return agents, args.Error(1)
}

func ptr(f float64) *float64 { return &f }

func agentAt(id string, lat, lng float64) models.Agent {
	return models.Agent{
		ID:        id,
		CityID:    "c1",
		Status:    models.AgentStatusApproved,
		IsOnline:  true,
		Latitude:  ptr(lat),
		Longitude: ptr(lng),
	}
}

func TestHaversine(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(51.5074, -0.1278, 51.5074, -0.1278))
	// London to Paris is roughly 213 miles.
	assert.InDelta(t, 213.5, Haversine(51.5074, -0.1278, 48.8566, 2.3522), 1.5)
}

func TestRankOrdersByDistance(t *testing.T) {
	src := new(mockSource)
	src.On("FindEligible", mock.Anything, "c1").Return([]models.Agent{
		agentAt("A", 51.60, -0.1278),
		agentAt("B", 51.51, -0.1278),
	}, nil)

	res := NewEngine(src, nil).Rank(context.Background(), "c1", ptr(51.5074), ptr(-0.1278))

	require.Empty(t, res.Err)
	require.Len(t, res.Agents, 2)
	assert.Equal(t, "B", res.Agents[0].ID)
	assert.Equal(t, "A", res.Agents[1].ID)
	assert.Less(t, res.Agents[0].Distance, res.Agents[1].Distance)
	src.AssertExpectations(t)
}

func TestRankFiltersIneligible(t *testing.T) {
	offline := agentAt("offline", 51.5, -0.12)
	offline.IsOnline = false
	pending := agentAt("pending", 51.5, -0.12)
	pending.Status = models.AgentStatusPending
	noCoords := agentAt("nocoords", 51.5, -0.12)
	noCoords.Longitude = nil
	elsewhere := agentAt("elsewhere", 51.5, -0.12)
	elsewhere.CityID = "c2"

	src := new(mockSource)
	src.On("FindEligible", mock.Anything, "c1").Return([]models.Agent{
		offline, pending, noCoords, elsewhere, agentAt("ok", 51.5, -0.12),
	}, nil)

	res := NewEngine(src, nil).Rank(context.Background(), "c1", ptr(51.5), ptr(-0.12))

	require.Len(t, res.Agents, 1)
	assert.Equal(t, "ok", res.Agents[0].ID)
}

func TestRankTieBreaksOnID(t *testing.T) {
	src := new(mockSource)
	src.On("FindEligible", mock.Anything, "c1").Return([]models.Agent{
		agentAt("z", 51.6, -0.1),
		agentAt("a", 51.6, -0.1),
		agentAt("m", 51.6, -0.1),
	}, nil)

	res := NewEngine(src, nil).Rank(context.Background(), "c1", ptr(51.5), ptr(-0.1))

	require.Len(t, res.Agents, 3)
	assert.Equal(t, []string{"a", "m", "z"}, []string{res.Agents[0].ID, res.Agents[1].ID, res.Agents[2].ID})
}

func TestRankSkipsWithoutPin(t *testing.T) {
	src := new(mockSource)
	engine := NewEngine(src, nil)

	for _, tc := range []struct {
		name     string
		city     string
		lat, lng *float64
	}{
		{"no city", "", ptr(1), ptr(1)},
		{"no lat", "c1", nil, ptr(1)},
		{"no lng", "c1", ptr(1), nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.Rank(context.Background(), tc.city, tc.lat, tc.lng)
			assert.True(t, res.Skipped)
			assert.Empty(t, res.Agents)
			assert.Empty(t, res.Err)
		})
	}
	src.AssertNotCalled(t, "FindEligible", mock.Anything, mock.Anything)
}

func TestRankFetchFailure(t *testing.T) {
	src := new(mockSource)
	src.On("FindEligible", mock.Anything, "c1").Return(nil, errors.New("connection reset"))

	res := NewEngine(src, nil).Rank(context.Background(), "c1", ptr(51.5), ptr(-0.1))

	assert.Empty(t, res.Agents)
	assert.NotNil(t, res.Agents)
	assert.Equal(t, utils.TryAgainMessage, res.Err)
}
