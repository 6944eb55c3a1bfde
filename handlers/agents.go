package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"repairhub/services/ranking"

	"github.com/gin-gonic/gin"
)

// Ranker ranks agents around a pin.
type Ranker interface {
	Rank(ctx context.Context, cityID string, lat, lng *float64) ranking.Result
}

type AgentHandler struct {
	Ranker Ranker
}

func NewAgentHandler(r Ranker) *AgentHandler {
	return &AgentHandler{Ranker: r}
}

// optionalCoord parses an optional degree value within [-limit, limit].
// NaN and infinities are rejected.
func optionalCoord(c *gin.Context, key string, limit float64) (*float64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < -limit || v > limit {
		return nil, false
	}
	return &v, true
}

// NearbyAgentsHandler ranks eligible agents for ?city_id=&lat=&lng=.
func (h *AgentHandler) NearbyAgentsHandler(c *gin.Context) {
	lat, okLat := optionalCoord(c, "lat", 90)
	lng, okLng := optionalCoord(c, "lng", 180)
	if !okLat || !okLng {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat must be within [-90, 90] and lng within [-180, 180]"})
		return
	}

	res := h.Ranker.Rank(c.Request.Context(), c.Query("city_id"), lat, lng)
	if res.Err != "" {
		c.JSON(http.StatusServiceUnavailable, res)
		return
	}
	c.JSON(http.StatusOK, res)
}
