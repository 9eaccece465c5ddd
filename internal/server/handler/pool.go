package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lantern-fi/suipool/internal/analytics"
	"github.com/lantern-fi/suipool/internal/service"
)

// PoolHandler serves pool snapshot and analytics endpoints.
type PoolHandler struct {
	pools  *service.PoolService
	logger *slog.Logger
}

// NewPoolHandler creates a PoolHandler.
func NewPoolHandler(pools *service.PoolService, logger *slog.Logger) *PoolHandler {
	return &PoolHandler{
		pools:  pools,
		logger: logger.With(slog.String("handler", "pool")),
	}
}

type poolStatsResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	LPCoinType   string            `json:"lp_coin_type"`
	LPSupply     string            `json:"lp_supply"`
	Reserves     map[string]string `json:"reserves"`
	TVL          string            `json:"tvl"`
	LPSharePrice string            `json:"lp_share_price"`
}

// GetPool returns the pool snapshot with its TVL and LP share price.
// GET /api/pools/{id}
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	poolID := pathParam(r, "id")

	stats, err := h.pools.Stats(r.Context(), poolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reserves := make(map[string]string, len(stats.Pool.Reserves))
	for coin, balance := range stats.Pool.Reserves {
		reserves[string(coin)] = balance.String()
	}

	writeJSON(w, http.StatusOK, poolStatsResponse{
		ID:           stats.Pool.ID,
		Name:         stats.Pool.Name,
		LPCoinType:   string(stats.Pool.LPCoinType),
		LPSupply:     stats.Pool.LPSupply.String(),
		Reserves:     reserves,
		TVL:          decString(stats.TVL),
		LPSharePrice: decString(stats.LPSharePrice),
	})
}

// GetVolume returns the pool's USD trade volume over the trailing window.
// GET /api/pools/{id}/volume?hours=24
func (h *PoolHandler) GetVolume(w http.ResponseWriter, r *http.Request) {
	poolID := pathParam(r, "id")
	hours := queryInt(r, "hours", 24)

	now := time.Now().UTC()
	since := now.Add(-time.Duration(hours) * time.Hour)

	vol, err := h.pools.Volume(r.Context(), poolID, since, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pool_id": poolID,
		"hours":   hours,
		"volume":  decString(vol),
	})
}

type seriesPoint struct {
	Time   string `json:"time"`
	Volume string `json:"volume"`
}

// GetVolumeSeries returns the pool's bucketed volume series, oldest first.
// GET /api/pools/{id}/series?unit=hour&span=24&buckets=24
func (h *PoolHandler) GetVolumeSeries(w http.ResponseWriter, r *http.Request) {
	poolID := pathParam(r, "id")

	unit, ok := parseTimeUnit(r.URL.Query().Get("unit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unit must be one of minute, hour, day")
		return
	}
	spec := analytics.SeriesSpec{
		TimeUnit:    unit,
		TimeSpan:    int64(queryInt(r, "span", 24)),
		BucketCount: queryInt(r, "buckets", 24),
	}

	points, err := h.pools.VolumeSeries(r.Context(), poolID, spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]seriesPoint, len(points))
	for i, p := range points {
		out[i] = seriesPoint{
			Time:   p.Time.UTC().Format(time.RFC3339),
			Volume: decString(p.Value),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pool_id": poolID,
		"series":  out,
	})
}

func parseTimeUnit(s string) (time.Duration, bool) {
	switch s {
	case "", "hour":
		return time.Hour, true
	case "minute":
		return time.Minute, true
	case "day":
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}
