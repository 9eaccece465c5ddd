package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// PoolDataPoint is one bucket of a time-bucketed volume series. Time is the
// start of the bucket; Value is the aggregated USD amount inside it. Produced
// fresh per analytics query, never persisted.
type PoolDataPoint struct {
	Time  time.Time         `json:"time"`
	Value sdkmath.LegacyDec `json:"value"`
}
