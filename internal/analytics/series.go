package analytics

import (
	"fmt"
	"log/slog"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// SeriesSpec describes a volume series request: BucketCount buckets covering
// the window [now - TimeSpan*TimeUnit, now).
type SeriesSpec struct {
	TimeUnit    time.Duration
	TimeSpan    int64
	BucketCount int
}

func (s SeriesSpec) validate() error {
	if s.TimeUnit <= 0 || s.TimeSpan <= 0 || s.BucketCount <= 0 {
		return fmt.Errorf("analytics: series spec must be positive (unit=%v span=%d buckets=%d): %w",
			s.TimeUnit, s.TimeSpan, s.BucketCount, domain.ErrConfiguration)
	}
	return nil
}

// VolumeSeries buckets the USD input volume of poolID's trade events over
// the window [now - span, now). Buckets are oldest-first, spaced by
// (span / BucketCount), and the result always has exactly BucketCount
// entries. Events outside the window are dropped after a bounds check, never
// indexed blindly; events landing exactly on a bucket boundary clamp into
// the adjacent valid bucket so the series total matches Volume over the same
// window.
func (e *Engine) VolumeSeries(
	now time.Time,
	poolID string,
	poolCoins []domain.CoinType,
	prices []sdkmath.LegacyDec,
	decimals map[domain.CoinType]uint8,
	events []domain.PoolTradeEvent,
	spec SeriesSpec,
) ([]domain.PoolDataPoint, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	span := time.Duration(spec.TimeSpan) * spec.TimeUnit
	windowStart := now.Add(-span)
	bucketWidth := span / time.Duration(spec.BucketCount)

	points := make([]domain.PoolDataPoint, spec.BucketCount)
	for i := range points {
		points[i] = domain.PoolDataPoint{
			Time:  windowStart.Add(time.Duration(i) * bucketWidth),
			Value: sdkmath.LegacyZeroDec(),
		}
	}

	for _, ev := range events {
		if ev.PoolID != poolID {
			continue
		}
		ts := time.UnixMilli(ev.TimestampMs)
		if ts.Before(windowStart) || !ts.Before(now) {
			// Older than the window, or at/after now (clock skew).
			e.logger.Debug("dropping out-of-window trade event",
				slog.String("pool_id", poolID),
				slog.String("tx_digest", ev.ID.TxDigest),
				slog.Time("timestamp", ts),
			)
			continue
		}

		idx := spec.BucketCount - int(now.Sub(ts)/bucketWidth) - 1
		// Timestamps exactly on a bucket boundary (windowStart included)
		// land one past the edge; clamp them into the valid range.
		if idx < 0 {
			idx = 0
		} else if idx >= spec.BucketCount {
			idx = spec.BucketCount - 1
		}

		contribution, err := e.tradeValue(ev, poolCoins, prices, decimals)
		if err != nil {
			return nil, err
		}
		points[idx].Value = points[idx].Value.Add(contribution)
	}

	return points, nil
}
