package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avierra/futmon/internal/domain"
)

// reportKey is the single key under which the latest snapshot lives.
const reportKey = "futmon:report:latest"

// ReportCache implements domain.ReportCache as one JSON value with a TTL.
// The TTL keeps a crashed monitor from serving an unbounded-age snapshot to
// external readers.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache creates a ReportCache backed by the given Client. A zero
// ttl stores the snapshot without expiry.
func NewReportCache(c *Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: c.Underlying(), ttl: ttl}
}

// SetLatest overwrites the cached snapshot.
func (rc *ReportCache) SetLatest(ctx context.Context, report domain.ConsolidatedReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("redis: marshal report: %w", err)
	}
	if err := rc.rdb.Set(ctx, reportKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set report: %w", err)
	}
	return nil
}

// GetLatest returns the cached snapshot, or domain.ErrNoReport when none is
// stored or it has expired.
func (rc *ReportCache) GetLatest(ctx context.Context) (domain.ConsolidatedReport, error) {
	data, err := rc.rdb.Get(ctx, reportKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ConsolidatedReport{}, domain.ErrNoReport
	}
	if err != nil {
		return domain.ConsolidatedReport{}, fmt.Errorf("redis: get report: %w", err)
	}

	var report domain.ConsolidatedReport
	if err := json.Unmarshal(data, &report); err != nil {
		return domain.ConsolidatedReport{}, fmt.Errorf("redis: decode report: %w", err)
	}
	return report, nil
}

// Compile-time interface check.
var _ domain.ReportCache = (*ReportCache)(nil)
