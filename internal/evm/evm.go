// Package evm derives earned-value schedule and cost performance metrics
// from project accounting fields.
package evm

import (
	"fmt"
	"time"

	"github.com/stroycontrol/geomap-backend/internal/cache"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

// Health thresholds on min(SPI, CPI).
const (
	goodThreshold    = 0.95
	warningThreshold = 0.8
)

// metricsTTL bounds how long per-project metrics are served from cache.
const metricsTTL = 10 * time.Minute

// Metrics is the earned-value snapshot of one project.
type Metrics struct {
	SPI    float64 `json:"spi"` // Schedule performance: earned / planned value
	CPI    float64 `json:"cpi"` // Cost performance: earned value / actual cost
	Health string  `json:"health"`
}

// Neutral is the fallback used by callers when metric computation fails.
// Responses built on it must be marked degraded so consumers can tell
// fallback data from real analytics.
func Neutral() Metrics {
	return Metrics{SPI: 1, CPI: 1, Health: models.HealthUnknown}
}

// Service computes and caches per-project metrics.
type Service struct {
	cache *cache.Store
}

// NewService creates an EVM service backed by the given cache store.
func NewService(store *cache.Store) *Service {
	return &Service{cache: store}
}

// Metrics returns the earned-value metrics for a project. Projects without
// accounting data (zero planned value or actual cost) cannot be scored and
// return an error; callers decide whether to fail open.
func (s *Service) Metrics(p models.Project) (Metrics, error) {
	key := metricsKey(p.ID)
	if v, ok := s.cache.Get(key); ok {
		if m, ok := v.(Metrics); ok {
			return m, nil
		}
	}

	if p.PlannedValue <= 0 {
		return Metrics{}, fmt.Errorf("project %d has no planned value", p.ID)
	}
	if p.ActualCost <= 0 {
		return Metrics{}, fmt.Errorf("project %d has no actual cost", p.ID)
	}

	m := Metrics{
		SPI: p.EarnedValue / p.PlannedValue,
		CPI: p.EarnedValue / p.ActualCost,
	}
	m.Health = healthFor(m.SPI, m.CPI)

	s.cache.Put(key, m, metricsTTL)
	return m, nil
}

// InvalidateCache drops the cached metrics for a project.
func (s *Service) InvalidateCache(projectID int64) {
	s.cache.DeletePrefix(metricsKey(projectID))
}

// metricsKey ends with a delimiter so prefix deletion of project 7 cannot
// touch project 70.
func metricsKey(projectID int64) string {
	return fmt.Sprintf("evm:project:%d:", projectID)
}

func healthFor(spi, cpi float64) string {
	worst := spi
	if cpi < worst {
		worst = cpi
	}
	switch {
	case worst >= goodThreshold:
		return models.HealthGood
	case worst >= warningThreshold:
		return models.HealthWarning
	default:
		return models.HealthCritical
	}
}
