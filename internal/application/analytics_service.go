package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	routeDomain "github.com/trafficwatch/service-planner/internal/domain/route"
	"go.uber.org/zap"
)

// HourlyCongestion is one hour of the daily congestion profile.
type HourlyCongestion struct {
	Hour   int                  `json:"hour"`
	Factor float64              `json:"factor"`
	Level  planner.TrafficLevel `json:"level"`
}

// AnalyticsSummary is the read model for the analytics endpoint.
type AnalyticsSummary struct {
	GeneratedAt       time.Time                `json:"generated_at"`
	CurrentFactor     float64                  `json:"current_factor"`
	CurrentLevel      planner.TrafficLevel     `json:"current_level"`
	BusiestHour       int                      `json:"busiest_hour"`
	HourlyProfile     []HourlyCongestion       `json:"hourly_profile"`
	SavedRoutesByMode map[planner.Mode]int64   `json:"saved_routes_by_mode"`
}

// AnalyticsService assembles congestion and usage statistics.
type AnalyticsService struct {
	congestion *planner.CongestionModel
	routes     routeDomain.Repository
	logger     *zap.Logger
	now        func() time.Time
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(congestion *planner.CongestionModel, routes routeDomain.Repository, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{congestion: congestion, routes: routes, logger: logger, now: time.Now}
}

// Summary builds the congestion snapshot for today plus the owner's
// saved-route mode distribution. A failing distribution query degrades to an
// empty map rather than failing the snapshot.
func (s *AnalyticsService) Summary(ctx context.Context, ownerID uuid.UUID) *AnalyticsSummary {
	now := s.now()
	currentEst := s.congestion.Estimate(3600, now)

	profile := make([]HourlyCongestion, 0, 24)
	busiestHour := 0
	busiestFactor := 0.0
	for hour := 0; hour < 24; hour++ {
		at := time.Date(now.Year(), now.Month(), now.Day(), hour, 30, 0, 0, now.Location())
		est := s.congestion.Estimate(3600, at)
		profile = append(profile, HourlyCongestion{Hour: hour, Factor: est.Factor, Level: est.Level})
		if est.Factor > busiestFactor {
			busiestFactor = est.Factor
			busiestHour = hour
		}
	}

	byMode, err := s.routes.CountByMode(ctx, ownerID)
	if err != nil {
		s.logger.Warn("failed to load saved-route distribution", zap.Error(err))
		byMode = map[planner.Mode]int64{}
	}

	return &AnalyticsSummary{
		GeneratedAt:       now.UTC(),
		CurrentFactor:     currentEst.Factor,
		CurrentLevel:      currentEst.Level,
		BusiestHour:       busiestHour,
		HourlyProfile:     profile,
		SavedRoutesByMode: byMode,
	}
}
