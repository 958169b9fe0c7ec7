package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	routeDomain "github.com/trafficwatch/service-planner/internal/domain/route"
	"github.com/trafficwatch/service-planner/internal/events"
	"go.uber.org/zap"
)

const backgroundRefreshTimeout = 30 * time.Second

// CreateRouteRequest holds the data needed to save a route.
type CreateRouteRequest struct {
	Name             string               `json:"name" binding:"required"`
	OriginLabel      string               `json:"origin_label"`
	DestinationLabel string               `json:"destination_label"`
	Origin           *planner.Coordinate  `json:"origin"`
	Destination      *planner.Coordinate  `json:"destination"`
	Geometry         []planner.Coordinate `json:"geometry"`
	Mode             string               `json:"mode"`
}

// UpdateRouteRequest holds mutable route fields.
type UpdateRouteRequest struct {
	Name string `json:"name" binding:"required"`
	Mode string `json:"mode" binding:"required"`
}

// RouteDTO is the response representation of a saved route.
type RouteDTO struct {
	ID               uuid.UUID            `json:"id"`
	Name             string               `json:"name"`
	OriginLabel      string               `json:"origin_label"`
	DestinationLabel string               `json:"destination_label"`
	Origin           *planner.Coordinate  `json:"origin,omitempty"`
	Destination      *planner.Coordinate  `json:"destination,omitempty"`
	Geometry         []planner.Coordinate `json:"geometry,omitempty"`
	Mode             planner.Mode         `json:"mode"`
	Version          int64                `json:"version"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// LoadedRouteView is the immediate response to loading a saved route: the
// seeded selection plus any frozen geometry to draw while the fresh
// comparison is fetched in the background.
type LoadedRouteView struct {
	Route          RouteDTO                    `json:"route"`
	State          planner.RouteSelectionState `json:"state"`
	FrozenGeometry []planner.Coordinate        `json:"frozen_geometry,omitempty"`
}

// RouteService manages saved routes and wires them into the planning session.
type RouteService struct {
	repo      routeDomain.Repository
	planner   *PlannerService
	publisher EventPublisher
	logger    *zap.Logger
}

// NewRouteService creates a new RouteService.
func NewRouteService(repo routeDomain.Repository, plannerSvc *PlannerService, publisher EventPublisher, logger *zap.Logger) *RouteService {
	return &RouteService{repo: repo, planner: plannerSvc, publisher: publisher, logger: logger}
}

// CreateRoute saves a new route for the owner.
func (s *RouteService) CreateRoute(ctx context.Context, ownerID uuid.UUID, req CreateRouteRequest) (*RouteDTO, error) {
	// An omitted mode defaults to car inside the aggregate.
	var mode planner.Mode
	if req.Mode != "" {
		parsed, err := planner.ParseMode(req.Mode)
		if err != nil {
			return nil, apperr.NewValidationError(err.Error())
		}
		mode = parsed
	}

	rt, err := routeDomain.NewSavedRoute(
		ownerID,
		req.Name,
		req.OriginLabel,
		req.DestinationLabel,
		req.Origin,
		req.Destination,
		req.Geometry,
		mode,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, rt); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeRouteSaved, rt.ID().String(), events.RouteSavedEvent{
		RouteID:          rt.ID(),
		OwnerID:          ownerID,
		Name:             rt.Name(),
		OriginLabel:      rt.OriginLabel(),
		DestinationLabel: rt.DestinationLabel(),
		Mode:             rt.Mode(),
	})

	dto := toRouteDTO(rt)
	return &dto, nil
}

// ListRoutes returns the owner's saved routes with pagination.
func (s *RouteService) ListRoutes(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]RouteDTO, int64, error) {
	routes, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]RouteDTO, len(routes))
	for i, rt := range routes {
		dtos[i] = toRouteDTO(rt)
	}
	return dtos, total, nil
}

// GetRoute returns one saved route, enforcing ownership.
func (s *RouteService) GetRoute(ctx context.Context, routeID, ownerID uuid.UUID) (*RouteDTO, error) {
	rt, err := s.findOwned(ctx, routeID, ownerID)
	if err != nil {
		return nil, err
	}
	dto := toRouteDTO(rt)
	return &dto, nil
}

// UpdateRoute renames a route or changes its preferred mode.
func (s *RouteService) UpdateRoute(ctx context.Context, routeID, ownerID uuid.UUID, req UpdateRouteRequest) (*RouteDTO, error) {
	rt, err := s.findOwned(ctx, routeID, ownerID)
	if err != nil {
		return nil, err
	}

	mode, err := planner.ParseMode(req.Mode)
	if err != nil {
		return nil, apperr.NewValidationError(err.Error())
	}

	if err := rt.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := rt.ChangeMode(mode); err != nil {
		return nil, err
	}

	rt.IncrementVersion()
	if err := s.repo.Update(ctx, rt); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypeRouteSaved, rt.ID().String(), events.RouteSavedEvent{
		RouteID:          rt.ID(),
		OwnerID:          ownerID,
		Name:             rt.Name(),
		OriginLabel:      rt.OriginLabel(),
		DestinationLabel: rt.DestinationLabel(),
		Mode:             rt.Mode(),
	})

	dto := toRouteDTO(rt)
	return &dto, nil
}

// DeleteRoute removes a saved route, enforcing ownership.
func (s *RouteService) DeleteRoute(ctx context.Context, routeID, ownerID uuid.UUID) error {
	if _, err := s.findOwned(ctx, routeID, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, routeID); err != nil {
		return err
	}

	s.publishEvent(ctx, events.TypeRouteDeleted, routeID.String(), events.RouteDeletedEvent{
		RouteID: routeID,
		OwnerID: ownerID,
	})
	return nil
}

// LoadRoute seeds the planning session from a saved route. Frozen geometry is
// returned immediately for display; a fresh comparison is fetched in the
// background and replaces the session comparison only when it succeeds.
func (s *RouteService) LoadRoute(ctx context.Context, routeID, ownerID uuid.UUID) (*LoadedRouteView, error) {
	rt, err := s.findOwned(ctx, routeID, ownerID)
	if err != nil {
		return nil, err
	}
	if !rt.HasCoordinates() {
		return nil, apperr.NewValidationError("saved route has no coordinates to load")
	}

	state := planner.SeedFromSaved(*rt.Origin(), *rt.Destination(), rt.OriginLabel(), rt.DestinationLabel())
	gen := s.planner.SetStateForLoad(state)

	go s.refreshComparison(state, gen, routeID)

	return &LoadedRouteView{
		Route:          toRouteDTO(rt),
		State:          state,
		FrozenGeometry: rt.Geometry(),
	}, nil
}

// ModeDistribution returns how the owner's saved routes split over modes.
func (s *RouteService) ModeDistribution(ctx context.Context, ownerID uuid.UUID) (map[planner.Mode]int64, error) {
	return s.repo.CountByMode(ctx, ownerID)
}

func (s *RouteService) refreshComparison(state planner.RouteSelectionState, gen uint64, routeID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
	defer cancel()

	comparison, segments, err := s.planner.Compare(ctx, *state.Start, *state.Destination, nil)
	if err != nil {
		// Keep showing the frozen geometry.
		s.logger.Warn("background comparison refresh failed",
			zap.String("route_id", routeID.String()),
			zap.Error(err),
		)
		return
	}
	if !s.planner.ReplaceComparison(gen, comparison, segments) {
		s.logger.Debug("background comparison discarded, session moved on",
			zap.String("route_id", routeID.String()),
		)
	}
}

func (s *RouteService) findOwned(ctx context.Context, routeID, ownerID uuid.UUID) (*routeDomain.SavedRoute, error) {
	rt, err := s.repo.FindByID(ctx, routeID)
	if err != nil {
		return nil, err
	}
	if !rt.IsOwnedBy(ownerID) {
		return nil, apperr.NewForbiddenError("route belongs to another user")
	}
	return rt, nil
}

func (s *RouteService) publishEvent(ctx context.Context, eventType, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.logger.Warn("failed to publish route event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func toRouteDTO(rt *routeDomain.SavedRoute) RouteDTO {
	return RouteDTO{
		ID:               rt.ID(),
		Name:             rt.Name(),
		OriginLabel:      rt.OriginLabel(),
		DestinationLabel: rt.DestinationLabel(),
		Origin:           rt.Origin(),
		Destination:      rt.Destination(),
		Geometry:         rt.Geometry(),
		Mode:             rt.Mode(),
		Version:          rt.Version(),
		CreatedAt:        rt.CreatedAt(),
		UpdatedAt:        rt.UpdatedAt(),
	}
}
