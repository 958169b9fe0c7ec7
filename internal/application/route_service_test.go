package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trafficwatch/service-planner/internal/apperr"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	routeDomain "github.com/trafficwatch/service-planner/internal/domain/route"
	"go.uber.org/zap"
)

type fakeRouteRepo struct {
	routes map[uuid.UUID]*routeDomain.SavedRoute
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{routes: make(map[uuid.UUID]*routeDomain.SavedRoute)}
}

func (r *fakeRouteRepo) FindByID(_ context.Context, id uuid.UUID) (*routeDomain.SavedRoute, error) {
	rt, ok := r.routes[id]
	if !ok {
		return nil, apperr.NewNotFoundError("Route", id.String())
	}
	return rt, nil
}

func (r *fakeRouteRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, _, _ int) ([]*routeDomain.SavedRoute, int64, error) {
	var out []*routeDomain.SavedRoute
	for _, rt := range r.routes {
		if rt.IsOwnedBy(ownerID) {
			out = append(out, rt)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRouteRepo) Save(_ context.Context, rt *routeDomain.SavedRoute) error {
	r.routes[rt.ID()] = rt
	return nil
}

func (r *fakeRouteRepo) Update(_ context.Context, rt *routeDomain.SavedRoute) error {
	r.routes[rt.ID()] = rt
	return nil
}

func (r *fakeRouteRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.routes, id)
	return nil
}

func (r *fakeRouteRepo) CountByMode(_ context.Context, ownerID uuid.UUID) (map[planner.Mode]int64, error) {
	out := make(map[planner.Mode]int64)
	for _, rt := range r.routes {
		if rt.IsOwnedBy(ownerID) {
			out[rt.Mode()]++
		}
	}
	return out, nil
}

func TestCreateRouteRejectsUnknownMode(t *testing.T) {
	repo := newFakeRouteRepo()
	svc := NewRouteService(repo, nil, nil, zap.NewNop())

	_, err := svc.CreateRoute(context.Background(), uuid.New(), CreateRouteRequest{
		Name: "Commute",
		Mode: "boat",
	})

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Empty(t, repo.routes)
}

func TestCreateRouteDefaultsModeToCar(t *testing.T) {
	repo := newFakeRouteRepo()
	svc := NewRouteService(repo, nil, nil, zap.NewNop())

	dto, err := svc.CreateRoute(context.Background(), uuid.New(), CreateRouteRequest{
		Name: "Commute",
	})

	require.NoError(t, err)
	assert.Equal(t, planner.ModeCar, dto.Mode)
}

func TestUpdateRouteParsesMode(t *testing.T) {
	repo := newFakeRouteRepo()
	svc := NewRouteService(repo, nil, nil, zap.NewNop())
	ownerID := uuid.New()

	created, err := svc.CreateRoute(context.Background(), ownerID, CreateRouteRequest{
		Name: "Commute",
		Mode: "car",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRoute(context.Background(), created.ID, ownerID, UpdateRouteRequest{
		Name: "Commute",
		Mode: "bike",
	})
	require.NoError(t, err)
	assert.Equal(t, planner.ModeBike, updated.Mode)
	assert.Equal(t, int64(2), updated.Version)

	_, err = svc.UpdateRoute(context.Background(), created.ID, ownerID, UpdateRouteRequest{
		Name: "Commute",
		Mode: "boat",
	})
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
}
