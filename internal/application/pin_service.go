package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trafficwatch/service-planner/internal/apperr"
	pinDomain "github.com/trafficwatch/service-planner/internal/domain/pin"
	"github.com/trafficwatch/service-planner/internal/domain/planner"
	"github.com/trafficwatch/service-planner/internal/events"
	"go.uber.org/zap"
)

// CreatePinRequest holds the data needed to drop a pin.
type CreatePinRequest struct {
	Name       string             `json:"name" binding:"required"`
	Note       string             `json:"note"`
	Color      string             `json:"color"`
	Coordinate planner.Coordinate `json:"coordinate" binding:"required"`
}

// UpdatePinRequest holds mutable pin fields.
type UpdatePinRequest struct {
	Name  string `json:"name" binding:"required"`
	Note  string `json:"note"`
	Color string `json:"color" binding:"required"`
}

// PinDTO is the response representation of a saved pin.
type PinDTO struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	Note       string             `json:"note,omitempty"`
	Color      string             `json:"color"`
	Coordinate planner.Coordinate `json:"coordinate"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// PinService manages saved map pins and wires them into the planning session.
type PinService struct {
	repo      pinDomain.Repository
	planner   *PlannerService
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPinService creates a new PinService.
func NewPinService(repo pinDomain.Repository, plannerSvc *PlannerService, publisher EventPublisher, logger *zap.Logger) *PinService {
	return &PinService{repo: repo, planner: plannerSvc, publisher: publisher, logger: logger}
}

// CreatePin drops a new pin for the owner.
func (s *PinService) CreatePin(ctx context.Context, ownerID uuid.UUID, req CreatePinRequest) (*PinDTO, error) {
	p, err := pinDomain.NewSavedPin(ownerID, req.Name, req.Note, req.Color, req.Coordinate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypePinSaved, p.ID().String(), events.PinSavedEvent{
		PinID:      p.ID(),
		OwnerID:    ownerID,
		Name:       p.Name(),
		Color:      p.Color(),
		Coordinate: p.Coordinate(),
	})

	dto := toPinDTO(p)
	return &dto, nil
}

// ListPins returns the owner's pins with pagination.
func (s *PinService) ListPins(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]PinDTO, int64, error) {
	pins, total, err := s.repo.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]PinDTO, len(pins))
	for i, p := range pins {
		dtos[i] = toPinDTO(p)
	}
	return dtos, total, nil
}

// UpdatePin changes a pin's name, note or color.
func (s *PinService) UpdatePin(ctx context.Context, pinID, ownerID uuid.UUID, req UpdatePinRequest) (*PinDTO, error) {
	p, err := s.findOwned(ctx, pinID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := p.UpdateDetails(req.Name, req.Note, req.Color); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.TypePinSaved, p.ID().String(), events.PinSavedEvent{
		PinID:      p.ID(),
		OwnerID:    ownerID,
		Name:       p.Name(),
		Color:      p.Color(),
		Coordinate: p.Coordinate(),
	})

	dto := toPinDTO(p)
	return &dto, nil
}

// DeletePin removes a pin, enforcing ownership.
func (s *PinService) DeletePin(ctx context.Context, pinID, ownerID uuid.UUID) error {
	if _, err := s.findOwned(ctx, pinID, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, pinID); err != nil {
		return err
	}

	s.publishEvent(ctx, events.TypePinDeleted, pinID.String(), events.PinDeletedEvent{
		PinID:   pinID,
		OwnerID: ownerID,
	})
	return nil
}

// UsePinAsEndpoint installs a pin as one side of the planning session.
func (s *PinService) UsePinAsEndpoint(ctx context.Context, pinID, ownerID uuid.UUID, which string) (*SessionView, error) {
	p, err := s.findOwned(ctx, pinID, ownerID)
	if err != nil {
		return nil, err
	}

	ep := planner.NewEndpoint(p.Coordinate(), p.Name(), planner.SourceSavedPin)
	return s.planner.SetEndpoint(ctx, which, ep)
}

func (s *PinService) findOwned(ctx context.Context, pinID, ownerID uuid.UUID) (*pinDomain.SavedPin, error) {
	p, err := s.repo.FindByID(ctx, pinID)
	if err != nil {
		return nil, err
	}
	if !p.IsOwnedBy(ownerID) {
		return nil, apperr.NewForbiddenError("pin belongs to another user")
	}
	return p, nil
}

func (s *PinService) publishEvent(ctx context.Context, eventType, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		s.logger.Warn("failed to publish pin event",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func toPinDTO(p *pinDomain.SavedPin) PinDTO {
	return PinDTO{
		ID:         p.ID(),
		Name:       p.Name(),
		Note:       p.Note(),
		Color:      p.Color(),
		Coordinate: p.Coordinate(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}
}
