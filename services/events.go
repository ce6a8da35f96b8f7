package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

type EventInput struct {
	Name                string              `json:"name" validate:"required"`
	Description         string              `json:"description"`
	Location            string              `json:"location"`
	Fees                float64             `json:"fees" validate:"gte=0"`
	MinParticipants     int                 `json:"minParticipants" validate:"gte=1"`
	MaxParticipants     int                 `json:"maxParticipants" validate:"gte=1"`
	MaxGroups           int                 `json:"maxGroups" validate:"gte=0"`
	Prizes              models.Prizes       `json:"prizes"`
	EventDate           time.Time           `json:"eventDate" validate:"required"`
	RegistrationEndDate time.Time           `json:"registrationEndDate" validate:"required"`
	IsPublished         bool                `json:"isPublished"`
	Images              []string            `json:"images"`
	DepartmentID        *primitive.ObjectID `json:"departmentId"`
}

type EventService struct {
	events EventRepository
	regs   RegistrationRepository
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewEventService(events EventRepository, regs RegistrationRepository, log *zap.SugaredLogger) *EventService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EventService{events: events, regs: regs, log: log, now: time.Now}
}

func (s *EventService) Create(ctx context.Context, createdBy primitive.ObjectID, in EventInput) (*models.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.MinParticipants > in.MaxParticipants {
		return nil, ValidationError("minParticipants cannot exceed maxParticipants")
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	now := s.now()
	e := &models.Event{
		ID:                  primitive.NewObjectID(),
		Name:                in.Name,
		Description:         in.Description,
		Location:            in.Location,
		Fees:                in.Fees,
		MinParticipants:     in.MinParticipants,
		MaxParticipants:     in.MaxParticipants,
		MaxGroups:           in.MaxGroups,
		Prizes:              in.Prizes,
		EventDate:           in.EventDate,
		RegistrationEndDate: in.RegistrationEndDate,
		IsPublished:         in.IsPublished,
		Images:              images,
		DepartmentID:        in.DepartmentID,
		CreatedBy:           createdBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.log.Infow("event created", "event_id", e.ID.Hex(), "published", e.IsPublished)
	return e, nil
}

func (s *EventService) Update(ctx context.Context, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error) {
	if upd.Empty() {
		return nil, ValidationError("no fields to update")
	}
	current, err := s.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted {
		return nil, NotFoundError("event not found")
	}

	merged := *current
	upd.Apply(&merged)
	if strings.TrimSpace(merged.Name) == "" {
		return nil, ValidationError("name is required")
	}
	if merged.Fees < 0 {
		return nil, ValidationError("fees must be 0 or more")
	}
	if merged.MinParticipants > merged.MaxParticipants {
		return nil, ValidationError("minParticipants cannot exceed maxParticipants")
	}

	updated, err := s.events.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("event not found")
		}
		return nil, err
	}
	return updated, nil
}

func (s *EventService) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (*models.Event, error) {
	return s.Update(ctx, id, models.EventUpdate{IsPublished: &published})
}

// Delete soft-deletes the event; registrations keep pointing at it.
func (s *EventService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.events.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFoundError("event not found")
		}
		return err
	}
	s.log.Infow("event deleted", "event_id", id.Hex())
	return nil
}

// ListPublished is the student catalogue.
func (s *EventService) ListPublished(ctx context.Context, query string) ([]models.Event, error) {
	return s.events.List(ctx, models.EventFilter{Query: query, PublishedOnly: true})
}

// ListAll is the admin catalogue, drafts included.
func (s *EventService) ListAll(ctx context.Context, query string, includeDeleted bool) ([]models.Event, error) {
	return s.events.List(ctx, models.EventFilter{Query: query, IncludeDeleted: includeDeleted})
}

// Get loads an event with its live registration count. Unless admin is set,
// drafts and deleted events are reported as not found.
func (s *EventService) Get(ctx context.Context, id primitive.ObjectID, admin bool) (*models.Event, error) {
	e, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("event not found")
		}
		return nil, err
	}
	if !admin && !e.Visible() {
		return nil, NotFoundError("event not found")
	}
	n, err := s.regs.CountByEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	e.RegisteredCount = &n
	return e, nil
}
