package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

// RegistrationService runs the student side of event registration.
type RegistrationService struct {
	events EventRepository
	regs   RegistrationRepository
	users  UserRepository
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewRegistrationService(events EventRepository, regs RegistrationRepository, users UserRepository, log *zap.SugaredLogger) *RegistrationService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RegistrationService{events: events, regs: regs, users: users, log: log, now: time.Now}
}

// CheckStatus reports whether userID holds a registration for eventID. It never writes.
func (s *RegistrationService) CheckStatus(ctx context.Context, userID, eventID primitive.ObjectID) (*models.RegistrationState, error) {
	reg, err := s.regs.FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &models.RegistrationState{Registered: false}, nil
		}
		return nil, err
	}
	id := reg.ID
	return &models.RegistrationState{
		Registered:     true,
		RegistrationID: &id,
		Status:         reg.Status,
		PaymentStatus:  reg.PaymentStatus,
		TransactionID:  reg.TransactionID,
	}, nil
}

// Register signs a student up for a published, open event. A second call for
// the same pair returns the first registration with created=false.
func (s *RegistrationService) Register(ctx context.Context, userID primitive.ObjectID, role models.Role, eventID primitive.ObjectID) (*models.Registration, bool, error) {
	if role != models.RoleStudent {
		return nil, false, AuthorizationError("only students can register for events")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, NotFoundError("event not found")
		}
		return nil, false, err
	}
	if !event.Visible() {
		return nil, false, NotFoundError("event not found")
	}

	existing, err := s.regs.FindByUserAndEvent(ctx, userID, eventID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, false, err
	}

	now := s.now()
	if !event.RegistrationOpen(now) {
		return nil, false, EventClosedError("registration for this event has closed")
	}

	reg, created, err := s.regs.CreateIfAbsent(ctx, &models.Registration{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		EventID:       eventID,
		Status:        models.RegistrationPending,
		PaymentStatus: models.PaymentPending,
		Amount:        event.Fees,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Infow("registration created",
			"registration_id", reg.ID.Hex(), "user_id", userID.Hex(), "event_id", eventID.Hex())
	}
	return reg, created, nil
}

// ListMine returns the user's registrations newest first, each with its event.
// Events that were soft-deleted or removed come back flagged isDeleted.
func (s *RegistrationService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]models.RegistrationView, error) {
	regs, err := s.regs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.EventID)
	}
	events, err := s.events.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.RegistrationView, 0, len(regs))
	for _, r := range regs {
		view := models.RegistrationView{Registration: r}
		if ev, ok := events[r.EventID]; ok {
			view.Event = models.SnapshotOf(&ev)
		} else {
			view.Event = models.DeletedSnapshot(r.EventID)
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one registration to its owner or an admin.
func (s *RegistrationService) Get(ctx context.Context, userID primitive.ObjectID, role models.Role, regID primitive.ObjectID) (*models.Registration, error) {
	reg, err := s.regs.FindByID(ctx, regID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("registration not found")
		}
		return nil, err
	}
	if reg.UserID != userID && role != models.RoleAdmin {
		// hide other users' registrations entirely
		return nil, NotFoundError("registration not found")
	}
	return reg, nil
}

// ListForEvent is the admin/coordinator view of an event's sign-ups.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventRegistrationView, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("event not found")
		}
		return nil, err
	}
	regs, err := s.regs.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.EventRegistrationView, 0, len(regs))
	for _, r := range regs {
		view := models.EventRegistrationView{Registration: r}
		if u, ok := users[r.UserID]; ok {
			view.User = &u
		}
		views = append(views, view)
	}
	return views, nil
}
