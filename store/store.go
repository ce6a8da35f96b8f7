package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

const (
	UsersCollection         = "users"
	EventsCollection        = "events"
	RegistrationsCollection = "registrations"
	InstitutesCollection    = "institutes"
	DepartmentsCollection   = "departments"
	GalleriesCollection     = "galleries"
)

const (
	docTimeout  = 5 * time.Second
	listTimeout = 10 * time.Second
)

// Stores bundles every collection wrapper for one database.
type Stores struct {
	Users         *UserStore
	Events        *EventStore
	Registrations *RegistrationStore
	Institutes    *InstituteStore
	Departments   *DepartmentStore
	Galleries     *GalleryStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:         &UserStore{col: db.Collection(UsersCollection)},
		Events:        &EventStore{col: db.Collection(EventsCollection)},
		Registrations: &RegistrationStore{col: db.Collection(RegistrationsCollection)},
		Institutes:    &InstituteStore{col: db.Collection(InstitutesCollection)},
		Departments:   &DepartmentStore{col: db.Collection(DepartmentsCollection)},
		Galleries:     &GalleryStore{col: db.Collection(GalleriesCollection)},
	}
}

// translate maps driver errors onto the package sentinels.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func docCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, docTimeout)
}

func listCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, listTimeout)
}
