package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
)

// Repositories return store.ErrNotFound for missing documents and
// store.ErrDuplicate when a unique index rejects a write.

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	List(ctx context.Context, f models.UserFilter) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Event, error)
	List(ctx context.Context, f models.EventFilter) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type RegistrationRepository interface {
	// CreateIfAbsent inserts r unless a registration for (r.UserID, r.EventID)
	// exists, in which case the existing one is returned with created=false.
	CreateIfAbsent(ctx context.Context, r *models.Registration) (reg *models.Registration, created bool, err error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error)
	// ListByUser returns the user's registrations, newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Registration, error)
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Registration, error)
	// MarkPaid moves an unpaid registration to CONFIRMED/PAID. When the
	// registration is already paid it is returned unchanged with changed=false.
	MarkPaid(ctx context.Context, id primitive.ObjectID, txID, method string, at time.Time) (reg *models.Registration, changed bool, err error)
	// SetGatewayOrder records the gateway order of an unpaid registration.
	SetGatewayOrder(ctx context.Context, id primitive.ObjectID, orderID string, at time.Time) error
	CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error)
	CountConfirmed(ctx context.Context) (int64, error)
}

// Catalogue updates take a prepared $set document keyed by bson field name.

type InstituteRepository interface {
	Create(ctx context.Context, in *models.Institute) error
	List(ctx context.Context) ([]models.Institute, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Institute, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Institute, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *models.Department) error
	List(ctx context.Context, instituteID primitive.ObjectID) ([]models.Department, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Department, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Department, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountByInstitute(ctx context.Context, instituteID primitive.ObjectID) (int64, error)
}

type GalleryRepository interface {
	Create(ctx context.Context, g *models.Gallery) error
	List(ctx context.Context) ([]models.Gallery, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Gallery, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Gallery, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ImageRemover deletes a stored image by its public URL.
type ImageRemover interface {
	Delete(ctx context.Context, imageURL string) error
}
