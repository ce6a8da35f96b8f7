package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/frolic-api/models"
)

type RegistrationStore struct {
	col *mongo.Collection
}

// CreateIfAbsent upserts on (user_id, event_id). The uniq_user_event index
// turns a lost upsert race into a duplicate key error, which is resolved by
// reading back the winner.
func (s *RegistrationStore) CreateIfAbsent(ctx context.Context, r *models.Registration) (*models.Registration, bool, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	filter := bson.M{"user_id": r.UserID, "event_id": r.EventID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":            r.ID,
		"status":         r.Status,
		"payment_status": r.PaymentStatus,
		"amount":         r.Amount,
		"created_at":     r.CreatedAt,
		"updated_at":     r.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var got models.Registration
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&got)
	if mongo.IsDuplicateKeyError(err) {
		err = s.col.FindOne(ctx, filter).Decode(&got)
	}
	if err != nil {
		return nil, false, translate("upsert registration", err)
	}
	return &got, got.ID == r.ID, nil
}

func (s *RegistrationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *RegistrationStore) FindByUserAndEvent(ctx context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error) {
	return s.findOne(ctx, bson.M{"user_id": userID, "event_id": eventID})
}

func (s *RegistrationStore) findOne(ctx context.Context, filter bson.M) (*models.Registration, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	var r models.Registration
	if err := s.col.FindOne(ctx, filter).Decode(&r); err != nil {
		return nil, translate("find registration", err)
	}
	return &r, nil
}

func (s *RegistrationStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Registration, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *RegistrationStore) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Registration, error) {
	return s.list(ctx, bson.M{"event_id": eventID})
}

func (s *RegistrationStore) list(ctx context.Context, filter bson.M) ([]models.Registration, error) {
	ctx, cancel := listCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, translate("find registrations", err)
	}
	regs := []models.Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, translate("decode registrations", err)
	}
	return regs, nil
}

func (s *RegistrationStore) MarkPaid(ctx context.Context, id primitive.ObjectID, txID, method string, at time.Time) (*models.Registration, bool, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	set := bson.M{
		"payment_status": models.PaymentPaid,
		"status":         models.RegistrationConfirmed,
		"transaction_id": txID,
		"paid_at":        at,
		"updated_at":     at,
	}
	if method != "" {
		set["payment_method"] = method
	}

	var r models.Registration
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "payment_status": bson.M{"$ne": models.PaymentPaid}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err == nil {
		return &r, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, translate("mark registration paid", err)
	}

	// Either missing or already paid.
	existing, err := s.findOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *RegistrationStore) SetGatewayOrder(ctx context.Context, id primitive.ObjectID, orderID string, at time.Time) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "payment_status": bson.M{"$ne": models.PaymentPaid}},
		bson.M{"$set": bson.M{"gateway_order_id": orderID, "updated_at": at}},
	)
	if err != nil {
		return translate("set gateway order", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RegistrationStore) CountByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, bson.M{"event_id": eventID, "status": bson.M{"$ne": models.RegistrationCancelled}})
	return n, translate("count registrations", err)
}

func (s *RegistrationStore) CountConfirmed(ctx context.Context) (int64, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, bson.M{"status": models.RegistrationConfirmed})
	return n, translate("count registrations", err)
}
