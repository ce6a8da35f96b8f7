package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/frolic-api/models"
)

type EventStore struct {
	col *mongo.Collection
}

func (s *EventStore) Create(ctx context.Context, e *models.Event) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Images == nil {
		e.Images = []string{}
	}
	_, err := s.col.InsertOne(ctx, e)
	return translate("insert event", err)
}

// FindByID returns the event even when it is soft-deleted.
func (s *EventStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	var e models.Event
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, translate("find event", err)
	}
	return &e, nil
}

func (s *EventStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Event, error) {
	out := make(map[primitive.ObjectID]models.Event, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := listCtx(ctx)
	defer cancel()

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate("find events", err)
	}
	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, translate("decode events", err)
	}
	for _, e := range events {
		out[e.ID] = e
	}
	return out, nil
}

func (s *EventStore) List(ctx context.Context, f models.EventFilter) ([]models.Event, error) {
	ctx, cancel := listCtx(ctx)
	defer cancel()

	filter := bson.M{}
	if !f.IncludeDeleted {
		filter["is_deleted"] = bson.M{"$ne": true}
	}
	if f.PublishedOnly {
		filter["is_published"] = true
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	}

	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "event_date", Value: 1}}))
	if err != nil {
		return nil, translate("find events", err)
	}
	events := []models.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, translate("decode events", err)
	}
	return events, nil
}

func (s *EventStore) Update(ctx context.Context, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Location != nil {
		set["location"] = *upd.Location
	}
	if upd.Fees != nil {
		set["fees"] = *upd.Fees
	}
	if upd.MinParticipants != nil {
		set["min_participants"] = *upd.MinParticipants
	}
	if upd.MaxParticipants != nil {
		set["max_participants"] = *upd.MaxParticipants
	}
	if upd.MaxGroups != nil {
		set["max_groups"] = *upd.MaxGroups
	}
	if upd.Prizes != nil {
		set["prizes"] = *upd.Prizes
	}
	if upd.EventDate != nil {
		set["event_date"] = *upd.EventDate
	}
	if upd.RegistrationEndDate != nil {
		set["registration_end_date"] = *upd.RegistrationEndDate
	}
	if upd.IsPublished != nil {
		set["is_published"] = *upd.IsPublished
	}
	if upd.Images != nil {
		set["images"] = upd.Images
	}
	if upd.DepartmentID != nil {
		set["department_id"] = *upd.DepartmentID
	}

	var e models.Event
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return nil, translate("update event", err)
	}
	return &e, nil
}

func (s *EventStore) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"is_deleted": true, "is_published": false, "deleted_at": at, "updated_at": at}},
	)
	if err != nil {
		return translate("delete event", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EventStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, bson.M{"is_deleted": bson.M{"$ne": true}})
	return n, translate("count events", err)
}
