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

type UserStore struct {
	col *mongo.Collection
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, u)
	return translate("insert user", err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	var u models.User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := listCtx(ctx)
	defer cancel()

	cursor, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, translate("find users", err)
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate("decode users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if upd.FullName != "" {
		set["full_name"] = upd.FullName
	}
	if upd.Phone != "" {
		set["phone"] = upd.Phone
	}
	if upd.ProfilePhoto != "" {
		set["profile_photo"] = upd.ProfilePhoto
	}

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, translate("update user", err)
	}
	return &u, nil
}

func (s *UserStore) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}})
	if err != nil {
		return translate("update user", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context, f models.UserFilter) ([]models.User, error) {
	ctx, cancel := listCtx(ctx)
	defer cancel()

	filter := bson.M{}
	if len(f.Roles) > 0 {
		filter["role"] = bson.M{"$in": f.Roles}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter["$or"] = bson.A{bson.M{"full_name": rx}, bson.M{"email": rx}}
	}

	cursor, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, translate("find users", err)
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, translate("decode users", err)
	}
	return users, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, bson.M{})
	return n, translate("count users", err)
}
