package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	models "github.com/phillip/frolic-api/models"
)

// Institutes, departments and galleries are plain admin CRUD; updates take a
// prepared $set document built by the controller.

type InstituteStore struct {
	col *mongo.Collection
}

func (s *InstituteStore) Create(ctx context.Context, in *models.Institute) error {
	return insertDoc(ctx, s.col, "insert institute", in, &in.ID)
}

func (s *InstituteStore) List(ctx context.Context) ([]models.Institute, error) {
	out := []models.Institute{}
	if err := findAll(ctx, s.col, bson.M{}, bson.D{{Key: "name", Value: 1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *InstituteStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Institute, error) {
	var in models.Institute
	if err := findByID(ctx, s.col, "find institute", id, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *InstituteStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Institute, error) {
	var in models.Institute
	if err := updateByID(ctx, s.col, "update institute", id, set, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *InstituteStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, "delete institute", id)
}

func (s *InstituteStore) Count(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.col, "count institutes", bson.M{})
}

type DepartmentStore struct {
	col *mongo.Collection
}

func (s *DepartmentStore) Create(ctx context.Context, d *models.Department) error {
	return insertDoc(ctx, s.col, "insert department", d, &d.ID)
}

// List returns every department, or only one institute's when instituteID is non-zero.
func (s *DepartmentStore) List(ctx context.Context, instituteID primitive.ObjectID) ([]models.Department, error) {
	filter := bson.M{}
	if !instituteID.IsZero() {
		filter["institute_id"] = instituteID
	}
	out := []models.Department{}
	if err := findAll(ctx, s.col, filter, bson.D{{Key: "name", Value: 1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DepartmentStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	var d models.Department
	if err := findByID(ctx, s.col, "find department", id, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DepartmentStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Department, error) {
	var d models.Department
	if err := updateByID(ctx, s.col, "update department", id, set, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DepartmentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, "delete department", id)
}

func (s *DepartmentStore) Count(ctx context.Context) (int64, error) {
	return countDocs(ctx, s.col, "count departments", bson.M{})
}

func (s *DepartmentStore) CountByInstitute(ctx context.Context, instituteID primitive.ObjectID) (int64, error) {
	return countDocs(ctx, s.col, "count departments", bson.M{"institute_id": instituteID})
}

type GalleryStore struct {
	col *mongo.Collection
}

func (s *GalleryStore) Create(ctx context.Context, g *models.Gallery) error {
	if g.Images == nil {
		g.Images = []string{}
	}
	return insertDoc(ctx, s.col, "insert gallery", g, &g.ID)
}

func (s *GalleryStore) List(ctx context.Context) ([]models.Gallery, error) {
	out := []models.Gallery{}
	if err := findAll(ctx, s.col, bson.M{}, bson.D{{Key: "created_at", Value: -1}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GalleryStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Gallery, error) {
	var g models.Gallery
	if err := findByID(ctx, s.col, "find gallery", id, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GalleryStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Gallery, error) {
	var g models.Gallery
	if err := updateByID(ctx, s.col, "update gallery", id, set, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GalleryStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, "delete gallery", id)
}

// ---------------- helpers ----------------

func insertDoc(ctx context.Context, col *mongo.Collection, op string, doc any, id *primitive.ObjectID) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	_, err := col.InsertOne(ctx, doc)
	return translate(op, err)
}

func findAll(ctx context.Context, col *mongo.Collection, filter bson.M, sort bson.D, out any) error {
	ctx, cancel := listCtx(ctx)
	defer cancel()

	cursor, err := col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return translate("find "+col.Name(), err)
	}
	return translate("decode "+col.Name(), cursor.All(ctx, out))
}

func findByID(ctx context.Context, col *mongo.Collection, op string, id primitive.ObjectID, out any) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	return translate(op, col.FindOne(ctx, bson.M{"_id": id}).Decode(out))
}

func updateByID(ctx context.Context, col *mongo.Collection, op string, id primitive.ObjectID, set bson.M, out any) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	set["updated_at"] = time.Now()
	return translate(op, col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(out))
}

func deleteByID(ctx context.Context, col *mongo.Collection, op string, id primitive.ObjectID) error {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func countDocs(ctx context.Context, col *mongo.Collection, op string, filter bson.M) (int64, error) {
	ctx, cancel := docCtx(ctx)
	defer cancel()

	n, err := col.CountDocuments(ctx, filter)
	return n, translate(op, err)
}
