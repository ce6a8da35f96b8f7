package memstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

type Institutes struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Institute
}

func NewInstitutes() *Institutes {
	return &Institutes{byID: map[primitive.ObjectID]models.Institute{}}
}

func (s *Institutes) Create(_ context.Context, in *models.Institute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.ID.IsZero() {
		in.ID = primitive.NewObjectID()
	}
	s.byID[in.ID] = *in
	return nil
}

func (s *Institutes) List(context.Context) ([]models.Institute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Institute{}
	for _, in := range s.byID {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Institutes) Get(_ context.Context, id primitive.ObjectID) (*models.Institute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &in, nil
}

func (s *Institutes) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Institute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	var out models.Institute
	if err := applySet(cur, set, &out); err != nil {
		return nil, err
	}
	s.byID[id] = out
	return &out, nil
}

func (s *Institutes) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Institutes) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

type Departments struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Department
}

func NewDepartments() *Departments {
	return &Departments{byID: map[primitive.ObjectID]models.Department{}}
}

func (s *Departments) Create(_ context.Context, d *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	s.byID[d.ID] = *d
	return nil
}

func (s *Departments) List(_ context.Context, instituteID primitive.ObjectID) ([]models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Department{}
	for _, d := range s.byID {
		if !instituteID.IsZero() && d.InstituteID != instituteID {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Departments) Get(_ context.Context, id primitive.ObjectID) (*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *Departments) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	var out models.Department
	if err := applySet(cur, set, &out); err != nil {
		return nil, err
	}
	s.byID[id] = out
	return &out, nil
}

func (s *Departments) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Departments) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func (s *Departments) CountByInstitute(_ context.Context, instituteID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.byID {
		if d.InstituteID == instituteID {
			n++
		}
	}
	return n, nil
}

type Galleries struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Gallery
}

func NewGalleries() *Galleries {
	return &Galleries{byID: map[primitive.ObjectID]models.Gallery{}}
}

func (s *Galleries) Create(_ context.Context, g *models.Gallery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if g.Images == nil {
		g.Images = []string{}
	}
	s.byID[g.ID] = *g
	return nil
}

func (s *Galleries) List(context.Context) ([]models.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Gallery{}
	for _, g := range s.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Galleries) Get(_ context.Context, id primitive.ObjectID) (*models.Gallery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &g, nil
}

func (s *Galleries) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Gallery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	var out models.Gallery
	if err := applySet(cur, set, &out); err != nil {
		return nil, err
	}
	s.byID[id] = out
	return &out, nil
}

func (s *Galleries) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

// Images records uploads and deletions instead of talking to Cloudinary.
type Images struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (s *Images) Upload(_ context.Context, _ io.Reader, folder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("https://res.cloudinary.com/test/image/upload/v1/%s/img%d.jpg", folder, s.n), nil
}

func (s *Images) Delete(_ context.Context, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, imageURL)
	return nil
}

func (s *Images) DeletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
