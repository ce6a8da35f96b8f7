package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

type InstituteInput struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
}

// InstitutePatch holds the fields an admin edit may change; nil is untouched.
type InstitutePatch struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Logo        *string `json:"logo"`
}

type DepartmentInput struct {
	InstituteID string `json:"instituteId" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type DepartmentPatch struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
}

type GalleryInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	EventID     *primitive.ObjectID `json:"eventId"`
	Images      []string            `json:"images"`
}

// GalleryPatch edits a gallery. AddImages are appended; RemoveImages are
// dropped from the gallery and deleted from image storage.
type GalleryPatch struct {
	Title        *string
	Description  *string
	EventID      *primitive.ObjectID
	AddImages    []string
	RemoveImages []string
}

// CatalogueService manages institutes, departments and galleries.
type CatalogueService struct {
	institutes  InstituteRepository
	departments DepartmentRepository
	galleries   GalleryRepository
	images      ImageRemover
	log         *zap.SugaredLogger
	now         func() time.Time
}

func NewCatalogueService(institutes InstituteRepository, departments DepartmentRepository, galleries GalleryRepository, images ImageRemover, log *zap.SugaredLogger) *CatalogueService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CatalogueService{
		institutes: institutes, departments: departments, galleries: galleries,
		images: images, log: log, now: time.Now,
	}
}

// ---------------- institutes ----------------

func (s *CatalogueService) CreateInstitute(ctx context.Context, in InstituteInput) (*models.Institute, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	now := s.now()
	inst := &models.Institute{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		Code:        strings.TrimSpace(in.Code),
		Address:     in.Address,
		Description: in.Description,
		Logo:        in.Logo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.institutes.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *CatalogueService) ListInstitutes(ctx context.Context) ([]models.Institute, error) {
	return s.institutes.List(ctx)
}

func (s *CatalogueService) GetInstitute(ctx context.Context, id primitive.ObjectID) (*models.Institute, error) {
	inst, err := s.institutes.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "institute not found")
	}
	return inst, nil
}

func (s *CatalogueService) UpdateInstitute(ctx context.Context, id primitive.ObjectID, p InstitutePatch) (*models.Institute, error) {
	set := bson.M{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ValidationError("name is required")
		}
		set["name"] = name
	}
	putString(set, "code", p.Code)
	putString(set, "address", p.Address)
	putString(set, "description", p.Description)
	putString(set, "logo", p.Logo)
	if len(set) == 0 {
		return nil, ValidationError("no fields to update")
	}

	inst, err := s.institutes.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, "institute not found")
	}
	return inst, nil
}

// DeleteInstitute refuses while departments still belong to the institute.
func (s *CatalogueService) DeleteInstitute(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.GetInstitute(ctx, id); err != nil {
		return err
	}
	n, err := s.departments.CountByInstitute(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ConflictError("institute still has departments")
	}
	if err := s.institutes.Delete(ctx, id); err != nil {
		return notFound(err, "institute not found")
	}
	s.log.Infow("institute deleted", "institute_id", id.Hex())
	return nil
}

// ---------------- departments ----------------

func (s *CatalogueService) CreateDepartment(ctx context.Context, in DepartmentInput) (*models.Department, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	instituteID, err := ParseID(in.InstituteID, "institute")
	if err != nil {
		return nil, err
	}
	if _, err := s.GetInstitute(ctx, instituteID); err != nil {
		return nil, err
	}

	now := s.now()
	d := &models.Department{
		ID:          primitive.NewObjectID(),
		InstituteID: instituteID,
		Name:        in.Name,
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.departments.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDepartments lists every department, or one institute's when instituteID is set.
func (s *CatalogueService) ListDepartments(ctx context.Context, instituteID primitive.ObjectID) ([]models.Department, error) {
	if !instituteID.IsZero() {
		if _, err := s.GetInstitute(ctx, instituteID); err != nil {
			return nil, err
		}
	}
	return s.departments.List(ctx, instituteID)
}

func (s *CatalogueService) GetDepartment(ctx context.Context, id primitive.ObjectID) (*models.Department, error) {
	d, err := s.departments.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "department not found")
	}
	return d, nil
}

func (s *CatalogueService) UpdateDepartment(ctx context.Context, id primitive.ObjectID, p DepartmentPatch) (*models.Department, error) {
	set := bson.M{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, ValidationError("name is required")
		}
		set["name"] = name
	}
	putString(set, "code", p.Code)
	putString(set, "description", p.Description)
	if len(set) == 0 {
		return nil, ValidationError("no fields to update")
	}

	d, err := s.departments.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, "department not found")
	}
	return d, nil
}

func (s *CatalogueService) DeleteDepartment(ctx context.Context, id primitive.ObjectID) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return notFound(err, "department not found")
	}
	return nil
}

// ---------------- galleries ----------------

func (s *CatalogueService) CreateGallery(ctx context.Context, createdBy primitive.ObjectID, in GalleryInput) (*models.Gallery, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}
	now := s.now()
	g := &models.Gallery{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		EventID:     in.EventID,
		Images:      images,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.galleries.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogueService) ListGalleries(ctx context.Context) ([]models.Gallery, error) {
	return s.galleries.List(ctx)
}

func (s *CatalogueService) GetGallery(ctx context.Context, id primitive.ObjectID) (*models.Gallery, error) {
	g, err := s.galleries.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "gallery not found")
	}
	return g, nil
}

func (s *CatalogueService) UpdateGallery(ctx context.Context, id primitive.ObjectID, p GalleryPatch) (*models.Gallery, error) {
	current, err := s.GetGallery(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, ValidationError("title is required")
		}
		set["title"] = title
	}
	putString(set, "description", p.Description)
	if p.EventID != nil {
		set["event_id"] = *p.EventID
	}

	var removed []string
	if len(p.AddImages) > 0 || len(p.RemoveImages) > 0 {
		drop := make(map[string]bool, len(p.RemoveImages))
		for _, u := range p.RemoveImages {
			drop[u] = true
		}
		images := make([]string, 0, len(current.Images)+len(p.AddImages))
		for _, u := range current.Images {
			if drop[u] {
				removed = append(removed, u)
				continue
			}
			images = append(images, u)
		}
		images = append(images, p.AddImages...)
		set["images"] = images
	}
	if len(set) == 0 {
		return nil, ValidationError("no fields to update")
	}

	g, err := s.galleries.Update(ctx, id, set)
	if err != nil {
		return nil, notFound(err, "gallery not found")
	}
	s.destroyImages(ctx, removed)
	return g, nil
}

// DeleteGallery removes the gallery and then its images from storage.
func (s *CatalogueService) DeleteGallery(ctx context.Context, id primitive.ObjectID) error {
	g, err := s.GetGallery(ctx, id)
	if err != nil {
		return err
	}
	if err := s.galleries.Delete(ctx, id); err != nil {
		return notFound(err, "gallery not found")
	}
	s.destroyImages(ctx, g.Images)
	s.log.Infow("gallery deleted", "gallery_id", id.Hex(), "images", len(g.Images))
	return nil
}

// destroyImages is best effort: the documents are already gone.
func (s *CatalogueService) destroyImages(ctx context.Context, urls []string) {
	if s.images == nil {
		return
	}
	for _, u := range urls {
		if err := s.images.Delete(ctx, u); err != nil {
			s.log.Warnw("image delete failed", "url", u, "err", err)
		}
	}
}

func putString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = strings.TrimSpace(*v)
	}
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return NotFoundError(msg)
	}
	return err
}
