// Package memstore holds in-memory repositories with the same semantics as
// the Mongo-backed ones in package store. Tests use them in place of a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

// ---------------- users ----------------

type Users struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{byID: map[primitive.ObjectID]models.User{}}
}

func (s *Users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	s.byID[u.ID] = *u
	return nil
}

// Put stores u as-is, replacing any user with the same id.
func (s *Users) Put(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[u.ID] = u
}

func (s *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Users) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s *Users) Update(_ context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.FullName != "" {
		u.FullName = upd.FullName
	}
	if upd.Phone != "" {
		u.Phone = upd.Phone
	}
	if upd.ProfilePhoto != "" {
		u.ProfilePhoto = upd.ProfilePhoto
	}
	u.UpdatedAt = time.Now()
	s.byID[id] = u
	return &u, nil
}

func (s *Users) SetActive(_ context.Context, id primitive.ObjectID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	s.byID[id] = u
	return nil
}

func (s *Users) List(_ context.Context, f models.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.User{}
	for _, u := range s.byID {
		if len(f.Roles) > 0 && !hasRole(f.Roles, u.Role) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.FullName), q) && !strings.Contains(u.Email, q) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *Users) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

func hasRole(roles []models.Role, r models.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

// ---------------- events ----------------

type Events struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Event
}

func NewEvents() *Events {
	return &Events{byID: map[primitive.ObjectID]models.Event{}}
}

func (s *Events) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Images == nil {
		e.Images = []string{}
	}
	s.byID[e.ID] = *e
	return nil
}

// Put stores e as-is, for seeding tests.
func (s *Events) Put(e models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[e.ID] = e
}

// Remove hard-deletes an event, as if the document vanished.
func (s *Events) Remove(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

func (s *Events) FindByID(_ context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s *Events) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[primitive.ObjectID]models.Event, len(ids))
	for _, id := range ids {
		if e, ok := s.byID[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (s *Events) List(_ context.Context, f models.EventFilter) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.Event{}
	for _, e := range s.byID {
		if e.IsDeleted && !f.IncludeDeleted {
			continue
		}
		if f.PublishedOnly && !e.IsPublished {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out, nil
}

func (s *Events) Update(_ context.Context, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok || e.IsDeleted {
		return nil, store.ErrNotFound
	}
	upd.Apply(&e)
	e.UpdatedAt = time.Now()
	s.byID[id] = e
	return &e, nil
}

func (s *Events) SoftDelete(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok || e.IsDeleted {
		return store.ErrNotFound
	}
	e.IsDeleted = true
	e.IsPublished = false
	e.DeletedAt = &at
	e.UpdatedAt = at
	s.byID[id] = e
	return nil
}

func (s *Events) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.byID {
		if !e.IsDeleted {
			n++
		}
	}
	return n, nil
}

// ---------------- registrations ----------------

type pair struct{ user, event primitive.ObjectID }

type Registrations struct {
	mu     sync.RWMutex
	byID   map[primitive.ObjectID]models.Registration
	byPair map[pair]primitive.ObjectID
}

func NewRegistrations() *Registrations {
	return &Registrations{
		byID:   map[primitive.ObjectID]models.Registration{},
		byPair: map[pair]primitive.ObjectID{},
	}
}

func (s *Registrations) CreateIfAbsent(_ context.Context, r *models.Registration) (*models.Registration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{r.UserID, r.EventID}
	if id, ok := s.byPair[key]; ok {
		existing := s.byID[id]
		return &existing, false, nil
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.byID[r.ID] = *r
	s.byPair[key] = r.ID
	created := *r
	return &created, true, nil
}

func (s *Registrations) FindByID(_ context.Context, id primitive.ObjectID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Registrations) FindByUserAndEvent(_ context.Context, userID, eventID primitive.ObjectID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pair{userID, eventID}]
	if !ok {
		return nil, store.ErrNotFound
	}
	r := s.byID[id]
	return &r, nil
}

func (s *Registrations) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Registration, error) {
	return s.list(func(r models.Registration) bool { return r.UserID == userID }), nil
}

func (s *Registrations) ListByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.Registration, error) {
	return s.list(func(r models.Registration) bool { return r.EventID == eventID }), nil
}

func (s *Registrations) list(keep func(models.Registration) bool) []models.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Registration{}
	for _, r := range s.byID {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

func (s *Registrations) MarkPaid(_ context.Context, id primitive.ObjectID, txID, method string, at time.Time) (*models.Registration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, false, store.ErrNotFound
	}
	if r.Paid() {
		return &r, false, nil
	}
	r.Status = models.RegistrationConfirmed
	r.PaymentStatus = models.PaymentPaid
	r.TransactionID = txID
	if method != "" {
		r.PaymentMethod = method
	}
	r.PaidAt = &at
	r.UpdatedAt = at
	s.byID[id] = r
	return &r, true, nil
}

func (s *Registrations) SetGatewayOrder(_ context.Context, id primitive.ObjectID, orderID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok || r.Paid() {
		return store.ErrNotFound
	}
	r.GatewayOrderID = orderID
	r.UpdatedAt = at
	s.byID[id] = r
	return nil
}

func (s *Registrations) CountByEvent(_ context.Context, eventID primitive.ObjectID) (int64, error) {
	return s.count(func(r models.Registration) bool {
		return r.EventID == eventID && r.Status != models.RegistrationCancelled
	}), nil
}

func (s *Registrations) CountConfirmed(context.Context) (int64, error) {
	return s.count(func(r models.Registration) bool { return r.Status == models.RegistrationConfirmed }), nil
}

func (s *Registrations) count(keep func(models.Registration) bool) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.byID {
		if keep(r) {
			n++
		}
	}
	return n
}

// Len is the number of stored registrations.
func (s *Registrations) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func newerFirst(a, b time.Time, aID, bID primitive.ObjectID) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID.Hex() > bID.Hex()
}

// applySet mimics a Mongo $set by round-tripping doc through BSON and
// decoding the merged document into out, which must be a fresh value.
func applySet(doc any, set bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	m := bson.M{}
	if err := bson.Unmarshal(raw, &m); err != nil {
		return err
	}
	for k, v := range set {
		m[k] = v
	}
	m["updated_at"] = time.Now()
	raw, err = bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}
