package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	memstore "github.com/phillip/frolic-api/internal/memstore"
	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
)

type fixture struct {
	users       *memstore.Users
	events      *memstore.Events
	regs        *memstore.Registrations
	institutes  *memstore.Institutes
	departments *memstore.Departments
	galleries   *memstore.Galleries
	images      *memstore.Images
	gateway     *fakeGateway
	notifier    *fakeNotifier

	auth     *services.AuthService
	reg      *services.RegistrationService
	pay      *services.PaymentService
	eventSvc *services.EventService
	cat      *services.CatalogueService
	admin    *services.AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       memstore.NewUsers(),
		events:      memstore.NewEvents(),
		regs:        memstore.NewRegistrations(),
		institutes:  memstore.NewInstitutes(),
		departments: memstore.NewDepartments(),
		galleries:   memstore.NewGalleries(),
		images:      &memstore.Images{},
		gateway:     &fakeGateway{settle: true},
		notifier:    &fakeNotifier{},
	}
	tokens := services.NewTokenIssuer("test-secret", time.Hour)
	f.auth = services.NewAuthService(f.users, tokens, services.BcryptHasher{Cost: bcrypt.MinCost}, nil)
	f.reg = services.NewRegistrationService(f.events, f.regs, f.users, nil)
	f.pay = services.NewPaymentService(f.regs, f.events, f.users, f.gateway, f.notifier, nil)
	f.eventSvc = services.NewEventService(f.events, f.regs, nil)
	f.cat = services.NewCatalogueService(f.institutes, f.departments, f.galleries, f.images, nil)
	f.admin = services.NewAdminService(f.auth, f.users, f.events, f.regs, f.institutes, f.departments, nil)
	return f
}

func (f *fixture) student(t *testing.T, email string) *models.User {
	t.Helper()
	res, err := f.auth.Register(context.Background(), services.RegisterInput{
		FullName: "Student " + email,
		Email:    email,
		Phone:    "9876543210",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

func (f *fixture) adminUser(t *testing.T) *models.User {
	t.Helper()
	u, err := f.auth.CreateAccount(context.Background(), services.RegisterInput{
		FullName: "Admin",
		Email:    "admin@example.com",
		Phone:    "9999999999",
		Password: "Admin123!",
		Role:     models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return u
}

// openEvent stores a published event whose registration closes in a week.
func (f *fixture) openEvent(t *testing.T, name string, fees float64) *models.Event {
	t.Helper()
	now := time.Now()
	e := models.Event{
		ID:                  primitive.NewObjectID(),
		Name:                name,
		Fees:                fees,
		MinParticipants:     1,
		MaxParticipants:     4,
		EventDate:           now.Add(14 * 24 * time.Hour),
		RegistrationEndDate: now.Add(7 * 24 * time.Hour),
		IsPublished:         true,
		Images:              []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	f.events.Put(e)
	return &e
}

func assertKind(t *testing.T, err error, want services.Kind) {
	t.Helper()
	if got := services.KindOf(err); got != want {
		t.Fatalf("error kind = %q (%v), want %q", got, err, want)
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	settle  bool
	fail    error
	charges []services.ChargeRequest
}

func (g *fakeGateway) Charge(_ context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.charges = append(g.charges, req)
	if g.fail != nil {
		return nil, g.fail
	}
	return &services.ChargeResult{
		TransactionID: "TXN-" + req.OrderID,
		RedirectURL:   "https://pay.example.com/" + req.OrderID,
		Settled:       g.settle,
	}, nil
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.charges)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []primitive.ObjectID
	fail error
}

func (n *fakeNotifier) PaymentConfirmed(_ context.Context, _ *models.User, _ *models.Event, reg *models.Registration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, reg.ID)
	return n.fail
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

// verifyingGateway never settles at checkout; orders settle when the test says so.
type verifyingGateway struct {
	mu     sync.Mutex
	orders map[string]*services.ChargeResult
}

func (g *verifyingGateway) Charge(_ context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	orderID := "ORD-" + req.OrderID
	g.orders[orderID] = &services.ChargeResult{TransactionID: orderID}
	return &services.ChargeResult{TransactionID: orderID, RedirectURL: "https://pay.example.com/" + orderID}, nil
}

func (g *verifyingGateway) Verify(_ context.Context, orderID string) (*services.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	res, ok := g.orders[orderID]
	if !ok {
		return nil, services.PaymentError("no payment found for this order", nil)
	}
	out := *res
	return &out, nil
}

func (g *verifyingGateway) settle(orderID, txID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[orderID] = &services.ChargeResult{TransactionID: txID, Settled: true}
}
