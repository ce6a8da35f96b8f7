package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	bootstrap "github.com/phillip/frolic-api/bootstrap"
	controllers "github.com/phillip/frolic-api/controllers"
	memstore "github.com/phillip/frolic-api/internal/memstore"
	models "github.com/phillip/frolic-api/models"
	payments "github.com/phillip/frolic-api/payments"
	routes "github.com/phillip/frolic-api/routes"
	services "github.com/phillip/frolic-api/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type server struct {
	r      *gin.Engine
	deps   *controllers.Deps
	tokens *services.TokenIssuer
	images *memstore.Images
	regs   *memstore.Registrations
}

func newServer(t *testing.T, ready bool) *server {
	t.Helper()
	users := memstore.NewUsers()
	events := memstore.NewEvents()
	regs := memstore.NewRegistrations()
	institutes := memstore.NewInstitutes()
	departments := memstore.NewDepartments()
	galleries := memstore.NewGalleries()
	images := &memstore.Images{}

	tokens := services.NewTokenIssuer("test-secret", time.Hour)
	auth := services.NewAuthService(users, tokens, services.BcryptHasher{Cost: bcrypt.MinCost}, nil)
	phase := bootstrap.NewPhase()
	if ready {
		phase.Begin()
		phase.MarkReady()
	}

	deps := &controllers.Deps{
		Log:           zap.NewNop().Sugar(),
		Phase:         phase,
		Auth:          auth,
		Events:        services.NewEventService(events, regs, nil),
		Registrations: services.NewRegistrationService(events, regs, users, nil),
		Payments:      services.NewPaymentService(regs, events, users, payments.NewSimulatedGateway(), nil, nil),
		Catalogue:     services.NewCatalogueService(institutes, departments, galleries, images, nil),
		Admin:         services.NewAdminService(auth, users, events, regs, institutes, departments, nil),
		Images:        images,
	}
	r := gin.New()
	routes.SetupRoutes(r, deps)
	return &server{r: r, deps: deps, tokens: tokens, images: images, regs: regs}
}

func (s *server) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func (s *server) json(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, rd, "application/json")
}

func (s *server) account(t *testing.T, email string, role models.Role, eventID *primitive.ObjectID) (*models.User, string) {
	t.Helper()
	u, err := s.deps.Auth.CreateAccount(context.Background(), services.RegisterInput{
		FullName: "User " + email,
		Email:    email,
		Phone:    "9000000000",
		Password: "secret1",
		Role:     role,
		EventID:  eventID,
	})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	return u, token
}

func (s *server) event(t *testing.T, name string, fees float64) *models.Event {
	t.Helper()
	now := time.Now()
	e, err := s.deps.Events.Create(context.Background(), primitive.NewObjectID(), services.EventInput{
		Name:                name,
		Fees:                fees,
		MinParticipants:     1,
		MaxParticipants:     1,
		EventDate:           now.Add(14 * 24 * time.Hour),
		RegistrationEndDate: now.Add(7 * 24 * time.Hour),
		IsPublished:         true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func TestNotReadyAnswers503(t *testing.T) {
	s := newServer(t, false)

	w, env := s.do(t, http.MethodGet, "/api/events", "", nil, "")
	if w.Code != http.StatusServiceUnavailable || env.Success {
		t.Fatalf("events before ready: %d %+v", w.Code, env)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	w, env = s.do(t, http.MethodGet, "/api/ping", "", nil, "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("ping: %d %+v", w.Code, env)
	}
	w, _ = s.do(t, http.MethodGet, "/api/health", "", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("health before ready = %d", w.Code)
	}
}

func TestHealthReportsDatabase(t *testing.T) {
	s := newServer(t, true)

	w, env := s.do(t, http.MethodGet, "/api/health", "", nil, "")
	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("health: %d %+v", w.Code, env)
	}

	s.deps.DBPing = func(context.Context) error { return errors.New("no primary") }
	w, env = s.do(t, http.MethodGet, "/api/health", "", nil, "")
	if w.Code != http.StatusServiceUnavailable || env.Success {
		t.Fatalf("health with db down: %d %+v", w.Code, env)
	}
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newServer(t, true)

	w, env := s.json(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName": "Asha Rao",
		"email":    "Asha@Example.com",
		"phone":    "9876543210",
		"password": "secret1",
	})
	if w.Code != http.StatusCreated || !env.Success {
		t.Fatalf("register: %d %+v", w.Code, env)
	}

	w, env = s.json(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "secret1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %+v", w.Code, env)
	}
	var res struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeData(t, env, &res)
	if res.Token == "" || res.User.Role != models.RoleStudent {
		t.Fatalf("login result = %+v", res)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatal("password hash leaked into the response")
	}

	w, env = s.json(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@example.com", "password": "wrong1"})
	if w.Code != http.StatusUnauthorized || env.Success {
		t.Fatalf("bad login: %d %+v", w.Code, env)
	}

	w, _ = s.do(t, http.MethodGet, "/api/auth/profile", "", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("profile without token = %d", w.Code)
	}
	w, env = s.do(t, http.MethodGet, "/api/auth/profile", res.Token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d %+v", w.Code, env)
	}

	w, env = s.json(t, http.MethodPut, "/api/auth/profile", res.Token, gin.H{"fullName": "Asha R"})
	var u models.User
	decodeData(t, env, &u)
	if w.Code != http.StatusOK || u.FullName != "Asha R" {
		t.Fatalf("update profile: %d %+v", w.Code, u)
	}
}

func TestRegisterPayFlow(t *testing.T) {
	s := newServer(t, true)
	_, token := s.account(t, "student@example.com", models.RoleStudent, nil)
	ev := s.event(t, "Hackathon", 250)
	base := "/api/events/" + ev.ID.Hex()

	w, env := s.do(t, http.MethodGet, base+"/registration-status", token, nil, "")
	var state models.RegistrationState
	decodeData(t, env, &state)
	if w.Code != http.StatusOK || state.Registered {
		t.Fatalf("status before: %d %+v", w.Code, state)
	}

	w, env = s.do(t, http.MethodPost, base+"/register", token, nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %+v", w.Code, env)
	}
	var reg models.Registration
	decodeData(t, env, &reg)
	if reg.Status != models.RegistrationPending || reg.PaymentStatus != models.PaymentPending {
		t.Fatalf("new registration = %+v", reg)
	}

	w, _ = s.do(t, http.MethodPost, base+"/register", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("second register = %d, want 200", w.Code)
	}
	if s.regs.Len() != 1 {
		t.Fatalf("rows = %d", s.regs.Len())
	}

	w, env = s.json(t, http.MethodPost, "/api/registrations/"+reg.ID.Hex()+"/checkout", token, gin.H{"method": "upi"})
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: %d %+v", w.Code, env)
	}
	var out services.CheckoutResult
	decodeData(t, env, &out)
	if !out.Settled || !strings.HasPrefix(out.TransactionID, "TXN") || out.Registration.PaymentStatus != models.PaymentPaid {
		t.Fatalf("checkout result = %+v", out)
	}

	w, env = s.do(t, http.MethodGet, "/api/auth/registrations", token, nil, "")
	var mine []models.RegistrationView
	decodeData(t, env, &mine)
	if w.Code != http.StatusOK || len(mine) != 1 || mine[0].Status != models.RegistrationConfirmed {
		t.Fatalf("my registrations: %d %+v", w.Code, mine)
	}
}

func TestConfirmPaymentErrors(t *testing.T) {
	s := newServer(t, true)
	_, token := s.account(t, "student@example.com", models.RoleStudent, nil)

	w, _ := s.json(t, http.MethodPost, "/api/registrations/"+primitive.NewObjectID().Hex()+"/confirm-payment", token, gin.H{"transactionId": "TXN123"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown registration = %d", w.Code)
	}

	w, _ = s.json(t, http.MethodPost, "/api/registrations/not-an-id/confirm-payment", token, gin.H{"transactionId": "TXN123"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed id = %d", w.Code)
	}

	ev := s.event(t, "Quiz", 100)
	_, env := s.do(t, http.MethodPost, "/api/events/"+ev.ID.Hex()+"/register", token, nil, "")
	var reg models.Registration
	decodeData(t, env, &reg)

	w, _ = s.json(t, http.MethodPost, "/api/registrations/"+reg.ID.Hex()+"/confirm-payment", token, gin.H{"transactionId": "  "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty transaction id = %d", w.Code)
	}
	w, env = s.json(t, http.MethodPost, "/api/registrations/"+reg.ID.Hex()+"/confirm-payment", token, gin.H{"transactionId": "TXN123"})
	decodeData(t, env, &reg)
	if w.Code != http.StatusOK || reg.TransactionID != "TXN123" || reg.Status != models.RegistrationConfirmed {
		t.Fatalf("confirm: %d %+v", w.Code, reg)
	}
}

func TestClosedEventRejected(t *testing.T) {
	s := newServer(t, true)
	_, token := s.account(t, "student@example.com", models.RoleStudent, nil)

	now := time.Now()
	ev, err := s.deps.Events.Create(context.Background(), primitive.NewObjectID(), services.EventInput{
		Name:                "Yesterday",
		MinParticipants:     1,
		MaxParticipants:     1,
		EventDate:           now.Add(24 * time.Hour),
		RegistrationEndDate: now.Add(-time.Hour),
		IsPublished:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	w, env := s.do(t, http.MethodPost, "/api/events/"+ev.ID.Hex()+"/register", token, nil, "")
	if w.Code != http.StatusBadRequest || env.Success {
		t.Fatalf("closed event: %d %+v", w.Code, env)
	}
}

func TestAdminRoutesNeedAdmin(t *testing.T) {
	s := newServer(t, true)
	_, student := s.account(t, "student@example.com", models.RoleStudent, nil)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)

	w, _ := s.do(t, http.MethodGet, "/api/admin/stats", student, nil, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("student stats = %d", w.Code)
	}
	w, env := s.do(t, http.MethodGet, "/api/admin/stats", admin, nil, "")
	var st models.DashboardStats
	decodeData(t, env, &st)
	if w.Code != http.StatusOK || st.TotalUsers != 2 {
		t.Fatalf("admin stats: %d %+v", w.Code, st)
	}
}

func TestAdminCreateEventMultipart(t *testing.T) {
	s := newServer(t, true)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"name":                "Robo Race",
		"description":         "Build and race",
		"fees":                "150",
		"minParticipants":     "2",
		"maxParticipants":     "4",
		"eventDate":           time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
		"registrationEndDate": time.Now().Add(20 * 24 * time.Hour).UTC().Format("2006-01-02"),
		"isPublished":         "true",
		"prizes[first]":       "5000",
		"prizes[second]":      "3000",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("images", "poster.jpg")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("not really a jpeg"))
	mw.Close()

	w, env := s.do(t, http.MethodPost, "/api/admin/events", admin, &buf, mw.FormDataContentType())
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d %+v", w.Code, env)
	}
	var ev models.Event
	decodeData(t, env, &ev)
	if ev.Prizes.First != "5000" || ev.Prizes.Second != "3000" || ev.MaxParticipants != 4 {
		t.Fatalf("event = %+v", ev)
	}
	if len(ev.Images) != 1 || !strings.Contains(ev.Images[0], "/events/") {
		t.Fatalf("images = %v", ev.Images)
	}
	if ev.RegistrationEndDate.Hour() != 23 || ev.RegistrationEndDate.Minute() != 59 {
		t.Fatalf("date-only deadline should close at end of day, got %v", ev.RegistrationEndDate)
	}

	// public detail carries the live count
	w, env = s.do(t, http.MethodGet, "/api/events/"+ev.ID.Hex(), "", nil, "")
	var detail models.Event
	decodeData(t, env, &detail)
	if w.Code != http.StatusOK || detail.RegisteredCount == nil || *detail.RegisteredCount != 0 {
		t.Fatalf("detail: %d %+v", w.Code, detail)
	}

	// unpublish hides it from the public
	w, _ = s.json(t, http.MethodPatch, "/api/admin/events/"+ev.ID.Hex()+"/publish", admin, gin.H{"isPublished": false})
	if w.Code != http.StatusOK {
		t.Fatalf("unpublish = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodGet, "/api/events/"+ev.ID.Hex(), "", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unpublished detail = %d", w.Code)
	}

	w, _ = s.do(t, http.MethodDelete, "/api/admin/events/"+ev.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}
	if len(s.images.DeletedURLs()) != 0 {
		t.Fatal("soft delete must keep event images")
	}
}

func TestCreateEventValidationDiscardsUploads(t *testing.T) {
	s := newServer(t, true)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("description", "no name")
	fw, _ := mw.CreateFormFile("images", "a.jpg")
	fw.Write([]byte("x"))
	mw.Close()

	w, _ := s.do(t, http.MethodPost, "/api/admin/events", admin, &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create without name = %d", w.Code)
	}
	if got := s.images.DeletedURLs(); len(got) != 1 {
		t.Fatalf("orphan uploads deleted = %v", got)
	}
}

func TestCoordinatorScope(t *testing.T) {
	s := newServer(t, true)
	mine := s.event(t, "Mine", 0)
	other := s.event(t, "Other", 0)
	_, coord := s.account(t, "coord@example.com", models.RoleEventCoordinator, &mine.ID)
	_, student := s.account(t, "student@example.com", models.RoleStudent, nil)

	s.do(t, http.MethodPost, "/api/events/"+mine.ID.Hex()+"/register", student, nil, "")

	w, env := s.do(t, http.MethodGet, "/api/admin/events/"+mine.ID.Hex()+"/registrations", coord, nil, "")
	var views []models.EventRegistrationView
	decodeData(t, env, &views)
	if w.Code != http.StatusOK || len(views) != 1 || views[0].User == nil || views[0].User.Email != "student@example.com" {
		t.Fatalf("own event: %d %+v", w.Code, views)
	}

	w, _ = s.do(t, http.MethodGet, "/api/admin/events/"+other.ID.Hex()+"/registrations", coord, nil, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("other event = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodGet, "/api/admin/stats", coord, nil, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("coordinator stats = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodGet, "/api/admin/events/"+mine.ID.Hex()+"/registrations", student, nil, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("student registrations view = %d", w.Code)
	}
}

func TestCatalogueEndpoints(t *testing.T) {
	s := newServer(t, true)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)

	w, env := s.json(t, http.MethodPost, "/api/admin/institutes", admin, gin.H{"name": "LDRP", "code": "LD"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create institute: %d %+v", w.Code, env)
	}
	var inst models.Institute
	decodeData(t, env, &inst)

	w, env = s.json(t, http.MethodPost, "/api/admin/departments", admin, gin.H{"instituteId": inst.ID.Hex(), "name": "Computer Engineering"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create department: %d %+v", w.Code, env)
	}

	w, env = s.do(t, http.MethodGet, "/api/institutes/"+inst.ID.Hex()+"/departments", "", nil, "")
	var depts []models.Department
	decodeData(t, env, &depts)
	if w.Code != http.StatusOK || len(depts) != 1 {
		t.Fatalf("public departments: %d %+v", w.Code, depts)
	}

	w, _ = s.do(t, http.MethodDelete, "/api/admin/institutes/"+inst.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("delete institute with departments = %d", w.Code)
	}

	w, env = s.json(t, http.MethodPut, "/api/admin/institutes/"+inst.ID.Hex(), admin, gin.H{"name": "LDRP-ITR"})
	decodeData(t, env, &inst)
	if w.Code != http.StatusOK || inst.Name != "LDRP-ITR" {
		t.Fatalf("update institute: %d %+v", w.Code, inst)
	}
}

func TestGalleryLifecycle(t *testing.T) {
	s := newServer(t, true)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("title", "Fest 2025")
	for _, name := range []string{"a.jpg", "b.jpg"} {
		fw, _ := mw.CreateFormFile("images", name)
		fw.Write([]byte(name))
	}
	mw.Close()

	w, env := s.do(t, http.MethodPost, "/api/admin/galleries", admin, &buf, mw.FormDataContentType())
	if w.Code != http.StatusCreated {
		t.Fatalf("create gallery: %d %+v", w.Code, env)
	}
	var g models.Gallery
	decodeData(t, env, &g)
	if len(g.Images) != 2 {
		t.Fatalf("images = %v", g.Images)
	}

	w, env = s.json(t, http.MethodPut, "/api/admin/galleries/"+g.ID.Hex(), admin, gin.H{"removeImages": []string{g.Images[0]}})
	var updated models.Gallery
	decodeData(t, env, &updated)
	if w.Code != http.StatusOK || len(updated.Images) != 1 || updated.Images[0] != g.Images[1] {
		t.Fatalf("update gallery: %d %+v", w.Code, updated)
	}

	w, env = s.do(t, http.MethodGet, "/api/galleries", "", nil, "")
	var list []models.Gallery
	decodeData(t, env, &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("public galleries: %d %+v", w.Code, list)
	}

	w, _ = s.do(t, http.MethodDelete, "/api/admin/galleries/"+g.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete gallery = %d", w.Code)
	}
	if got := s.images.DeletedURLs(); len(got) != 2 {
		t.Fatalf("deleted images = %v", got)
	}
}

func TestDeactivateUser(t *testing.T) {
	s := newServer(t, true)
	adminUser, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)
	student, token := s.account(t, "student@example.com", models.RoleStudent, nil)
	ev := s.event(t, "Quiz", 0)

	w, _ := s.do(t, http.MethodDelete, "/api/admin/users/"+adminUser.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self deactivate = %d", w.Code)
	}
	w, _ = s.do(t, http.MethodDelete, "/api/admin/users/"+student.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("deactivate = %d", w.Code)
	}
	w, _ = s.json(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "student@example.com", "password": "secret1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated login = %d", w.Code)
	}

	// tokens issued before deactivation stop working too
	w, _ = s.do(t, http.MethodPost, "/api/events/"+ev.ID.Hex()+"/register", token, nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("register with old token = %d, want 401", w.Code)
	}
	if s.regs.Len() != 0 {
		t.Fatalf("rows = %d", s.regs.Len())
	}
	w, _ = s.do(t, http.MethodGet, "/api/auth/registrations", token, nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("list with old token = %d, want 401", w.Code)
	}
}

func TestEventListETagTracksDeletes(t *testing.T) {
	s := newServer(t, true)
	_, admin := s.account(t, "admin@example.com", models.RoleAdmin, nil)
	older := s.event(t, "Quiz", 0)
	s.event(t, "Hackathon", 0)

	w, _ := s.do(t, http.MethodGet, "/api/events", "", nil, "")
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("list: %d etag=%q", w.Code, etag)
	}

	conditional := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		req.Header.Set("If-None-Match", etag)
		w := httptest.NewRecorder()
		s.r.ServeHTTP(w, req)
		return w
	}
	if w := conditional(); w.Code != http.StatusNotModified {
		t.Fatalf("unchanged list = %d, want 304", w.Code)
	}

	w, _ = s.do(t, http.MethodDelete, "/api/admin/events/"+older.ID.Hex(), admin, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete = %d", w.Code)
	}

	w = conditional()
	if w.Code != http.StatusOK {
		t.Fatalf("list after delete = %d, want 200", w.Code)
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	var list []models.Event
	decodeData(t, env, &list)
	if len(list) != 1 || list[0].ID == older.ID {
		t.Fatalf("list after delete = %+v", list)
	}
}
