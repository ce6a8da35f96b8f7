package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

var coordinatorRoles = []models.Role{
	models.RoleEventCoordinator,
	models.RoleDepartmentCoordinator,
	models.RoleInstituteCoordinator,
}

type CoordinatorInput struct {
	FullName     string      `json:"fullName"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Password     string      `json:"password"`
	Role         models.Role `json:"role"`
	InstituteID  string      `json:"instituteId"`
	DepartmentID string      `json:"departmentId"`
	EventID      string      `json:"eventId"`
}

// AdminService backs the user management and dashboard parts of the admin console.
type AdminService struct {
	auth        *AuthService
	users       UserRepository
	events      EventRepository
	regs        RegistrationRepository
	institutes  InstituteRepository
	departments DepartmentRepository
	log         *zap.SugaredLogger
}

func NewAdminService(auth *AuthService, users UserRepository, events EventRepository, regs RegistrationRepository, institutes InstituteRepository, departments DepartmentRepository, log *zap.SugaredLogger) *AdminService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AdminService{
		auth: auth, users: users, events: events, regs: regs,
		institutes: institutes, departments: departments, log: log,
	}
}

// CreateCoordinator creates a pre-verified coordinator account. The scope ids
// that are given must point at existing documents.
func (s *AdminService) CreateCoordinator(ctx context.Context, in CoordinatorInput) (*models.User, error) {
	if !in.Role.IsCoordinator() {
		return nil, ValidationError("role must be a coordinator role")
	}
	reg := RegisterInput{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
		Role:     in.Role,
	}

	var err error
	if reg.InstituteID, err = s.scopeID(ctx, in.InstituteID, "institute"); err != nil {
		return nil, err
	}
	if reg.DepartmentID, err = s.scopeID(ctx, in.DepartmentID, "department"); err != nil {
		return nil, err
	}
	if reg.EventID, err = s.scopeID(ctx, in.EventID, "event"); err != nil {
		return nil, err
	}
	switch {
	case in.Role == models.RoleInstituteCoordinator && reg.InstituteID == nil:
		return nil, ValidationError("instituteId is required")
	case in.Role == models.RoleDepartmentCoordinator && reg.DepartmentID == nil:
		return nil, ValidationError("departmentId is required")
	case in.Role == models.RoleEventCoordinator && reg.EventID == nil:
		return nil, ValidationError("eventId is required")
	}

	return s.auth.CreateAccount(ctx, reg)
}

func (s *AdminService) scopeID(ctx context.Context, hex, what string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return nil, nil
	}
	id, err := ParseID(hex, what)
	if err != nil {
		return nil, err
	}
	switch what {
	case "institute":
		_, err = s.institutes.Get(ctx, id)
	case "department":
		_, err = s.departments.Get(ctx, id)
	case "event":
		_, err = s.events.FindByID(ctx, id)
	}
	if err != nil {
		return nil, notFound(err, what+" not found")
	}
	return &id, nil
}

func (s *AdminService) ListCoordinators(ctx context.Context, query string) ([]models.User, error) {
	return s.users.List(ctx, models.UserFilter{Roles: coordinatorRoles, Query: query})
}

// ListUsers filters by role when one is given.
func (s *AdminService) ListUsers(ctx context.Context, role models.Role, query string) ([]models.User, error) {
	f := models.UserFilter{Query: query}
	if role != "" {
		if !role.Valid() {
			return nil, ValidationError("invalid role")
		}
		f.Roles = []models.Role{role}
	}
	return s.users.List(ctx, f)
}

// DeactivateUser is the admin "delete": the account stays for its history
// but can no longer log in.
func (s *AdminService) DeactivateUser(ctx context.Context, actorID, userID primitive.ObjectID) error {
	if actorID == userID {
		return ValidationError("you cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return notFound(err, "user not found")
	}
	s.log.Infow("user deactivated", "user_id", userID.Hex(), "by", actorID.Hex())
	return nil
}

func (s *AdminService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var (
		st  models.DashboardStats
		err error
	)
	if st.TotalEvents, err = s.events.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalParticipants, err = s.regs.CountConfirmed(ctx); err != nil {
		return nil, err
	}
	if st.TotalInstitutes, err = s.institutes.Count(ctx); err != nil {
		return nil, err
	}
	if st.TotalDepartments, err = s.departments.Count(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}

// AuthorizeEventAccess decides whether a caller may see an event's sign-ups.
// Admins see everything; coordinators only events inside their scope.
func (s *AdminService) AuthorizeEventAccess(ctx context.Context, userID primitive.ObjectID, role models.Role, eventID primitive.ObjectID) error {
	if role == models.RoleAdmin {
		return nil
	}
	if !role.IsCoordinator() {
		return AuthorizationError("you do not have access to this event")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, "user not found")
	}
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return notFound(err, "event not found")
	}

	allowed := false
	switch role {
	case models.RoleEventCoordinator:
		allowed = u.EventID != nil && *u.EventID == event.ID
	case models.RoleDepartmentCoordinator:
		allowed = u.DepartmentID != nil && event.DepartmentID != nil && *u.DepartmentID == *event.DepartmentID
	case models.RoleInstituteCoordinator:
		if u.InstituteID != nil && event.DepartmentID != nil {
			dept, err := s.departments.Get(ctx, *event.DepartmentID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			allowed = dept != nil && dept.InstituteID == *u.InstituteID
		}
	}
	if !allowed {
		return AuthorizationError("this event is outside your scope")
	}
	return nil
}
