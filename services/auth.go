package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

// PasswordHasher abstracts the hashing scheme so tests can use a cheap cost.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

const tokenIssuer = "frolic"

// Claims are carried by every bearer token. Subject is the user id hex.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject as an ObjectID.
func (c *Claims) UserID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(u *models.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role:  u.Role,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.Hex(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns its claims, or an AuthError for anything
// missing, malformed, expired or signed with another key.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, AuthError("missing token")
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !tok.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, AuthError("token expired")
		}
		return nil, AuthError("invalid token")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, AuthError("invalid token subject")
	}
	return claims, nil
}

type RegisterInput struct {
	FullName string      `json:"fullName" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Phone    string      `json:"phone" validate:"required"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role"`

	// coordinator scope, set by admins only
	InstituteID  *primitive.ObjectID `json:"-"`
	DepartmentID *primitive.ObjectID `json:"-"`
	EventID      *primitive.ObjectID `json:"-"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens *TokenIssuer
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens *TokenIssuer, hasher PasswordHasher, log *zap.SugaredLogger) *AuthService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: bcrypt.DefaultCost}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log, now: time.Now}
}

func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// Register is public self-registration. Only Student accounts can be created
// this way; an empty role means Student.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	if !in.Role.Valid() {
		return nil, ValidationError("invalid role")
	}
	if in.Role != models.RoleStudent {
		return nil, AuthorizationError("only students can self-register")
	}
	in.InstituteID, in.DepartmentID, in.EventID = nil, nil, nil

	u, err := s.createUser(ctx, in, false)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// CreateAccount creates a user with any role; used by admins for coordinators.
func (s *AuthService) CreateAccount(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() {
		return nil, ValidationError("invalid role")
	}
	return s.createUser(ctx, in, true)
}

// EnsureAccount creates the account unless the email is already taken, in
// which case the existing user is returned with created=false.
func (s *AuthService) EnsureAccount(ctx context.Context, in RegisterInput) (*models.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}
	u, err := s.CreateAccount(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, verified bool) (*models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ConflictError("email already registered")
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	u := &models.User{
		ID:           primitive.NewObjectID(),
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		Password:     hash,
		Role:         in.Role,
		IsVerified:   verified,
		IsActive:     true,
		InstituteID:  in.InstituteID,
		DepartmentID: in.DepartmentID,
		EventID:      in.EventID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ConflictError("email already registered")
		}
		return nil, err
	}
	s.log.Infow("user created", "user_id", u.ID.Hex(), "role", u.Role)
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ValidationError("email and password are required")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, AuthError("invalid email or password")
		}
		return nil, err
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, AuthError("invalid email or password")
	}
	if !u.IsActive {
		return nil, AuthError("account is deactivated")
	}
	return s.issue(u)
}

// Profile loads the user behind a verified token.
func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, AuthError("user no longer exists")
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, AuthError("account is deactivated")
	}
	return u, nil
}

// Authenticate resolves a bearer token to the stored user. The role in the
// token is ignored; the stored one is authoritative.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, AuthError("invalid token subject")
	}
	return s.Profile(ctx, id)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	upd.FullName = strings.TrimSpace(upd.FullName)
	upd.Phone = strings.TrimSpace(upd.Phone)
	if upd.Empty() {
		return nil, ValidationError("no fields to update")
	}
	u, err := s.users.Update(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
