package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/frolic-api/models"
	services "github.com/phillip/frolic-api/services"
)

func TestRegisterCreatesStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, services.RegisterInput{
		FullName: "  Asha Rao ",
		Email:    " Asha@Example.COM ",
		Phone:    "9876543210",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	u := res.User
	if u.Email != "asha@example.com" || u.FullName != "Asha Rao" {
		t.Fatalf("user not normalised: %+v", u)
	}
	if u.Role != models.RoleStudent || !u.IsActive || u.IsVerified {
		t.Fatalf("unexpected flags: role=%s active=%v verified=%v", u.Role, u.IsActive, u.IsVerified)
	}
	if u.Password == "secret1" {
		t.Fatal("password stored in clear text")
	}

	claims, err := f.auth.Tokens().Verify(res.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != u.ID.Hex() || claims.Role != models.RoleStudent {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := services.RegisterInput{FullName: "A", Email: "a@x.io", Phone: "1", Password: "secret1"}

	cases := map[string]func(*services.RegisterInput){
		"missing name":   func(in *services.RegisterInput) { in.FullName = "  " },
		"bad email":      func(in *services.RegisterInput) { in.Email = "not-an-email" },
		"short password": func(in *services.RegisterInput) { in.Password = "12345" },
		"missing phone":  func(in *services.RegisterInput) { in.Phone = "" },
		"unknown role":   func(in *services.RegisterInput) { in.Role = "Dean" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := f.auth.Register(ctx, in)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestRegisterOnlyStudents(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Register(context.Background(), services.RegisterInput{
		FullName: "Sneaky", Email: "s@x.io", Phone: "1", Password: "secret1", Role: models.RoleAdmin,
	})
	assertKind(t, err, services.KindAuthorization)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.student(t, "dup@x.io")

	_, err := f.auth.Register(context.Background(), services.RegisterInput{
		FullName: "Other", Email: "DUP@x.io", Phone: "1", Password: "secret1",
	})
	assertKind(t, err, services.KindConflict)
	if !errors.Is(err, services.ErrConflict) {
		t.Fatal("errors.Is should match the conflict sentinel")
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.student(t, "login@x.io")

	res, err := f.auth.Login(ctx, "LOGIN@x.io", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.User.ID != u.ID {
		t.Fatal("logged in as the wrong user")
	}

	_, err = f.auth.Login(ctx, "login@x.io", "wrong-pass")
	assertKind(t, err, services.KindAuth)

	_, err = f.auth.Login(ctx, "nobody@x.io", "secret1")
	assertKind(t, err, services.KindAuth)

	_, err = f.auth.Login(ctx, "", "")
	assertKind(t, err, services.KindValidation)

	if err := f.users.SetActive(ctx, u.ID, false); err != nil {
		t.Fatal(err)
	}
	_, err = f.auth.Login(ctx, "login@x.io", "secret1")
	assertKind(t, err, services.KindAuth)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.student(t, "p@x.io")

	got, err := f.auth.Profile(ctx, u.ID)
	if err != nil || got.Email != "p@x.io" {
		t.Fatalf("Profile = %+v, %v", got, err)
	}

	_, err = f.auth.Profile(ctx, primitive.NewObjectID())
	assertKind(t, err, services.KindAuth)

	updated, err := f.auth.UpdateProfile(ctx, u.ID, models.UserUpdate{FullName: " New Name "})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.FullName != "New Name" || updated.Phone != u.Phone {
		t.Fatalf("update applied wrong fields: %+v", updated)
	}

	_, err = f.auth.UpdateProfile(ctx, u.ID, models.UserUpdate{FullName: "   "})
	assertKind(t, err, services.KindValidation)
}

func TestEnsureAccountNeverOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := services.RegisterInput{
		FullName: "Administrator", Email: "admin@example.com", Phone: "9999999999",
		Password: "Admin123!", Role: models.RoleAdmin,
	}

	first, created, err := f.auth.EnsureAccount(ctx, in)
	if err != nil || !created {
		t.Fatalf("first EnsureAccount: created=%v err=%v", created, err)
	}

	in.Password = "changed-password"
	second, created, err := f.auth.EnsureAccount(ctx, in)
	if err != nil || created {
		t.Fatalf("second EnsureAccount: created=%v err=%v", created, err)
	}
	if second.ID != first.ID || second.Password != first.Password {
		t.Fatal("existing admin was modified")
	}
	if _, err := f.auth.Login(ctx, "admin@example.com", "Admin123!"); err != nil {
		t.Fatalf("original password should still work: %v", err)
	}
}

func TestTokenVerify(t *testing.T) {
	u := &models.User{ID: primitive.NewObjectID(), Email: "t@x.io", Role: models.RoleStudent}

	issuer := services.NewTokenIssuer("secret-a", time.Hour)
	token, err := issuer.Issue(u)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := services.NewTokenIssuer("secret-b", time.Hour).Verify(token); services.KindOf(err) != services.KindAuth {
		t.Fatalf("foreign signature accepted: %v", err)
	}
	if _, err := issuer.Verify(""); services.MessageOf(err) != "missing token" {
		t.Fatalf("empty token: %v", err)
	}

	expired, err := services.NewTokenIssuer("secret-a", -time.Minute).Issue(u)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Verify(expired); services.MessageOf(err) != "token expired" {
		t.Fatalf("expired token: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Register(ctx, services.RegisterInput{
		FullName: "Auth Student", Email: "a@x.io", Phone: "9876543210", Password: "secret1",
	})
	if err != nil {
		t.Fatal(err)
	}

	u, err := f.auth.Authenticate(ctx, res.Token)
	if err != nil || u.ID != res.User.ID || u.Role != models.RoleStudent {
		t.Fatalf("Authenticate = %+v, %v", u, err)
	}

	if _, err := f.auth.Authenticate(ctx, "not-a-jwt"); !errors.Is(err, services.ErrAuth) {
		t.Fatalf("garbage token: %v", err)
	}

	if err := f.users.SetActive(ctx, res.User.ID, false); err != nil {
		t.Fatal(err)
	}
	_, err = f.auth.Authenticate(ctx, res.Token)
	if !errors.Is(err, services.ErrAuth) || services.MessageOf(err) != "account is deactivated" {
		t.Fatalf("deactivated account: %v", err)
	}
}
