package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/family-meals/internal/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := []dto.RegisterRequest{
		{Username: "al", Email: "al@example.com", Password: "password123"},
		{Username: "alice", Email: "alice", Password: "password123"},
		{Username: "alice", Email: "alice@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := f.auth.Register(testCtx, &req)
		assertKind(t, err, ErrValidation)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice")

	_, err := f.auth.Register(testCtx, &dto.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "password123"})
	assertKind(t, err, ErrConflict)

	_, err = f.auth.Register(testCtx, &dto.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "password123"})
	assertKind(t, err, ErrConflict)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	user, err := f.auth.Login(testCtx, &dto.LoginRequest{Email: "alice@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != alice.ID {
		t.Errorf("Expected user %s, got %s", alice.ID, user.ID)
	}

	_, err = f.auth.Login(testCtx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assertKind(t, err, ErrUnauthenticated)

	_, err = f.auth.Login(testCtx, &dto.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assertKind(t, err, ErrUnauthenticated)
}

func TestResolveIdentity(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	fam := f.family(t, alice)

	identity, err := f.auth.ResolveIdentity(testCtx, alice.ID)
	if err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}
	if identity.Username != "alice" || len(identity.Families) != 1 {
		t.Fatalf("Unexpected identity: %+v", identity)
	}
	ref := identity.Families[0]
	if ref.ID != fam.ID || ref.Name != fam.Name || !ref.IsAdmin {
		t.Errorf("Unexpected family ref: %+v", ref)
	}

	_, err = f.auth.ResolveIdentity(testCtx, uuid.New())
	assertKind(t, err, ErrUnauthenticated)
}

func TestIssueToken(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	signed, err := f.auth.IssueToken(alice)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	token, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
		return []byte(f.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		t.Fatalf("Token did not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != alice.ID.String() || claims["email"] != alice.Email {
		t.Errorf("Unexpected claims: %v", claims)
	}
}
