package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"carpool/internal/models"
	"carpool/internal/utils"
)

func newAuthFixture(t *testing.T) (*fakeUserRepo, AuthService) {
	t.Helper()
	users := newFakeUserRepo()
	service := NewAuthService(users, "test-secret", time.Hour, 4, testLogger(t))
	return users, service
}

func registerRequest(username, email string) *RegisterRequest {
	return &RegisterRequest{
		Name:     "Test Person",
		Nickname: "tester",
		Username: username,
		Password: "secret-pass",
		Role:     models.RoleRider,
		Gender:   models.GenderFemale,
		Contact:  models.Contact{Email: email, Phone: "9876543210"},
	}
}

func TestRegister_HashesPasswordAndStartsOffline(t *testing.T) {
	users, service := newAuthFixture(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerRequest("alice", "alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}
	if user.Password == "secret-pass" {
		t.Fatalf("password must not be stored in the clear")
	}
	if user.RideStatus != models.RideStatusOffline {
		t.Fatalf("new users start OFFLINE, got %s", user.RideStatus)
	}
	if _, err := users.GetByID(ctx, user.ID); err != nil {
		t.Fatalf("expected user persisted: %v", err)
	}
}

func TestRegister_RejectsDuplicateEmailAndUsername(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("alice", "alice@example.com")); err != nil {
		t.Fatal(err)
	}

	_, err := service.Register(ctx, registerRequest("bob", "alice@example.com"))
	expectPrecondition(t, err, "EMAIL_IN_USE")

	_, err = service.Register(ctx, registerRequest("alice", "other@example.com"))
	expectPrecondition(t, err, "USERNAME_IN_USE")
}

func TestLogin_ReturnsValidTokenForCorrectCredentials(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, registerRequest("alice", "alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	token, user, err := service.Login(ctx, "alice", "secret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != registered.ID {
		t.Fatalf("login returned the wrong user")
	}

	claims, userID, err := utils.ValidateToken(token, "test-secret")
	if err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
	if userID != registered.ID || claims.Username != "alice" {
		t.Fatalf("token claims do not match the logged-in user")
	}
}

func TestLogin_WrongPasswordAndUnknownUserAreIndistinguishable(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("alice", "alice@example.com")); err != nil {
		t.Fatal(err)
	}

	_, _, errWrong := service.Login(ctx, "alice", "not-the-password")
	_, _, errUnknown := service.Login(ctx, "nobody", "secret-pass")

	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("both failures must be ErrInvalidCredentials, got %v and %v", errWrong, errUnknown)
	}
}

func TestChangePassword_OldPasswordStopsWorking(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerRequest("alice", "alice@example.com"))
	if err != nil {
		t.Fatal(err)
	}

	if err := service.ChangePassword(ctx, user.ID, "another-pass"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := service.Login(ctx, "alice", "secret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := service.Login(ctx, "alice", "another-pass"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}
