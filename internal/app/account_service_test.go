package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-platform/internal/app"
	"quiz-platform/internal/auth"
	"quiz-platform/internal/domain"
	"quiz-platform/internal/infra/memory"
)

func registration(login, telegram string) app.RegisterInput {
	return app.RegisterInput{
		FirstName:   "Alice",
		LastName:    "Smith",
		DirectionID: "d1",
		Phone:       "+7 900 000 00 00",
		Telegram:    telegram,
		Login:       login,
		Password:    "secret1",
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	accounts := newAccountService(backend, newClock())

	account, err := accounts.Register(ctx, registration("alice", "@Alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.IsAdmin || account.PasswordHash == "secret1" || account.Telegram != "alice" {
		t.Fatalf("unexpected account %+v", account)
	}

	if _, err := accounts.Register(ctx, registration("alice", "@other")); !errors.Is(err, domain.ErrLoginTaken) {
		t.Fatalf("expected ErrLoginTaken, got %v", err)
	}
	if _, err := accounts.Register(ctx, registration("bob", "@alice")); !errors.Is(err, domain.ErrTelegramTaken) {
		t.Fatalf("expected ErrTelegramTaken, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	accounts := newAccountService(backend, newClock())

	short := registration("alice", "@alice")
	short.Password = "12345"
	if _, err := accounts.Register(ctx, short); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
	long := registration("alice", "@alice")
	long.Password = strings.Repeat("x", 80)
	if _, err := accounts.Register(ctx, long); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for password over 72 bytes, got %v", err)
	}
	multibyte := registration("alice", "@alice")
	multibyte.Password = strings.Repeat("я", 40)
	if _, err := accounts.Register(ctx, multibyte); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for 80-byte cyrillic password, got %v", err)
	}
	blank := registration("alice", "@")
	if _, err := accounts.Register(ctx, blank); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty telegram, got %v", err)
	}
	unknown := registration("alice", "@alice")
	unknown.DirectionID = "nope"
	if _, err := accounts.Register(ctx, unknown); !errors.Is(err, domain.ErrUnknownDirection) {
		t.Fatalf("expected ErrUnknownDirection, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	accounts := newAccountService(backend, newClock())

	account, err := accounts.Register(ctx, registration("alice", "@alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := accounts.GrantAdmin(ctx, "alice", true); err != nil {
		t.Fatalf("grant admin: %v", err)
	}

	token, view, err := accounts.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if view.ID != account.ID || view.DirectionName != "Backend" || !view.IsAdmin {
		t.Fatalf("unexpected view %+v", view)
	}
	id, err := auth.NewTokens("test-secret", time.Hour).Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate issued token: %v", err)
	}
	if id.AccountID != account.ID || !id.IsAdmin {
		t.Fatalf("unexpected identity %+v", id)
	}

	if _, _, err := accounts.Login(ctx, "alice", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := accounts.Login(ctx, "nobody", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown login, got %v", err)
	}
	if err := accounts.GrantAdmin(ctx, "nobody", true); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAdminAccountManagement(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewDocumentStore()
	seedDirection(t, backend, "d1", "Backend")
	seedDirection(t, backend, "d2", "Frontend")
	accounts := newAccountService(backend, newClock())

	account, err := accounts.Register(ctx, registration("alice", "@alice"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	direction := "d2"
	name := "Alicia"
	view, err := accounts.UpdateAccount(ctx, account.ID, app.AccountPatch{FirstName: &name, DirectionID: &direction})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if view.FirstName != "Alicia" || view.DirectionID != "d2" || view.DirectionName != "Frontend" {
		t.Fatalf("unexpected updated view %+v", view)
	}

	missing := "d9"
	if _, err := accounts.UpdateAccount(ctx, account.ID, app.AccountPatch{DirectionID: &missing}); !errors.Is(err, domain.ErrUnknownDirection) {
		t.Fatalf("expected ErrUnknownDirection, got %v", err)
	}
	if _, err := accounts.UpdateAccount(ctx, "ghost", app.AccountPatch{FirstName: &name}); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	list, err := accounts.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Login != "alice" {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := accounts.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := accounts.Profile(ctx, account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound after delete, got %v", err)
	}
	if err := accounts.DeleteAccount(ctx, account.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound on second delete, got %v", err)
	}
}
