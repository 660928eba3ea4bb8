package stepauth

import (
	"context"
	"testing"
)

func TestChangePasswordUnknownAccount(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.ChangePassword(context.Background(), ChangePasswordRequest{
		Username:        "ghost",
		CurrentPassword: "anything at all",
		NewPassword:     "new password here",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeInvalidUsernamePassword {
		t.Fatalf("expected OutcomeInvalidUsernamePassword, got %v", result.Outcome)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "current password")

	result, err := engine.ChangePassword(context.Background(), ChangePasswordRequest{
		Username:        "jane",
		CurrentPassword: "not the password",
		NewPassword:     "new password here",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeInvalidPassword {
		t.Fatalf("expected OutcomeInvalidPassword, got %v", result.Outcome)
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "current password")

	result, err := engine.ChangePassword(context.Background(), ChangePasswordRequest{
		Username:        "jane",
		CurrentPassword: "current password",
		NewPassword:     "brand new password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomePasswordChanged {
		t.Fatalf("expected OutcomePasswordChanged, got %v", result.Outcome)
	}
	if result.Profile == nil || result.Profile.Token == "" {
		t.Fatal("success must carry a profile with a token")
	}

	account, err := store.FindByUsername(context.Background(), "jane")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	match, err := engine.passwordHash.Verify("brand new password", account.PasswordHash)
	if err != nil || !match {
		t.Fatalf("stored hash must verify the new password (match=%v err=%v)", match, err)
	}
	oldMatch, _ := engine.passwordHash.Verify("current password", account.PasswordHash)
	if oldMatch {
		t.Fatal("old password must stop verifying")
	}
	if account.ModifiedBy != "jane" {
		t.Fatalf("expected modification stamp, got %q", account.ModifiedBy)
	}
}

func TestChangePasswordWeakNewPassword(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "current password")

	result, err := engine.ChangePassword(context.Background(), ChangePasswordRequest{
		Username:        "jane",
		CurrentPassword: "current password",
		NewPassword:     "short",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeSomethingWentWrong {
		t.Fatalf("expected OutcomeSomethingWentWrong, got %v", result.Outcome)
	}
}

func TestChangePasswordReadbackMismatch(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "current password")
	store.dropPasswordUpdates = true

	result, err := engine.ChangePassword(context.Background(), ChangePasswordRequest{
		Username:        "jane",
		CurrentPassword: "current password",
		NewPassword:     "brand new password",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeInvalidPassword {
		t.Fatalf("a silently dropped write must fail the read-back check, got %v", result.Outcome)
	}
	if result.Profile != nil {
		t.Fatal("no token may be issued when the read-back check fails")
	}
}
