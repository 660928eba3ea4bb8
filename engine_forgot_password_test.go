package stepauth

import (
	"context"
	"testing"

	"github.com/stepauth/stepauth/otp"
)

func TestForgotPasswordUnknownAccount(t *testing.T) {
	engine, _, dispatcher := newTestEngine(t)

	result, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{Username: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeInvalidUsernamePassword {
		t.Fatalf("expected OutcomeInvalidUsernamePassword, got %v", result.Outcome)
	}
	if dispatcher.count() != 0 {
		t.Fatal("unknown account must not receive a challenge")
	}
}

func TestForgotPasswordIssuesChallenge(t *testing.T) {
	engine, store, dispatcher := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "forgotten password")

	result, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{Username: "jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeVerificationCodeSent {
		t.Fatalf("expected OutcomeVerificationCodeSent, got %v", result.Outcome)
	}

	ch := dispatcher.last(t)
	if ch.Purpose != otp.PurposeForgotPassword {
		t.Fatalf("expected forgot-password purpose, got %q", ch.Purpose)
	}
	if ch.Recipient != "jane@example.com" {
		t.Fatalf("unexpected recipient %q", ch.Recipient)
	}
}

func TestForgotPasswordInvalidCode(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "forgotten password")

	if _, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{Username: "jane"}); err != nil {
		t.Fatalf("challenge request failed: %v", err)
	}

	result, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{
		Username:    "jane",
		NewPassword: "recovered password",
		Code:        "000000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeInvalidVerificationCode {
		t.Fatalf("expected OutcomeInvalidVerificationCode, got %v", result.Outcome)
	}

	account, _ := store.FindByUsername(context.Background(), "jane")
	match, _ := engine.passwordHash.Verify("forgotten password", account.PasswordHash)
	if !match {
		t.Fatal("failed recovery must not change the password")
	}
}

func TestForgotPasswordSuccess(t *testing.T) {
	engine, store, dispatcher := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "forgotten password")

	if _, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{Username: "jane"}); err != nil {
		t.Fatalf("challenge request failed: %v", err)
	}
	code := dispatcher.last(t).Code

	result, err := engine.ForgotPassword(context.Background(), ForgotPasswordRequest{
		Username:    "jane",
		NewPassword: "recovered password",
		Code:        code,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUserLoggedIn {
		t.Fatalf("expected OutcomeUserLoggedIn, got %v", result.Outcome)
	}
	if result.Profile == nil || result.Profile.Token == "" {
		t.Fatal("success must carry a profile with a token")
	}

	account, err := store.FindByUsername(context.Background(), "jane")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	match, err := engine.passwordHash.Verify("recovered password", account.PasswordHash)
	if err != nil || !match {
		t.Fatalf("stored hash must verify the new password (match=%v err=%v)", match, err)
	}
	oldMatch, _ := engine.passwordHash.Verify("forgotten password", account.PasswordHash)
	if oldMatch {
		t.Fatal("old password must stop verifying")
	}
}
