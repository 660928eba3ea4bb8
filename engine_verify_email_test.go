package stepauth

import (
	"context"
	"testing"

	"github.com/stepauth/stepauth/otp"
)

func TestVerifyEmailUnknownAccount(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	outcome, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeUserDoesNotExist {
		t.Fatalf("expected OutcomeUserDoesNotExist, got %v", outcome)
	}
}

func TestVerifyEmailAlreadyConfirmed(t *testing.T) {
	engine, store, dispatcher := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password", func(a *Account) {
		a.EmailConfirmed = true
	})

	outcome, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeEmailVerified {
		t.Fatalf("expected OutcomeEmailVerified, got %v", outcome)
	}
	if dispatcher.count() != 0 {
		t.Fatal("a confirmed address must not receive another challenge")
	}
}

func TestVerifyEmailIssuesChallenge(t *testing.T) {
	engine, store, dispatcher := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")

	outcome, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeVerificationCodeSent {
		t.Fatalf("expected OutcomeVerificationCodeSent, got %v", outcome)
	}

	ch := dispatcher.last(t)
	if ch.Purpose != otp.PurposeVerifyEmail {
		t.Fatalf("expected verify-email purpose, got %q", ch.Purpose)
	}
}

func TestVerifyEmailInvalidCode(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")

	if _, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane"}); err != nil {
		t.Fatalf("challenge request failed: %v", err)
	}

	outcome, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane", Code: "000000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeInvalidVerificationCode {
		t.Fatalf("expected OutcomeInvalidVerificationCode, got %v", outcome)
	}

	account, _ := store.FindByUsername(context.Background(), "jane")
	if account.EmailConfirmed {
		t.Fatal("failed verification must not confirm the address")
	}
}

func TestVerifyEmailSuccessAndIdempotency(t *testing.T) {
	engine, store, dispatcher := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")

	if _, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane"}); err != nil {
		t.Fatalf("challenge request failed: %v", err)
	}
	code := dispatcher.last(t).Code

	outcome, err := engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane", Code: code})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeEmailVerified {
		t.Fatalf("expected OutcomeEmailVerified, got %v", outcome)
	}

	account, err := store.FindByUsername(context.Background(), "jane")
	if err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if !account.EmailConfirmed {
		t.Fatal("confirmation must persist")
	}

	// Re-running the flow reports success without a new challenge.
	sent := dispatcher.count()
	outcome, err = engine.VerifyEmail(context.Background(), VerifyEmailRequest{Username: "jane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeEmailVerified {
		t.Fatalf("expected OutcomeEmailVerified, got %v", outcome)
	}
	if dispatcher.count() != sent {
		t.Fatal("idempotent re-run must not dispatch a challenge")
	}
}
