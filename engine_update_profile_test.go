package stepauth

import (
	"context"
	"strings"
	"testing"
)

func TestUpdateProfileUnknownAccount(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	result, err := engine.UpdateProfile(context.Background(), UpdateProfileRequest{Username: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUserDoesNotExist {
		t.Fatalf("expected OutcomeUserDoesNotExist, got %v", result.Outcome)
	}
}

func TestUpdateProfileKeepsHandleWhenNameUnchanged(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")

	result, err := engine.UpdateProfile(context.Background(), UpdateProfileRequest{
		Username:  "jane",
		FirstName: "Jane",
		LastName:  "Doe",
		Gender:    "nonbinary",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeProfileUpdated {
		t.Fatalf("expected OutcomeProfileUpdated, got %v", result.Outcome)
	}
	if result.Profile.Handle != "janedoe1234" {
		t.Fatalf("unchanged name must keep the handle, got %q", result.Profile.Handle)
	}

	account, _ := store.FindByUsername(context.Background(), "jane")
	if account.Gender != "nonbinary" {
		t.Fatalf("gender edit lost, got %q", account.Gender)
	}
	if account.ModifiedBy != "jane" {
		t.Fatalf("expected modification stamp, got %q", account.ModifiedBy)
	}
}

func TestUpdateProfileReallocatesHandleOnNameChange(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")

	result, err := engine.UpdateProfile(context.Background(), UpdateProfileRequest{
		Username:  "jane",
		FirstName: "Janet",
		LastName:  "Doering",
		Gender:    "female",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeProfileUpdated {
		t.Fatalf("expected OutcomeProfileUpdated, got %v", result.Outcome)
	}
	if !strings.HasPrefix(result.Profile.Handle, "janetdoering") {
		t.Fatalf("handle must follow the new name, got %q", result.Profile.Handle)
	}

	account, _ := store.FindByUsername(context.Background(), "jane")
	if account.FirstName != "Janet" || account.LastName != "Doering" {
		t.Fatalf("name edit lost, got %q %q", account.FirstName, account.LastName)
	}
}

func TestUpdateProfileHandleCollisionWithOtherAccount(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")
	seedAccount(t, engine, store, "imposter", "other password", func(a *Account) {
		a.Username = "imposter"
		a.Email = "imposter@example.com"
		a.Handle = "janedoe1234"
	})

	// jane's own handle is now also held by another account, so the
	// unchanged name must still force a fresh suffix.
	result, err := engine.UpdateProfile(context.Background(), UpdateProfileRequest{
		Username:  "jane",
		FirstName: "Jane",
		LastName:  "Doe",
		Gender:    "female",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeProfileUpdated {
		t.Fatalf("expected OutcomeProfileUpdated, got %v", result.Outcome)
	}
	if !strings.HasPrefix(result.Profile.Handle, "janedoe") {
		t.Fatalf("unexpected handle %q", result.Profile.Handle)
	}
	if result.Profile.Handle == "janedoe1234" {
		t.Fatal("colliding handle must be reallocated")
	}
}

func TestUpdateProfileHandleExhaustion(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	seedAccount(t, engine, store, "jane", "some password")
	store.handleAllInUse = true

	result, err := engine.UpdateProfile(context.Background(), UpdateProfileRequest{
		Username:  "jane",
		FirstName: "Janet",
		LastName:  "Doering",
		Gender:    "female",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeUnableToCompleteProcess {
		t.Fatalf("expected OutcomeUnableToCompleteProcess, got %v", result.Outcome)
	}
}
