package storage

import (
	"context"
	"testing"

	"github.com/aleksanderujek/oro/internal/model"
)

func TestProfileMissingReturnsNil(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	profile, err := store.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if profile != nil {
		t.Errorf("Expected nil for missing profile, got %+v", profile)
	}
}

func TestProfileSaveAndUpsert(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	profile := &model.Profile{
		UserID:         "user-1",
		Timezone:       "Europe/Warsaw",
		DefaultAccount: model.AccountCard,
	}
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}

	got, err := store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if got.Timezone != "Europe/Warsaw" {
		t.Errorf("Expected timezone Europe/Warsaw, got %s", got.Timezone)
	}
	if got.DefaultAccount != model.AccountCard {
		t.Errorf("Expected default account card, got %s", got.DefaultAccount)
	}

	// Second save for the same user must update in place.
	profile.DefaultAccount = model.AccountCash
	profile.UpdatedAt = got.UpdatedAt.Add(1)
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("Failed to upsert profile: %v", err)
	}

	got, err = store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("Failed to get profile: %v", err)
	}
	if got.DefaultAccount != model.AccountCash {
		t.Errorf("Upsert did not update default account: %s", got.DefaultAccount)
	}
}

func TestProfileRejectsUnknownAccount(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	profile := &model.Profile{
		UserID:         "user-1",
		DefaultAccount: model.AccountTag("crypto"),
	}
	if err := store.SaveProfile(context.Background(), profile); err == nil {
		t.Error("Expected validation error for unknown account tag")
	}
}
