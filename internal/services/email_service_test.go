package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/blogsphere/backend/internal/models"
)

func TestEmailAddVerifyAndPromote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	emails := NewEmailService(f.store, f.otp)
	alice := f.user(t, "alice", models.VisibilityPublic)
	f.user(t, "bob", models.VisibilityPublic)

	if _, err := emails.Add(ctx, alice.ID, "bob@example.com"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Add of another user's address = %v, want ErrEmailTaken", err)
	}

	added, err := emails.Add(ctx, alice.ID, "Alice.Work@Example.com")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Email != "alice.work@example.com" || added.Verified {
		t.Fatalf("added = %+v", added)
	}
	if _, err := emails.SetPrimary(ctx, alice.ID, added.ID); !errors.Is(err, ErrUnverifiedEmail) {
		t.Fatalf("SetPrimary of an unverified address = %v, want ErrUnverifiedEmail", err)
	}

	code := f.mailer.LastCode(t, added.Email)
	outcome, err := emails.Confirm(ctx, alice.ID, added.Email, code)
	if err != nil || outcome != models.OTPVerified {
		t.Fatalf("Confirm = %q, %v", outcome, err)
	}

	primary, err := emails.SetPrimary(ctx, alice.ID, added.ID)
	if err != nil || primary != added.Email {
		t.Fatalf("SetPrimary = %q, %v", primary, err)
	}
	settings, err := emails.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if settings.Primary != added.Email {
		t.Fatalf("primary = %q, want %q", settings.Primary, added.Email)
	}
	if err := emails.Delete(ctx, alice.ID, added.ID); !errors.Is(err, ErrPrimaryEmail) {
		t.Fatalf("Delete of the primary = %v, want ErrPrimaryEmail", err)
	}
}

func TestEmailAddRollsBackOnMailFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	emails := NewEmailService(f.store, f.otp)
	alice := f.user(t, "alice", models.VisibilityPublic)
	f.mailer.Err = errors.New("smtp down")

	if _, err := emails.Add(ctx, alice.ID, "extra@example.com"); !errors.Is(err, ErrMailDispatch) {
		t.Fatalf("Add = %v, want ErrMailDispatch", err)
	}
	settings, err := emails.List(ctx, alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(settings.Additional) != 0 {
		t.Fatalf("additional = %+v, want none", settings.Additional)
	}
}

func TestEmailSendOTPOnlyToOwnAddresses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	emails := NewEmailService(f.store, f.otp)
	alice := f.user(t, "alice", models.VisibilityPublic)

	target, err := emails.SendOTP(ctx, alice.ID, nil, "")
	if err != nil || target != alice.Email {
		t.Fatalf("SendOTP to primary = %q, %v", target, err)
	}
	if _, err := emails.SendOTP(ctx, alice.ID, nil, "stranger@example.com"); !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("SendOTP to a foreign address = %v, want ErrEmailNotFound", err)
	}
}
