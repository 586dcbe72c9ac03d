package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/anonto42/blogsphere/backend/internal/models"
)

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode(6)
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		n, err := strconv.Atoi(code)
		if err != nil {
			t.Fatalf("code %q is not numeric", code)
		}
		if n < 100000 || n > 999999 {
			t.Fatalf("code %d outside [100000, 999999]", n)
		}
	}
}

func TestGenerateCodeRejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1, 19} {
		if _, err := GenerateCode(n); err == nil {
			t.Fatalf("GenerateCode(%d) succeeded, want error", n)
		}
	}
}

func TestOTPVerifyCountsEveryAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)

	otp, err := f.otp.Issue(ctx, alice.ID, alice.Email)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	code := f.mailer.LastCode(t, alice.Email)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i <= models.DefaultOTPMaxAttempts; i++ {
		outcome, err := f.otp.Verify(ctx, alice.ID, alice.Email, wrong)
		if err != nil {
			t.Fatalf("attempt %d: Verify: %v", i, err)
		}
		if outcome != models.OTPInvalid {
			t.Fatalf("attempt %d: outcome = %q, want %q", i, outcome, models.OTPInvalid)
		}
		var stored models.EmailOTP
		if err := f.store.DB().First(&stored, "id = ?", otp.ID).Error; err != nil {
			t.Fatalf("load otp: %v", err)
		}
		if stored.Attempts != i {
			t.Fatalf("after attempt %d: Attempts = %d", i, stored.Attempts)
		}
	}

	outcome, err := f.otp.Verify(ctx, alice.ID, alice.Email, code)
	if err != nil {
		t.Fatalf("final Verify: %v", err)
	}
	if outcome != models.OTPMaxAttemptsExceeded {
		t.Fatalf("outcome = %q, want %q", outcome, models.OTPMaxAttemptsExceeded)
	}
}

func TestOTPVerifySuccessAndExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)

	if _, err := f.otp.Issue(ctx, alice.ID, alice.Email); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	code := f.mailer.LastCode(t, alice.Email)

	f.otp.now = func() time.Time { return time.Now().Add(models.DefaultOTPTTL + time.Minute) }
	if outcome, err := f.otp.Verify(ctx, alice.ID, alice.Email, code); err != nil || outcome != models.OTPExpired {
		t.Fatalf("Verify after expiry = %q, %v, want %q", outcome, err, models.OTPExpired)
	}

	f.otp.now = time.Now
	if outcome, err := f.otp.Verify(ctx, alice.ID, alice.Email, code); err != nil || outcome != models.OTPVerified {
		t.Fatalf("Verify = %q, %v, want %q", outcome, err, models.OTPVerified)
	}
	if _, err := f.otp.Verify(ctx, alice.ID, alice.Email, code); !errors.Is(err, ErrNoPendingOTP) {
		t.Fatalf("Verify of a used code = %v, want ErrNoPendingOTP", err)
	}
}

func TestOTPIssueRateLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)

	for i := 0; i < 3; i++ {
		if _, err := f.otp.Issue(ctx, alice.ID, alice.Email); err != nil {
			t.Fatalf("Issue %d: %v", i+1, err)
		}
	}
	if _, err := f.otp.Issue(ctx, alice.ID, alice.Email); !errors.Is(err, ErrTooManyOTPRequests) {
		t.Fatalf("fourth Issue = %v, want ErrTooManyOTPRequests", err)
	}
	if KindOf(ErrTooManyOTPRequests) != KindRateLimit {
		t.Fatalf("rate limit error has kind %d", KindOf(ErrTooManyOTPRequests))
	}
}

func TestOTPIssueMailFailureRemovesCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice", models.VisibilityPublic)
	f.mailer.Err = errors.New("smtp down")

	if _, err := f.otp.Issue(ctx, alice.ID, alice.Email); !errors.Is(err, ErrMailDispatch) {
		t.Fatalf("Issue = %v, want ErrMailDispatch", err)
	}
	var n int64
	if err := f.store.DB().Model(&models.EmailOTP{}).Where("user_id = ?", alice.ID).Count(&n).Error; err != nil {
		t.Fatalf("count otps: %v", err)
	}
	if n != 0 {
		t.Fatalf("%d otp rows left after failed dispatch", n)
	}
}
