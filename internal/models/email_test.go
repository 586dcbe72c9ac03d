package models

import (
	"testing"
	"time"
)

func newOTP(t *testing.T, code string, expires time.Time, max int) *EmailOTP {
	t.Helper()
	otp := &EmailOTP{ExpiresAt: expires, MaxAttempts: max}
	if err := otp.SetCode(code); err != nil {
		t.Fatalf("SetCode: %v", err)
	}
	return otp
}

func TestEmailOTPCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		attempts int
		expires  time.Time
		code     string
		want     OTPOutcome
		verified bool
	}{
		{"correct code", 0, now.Add(time.Minute), "123456", OTPVerified, true},
		{"wrong code", 0, now.Add(time.Minute), "654321", OTPInvalid, false},
		{"expired", 0, now.Add(-time.Second), "123456", OTPExpired, false},
		{"last allowed attempt", 4, now.Add(time.Minute), "123456", OTPVerified, true},
		{"budget spent", 5, now.Add(time.Minute), "123456", OTPMaxAttemptsExceeded, false},
		{"budget spent beats expiry", 5, now.Add(-time.Second), "123456", OTPMaxAttemptsExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otp := newOTP(t, "123456", tt.expires, 5)
			otp.Attempts = tt.attempts

			if got := otp.Check(tt.code, now); got != tt.want {
				t.Fatalf("Check = %q, want %q", got, tt.want)
			}
			if otp.Attempts != tt.attempts+1 {
				t.Fatalf("Attempts = %d, want %d", otp.Attempts, tt.attempts+1)
			}
			if otp.Verified != tt.verified {
				t.Fatalf("Verified = %v, want %v", otp.Verified, tt.verified)
			}
		})
	}
}

func TestEmailOTPStoresOnlyHash(t *testing.T) {
	otp := newOTP(t, "123456", time.Now().Add(time.Minute), 5)
	if otp.CodeHash == "" || otp.CodeHash == "123456" {
		t.Fatalf("CodeHash = %q, want a bcrypt hash", otp.CodeHash)
	}
}
