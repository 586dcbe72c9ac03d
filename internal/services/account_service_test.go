package services

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
)

type fakeVerifier map[string]*auth.Token

func (v fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if tok, ok := v[idToken]; ok {
		return tok, nil
	}
	return nil, errors.New("invalid id token")
}

func newAccounts(f *fixture, verifier TokenVerifier) *AccountService {
	return NewAccountService(f.store, f.otp, f.cache, verifier, AccountConfig{JWTSecret: "test-secret"})
}

func TestSignupLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := newAccounts(f, nil)

	req := models.SignupRequest{Username: "alice", Email: "Alice@Example.com", Password1: "longpassword", Password2: "longpassword"}
	user, token, err := accounts.Signup(ctx, req)
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Email != "alice@example.com" || user.Profile == nil || user.Profile.Visibility != models.VisibilityPublic {
		t.Fatalf("Signup user = %+v", user)
	}

	claims, err := accounts.Authenticate(ctx, token)
	if err != nil || claims.UserID != user.ID {
		t.Fatalf("Authenticate = %+v, %v", claims, err)
	}

	if _, _, err := accounts.Signup(ctx, req); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("second Signup = %v, want ErrUsernameTaken", err)
	}
	req.Username = "alice2"
	if _, _, err := accounts.Signup(ctx, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("Signup with a used email = %v, want ErrEmailTaken", err)
	}

	for _, login := range []string{"alice", "alice@example.com"} {
		if _, _, err := accounts.Login(ctx, models.LoginRequest{Login: login, Password: "longpassword"}); err != nil {
			t.Fatalf("Login(%s): %v", login, err)
		}
	}
	if _, _, err := accounts.Login(ctx, models.LoginRequest{Login: "alice", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login with a wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := accounts.Authenticate(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Authenticate(garbage) = %v, want ErrInvalidToken", err)
	}
}

func TestFirebaseLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.user(t, "bob", models.VisibilityPublic)
	accounts := newAccounts(f, fakeVerifier{
		"new":      {UID: "uid-new", Claims: map[string]interface{}{"email": "newcomer@example.com", "name": "New Comer"}},
		"existing": {UID: "uid-bob", Claims: map[string]interface{}{"email": existing.Email}},
	})

	user, _, err := accounts.FirebaseLogin(ctx, "new")
	if err != nil {
		t.Fatalf("FirebaseLogin: %v", err)
	}
	if user.Username != "newcomer" || user.Profile.Name != "New Comer" {
		t.Fatalf("created user = %+v", user)
	}
	again, _, err := accounts.FirebaseLogin(ctx, "new")
	if err != nil || again.ID != user.ID {
		t.Fatalf("second FirebaseLogin = %+v, %v, want the same user", again, err)
	}

	linked, _, err := accounts.FirebaseLogin(ctx, "existing")
	if err != nil || linked.ID != existing.ID {
		t.Fatalf("FirebaseLogin by email = %+v, %v, want bob", linked, err)
	}
	claims, err := accounts.Authenticate(ctx, "existing")
	if err != nil || claims.UserID != existing.ID {
		t.Fatalf("Authenticate with an id token = %+v, %v", claims, err)
	}
	if _, _, err := accounts.FirebaseLogin(ctx, "forged"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("FirebaseLogin(forged) = %v, want ErrInvalidToken", err)
	}
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := newAccounts(f, nil)
	alice := f.user(t, "alice", models.VisibilityPublic)

	address, err := accounts.RequestPasswordReset(ctx, "alice")
	if err != nil || address != alice.Email {
		t.Fatalf("RequestPasswordReset = %q, %v", address, err)
	}
	code := f.mailer.LastCode(t, alice.Email)

	req := models.PasswordResetConfirmRequest{Username: "alice", Code: "1", NewPassword1: "brandnewpass", NewPassword2: "brandnewpass"}
	if outcome, err := accounts.ConfirmPasswordReset(ctx, req); err != nil || outcome != models.OTPInvalid {
		t.Fatalf("ConfirmPasswordReset with a wrong code = %q, %v", outcome, err)
	}
	req.Code = code
	if outcome, err := accounts.ConfirmPasswordReset(ctx, req); err != nil || outcome != models.OTPVerified {
		t.Fatalf("ConfirmPasswordReset = %q, %v", outcome, err)
	}
	if _, _, err := accounts.Login(ctx, models.LoginRequest{Login: "alice", Password: "brandnewpass"}); err != nil {
		t.Fatalf("Login with the new password: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	accounts := newAccounts(f, nil)
	alice := f.user(t, "alice", models.VisibilityPublic)
	bob := f.user(t, "bob", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, f.store, alice.ID, "mine", 0)
	if _, err := f.follows.Toggle(ctx, bob.ID, alice.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := f.likes.Toggle(ctx, bob.ID, blog.ID); err != nil {
		t.Fatalf("Like: %v", err)
	}

	bad := models.DeleteAccountRequest{Password: testutil.Password, Confirmation: "delete"}
	if err := accounts.Delete(ctx, alice.ID, bad); !errors.Is(err, ErrBadConfirmation) {
		t.Fatalf("Delete without confirmation = %v, want ErrBadConfirmation", err)
	}
	wrong := models.DeleteAccountRequest{Password: "nope", Confirmation: DeleteConfirmation}
	if err := accounts.Delete(ctx, alice.ID, wrong); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("Delete with a wrong password = %v, want ErrWrongPassword", err)
	}

	ok := models.DeleteAccountRequest{Password: testutil.Password, Confirmation: DeleteConfirmation}
	if err := accounts.Delete(ctx, alice.ID, ok); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.store.Users.GetUserByID(ctx, alice.ID); err == nil {
		t.Fatalf("user still exists")
	}
	if _, err := f.store.Blogs.GetBlogByID(ctx, blog.ID); err == nil {
		t.Fatalf("blog still exists")
	}
	counts, err := f.follows.Counts(ctx, bob.ID)
	if err != nil || counts.Following != 0 {
		t.Fatalf("bob counts = %+v, %v, want no following", counts, err)
	}
}
