package router_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/blogsphere/backend/internal/cache"
	"github.com/anonto42/blogsphere/backend/internal/handlers"
	"github.com/anonto42/blogsphere/backend/internal/models"
	"github.com/anonto42/blogsphere/backend/internal/repositories"
	"github.com/anonto42/blogsphere/backend/internal/router"
	"github.com/anonto42/blogsphere/backend/internal/services"
	"github.com/anonto42/blogsphere/backend/internal/testutil"
	"github.com/anonto42/blogsphere/backend/validators"
)

type server struct {
	e      *echo.Echo
	store  *repositories.Store
	mailer *testutil.Mailer
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{
		e:      echo.New(),
		store:  testutil.NewStore(t),
		mailer: &testutil.Mailer{},
	}
	s.e.Validator = validators.NewValidator()
	s.e.HTTPErrorHandler = handlers.ErrorHandler(s.e)
	router.SetupRoutes(s.e, router.Dependencies{
		Store:   s.store,
		Cache:   cache.NewMemory(),
		Mailer:  s.mailer,
		Account: services.AccountConfig{JWTSecret: "test-secret"},
	})
	return s
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, strings.NewReader(string(raw)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) login(t *testing.T, username string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", models.LoginRequest{Login: username, Password: testutil.Password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool                  `json:"success"`
		Data    handlers.AuthResponse `json:"data"`
	}
	decode(t, rec, &resp)
	if !resp.Success || resp.Data.Token == "" {
		t.Fatalf("login %s: no token in %s", username, rec.Body.String())
	}
	return resp.Data.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.FlashCookie {
			v, err := url.QueryUnescape(c.Value)
			if err != nil {
				t.Fatal(err)
			}
			return v
		}
	}
	t.Fatalf("no flash cookie in response")
	return ""
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)
	cases := []struct {
		method, path string
	}{
		{http.MethodPost, "/follow/1"},
		{http.MethodPost, "/like/abc"},
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/email-settings"},
		{http.MethodPost, "/blogs"},
	}
	for _, tc := range cases {
		rec := s.do(t, tc.method, tc.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: got %d, want 401", tc.method, tc.path, rec.Code)
		}
		var resp struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		decode(t, rec, &resp)
		if resp.Success || resp.Message == "" {
			t.Errorf("%s %s: unexpected body %s", tc.method, tc.path, rec.Body.String())
		}
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/no/such/page", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestInvalidTokenRejectedOnPublicRoutes(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/blogs", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/blogs", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("anonymous feed: got %d", rec.Code)
	}
}

func TestFollowToggleOverHTTP(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.store, "alice", models.VisibilityPublic)
	bob := testutil.CreateUser(t, s.store, "bob", models.VisibilityPrivate)
	token := s.login(t, "alice")

	path := "/follow/" + itoa(bob.ID)
	for _, want := range []string{"requested", "requested"} {
		rec := s.do(t, http.MethodPost, path, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle: %d %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Status string `json:"status"`
		}
		decode(t, rec, &resp)
		if resp.Status != want {
			t.Fatalf("status = %q, want %q", resp.Status, want)
		}
	}

	rec := s.do(t, http.MethodPost, "/follow/"+itoa(bob.ID+100), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown target: got %d, want 404", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/follow/abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: got %d, want 400", rec.Code)
	}
}

func TestApproveRedirectsWithFlash(t *testing.T) {
	s := newServer(t)
	alice := testutil.CreateUser(t, s.store, "alice", models.VisibilityPublic)
	bob := testutil.CreateUser(t, s.store, "bob", models.VisibilityPrivate)
	aliceToken := s.login(t, "alice")
	bobToken := s.login(t, "bob")

	if rec := s.do(t, http.MethodPost, "/follow/"+itoa(bob.ID), aliceToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("request: %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/follow/approve/alice", bobToken, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("approve: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/follow-requests" {
		t.Errorf("Location = %q", loc)
	}
	if msg := flash(t, rec); !strings.HasPrefix(msg, "success|") {
		t.Errorf("flash = %q", msg)
	}

	// Approving again is a conflict, reported as info.
	rec = s.do(t, http.MethodPost, "/follow/approve/alice", bobToken, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("second approve: got %d", rec.Code)
	}
	if msg := flash(t, rec); !strings.HasPrefix(msg, "info|") {
		t.Errorf("flash = %q", msg)
	}

	edge, err := s.store.Follows.GetFollow(context.Background(), alice.ID, bob.ID)
	if err != nil || edge.State() != models.FollowStateActive {
		t.Fatalf("edge = %+v, err = %v", edge, err)
	}
}

func TestLikeResponseShape(t *testing.T) {
	s := newServer(t)
	author := testutil.CreateUser(t, s.store, "author", models.VisibilityPublic)
	testutil.CreateUser(t, s.store, "reader", models.VisibilityPublic)
	blog := testutil.CreateBlog(t, s.store, author.ID, "Liked", 0)
	token := s.login(t, "reader")

	for _, want := range []services.LikeResult{{Liked: true, LikeCount: 1}, {Liked: false, LikeCount: 0}} {
		rec := s.do(t, http.MethodPost, "/like/"+blog.ID, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("like: %d %s", rec.Code, rec.Body.String())
		}
		var got services.LikeResult
		decode(t, rec, &got)
		if got != want {
			t.Fatalf("like = %+v, want %+v", got, want)
		}
	}

	rec := s.do(t, http.MethodPost, "/like/missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing blog: got %d, want 404", rec.Code)
	}
}

func TestAddEmailFlow(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.store, "carol", models.VisibilityPublic)
	token := s.login(t, "carol")

	rec := s.do(t, http.MethodPost, "/email-settings/add", token, url.Values{"email": {"not-an-email"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("invalid add: got %d", rec.Code)
	}
	if msg := flash(t, rec); !strings.HasPrefix(msg, "error|") {
		t.Errorf("flash = %q", msg)
	}
	if s.mailer.Count() != 0 {
		t.Fatalf("mail sent for invalid address")
	}

	rec = s.do(t, http.MethodPost, "/email-settings/add", token, url.Values{"email": {"carol@work.example"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("add: got %d", rec.Code)
	}
	if msg := flash(t, rec); !strings.HasPrefix(msg, "success|") {
		t.Errorf("flash = %q", msg)
	}
	code := s.mailer.LastCode(t, "carol@work.example")

	rec = s.do(t, http.MethodPost, "/email-settings/verify/confirm", token, url.Values{
		"email": {"carol@work.example"},
		"code":  {code},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("confirm: got %d", rec.Code)
	}
	if msg := flash(t, rec); !strings.HasPrefix(msg, "success|") {
		t.Errorf("flash = %q", msg)
	}

	rec = s.do(t, http.MethodGet, "/email-settings", token, nil)
	var resp struct {
		Data services.EmailSettings `json:"data"`
	}
	decode(t, rec, &resp)
	if len(resp.Data.Additional) != 1 || !resp.Data.Additional[0].Verified {
		t.Fatalf("settings = %+v", resp.Data)
	}
}

func TestNotificationsEnvelope(t *testing.T) {
	s := newServer(t)
	testutil.CreateUser(t, s.store, "alice", models.VisibilityPublic)
	bob := testutil.CreateUser(t, s.store, "bob", models.VisibilityPublic)
	aliceToken := s.login(t, "alice")
	bobToken := s.login(t, "bob")

	if rec := s.do(t, http.MethodPost, "/follow/"+itoa(bob.ID), aliceToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("follow: %d", rec.Code)
	}

	rec := s.do(t, http.MethodGet, "/notifications", bobToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []services.NotificationItem `json:"notifications"`
			UnreadCount   int64                       `json:"unread_count"`
		} `json:"data"`
	}
	decode(t, rec, &resp)
	if !resp.Success || len(resp.Data.Notifications) != 1 || resp.Data.UnreadCount != 1 {
		t.Fatalf("body = %s", rec.Body.String())
	}
	n := resp.Data.Notifications[0]
	if n.Type != models.NotificationFollow || n.Sender == nil || n.Sender.Username != "alice" {
		t.Fatalf("notification = %+v", n)
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
