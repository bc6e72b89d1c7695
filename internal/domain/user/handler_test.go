package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medidesk/medidesk/internal/platform/activity"
	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/pkg/validation"
)

// newTestServer assembles the real routing stack: public login, bearer
// middleware on /api, role guards on the user routes.
func newTestServer(t *testing.T) (*echo.Echo, *mockRepo, *auth.Issuer) {
	t.Helper()

	repo := newMockRepo()
	issuer := auth.NewIssuer("test-secret")
	bus := &stubBus{}
	svc := NewService(repo, issuer, activity.NewRecorder(&memSink{}, zerolog.Nop()), bus)
	h := NewHandler(svc)

	e := echo.New()
	e.Validator = validation.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop(), false)
	h.RegisterPublicRoutes(e)
	api := e.Group("/api", auth.Middleware(issuer))
	h.RegisterRoutes(api)
	return e, repo, issuer
}

func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	e, repo, _ := newTestServer(t)
	seedUser(t, repo, "admin", "secret123", auth.RoleAdmin, true)

	rec := doJSON(e, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		User  *User  `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "admin" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("password hash must never appear in a response")
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad credentials, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", "", `{"username":"admin"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", rec.Code)
	}
}

func TestUserRoutes_RejectBeforeSideEffects(t *testing.T) {
	e, repo, issuer := newTestServer(t)
	seedUser(t, repo, "admin", "secret123", auth.RoleAdmin, true)

	// No token: 401 and no user created.
	rec := doJSON(e, http.MethodPost, "/api/users", "",
		`{"username":"x","password":"pass123","full_name":"X","role":"nurse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if len(repo.users) != 1 {
		t.Error("no user may be created on an unauthenticated request")
	}

	// Wrong role: 403 and no user created.
	nurseToken, _ := issuer.Issue(9, "nurse", auth.RoleNurse)
	rec = doJSON(e, http.MethodPost, "/api/users", nurseToken,
		`{"username":"x","password":"pass123","full_name":"X","role":"nurse"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for nurse, got %d", rec.Code)
	}
	if len(repo.users) != 1 {
		t.Error("no user may be created on a forbidden request")
	}

	// Admin: created.
	adminToken, _ := issuer.Issue(1, "admin", auth.RoleAdmin)
	rec = doJSON(e, http.MethodPost, "/api/users", adminToken,
		`{"username":"x","password":"pass123","full_name":"X","role":"nurse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.users) != 2 {
		t.Errorf("expected 2 users, got %d", len(repo.users))
	}
}

func TestDeletePrimaryAdmin_403ForEveryCaller(t *testing.T) {
	e, repo, issuer := newTestServer(t)
	seedUser(t, repo, "admin", "secret123", auth.RoleAdmin, true)

	adminToken, _ := issuer.Issue(1, "admin", auth.RoleAdmin)
	rec := doJSON(e, http.MethodDelete, "/api/users/1", adminToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 even for an admin caller, got %d", rec.Code)
	}
	if _, ok := repo.users[PrimaryAdminID]; !ok {
		t.Error("primary admin must survive the attempt")
	}
}

func TestChangePassword_SelfAllowedOthersForbidden(t *testing.T) {
	e, repo, issuer := newTestServer(t)
	seedUser(t, repo, "admin", "secret123", auth.RoleAdmin, true)
	nurse := seedUser(t, repo, "nurse", "oldpass1", auth.RoleNurse, true)
	other := seedUser(t, repo, "reception", "oldpass2", auth.RoleReception, true)

	nurseToken, _ := issuer.Issue(nurse.ID, "nurse", auth.RoleNurse)

	// Self: allowed.
	rec := doJSON(e, http.MethodPut, "/api/users/2/change-password", nurseToken, `{"password":"newpass1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for self change, got %d: %s", rec.Code, rec.Body.String())
	}

	// Another user's password: forbidden for non-admins.
	rec = doJSON(e, http.MethodPut, "/api/users/3/change-password", nurseToken, `{"password":"newpass2"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-user change, got %d", rec.Code)
	}

	// Admin changing anyone's: allowed.
	adminToken, _ := issuer.Issue(1, "admin", auth.RoleAdmin)
	rec = doJSON(e, http.MethodPut, "/api/users/3/change-password", adminToken, `{"password":"newpass3"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin change, got %d", rec.Code)
	}
	_ = other
}
