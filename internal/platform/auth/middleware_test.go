package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/apperr"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := Middleware(NewIssuer("s"))(okHandler)(c)
	if err == nil {
		t.Fatal("expected rejection without a token")
	}
	if ae := apperr.As(err); ae == nil || ae.Kind != apperr.KindUnauthenticated {
		t.Errorf("expected Unauthenticated, got %v", err)
	}
}

func TestMiddleware_BearerHeader(t *testing.T) {
	issuer := NewIssuer("s")
	token, _ := issuer.Issue(7, "nadia", RoleNurse)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *Identity
	handler := func(c echo.Context) error {
		seen = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	}
	if err := Middleware(issuer)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == nil || seen.UserID != 7 || seen.Role != RoleNurse {
		t.Errorf("expected identity uid=7 role=nurse, got %+v", seen)
	}
}

func TestMiddleware_QueryParamFallback(t *testing.T) {
	issuer := NewIssuer("s")
	token, _ := issuer.Issue(3, "lab.tech", RoleLab)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	c := e.NewContext(req, httptest.NewRecorder())

	if err := Middleware(issuer)(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_BadAuthorizationFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	c := e.NewContext(req, httptest.NewRecorder())

	if err := Middleware(NewIssuer("s"))(okHandler)(c); err == nil {
		t.Fatal("expected rejection of non-bearer authorization")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(ident *Identity, roles ...Role) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		if ident != nil {
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), ident)))
		}
		return RequireRole(roles...)(okHandler)(c)
	}

	if err := run(nil, RoleAdmin); err == nil {
		t.Error("expected rejection without identity")
	}
	if err := run(&Identity{Role: RoleReception}, RoleAdmin); err == nil {
		t.Error("expected rejection for role mismatch")
	} else if ae := apperr.As(err); ae == nil || ae.Kind != apperr.KindForbidden {
		t.Errorf("expected Forbidden, got %v", err)
	}
	if err := run(&Identity{Role: RoleAdmin}, RoleAdmin, RoleReception); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
	// Empty role list means any authenticated identity.
	if err := run(&Identity{Role: RoleUltrasound}); err != nil {
		t.Errorf("expected any authenticated role to pass, got %v", err)
	}
}
