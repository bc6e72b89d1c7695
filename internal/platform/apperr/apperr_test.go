package apperr

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad", "field"), http.StatusBadRequest},
		{Unauthenticated("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Protected("no"), http.StatusForbidden},
		{NotFound("patient"), http.StatusNotFound},
		{Conflict("dup", errors.New("raw")), http.StatusBadRequest},
		{UploadRejected("too big"), http.StatusBadRequest},
		{Internal("boom", errors.New("raw")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.Status(); got != tc.want {
			t.Errorf("kind %d: expected status %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestNormalize_NoRows(t *testing.T) {
	e := Normalize(pgx.ErrNoRows)
	if e.Kind != KindNotFound {
		t.Errorf("expected NotFound, got kind %d", e.Kind)
	}
}

func TestNormalize_UniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"users_username_key\""}
	e := Normalize(pgErr)
	if e.Kind != KindConflict {
		t.Fatalf("expected Conflict, got kind %d", e.Kind)
	}
	if strings.Contains(e.Message, "users_username_key") {
		t.Error("raw store text must not leak into the client message")
	}
}

func TestNormalize_ForeignKeyViolation(t *testing.T) {
	e := Normalize(&pgconn.PgError{Code: "23503"})
	if e.Kind != KindConflict {
		t.Errorf("expected Conflict, got kind %d", e.Kind)
	}
}

func TestNormalize_PassesThroughTypedErrors(t *testing.T) {
	orig := NotFound("appointment")
	if e := Normalize(orig); e != orig {
		t.Error("expected typed errors to pass through unchanged")
	}
}

func TestHTTPErrorHandler_HidesDetailInProduction(t *testing.T) {
	e := echo.New()
	cause := errors.New("connection refused to 10.0.0.5:5432")

	for _, dev := range []bool{true, false} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		h := HTTPErrorHandler(zerolog.Nop(), dev)
		h(Internal("internal server error", cause), c)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("dev=%t: expected 500, got %d", dev, rec.Code)
		}
		hasDetail := strings.Contains(rec.Body.String(), "10.0.0.5")
		if dev && !hasDetail {
			t.Error("development response should include internal detail")
		}
		if !dev && hasDetail {
			t.Error("production response must not include internal detail")
		}
	}
}

func TestHTTPErrorHandler_ValidationFields(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := HTTPErrorHandler(zerolog.Nop(), false)
	h(Validation("required fields are missing or invalid", "username", "role"), c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "username") || !strings.Contains(body, "role") {
		t.Errorf("expected field names in response, got %s", body)
	}
}
