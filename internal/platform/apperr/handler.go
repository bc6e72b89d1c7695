package apperr

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// response is the uniform client-facing error shape.
type response struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Detail  string   `json:"detail,omitempty"`
}

// pgIntegrityViolation reports whether err is a unique-constraint (23505) or
// foreign-key (23503) violation from the store.
func pgIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" || pgErr.Code == "23503"
}

// Normalize converts any failure into an *Error so that every response the
// client sees has a consistent shape and status code.
func Normalize(err error) *Error {
	if e := As(err); e != nil {
		return e
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("record")
	}
	if pgIntegrityViolation(err) {
		return Conflict("the record conflicts with existing data", err)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return Validation("required fields are missing or invalid", fields...)
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, _ := httpErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(httpErr.Code)
		}
		return &Error{Kind: kindForStatus(httpErr.Code), Message: msg, cause: err}
	}
	return Internal("internal server error", err)
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindUnclassified
	}
}

// HTTPErrorHandler returns the central echo error handler. Internal detail is
// included only in development mode; production responses carry the public
// message alone.
func HTTPErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		e := Normalize(err)
		if e.Kind == KindUnclassified {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unclassified error")
		}

		resp := response{Message: e.Message, Fields: e.Fields}
		if dev && e.cause != nil {
			resp.Detail = e.cause.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(e.Status())
			return
		}
		_ = c.JSON(e.Status(), resp)
	}
}
