package stats

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Every department dashboard shows the summary tiles.
	api.GET("/statistics", h.Summary, auth.RequireRole())
}

func (h *Handler) Summary(c echo.Context) error {
	s, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
