package activity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/pkg/pagination"
)

type Handler struct {
	rec *Recorder
}

func NewHandler(rec *Recorder) *Handler {
	return &Handler{rec: rec}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/activity-log", h.ListActivity, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) ListActivity(c echo.Context) error {
	pg := pagination.FromContext(c)
	entries, total, err := h.rec.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, pg.Limit, pg.Offset))
}
