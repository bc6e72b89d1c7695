package adminnote

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medidesk/medidesk/internal/platform/apperr"
	"github.com/medidesk/medidesk/internal/platform/auth"
	"github.com/medidesk/medidesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	adminOnly := auth.RequireRole(auth.RoleAdmin)

	g := api.Group("/admin-notes")
	// Any authenticated staff member may send a note up; only admins read.
	g.POST("", h.Create, auth.RequireRole())
	g.GET("", h.List, adminOnly)
	g.PUT("/:id/read", h.MarkRead, adminOnly)
}

type noteRequest struct {
	Message  string `json:"message" validate:"required"`
	Priority string `json:"priority"`
}

func (h *Handler) Create(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ident := auth.FromContext(c.Request().Context())
	n := &Note{SenderID: ident.UserID, Message: req.Message, Priority: req.Priority}
	if err := h.svc.Create(c.Request().Context(), n); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	notes, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(notes, total, pg.Limit, pg.Offset))
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperr.Validation("invalid id", "id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
