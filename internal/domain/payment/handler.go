package payment

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
	g := api.Group("/payments", auth.RequireRole(auth.RoleAdmin, auth.RoleReception))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
}

type paymentRequest struct {
	PatientID int64   `json:"patient_id" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required"`
	Reference string  `json:"reference"`
}

func (h *Handler) Create(c echo.Context) error {
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p := &Payment{
		PatientID: req.PatientID,
		Amount:    req.Amount,
		Method:    req.Method,
		Reference: req.Reference,
	}
	if err := h.svc.Create(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	payments, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(payments, total, pg.Limit, pg.Offset))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
