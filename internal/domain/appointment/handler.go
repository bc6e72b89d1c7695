package appointment

import (
	"net/http"
	"strconv"
	"time"

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
	desk := auth.RequireRole(auth.RoleAdmin, auth.RoleReception, auth.RoleDoctor, auth.RoleNurse)

	g := api.Group("/appointments", desk)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleReception))
}

type appointmentRequest struct {
	PatientID   int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID    *int64 `json:"doctor_id"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Reason      string `json:"reason"`
	Status      string `json:"status"`
}

func (req *appointmentRequest) toModel() (*Appointment, error) {
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return nil, apperr.Validation("scheduled_at must be RFC 3339", "scheduled_at")
	}
	return &Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: at,
		Reason:      req.Reason,
		Status:      req.Status,
	}, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := req.toModel()
	if err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	appts, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := req.toModel()
	if err != nil {
		return err
	}
	a.ID = id
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := h.svc.Update(c.Request().Context(), a); err != nil {
		return err
	}
	fresh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
