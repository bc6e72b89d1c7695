package lab

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
	labRoles := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleLab)

	g := api.Group("/lab-tests", labRoles)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)

	api.GET("/test-statistics", h.Statistics, labRoles)
	api.GET("/patients/:id/lab-tests", h.ListByPatient, labRoles)
}

type createRequest struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID  *int64 `json:"doctor_id"`
	TestNames string `json:"test_names" validate:"required"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t := &LabTest{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		TestNames: req.TestNames,
	}
	if err := h.svc.Create(c.Request().Context(), t); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	tests, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tests, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	tests, total, err := h.svc.ListByPatient(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tests, total, pg.Limit, pg.Offset))
}

type updateRequest struct {
	Result string `json:"result"`
	Status string `json:"status" validate:"required"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	t := &LabTest{ID: id, Result: req.Result, Status: req.Status}
	if err := h.svc.Update(c.Request().Context(), t); err != nil {
		return err
	}
	fresh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
