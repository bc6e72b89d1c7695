package patient

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
	clinical := auth.RequireRole(auth.RoleAdmin, auth.RoleReception, auth.RoleDoctor, auth.RoleNurse)

	g := api.Group("/patients", clinical)
	g.GET("", h.ListPatients)
	g.POST("", h.CreatePatient)
	g.GET("/:id", h.GetPatient)
	g.PUT("/:id", h.UpdatePatient)
	g.DELETE("/:id", h.DeletePatient, auth.RequireRole(auth.RoleAdmin))

	g.GET("/:id/medical-records", h.ListRecords)
	g.POST("/:id/medical-records", h.AddRecord, auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor))
}

type patientRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Phone          string `json:"phone"`
	NationalID     string `json:"national_id"`
	BirthDate      string `json:"birth_date"`
	Gender         string `json:"gender"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medical_history"`
	Allergies      string `json:"allergies"`
}

func (req *patientRequest) toModel() (*Patient, error) {
	p := &Patient{
		FullName:       req.FullName,
		Phone:          req.Phone,
		NationalID:     req.NationalID,
		Gender:         req.Gender,
		Address:        req.Address,
		MedicalHistory: req.MedicalHistory,
		Allergies:      req.Allergies,
	}
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, apperr.Validation("birth_date must be YYYY-MM-DD", "birth_date")
		}
		p.BirthDate = &bd
	}
	return p, nil
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := req.toModel()
	if err != nil {
		return err
	}
	if err := h.svc.Create(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
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

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), c.QueryParam("search"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req patientRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := req.toModel()
	if err != nil {
		return err
	}
	p.ID = id
	if err := h.svc.Update(c.Request().Context(), p); err != nil {
		return err
	}
	fresh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type recordRequest struct {
	Note string `json:"note" validate:"required"`
}

func (h *Handler) AddRecord(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ident := auth.FromContext(c.Request().Context())
	rec := &MedicalRecord{PatientID: id, DoctorID: ident.UserID, Note: req.Note}
	if err := h.svc.AddRecord(c.Request().Context(), rec); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListRecords(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListRecords(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, pg.Limit, pg.Offset))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
