package pharmacy

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
	rxRoles := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RolePharmacy)
	counter := auth.RequireRole(auth.RoleAdmin, auth.RolePharmacy)

	rx := api.Group("/prescriptions", rxRoles)
	rx.GET("", h.ListPrescriptions)
	rx.POST("", h.CreatePrescription)
	rx.GET("/:id", h.GetPrescription)
	rx.PUT("/:id", h.UpdatePrescription)
	rx.PUT("/:id/dispense", h.Dispense, counter)

	inv := api.Group("/inventory", counter)
	inv.GET("", h.ListItems)
	inv.POST("", h.CreateItem)
	inv.GET("/low-stock", h.LowStock)
	inv.GET("/:id", h.GetItem)
	inv.PUT("/:id", h.UpdateItem)
	inv.DELETE("/:id", h.DeleteItem)

	di := api.Group("/drug-interactions", rxRoles)
	di.GET("", h.ListInteractions)
	di.POST("", h.CreateInteraction)
	di.POST("/check", h.CheckInteractions)
}

type prescriptionRequest struct {
	PatientID  int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID   *int64 `json:"doctor_id"`
	Medication string `json:"medication" validate:"required"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   string `json:"duration"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
}

func (req *prescriptionRequest) toModel() *Prescription {
	return &Prescription{
		PatientID:  req.PatientID,
		DoctorID:   req.DoctorID,
		Medication: req.Medication,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		Duration:   req.Duration,
		Notes:      req.Notes,
		Status:     req.Status,
	}
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var req prescriptionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p := req.toModel()
	if err := h.svc.CreatePrescription(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPrescription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPrescriptions(c echo.Context) error {
	pg := pagination.FromContext(c)
	rxs, total, err := h.svc.ListPrescriptions(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(rxs, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePrescription(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req prescriptionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p := req.toModel()
	p.ID = id
	if p.Status == "" {
		p.Status = PrescriptionActive
	}
	if err := h.svc.UpdatePrescription(c.Request().Context(), p); err != nil {
		return err
	}
	fresh, err := h.svc.GetPrescription(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Dispense(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

type inventoryRequest struct {
	MedicineName   string `json:"medicine_name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"gte=0"`
	ExpiryDate     string `json:"expiry_date"`
	AlertThreshold int    `json:"alert_threshold" validate:"gte=0"`
}

func (req *inventoryRequest) toModel() (*InventoryItem, error) {
	i := &InventoryItem{
		MedicineName:   req.MedicineName,
		Quantity:       req.Quantity,
		AlertThreshold: req.AlertThreshold,
	}
	if req.ExpiryDate != "" {
		ed, err := time.Parse("2006-01-02", req.ExpiryDate)
		if err != nil {
			return nil, apperr.Validation("expiry_date must be YYYY-MM-DD", "expiry_date")
		}
		i.ExpiryDate = &ed
	}
	return i, nil
}

func (h *Handler) CreateItem(c echo.Context) error {
	var req inventoryRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	i, err := req.toModel()
	if err != nil {
		return err
	}
	if err := h.svc.CreateItem(c.Request().Context(), i); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *Handler) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	i, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, i)
}

func (h *Handler) ListItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListItems(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req inventoryRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	i, err := req.toModel()
	if err != nil {
		return err
	}
	i.ID = id
	if err := h.svc.UpdateItem(c.Request().Context(), i); err != nil {
		return err
	}
	fresh, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteItem(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) LowStock(c echo.Context) error {
	items, err := h.svc.LowStock(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

type interactionRequest struct {
	Drug1        string `json:"drug1" validate:"required"`
	Drug2        string `json:"drug2" validate:"required"`
	Severity     string `json:"severity" validate:"required,oneof=mild moderate severe"`
	Description  string `json:"description"`
	Alternatives string `json:"alternatives"`
}

func (h *Handler) CreateInteraction(c echo.Context) error {
	var req interactionRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	d := &DrugInteraction{
		Drug1:        req.Drug1,
		Drug2:        req.Drug2,
		Severity:     req.Severity,
		Description:  req.Description,
		Alternatives: req.Alternatives,
	}
	if err := h.svc.CreateInteraction(c.Request().Context(), d); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListInteractions(c echo.Context) error {
	interactions, err := h.svc.ListInteractions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, interactions)
}

type checkRequest struct {
	Drugs []string `json:"drugs" validate:"required,min=1,dive,required"`
}

func (h *Handler) CheckInteractions(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	found, err := h.svc.CheckInteractions(c.Request().Context(), req.Drugs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"interactions": found,
		"count":        len(found),
	})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
