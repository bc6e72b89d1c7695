package orders

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
	nursingRoles := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleNurse)
	usRoles := auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleUltrasound)

	n := api.Group("/nursing-orders", nursingRoles)
	n.GET("", h.ListNursing)
	n.POST("", h.CreateNursing)
	n.GET("/pending", h.PendingNursing)
	n.GET("/:id", h.GetNursing)
	n.PUT("/:id", h.UpdateNursing)

	u := api.Group("/ultrasound-orders", usRoles)
	u.GET("", h.ListUltrasound)
	u.POST("", h.CreateUltrasound)
	u.GET("/pending", h.PendingUltrasound)
	u.GET("/:id", h.GetUltrasound)
	u.PUT("/:id", h.UpdateUltrasound)
	u.POST("/:id/upload", h.UploadImage)
}

type nursingRequest struct {
	PatientID    int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID     *int64 `json:"doctor_id"`
	Instructions string `json:"instructions" validate:"required"`
	Status       string `json:"status"`
}

func (h *Handler) CreateNursing(c echo.Context) error {
	var req nursingRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	o := &NursingOrder{
		PatientID:    req.PatientID,
		DoctorID:     req.DoctorID,
		Instructions: req.Instructions,
		Status:       req.Status,
	}
	if err := h.svc.CreateNursing(c.Request().Context(), o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetNursing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	o, err := h.svc.GetNursing(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListNursing(c echo.Context) error {
	return h.listNursing(c, c.QueryParam("status"))
}

func (h *Handler) PendingNursing(c echo.Context) error {
	return h.listNursing(c, StatusPending)
}

func (h *Handler) listNursing(c echo.Context, status string) error {
	pg := pagination.FromContext(c)
	orders, total, err := h.svc.ListNursing(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateNursing(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req nursingRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	o := &NursingOrder{ID: id, Instructions: req.Instructions, Status: req.Status}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if err := h.svc.UpdateNursing(c.Request().Context(), o); err != nil {
		return err
	}
	fresh, err := h.svc.GetNursing(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

type ultrasoundRequest struct {
	PatientID int64  `json:"patient_id" validate:"required,gt=0"`
	DoctorID  *int64 `json:"doctor_id"`
	ExamType  string `json:"exam_type" validate:"required"`
	Findings  string `json:"findings"`
	Status    string `json:"status"`
}

func (h *Handler) CreateUltrasound(c echo.Context) error {
	var req ultrasoundRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	o := &UltrasoundOrder{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ExamType:  req.ExamType,
		Findings:  req.Findings,
		Status:    req.Status,
	}
	if err := h.svc.CreateUltrasound(c.Request().Context(), o); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetUltrasound(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	o, err := h.svc.GetUltrasound(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListUltrasound(c echo.Context) error {
	return h.listUltrasound(c, c.QueryParam("status"))
}

func (h *Handler) PendingUltrasound(c echo.Context) error {
	return h.listUltrasound(c, StatusPending)
}

func (h *Handler) listUltrasound(c echo.Context, status string) error {
	pg := pagination.FromContext(c)
	orders, total, err := h.svc.ListUltrasound(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orders, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateUltrasound(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ultrasoundRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	o := &UltrasoundOrder{ID: id, ExamType: req.ExamType, Findings: req.Findings, Status: req.Status}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if err := h.svc.UpdateUltrasound(c.Request().Context(), o); err != nil {
		return err
	}
	fresh, err := h.svc.GetUltrasound(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) UploadImage(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return apperr.Validation("multipart field \"image\" is required", "image")
	}
	o, err := h.svc.AttachImage(c.Request().Context(), id, fh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
