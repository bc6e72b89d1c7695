package user

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

// RegisterPublicRoutes registers the login endpoint, reachable without a
// session token.
func (h *Handler) RegisterPublicRoutes(e *echo.Echo) {
	e.POST("/api/auth/login", h.Login)
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/users", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.ListUsers)
	admin.POST("", h.CreateUser)
	admin.GET("/:id", h.GetUser)
	admin.PUT("/:id", h.UpdateUser)
	admin.DELETE("/:id", h.DeleteUser)
	admin.PUT("/:id/toggle-active", h.ToggleActive)

	// Password change is admin-or-self; the handler enforces the self case.
	api.PUT("/users/:id/change-password", h.ChangePassword)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, u, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: u})
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Shift    string `json:"shift"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u := &User{
		Username: req.Username,
		FullName: req.FullName,
		Role:     auth.Role(req.Role),
		Shift:    req.Shift,
	}
	if err := h.svc.Create(c.Request().Context(), u, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

type updateUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Shift    string `json:"shift"`
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	u := &User{ID: id, FullName: req.FullName, Role: auth.Role(req.Role), Shift: req.Shift}
	if err := h.svc.Update(c.Request().Context(), u); err != nil {
		return err
	}
	fresh, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fresh)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ToggleActive(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.svc.ToggleActive(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	ident := auth.FromContext(c.Request().Context())
	if ident == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if ident.Role != auth.RoleAdmin && ident.UserID != id {
		return apperr.Forbidden("you may only change your own password")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.svc.ChangePassword(c.Request().Context(), id, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id", "id")
	}
	return id, nil
}
