package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

// UserHandler exposes administrator-only account management. This is the
// only path that can create courier or administrator accounts.
type UserHandler struct {
	authService ports.AuthService
	repo        ports.AuthRepository
}

func NewUserHandler(authService ports.AuthService, repo ports.AuthRepository) *UserHandler {
	return &UserHandler{authService: authService, repo: repo}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"required,oneof=customer courier administrator"`
}

// Create handles POST /api/users.
//
// @Summary      Create a user with an explicit role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.authService.CreateUser(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Usuario ya existe"})
		}
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{Message: "Usuario creado", UserID: user.ID})
}

// List handles GET /api/users. The role query parameter lets the admin view
// fetch couriers for assignment.
//
// @Summary      List user accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  false  "Filter by role"
// @Success      200   {array}   domain.User
// @Failure      403   {object}  errorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.repo.List(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
