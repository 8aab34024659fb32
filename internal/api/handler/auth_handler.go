package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// The three Spanish messages below are part of the public wire contract and
// must not be reworded.

// Register creates a new customer account.
//
// @Summary      Register a new customer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Credentials"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Usuario ya existe"})
		}
		if errors.Is(err, domain.ErrMissingFields) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "faltan campos requeridos"})
		}
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "Usuario creado", UserID: user.ID})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Log in with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	signed, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Usuario no encontrado"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "Contraseña incorrecta"})
		case errors.Is(err, domain.ErrMissingFields):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "faltan campos requeridos"})
		}
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: signed, Role: user.Role, Username: user.Username})
}
