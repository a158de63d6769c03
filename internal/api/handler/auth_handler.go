package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickgram/auth-service/internal/api/middleware"
	"github.com/quickgram/auth-service/internal/core/domain"
	"github.com/quickgram/auth-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is the success envelope shared by signup, login and refresh.
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

type profileResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Signup creates a new account and returns a session token.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Success: true,
		Token:   res.Token,
		UserID:  res.Claims.UserID,
		Email:   res.Claims.Email,
		Message: "Signup successful",
	})
}

// Login authenticates a user and returns a session token.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  AuthResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Token:   res.Token,
		UserID:  res.Claims.UserID,
		Email:   res.Claims.Email,
		Message: "Login successful",
	})
}

// Logout always succeeds. A bearer token, when present, is handed to the
// service so it can be revoked.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  false  "Bearer token"
// @Success      200            {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	h.authService.Logout(c.Request().Context(), token)
	return c.JSON(http.StatusOK, struct{}{})
}

// Refresh exchanges a valid bearer token for a new one.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Param        Authorization  header    string  true  "Bearer token"
// @Success      200            {object}  AuthResponse
// @Failure      401            {object}  ErrorResponse
// @Failure      429            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, ok := middleware.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if !ok {
		return domain.ErrUnauthorized
	}

	res, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Token:   res.Token,
		UserID:  res.Claims.UserID,
		Email:   res.Claims.Email,
	})
}

// Me returns the account behind the bearer token.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), claims)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Success:  true,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// Both failures surface as domain.ErrValidation (HTTP 400).
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
	}
	return nil
}
