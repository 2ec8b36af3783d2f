package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agritrace/produce-chain/internal/core/domain"
	"github.com/agritrace/produce-chain/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	otpService  ports.OTPService
}

func NewAuthHandler(authService ports.AuthService, otpService ports.OTPService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService}
}

type registerRequest struct {
	Phone    string `json:"phone" validate:"required,len=10,numeric"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=farmer distributor retailer"`
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sendOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	Role  string `json:"role" validate:"required,oneof=farmer distributor retailer"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone" validate:"required,len=10,numeric"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type identityResponse struct {
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token    string            `json:"token,omitempty"`
	Identity *identityResponse `json:"identity,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// Register creates a new identity via the password flow.
//
// @Summary      Register a new identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.authService.Register(c.Request().Context(), req.Phone, req.Password, domain.Role(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Identity: &identityResponse{Phone: identity.Phone, Role: string(identity.Role)},
		Message:  "registered successfully",
	})
}

// Login authenticates an identity and returns a session token.
//
// @Summary      Login with phone and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.authService.Login(c.Request().Context(), req.Phone, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{
		Token:    token,
		Identity: &identityResponse{Phone: identity.Phone, Role: string(identity.Role)},
	})
}

// Logout acknowledges the logout. Session tokens are stateless so there is
// nothing to revoke server-side; tokens expire naturally.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, authResponse{Message: "logged out"})
}

// SendOTP issues a one-time code bound to the claimed role.
//
// @Summary      Send a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sendOTPRequest  true  "Phone and claimed role"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/otp/send [post]
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.otpService.Send(c.Request().Context(), req.Phone, domain.Role(req.Role)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Message: "otp sent"})
}

// VerifyOTP consumes the live challenge and returns a session token. The
// first successful verification for a phone creates its identity.
//
// @Summary      Verify a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Phone and code"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Router       /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.otpService.Verify(c.Request().Context(), req.Phone, req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{
		Token:    token,
		Identity: &identityResponse{Phone: identity.Phone, Role: string(identity.Role)},
	})
}
