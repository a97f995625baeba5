package handler

import (
	"net/http"

	"placar/api/middleware"
	"placar/internal/dto"
	"placar/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Service  *service.AuthService
	Sessions *service.SessionService
	Validate *validator.Validate
	Cookie   AuthCookie
	Logger   logrus.FieldLogger
}

func NewAuthHandler(svc *service.AuthService, sessions *service.SessionService, validate *validator.Validate, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Sessions: sessions,
		Validate: validate,
		Cookie:   DefaultAuthCookie(),
		Logger:   logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	result, err := h.Service.Register(c.Request().Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		IPAddress: stringPtr(c.RealIP()),
		UserAgent: stringPtr(c.Request().UserAgent()),
	})
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookie.set(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusCreated, authResponse(result))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	result, err := h.Service.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: stringPtr(c.RealIP()),
		UserAgent: stringPtr(c.Request().UserAgent()),
	})
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	if !result.MFARequired {
		h.Cookie.set(c, result.Token, result.ExpiresAt)
	}
	return c.JSON(http.StatusOK, loginResponse(result))
}

func (h *AuthHandler) LoginWithMFA(c echo.Context) error {
	var req dto.LoginMFARequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	result, err := h.Service.LoginWithMFA(c.Request().Context(), service.LoginMFAInput{
		MFAToken:  req.MFAToken,
		Code:      req.Code,
		IPAddress: stringPtr(c.RealIP()),
		UserAgent: stringPtr(c.Request().UserAgent()),
	})
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookie.set(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusOK, loginResponse(result))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	if err := h.Sessions.Logout(c.Request().Context(), p); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookie.clear(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	if err := h.Sessions.LogoutAll(c.Request().Context(), p); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookie.clear(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) PasswordForgot(c echo.Context) error {
	var req dto.PasswordForgotRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusAccepted)
}

func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	if err := h.Service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) EnableMFA(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	qr, err := h.Service.EnableMFA(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.MFAEnableResponse{QRCode: qr})
}

func (h *AuthHandler) VerifyMFA(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req dto.MFAVerifyRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	if err := h.Service.VerifyMFA(c.Request().Context(), p, req.Code); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) DisableMFA(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	if err := h.Service.DisableMFA(c.Request().Context(), p); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	user, err := h.Service.Me(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

func (h *AuthHandler) Activity(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	limit, _ := parseLimitOffset(c, 20, 100)
	logs, err := h.Service.Activity(c.Request().Context(), p, limit)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.SecurityEventsFromEntities(logs))
}

func authResponse(result *service.LoginResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      dto.UserResponseFromEntity(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}

func loginResponse(result *service.LoginResult) dto.LoginResponse {
	if result.MFARequired {
		return dto.LoginResponse{
			MFARequired:       true,
			MFAToken:          result.MFAToken,
			MFATokenExpiresIn: result.MFATokenExpiresIn,
		}
	}
	user := dto.UserResponseFromEntity(result.User)
	expiresAt := result.ExpiresAt
	return dto.LoginResponse{
		User:      &user,
		Token:     result.Token,
		ExpiresAt: &expiresAt,
	}
}
