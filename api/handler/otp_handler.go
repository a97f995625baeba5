package handler

import (
	"net/http"

	"placar/internal/dto"
	"placar/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type OTPHandler struct {
	Service  *service.OTPService
	Validate *validator.Validate
	Cookie   AuthCookie
	Logger   logrus.FieldLogger
}

func NewOTPHandler(svc *service.OTPService, validate *validator.Validate, logger logrus.FieldLogger) *OTPHandler {
	return &OTPHandler{
		Service:  svc,
		Validate: validate,
		Cookie:   DefaultAuthCookie(),
		Logger:   logger,
	}
}

func (h *OTPHandler) Request(c echo.Context) error {
	var req dto.OTPRequestRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}
	if err := validateStruct(h.Validate, req); err != nil {
		return writeServiceError(c, h.Logger, service.ErrInvalidPhone)
	}
	result, err := h.Service.RequestCode(c.Request().Context(), req.Phone, stringPtr(c.RealIP()))
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.OTPRequestResponse{
		Success: true,
		Message: "Código enviado",
		DevCode: result.DevCode,
	})
}

func (h *OTPHandler) Verify(c echo.Context) error {
	var req dto.OTPVerifyRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}
	// A malformed code is answered exactly like a wrong one.
	if err := validateStruct(h.Validate, req); err != nil {
		return writeServiceError(c, h.Logger, service.ErrInvalidOrExpiredCode)
	}
	result, err := h.Service.VerifyCode(
		c.Request().Context(),
		req.Phone,
		req.Code,
		stringPtr(c.RealIP()),
		stringPtr(c.Request().UserAgent()),
	)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	h.Cookie.set(c, result.Token, result.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse(result))
}
