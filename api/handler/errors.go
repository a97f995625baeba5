package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"placar/internal/dto"
	"placar/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	msgInternal     = "Erro interno"
	msgInvalidInput = "Dados inválidos"
	msgInvalidJSON  = "JSON inválido"
	msgInvalidCode  = "Código inválido ou expirado"
	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden"
)

type serviceErrorMapping struct {
	target  error
	status  int
	message string
}

var serviceErrors = []serviceErrorMapping{
	{service.ErrInvalidOrExpiredCode, http.StatusBadRequest, msgInvalidCode},
	{service.ErrInvalidPhone, http.StatusBadRequest, "Telefone inválido"},
	{service.ErrInvalidInput, http.StatusBadRequest, msgInvalidInput},
	{service.ErrWeakPassword, http.StatusBadRequest, "A senha não atende à política de segurança"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Credenciais inválidas"},
	{service.ErrInvalidToken, http.StatusUnauthorized, msgUnauthorized},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, msgUnauthorized},
	{service.ErrInvalidMFACode, http.StatusUnauthorized, "Código MFA inválido"},
	{service.ErrForbidden, http.StatusForbidden, msgForbidden},
	{service.ErrOTPDisabled, http.StatusForbidden, "Login por código desativado"},
	{service.ErrNotFound, http.StatusNotFound, "Não encontrado"},
	{service.ErrEmailAlreadyRegistered, http.StatusConflict, "E-mail ou telefone já cadastrado"},
	{service.ErrMFARequired, http.StatusPreconditionRequired, "MFA obrigatório"},
	{service.ErrMFANotConfigured, http.StatusFailedDependency, "MFA indisponível"},
}

func writeError(c echo.Context, status int, message string) error {
	return c.JSON(status, dto.ErrorResponse{Error: message})
}

// writeServiceError maps service errors to responses. Anything unknown is
// logged and reported as a bare 500.
func writeServiceError(c echo.Context, logger logrus.FieldLogger, err error) error {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Configurações inválidas", Fields: validation.Fields})
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.message)
		}
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("request failed")
	}
	return writeError(c, http.StatusInternalServerError, msgInternal)
}

// NewHTTPErrorHandler renders errors that escape handlers and middleware
// (404, 405, 401 from auth, 429 from the rate limiter, panics) as {error}.
func NewHTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := msgInternal

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			message = httpMessage(httpErr)
		} else if logger != nil {
			logger.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = writeError(c, status, message)
		}
		if writeErr != nil && logger != nil {
			logger.WithError(writeErr).Warn("write error response")
		}
	}
}

func httpMessage(err *echo.HTTPError) string {
	if err.Code >= http.StatusInternalServerError {
		return msgInternal
	}
	switch m := err.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(err.Code)
	default:
		return fmt.Sprint(m)
	}
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func validateStruct(validate *validator.Validate, payload any) error {
	if validate == nil {
		return nil
	}
	return validate.Struct(payload)
}

// bind decodes and validates a request body, writing the 400 itself. The
// returned bool reports whether the handler may continue.
func bind(c echo.Context, validate *validator.Validate, target any) (bool, error) {
	if err := decodeJSON(c, target); err != nil {
		return false, writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}
	if err := validateStruct(validate, target); err != nil {
		return false, writeError(c, http.StatusBadRequest, msgInvalidInput)
	}
	return true, nil
}

func parseLimitOffset(c echo.Context, defaultLimit, maxLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
