package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"placar/api/middleware"
	"placar/internal/dto"
	"placar/internal/entity"
	"placar/internal/service"
	"placar/internal/settings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const maxSettingsBody = 1 << 20

// SettingsHandler serves the tenant back office: the settings document,
// its audit trail, consent records and the session registry.
type SettingsHandler struct {
	Settings *service.SettingsService
	Sessions *service.SessionService
	Consents *service.ConsentService
	Validate *validator.Validate
	Cookie   AuthCookie
	Logger   logrus.FieldLogger
}

func NewSettingsHandler(
	settingsService *service.SettingsService,
	sessions *service.SessionService,
	consents *service.ConsentService,
	validate *validator.Validate,
	logger logrus.FieldLogger,
) *SettingsHandler {
	return &SettingsHandler{
		Settings: settingsService,
		Sessions: sessions,
		Consents: consents,
		Validate: validate,
		Cookie:   DefaultAuthCookie(),
		Logger:   logger,
	}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	doc, err := h.Settings.Get(c.Request().Context(), service.ResolveTenant(p))
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSettingsBody))
	if err != nil {
		return writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}
	var patch settings.Patch
	if err := json.Unmarshal(trimmed, &patch); err != nil {
		return writeError(c, http.StatusBadRequest, msgInvalidJSON)
	}

	doc, err := h.Settings.UpdateAs(c.Request().Context(), p, patch)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *SettingsHandler) Logs(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	limit, offset := parseLimitOffset(c, 50, 200)
	logs, err := h.Settings.Logs(c.Request().Context(), service.ResolveTenant(p), limit, offset)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.SettingsLogResponsesFromEntities(logs))
}

func (h *SettingsHandler) ListConsents(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	limit, offset := parseLimitOffset(c, 50, 200)
	consents, err := h.Consents.List(c.Request().Context(), p, limit, offset)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.ConsentResponsesFromEntities(consents))
}

func (h *SettingsHandler) RecordConsent(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	var req dto.ConsentRequest
	if ok, err := bind(c, h.Validate, &req); !ok {
		return err
	}
	consent, err := h.Consents.Record(c.Request().Context(), p, entity.ConsentType(req.ConsentType), *req.Accepted)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, dto.ConsentResponseFromEntity(consent))
}

func (h *SettingsHandler) ListSessions(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	views, err := h.Sessions.List(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, dto.SessionResponsesFromViews(views))
}

// KillSessions handles DELETE /settings/sessions?id=<id|all>.
func (h *SettingsHandler) KillSessions(c echo.Context) error {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, msgUnauthorized)
	}
	id := c.QueryParam("id")
	ctx := c.Request().Context()

	switch {
	case id == "":
		return writeError(c, http.StatusBadRequest, msgInvalidInput)
	case id == "all":
		if err := h.Sessions.KillAll(ctx, p); err != nil {
			return writeServiceError(c, h.Logger, err)
		}
		h.Cookie.clear(c)
	default:
		if err := h.Sessions.Kill(ctx, p, id); err != nil {
			return writeServiceError(c, h.Logger, err)
		}
		if id == p.SessionID.String() {
			h.Cookie.clear(c)
		}
	}
	return c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
