package dto

import (
	"encoding/json"
	"time"

	"placar/internal/entity"
	"placar/internal/service"
)

type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	IPAddress *string   `json:"ipAddress"`
	UserAgent *string   `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsCurrent bool      `json:"isCurrent"`
}

func SessionResponsesFromViews(views []service.SessionView) []SessionResponse {
	responses := make([]SessionResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, SessionResponse{
			ID:        v.ID,
			UserID:    v.UserID.String(),
			IPAddress: v.IPAddress,
			UserAgent: v.UserAgent,
			CreatedAt: v.CreatedAt,
			ExpiresAt: v.ExpiresAt,
			IsCurrent: v.IsCurrent,
		})
	}
	return responses
}

type SettingsLogResponse struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenantId"`
	UserID    *string         `json:"userId"`
	UserEmail *string         `json:"userEmail"`
	Module    string          `json:"module"`
	Action    string          `json:"action"`
	OldValue  json.RawMessage `json:"oldValue"`
	NewValue  json.RawMessage `json:"newValue"`
	CreatedAt time.Time       `json:"createdAt"`
}

func SettingsLogResponsesFromEntities(logs []entity.SettingsLog) []SettingsLogResponse {
	responses := make([]SettingsLogResponse, 0, len(logs))
	for _, log := range logs {
		var userID *string
		if log.UserID != nil {
			id := log.UserID.String()
			userID = &id
		}
		responses = append(responses, SettingsLogResponse{
			ID:        log.ID.String(),
			TenantID:  log.TenantID,
			UserID:    userID,
			UserEmail: log.UserEmail,
			Module:    log.Module,
			Action:    log.Action,
			OldValue:  rawOrNull(log.OldValue),
			NewValue:  rawOrNull(log.NewValue),
			CreatedAt: log.CreatedAt,
		})
	}
	return responses
}

type ConsentRequest struct {
	ConsentType string `json:"consentType" validate:"required,oneof=terms_of_use privacy_policy marketing image_rights"`
	Accepted    *bool  `json:"accepted" validate:"required"`
}

type ConsentResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ConsentType string    `json:"consentType"`
	Accepted    bool      `json:"accepted"`
	AcceptedAt  time.Time `json:"acceptedAt"`
	IPAddress   *string   `json:"ipAddress"`
}

func ConsentResponseFromEntity(consent *entity.PrivacyConsent) ConsentResponse {
	return ConsentResponse{
		ID:          consent.ID.String(),
		UserID:      consent.UserID.String(),
		ConsentType: string(consent.ConsentType),
		Accepted:    consent.Accepted,
		AcceptedAt:  consent.AcceptedAt,
		IPAddress:   consent.IPAddress,
	}
}

func ConsentResponsesFromEntities(consents []entity.PrivacyConsent) []ConsentResponse {
	responses := make([]ConsentResponse, 0, len(consents))
	for i := range consents {
		responses = append(responses, ConsentResponseFromEntity(&consents[i]))
	}
	return responses
}

func rawOrNull(value []byte) json.RawMessage {
	if len(value) == 0 {
		return json.RawMessage("null")
	}
	return json.RawMessage(value)
}
