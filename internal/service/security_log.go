package service

import (
	"context"
	"encoding/json"

	"placar/internal/entity"
	"placar/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// securityLogger appends to the security log. Failures are reported to
// the process log and never fail the calling operation.
type securityLogger struct {
	repo   repository.SecurityLogRepository
	logger logrus.FieldLogger
}

func (l securityLogger) log(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if l.repo == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			l.warn(err, action)
			return
		}
		payload = datatypes.JSON(bytes)
	}

	entry := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := l.repo.Log(ctx, entry); err != nil {
		l.warn(err, action)
	}
}

func (l securityLogger) warn(err error, action entity.SecurityAction) {
	if l.logger == nil {
		return
	}
	l.logger.WithError(err).WithField("action", action).Warn("security log write failed")
}
