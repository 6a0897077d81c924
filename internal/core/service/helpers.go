package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cadastrahub/registry-api/internal/core/domain"
	"github.com/cadastrahub/registry-api/internal/core/ports"
)

func trim(s string) string { return strings.TrimSpace(s) }

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrLotNotFound)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, domain.AuditEvent) {}

func recorderOrNop(r ports.AuditRecorder) ports.AuditRecorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func auditEvent(kind domain.AuditKind, accountID, actorID int64, email, remoteIP, detail string) domain.AuditEvent {
	return domain.AuditEvent{
		Kind:       kind,
		AccountID:  accountID,
		ActorID:    actorID,
		Email:      email,
		RemoteIP:   remoteIP,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
