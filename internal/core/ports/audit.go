package ports

import (
	"context"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertAuditEvent(ctx context.Context, event *domain.AuditEvent) error
}
