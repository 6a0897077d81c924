package domain

import (
	"strconv"
	"time"
)

// AuditKind names an identity or ownership event worth keeping a trail of.
type AuditKind string

const (
	AuditAccountRegistered AuditKind = "account.registered"
	AuditAdminRegistered   AuditKind = "admin.registered"
	AuditLoginSucceeded    AuditKind = "login.succeeded"
	AuditLoginFailed       AuditKind = "login.failed"
	AuditAccountUpdated    AuditKind = "account.updated"
	AuditAccountDeleted    AuditKind = "account.deleted"
	AuditLotCreated        AuditKind = "lot.created"
	AuditLotUpdated        AuditKind = "lot.updated"
	AuditLotDeleted        AuditKind = "lot.deleted"
)

// AuditEvent is a single entry of the audit trail.
type AuditEvent struct {
	Kind       AuditKind
	AccountID  int64 // subject of the event, 0 when unknown (e.g. failed login)
	ActorID    int64 // principal that caused it, 0 for anonymous requests
	Email      string
	RemoteIP   string
	Detail     string
	OccurredAt time.Time
}

// ShardKey returns the key used to keep events about one account in order.
func (e AuditEvent) ShardKey() string {
	if e.AccountID != 0 {
		return "account:" + strconv.FormatInt(e.AccountID, 10)
	}
	return "email:" + e.Email
}
