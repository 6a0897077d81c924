package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cadastrahub/registry-api/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

// InsertAuditEvent appends one event to the audit_events collection.
func (r *AuditRepository) InsertAuditEvent(ctx context.Context, event *domain.AuditEvent) error {
	if _, err := r.col.InsertOne(ctx, auditDocument(event)); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes used to browse the trail per account and kind.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func auditDocument(e *domain.AuditEvent) bson.M {
	occurred := e.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	doc := bson.M{
		"kind":        string(e.Kind),
		"occurred_at": occurred.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if e.AccountID != 0 {
		doc["account_id"] = e.AccountID
	}
	if e.ActorID != 0 {
		doc["actor_id"] = e.ActorID
	}
	if e.Email != "" {
		doc["email"] = e.Email
	}
	if e.RemoteIP != "" {
		doc["remote_ip"] = e.RemoteIP
	}
	if e.Detail != "" {
		doc["detail"] = e.Detail
	}
	return doc
}
