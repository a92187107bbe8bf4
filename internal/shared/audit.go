package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog is one operator action stored in audit_logs.
type AuditLog struct {
	ActorID   string
	CompanyID string
	Action    string
	Entity    string
	EntityID  string
	Meta      map[string]any
	At        time.Time
}

func (l AuditLog) args() ([]any, error) {
	if l.Action == "" || l.Entity == "" || l.EntityID == "" {
		return nil, errors.New("audit log: action, entity and entity id are required")
	}
	meta, err := json.Marshal(l.Meta)
	if err != nil {
		return nil, fmt.Errorf("audit log: meta: %w", err)
	}
	var at any
	if !l.At.IsZero() {
		at = l.At.UTC()
	}
	return []any{l.ActorID, l.CompanyID, l.Action, l.Entity, l.EntityID, meta, at}, nil
}

const insertAuditSQL = `INSERT INTO audit_logs (actor_id, company_id, action, entity, entity_id, meta, occurred_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, COALESCE($7, NOW()))`

type auditDB interface {
	approvalDB
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// AuditLogger writes records into audit_logs. Without a pool it discards them.
type AuditLogger struct {
	db auditDB
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	l := &AuditLogger{}
	if pool != nil {
		l.db = pool
	}
	return l
}

// Record persists a single entry.
func (l *AuditLogger) Record(ctx context.Context, entry AuditLog) error {
	if l == nil || l.db == nil {
		return nil
	}
	args, err := entry.args()
	if err != nil {
		return err
	}
	if _, err := l.db.Exec(ctx, insertAuditSQL, args...); err != nil {
		return fmt.Errorf("audit log: insert: %w", err)
	}
	return nil
}

// RecordMany writes entries in one round-trip. Invalid entries abort the whole
// batch before anything is sent.
func (l *AuditLogger) RecordMany(ctx context.Context, entries ...AuditLog) error {
	if l == nil || l.db == nil || len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, entry := range entries {
		args, err := entry.args()
		if err != nil {
			return err
		}
		batch.Queue(insertAuditSQL, args...)
	}
	if err := l.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("audit log: batch insert: %w", err)
	}
	return nil
}

// AuditFromContext fills actor and company from the request context.
func AuditFromContext(ctx context.Context, action, entity, entityID string, meta map[string]any) AuditLog {
	return AuditLog{
		ActorID:   SessionFromContext(ctx).User(),
		CompanyID: CompanyFromContext(ctx),
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Meta:      meta,
	}
}
