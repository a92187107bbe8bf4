package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ApprovalAction enumerates approval log actions.
type ApprovalAction string

const (
	ApprovalSubmit  ApprovalAction = "SUBMIT"
	ApprovalApprove ApprovalAction = "APPROVE"
	ApprovalReject  ApprovalAction = "REJECT"
	// ApprovalSelect marks a quotation chosen for a purchase order.
	ApprovalSelect ApprovalAction = "SELECT"
)

// ApprovalLog is one workflow decision taken through the console.
type ApprovalLog struct {
	ID      int64          `db:"id" json:"id"`
	Module  string         `db:"module" json:"module"`
	RefID   uuid.UUID      `db:"ref_id" json:"refId"`
	ActorID string         `db:"actor_id" json:"actorId"`
	Action  ApprovalAction `db:"action" json:"action"`
	Note    string         `db:"note" json:"note"`
	At      time.Time      `db:"at" json:"at"`
}

func (l ApprovalLog) validate() error {
	var errs []error
	if l.Module == "" {
		errs = append(errs, errors.New("module required"))
	}
	if l.RefID == uuid.Nil {
		errs = append(errs, errors.New("ref id required"))
	}
	if l.Action == "" {
		errs = append(errs, errors.New("action required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("approval log: %w", errors.Join(errs...))
	}
	return nil
}

type approvalDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ApprovalRecorder mirrors decisions into the local approvals table. The
// backend stays authoritative for document status; a recorder without a pool
// silently drops writes.
type ApprovalRecorder struct {
	db     approvalDB
	logger *slog.Logger
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ApprovalRecorder {
	r := &ApprovalRecorder{logger: logger}
	if pool != nil {
		r.db = pool
	}
	return r
}

// ApprovalRef derives the stable reference id for a backend document.
func ApprovalRef(module, documentID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(module+":"+documentID))
}

const (
	insertApprovalSQL = `INSERT INTO approvals (module, ref_id, actor_id, action, note, at)
VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`
	selectApprovalsSQL = `SELECT id, module, ref_id, actor_id, action, note, at
FROM approvals WHERE module = $1 AND ref_id = $2 ORDER BY at, id`
)

// Record appends an entry. A zero At is stamped by the database.
func (r *ApprovalRecorder) Record(ctx context.Context, entry ApprovalLog) error {
	if r == nil || r.db == nil {
		return nil
	}
	if err := entry.validate(); err != nil {
		return err
	}
	var at any
	if !entry.At.IsZero() {
		at = entry.At.UTC()
	}
	if _, err := r.db.Exec(ctx, insertApprovalSQL,
		entry.Module, entry.RefID, entry.ActorID, string(entry.Action), entry.Note, at); err != nil {
		if r.logger != nil {
			r.logger.Error("record approval",
				slog.String("module", entry.Module),
				slog.String("action", string(entry.Action)),
				slog.Any("error", err))
		}
		return fmt.Errorf("record approval: %w", err)
	}
	return nil
}

// List returns the trail for one document, oldest first.
func (r *ApprovalRecorder) List(ctx context.Context, module string, ref uuid.UUID) ([]ApprovalLog, error) {
	if r == nil || r.db == nil {
		return []ApprovalLog{}, nil
	}
	rows, err := r.db.Query(ctx, selectApprovalsSQL, module, ref)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	logs, err := pgx.CollectRows(rows, pgx.RowToStructByName[ApprovalLog])
	if err != nil {
		return nil, fmt.Errorf("scan approvals: %w", err)
	}
	return logs, nil
}
