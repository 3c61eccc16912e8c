package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phantom-spire/core-studio/src/model"
	"github.com/phantom-spire/core-studio/src/synth"
)

// AuditEntry is one recorded project mutation.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordAudit appends one entry to the audit log.
func (s *Store) RecordAudit(ctx context.Context, actor, action, subject string) error {
	_, err := s.db.Handle().ExecContext(ctx, s.db.Rebind(
		`INSERT INTO audit_log (id, actor, action, subject, created_at)
		 VALUES (?, ?, ?, ?, ?)`),
		synth.ULID(), actor, action, subject, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", errors.Join(err, model.ErrDatabase))
	}
	return nil
}

// RecentAudit returns the newest limit audit entries.
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Handle().QueryContext(ctx, s.db.Rebind(
		`SELECT id, actor, action, subject, created_at
		 FROM audit_log ORDER BY id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", errors.Join(err, model.ErrDatabase))
	}
	defer rows.Close()

	list := make([]*AuditEntry, 0, limit)
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Subject, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", errors.Join(err, model.ErrDatabase))
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", errors.Join(err, model.ErrDatabase))
	}
	return list, nil
}
