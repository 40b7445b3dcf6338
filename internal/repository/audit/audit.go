// Package audit appends administrative actions to audit_logs.
package audit

import (
	"context"
	"encoding/json"

	"ralli/internal/domain"
	"ralli/internal/repository/pgutil"
)

// Write inserts e using db, normally the transaction that performed the
// audited change so both commit together.
func Write(ctx context.Context, db pgutil.DBTX, e domain.AuditEntry) error {
	detail := e.Detail
	if detail == nil {
		detail = map[string]interface{}{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO audit_logs (actor_id, action, target_type, target_id, detail)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = db.Exec(ctx, q, e.ActorID, e.Action, e.TargetType, e.TargetID, payload)
	return err
}
