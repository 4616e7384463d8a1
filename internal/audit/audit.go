// Package audit appends immutable action records for user-facing mutations.
// Handlers write entries best effort; the admin API reads them back.
package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Entry is one recorded action. EntityType names the aggregate ("transaction",
// "wallet", "debt") and EntityID its identifier.
type Entry struct {
	UserID     *string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	UserAgent  *string
	Metadata   []byte
}

// Write inserts an audit row. A nil pool is a no-op so tests and tools can
// run without audit storage.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var metadata any
	if len(e.Metadata) > 0 {
		metadata = json.RawMessage(e.Metadata)
	}

	_, err := db.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
		 VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata,
	)
	return errors.Wrap(err, "write audit entry")
}
