package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-relayed/go-relayed/inbox"
)

// Interface implementation assertion.
var _ inbox.Ledger = InboxLedger{}

// InboxLedger is an inbox.Ledger implementation targeted to PostgreSQL
// databases, using "inbox_records" as its deduplication table.
//
// MarkProcessed joins the transaction carried in the context through
// ContextWithTx, if any, so that the deduplication mark commits atomically
// with the consumer side effect.
type InboxLedger struct {
	Conn *pgxpool.Pool
}

func (l InboxLedger) executor(ctx context.Context) executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}

	return l.Conn
}

// IsProcessed implements inbox.Ledger.
func (l InboxLedger) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	row := l.executor(ctx).QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM inbox_records WHERE message_id = $1)`,
		messageID,
	)

	var processed bool
	if err := row.Scan(&processed); err != nil {
		return false, fmt.Errorf("postgres.InboxLedger: failed to check message, %w", err)
	}

	return processed, nil
}

// MarkProcessed implements inbox.Ledger. Marking the same message
// a second time is a no-op.
func (l InboxLedger) MarkProcessed(ctx context.Context, messageID string) error {
	if _, err := l.executor(ctx).Exec(
		ctx,
		`INSERT INTO inbox_records (message_id, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (message_id) DO NOTHING`,
		messageID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("postgres.InboxLedger: failed to mark message as processed, %w", err)
	}

	return nil
}
