package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-relayed/go-relayed/outbox"
)

// Interface implementation assertion.
var _ outbox.Store = OutboxStore{}

const uniqueViolationErrorCode = "23505"

// OutboxStore is an outbox.Store implementation targeted to PostgreSQL
// databases, using "outbox_records" as its staging table.
//
// Append joins the transaction carried in the context through ContextWithTx,
// if any: this is how records get staged atomically with the aggregate write
// that produced them (see AggregateRepository.Save).
type OutboxStore struct {
	Conn *pgxpool.Pool
}

func (s OutboxStore) executor(ctx context.Context) executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}

	return s.Conn
}

// Append implements outbox.Store, staging the provided records as pending.
//
// An outbox.DuplicateRecordError is returned when one of the records carries
// a message id that has already been staged.
func (s OutboxStore) Append(ctx context.Context, records ...outbox.Record) error {
	exec := s.executor(ctx)

	for _, record := range records {
		if _, err := exec.Exec(
			ctx,
			`INSERT INTO outbox_records
			(message_id, event_type, occurred_at, schema_version, tenant_id, user_id, request_id,
			 payload, status, attempts, next_attempt_at, last_error, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			record.MessageID, record.EventType, record.OccurredAt, record.SchemaVersion,
			record.TenantID, record.UserID, record.RequestID, record.Payload,
			record.Status, record.Attempts, record.NextAttemptAt, record.LastError,
			record.CreatedAt, record.UpdatedAt,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErrorCode {
				return fmt.Errorf(
					"postgres.OutboxStore: failed to stage record, %w",
					outbox.DuplicateRecordError{MessageID: record.MessageID},
				)
			}

			return fmt.Errorf("postgres.OutboxStore: failed to stage record, %w", err)
		}
	}

	return nil
}

// ListPending implements outbox.Store, returning the pending records due for
// publication at the requested time, oldest first.
//
// Rows are selected with FOR UPDATE SKIP LOCKED: when ListPending runs inside
// a transaction carried through ContextWithTx, concurrent relays skip each
// other's claimed batches instead of publishing them twice.
func (s OutboxStore) ListPending(ctx context.Context, req outbox.ListPendingRequest) ([]outbox.Record, error) {
	rows, err := s.executor(ctx).Query(
		ctx,
		`SELECT message_id, event_type, occurred_at, schema_version, tenant_id, user_id, request_id,
		payload, status, attempts, next_attempt_at, last_error, created_at, updated_at
		FROM outbox_records
		WHERE status = $1 AND next_attempt_at <= $2
		ORDER BY occurred_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED`,
		outbox.StatusPending, req.Now, req.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres.OutboxStore: failed to query outbox records, %w", err)
	}

	defer rows.Close()

	var records []outbox.Record

	for rows.Next() {
		var record outbox.Record

		if err := rows.Scan(
			&record.MessageID, &record.EventType, &record.OccurredAt, &record.SchemaVersion,
			&record.TenantID, &record.UserID, &record.RequestID, &record.Payload,
			&record.Status, &record.Attempts, &record.NextAttemptAt, &record.LastError,
			&record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres.OutboxStore: failed to scan next row, %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.OutboxStore: failed while reading rows, %w", err)
	}

	return records, nil
}

// MarkPublished implements outbox.Store, transitioning the addressed record
// to the published terminal status.
func (s OutboxStore) MarkPublished(ctx context.Context, messageID uuid.UUID) error {
	tag, err := s.executor(ctx).Exec(
		ctx,
		`UPDATE outbox_records SET status = $1, updated_at = $2 WHERE message_id = $3`,
		outbox.StatusPublished, time.Now().UTC(), messageID,
	)
	if err != nil {
		return fmt.Errorf("postgres.OutboxStore: failed to mark record as published, %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf(
			"postgres.OutboxStore: failed to mark record as published, %w",
			outbox.RecordNotFoundError{MessageID: messageID},
		)
	}

	return nil
}

// MarkFailed implements outbox.Store, recording a failed publication attempt
// and the time the record becomes due again.
func (s OutboxStore) MarkFailed(ctx context.Context, req outbox.MarkFailedRequest) error {
	var lastError string
	if req.LastError != nil {
		lastError = req.LastError.Error()
	}

	tag, err := s.executor(ctx).Exec(
		ctx,
		`UPDATE outbox_records
		SET attempts = $1, next_attempt_at = $2, last_error = $3, updated_at = $4
		WHERE message_id = $5`,
		req.Attempts, req.NextAttemptAt, lastError, time.Now().UTC(), req.MessageID,
	)
	if err != nil {
		return fmt.Errorf("postgres.OutboxStore: failed to mark record as failed, %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf(
			"postgres.OutboxStore: failed to mark record as failed, %w",
			outbox.RecordNotFoundError{MessageID: req.MessageID},
		)
	}

	return nil
}
