package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/serde"
	"github.com/get-relayed/go-relayed/version"
)

// Interface implementation assertion.
var _ event.Store = EventStore{}

// EventStore is an event.Store implementation targeted to PostgreSQL databases.
//
// The implementation uses "event_streams" and "events" as its operational
// tables, both created by RunMigrations. Appends are transactional and
// guarded by an optimistic version check on the Event Stream row.
type EventStore struct {
	Conn  *pgxpool.Pool
	Serde serde.Bytes[message.Message]
}

// Stream implements the event.Streamer interface.
func (es EventStore) Stream(
	ctx context.Context,
	stream event.StreamWrite,
	id event.StreamID,
	selector version.Selector,
) error {
	defer close(stream)

	rows, err := es.Conn.Query(
		ctx,
		`SELECT event_id, "version", event, metadata, occurred_at, status FROM events
		WHERE event_stream_id = $1 AND "version" >= $2
		ORDER BY "version"`,
		id, selector.From,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("postgres.EventStore: failed to query events table, %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		var (
			rawEvent    []byte
			rawMetadata json.RawMessage
		)

		stored := event.Stored{
			StreamID: id,
		}

		if err := rows.Scan(
			&stored.ID, &stored.Version, &rawEvent,
			&rawMetadata, &stored.OccurredAt, &stored.Status,
		); err != nil {
			return fmt.Errorf("postgres.EventStore: failed to scan next row, %w", err)
		}

		msg, err := es.Serde.Deserialize(rawEvent)
		if err != nil {
			return fmt.Errorf("postgres.EventStore: failed to deserialize event, %w", err)
		}

		stored.Message = msg

		if rawMetadata != nil {
			if err := json.Unmarshal(rawMetadata, &stored.Metadata); err != nil {
				return fmt.Errorf("postgres.EventStore: failed to deserialize metadata, %w", err)
			}
		}

		select {
		case stream <- stored:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres.EventStore: failed while reading rows, %w", err)
	}

	return nil
}

// Append implements the event.Appender interface.
//
// A version.ConflictError wrapped in the returned error reports a failed
// optimistic version check, caused by a concurrent Append on the same
// Event Stream.
func (es EventStore) Append(
	ctx context.Context,
	id event.StreamID,
	expected version.Check,
	events ...event.Envelope,
) (version.Version, error) {
	var newVersion version.Version

	err := RunTransaction(
		ctx,
		es.Conn,
		pgx.TxOptions{
			IsoLevel:   pgx.ReadCommitted,
			AccessMode: pgx.ReadWrite,
		},
		func(ctx context.Context, tx pgx.Tx) error {
			v, err := appendDomainEvents(ctx, tx, es.Serde, id, expected, events...)
			if err != nil {
				return err
			}

			newVersion = v

			return nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("postgres.EventStore: failed to append domain events, %w", err)
	}

	return newVersion, nil
}
