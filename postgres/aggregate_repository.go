package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/get-relayed/go-relayed/aggregate"
	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/integration"
	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/outbox"
	"github.com/get-relayed/go-relayed/serde"
	"github.com/get-relayed/go-relayed/version"
)

// IntegrationMapper translates a freshly-recorded Domain Event into the
// Integration Event to stage on the outbox, or (zero, false, nil) when the
// Domain Event has no external representation and must not be published.
type IntegrationMapper[I aggregate.ID, T aggregate.Root[I]] func(
	root T,
	evt event.Envelope,
) (integration.Event, bool, error)

// AggregateRepository implements the aggregate.Repository interface for
// PostgreSQL databases, saving the Aggregate Root as a state snapshot next
// to its recorded Domain Events.
//
// When configured with WithOutbox, Save also stages the Integration Events
// derived from the recorded Domain Events onto the outbox, all within the
// same database transaction as the state and event writes. A process crash
// at any point either commits everything, aggregate state, Domain Events and
// staged records, or nothing.
type AggregateRepository[I aggregate.ID, T aggregate.Root[I]] struct {
	conn           *pgxpool.Pool
	aggregateSerde serde.Bytes[T]
	messageSerde   serde.Bytes[message.Message]

	outboxStore  *OutboxStore
	outboxMapper IntegrationMapper[I, T]
}

// NewAggregateRepository returns a new AggregateRepository instance.
func NewAggregateRepository[I aggregate.ID, T aggregate.Root[I]](
	conn *pgxpool.Pool,
	aggregateSerde serde.Bytes[T],
	messageSerde serde.Bytes[message.Message],
	options ...Option[*AggregateRepository[I, T]],
) *AggregateRepository[I, T] {
	repo := &AggregateRepository[I, T]{
		conn:           conn,
		aggregateSerde: aggregateSerde,
		messageSerde:   messageSerde,
	}

	for _, opt := range options {
		opt.apply(repo)
	}

	return repo
}

// Get implements the aggregate.Getter interface, rehydrating the Aggregate
// Root from its latest state snapshot.
//
// aggregate.ErrRootNotFound is returned when no snapshot exists for the id.
func (repo AggregateRepository[I, T]) Get(ctx context.Context, id I) (T, error) {
	var zeroValue T

	row := repo.conn.QueryRow(
		ctx,
		`SELECT "version", state FROM aggregates WHERE aggregate_id = $1`,
		id.String(),
	)

	var (
		v     version.Version
		state []byte
	)

	err := row.Scan(&v, &state)

	if errors.Is(err, pgx.ErrNoRows) {
		return zeroValue, aggregate.ErrRootNotFound
	}

	if err != nil {
		return zeroValue, fmt.Errorf("postgres.AggregateRepository: failed to fetch aggregate state, %w", err)
	}

	root, err := aggregate.RehydrateFromState[I, T](v, state, repo.aggregateSerde)
	if err != nil {
		return zeroValue, fmt.Errorf("postgres.AggregateRepository: failed to rehydrate aggregate root, %w", err)
	}

	return root, nil
}

// Save implements the aggregate.Saver interface.
//
// The state snapshot upsert, the Domain Events append (with its optimistic
// version check) and the outbox staging, when configured, all run in a single
// transaction: a version.ConflictError from a concurrent writer rolls back
// every write.
func (repo AggregateRepository[I, T]) Save(ctx context.Context, root T) error {
	events := root.FlushRecordedEvents()
	if len(events) == 0 {
		return nil
	}

	expectedVersion := version.CheckExact(root.Version() - version.Version(len(events)))

	err := RunTransaction(
		ctx,
		repo.conn,
		pgx.TxOptions{
			IsoLevel:   pgx.ReadCommitted,
			AccessMode: pgx.ReadWrite,
		},
		func(ctx context.Context, tx pgx.Tx) error {
			if err := repo.saveAggregateState(ctx, tx, root); err != nil {
				return err
			}

			streamID := event.StreamID(root.AggregateID().String())

			if _, err := appendDomainEvents(ctx, tx, repo.messageSerde, streamID, expectedVersion, events...); err != nil {
				return err
			}

			return repo.stageOutboxRecords(ctx, root, events)
		},
	)
	if err != nil {
		return fmt.Errorf("postgres.AggregateRepository: failed to save aggregate root, %w", err)
	}

	return nil
}

func (repo AggregateRepository[I, T]) saveAggregateState(ctx context.Context, tx pgx.Tx, root T) error {
	state, err := repo.aggregateSerde.Serialize(root)
	if err != nil {
		return fmt.Errorf("failed to serialize aggregate state, %w", err)
	}

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO aggregates (aggregate_id, "version", state)
		VALUES ($1, $2, $3)
		ON CONFLICT (aggregate_id) DO
		UPDATE SET "version" = $2, state = $3`,
		root.AggregateID().String(), root.Version(), state,
	); err != nil {
		return fmt.Errorf("failed to save aggregate state, %w", err)
	}

	return nil
}

func (repo AggregateRepository[I, T]) stageOutboxRecords(ctx context.Context, root T, events []event.Envelope) error {
	if repo.outboxStore == nil || repo.outboxMapper == nil {
		return nil
	}

	records := make([]outbox.Record, 0, len(events))

	for _, evt := range events {
		integrationEvent, ok, err := repo.outboxMapper(root, evt)
		if err != nil {
			return fmt.Errorf("failed to map domain event to integration event, %w", err)
		}

		if !ok {
			continue
		}

		record, err := outbox.NewRecord(integrationEvent)
		if err != nil {
			return fmt.Errorf("failed to build outbox record, %w", err)
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return nil
	}

	// The transaction is carried in ctx, so the staging joins this commit.
	if err := repo.outboxStore.Append(ctx, records...); err != nil {
		return fmt.Errorf("failed to stage outbox records, %w", err)
	}

	return nil
}
