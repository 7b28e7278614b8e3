package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/message"
	"github.com/get-relayed/go-relayed/serde"
	"github.com/get-relayed/go-relayed/version"
)

func appendDomainEvents(
	ctx context.Context,
	tx pgx.Tx,
	messageSerializer serde.Serializer[message.Message, []byte],
	id event.StreamID,
	expected version.Check,
	events ...event.Envelope,
) (version.Version, error) {
	row := tx.QueryRow(
		ctx,
		`SELECT version FROM event_streams WHERE event_stream_id = $1 FOR UPDATE`,
		id,
	)

	var oldVersion version.Version
	if err := row.Scan(&oldVersion); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("postgres.appendDomainEvents: failed to scan current event stream version, %w", err)
	}

	if v, ok := expected.(version.CheckExact); ok && oldVersion != version.Version(v) {
		return 0, fmt.Errorf(
			"postgres.appendDomainEvents: event stream version check failed, %w",
			version.ConflictError{
				Expected: version.Version(v),
				Actual:   oldVersion,
			},
		)
	}

	newVersion := oldVersion + version.Version(len(events))

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO event_streams (event_stream_id, version)
		VALUES ($1, $2)
		ON CONFLICT (event_stream_id) DO
		UPDATE SET version = $2`,
		id, newVersion,
	); err != nil {
		return 0, fmt.Errorf("postgres.appendDomainEvents: failed to update event stream, %w", err)
	}

	for i, evt := range events {
		stored := event.NewStored(id, oldVersion+version.Version(i)+1, evt)

		if err := appendDomainEvent(ctx, tx, messageSerializer, stored); err != nil {
			return 0, err
		}
	}

	return newVersion, nil
}

func appendDomainEvent(
	ctx context.Context,
	tx pgx.Tx,
	messageSerializer serde.Serializer[message.Message, []byte],
	stored event.Stored,
) error {
	data, err := messageSerializer.Serialize(stored.Message)
	if err != nil {
		return fmt.Errorf("postgres.appendDomainEvent: failed to serialize domain event, %w", err)
	}

	metadata, err := serializeMetadata(stored.Metadata)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(
		ctx,
		`INSERT INTO events (event_id, event_stream_id, "type", "version", event, metadata, occurred_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		stored.ID, stored.StreamID, stored.Name(), stored.Version,
		data, metadata, stored.OccurredAt, stored.Status,
	); err != nil {
		return fmt.Errorf("postgres.appendDomainEvent: failed to append new domain event to event store, %w", err)
	}

	return nil
}

func serializeMetadata(metadata message.Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("postgres.serializeMetadata: failed to marshal to json, %w", err)
	}

	return data, nil
}
