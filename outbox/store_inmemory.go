package outbox

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Interface implementation assertion.
var _ Store = new(InMemoryStore)

// InMemoryStore is a thread-safe, in-memory outbox.Store implementation.
//
// Pending records are handed out without row claiming, so the at-least-once
// and ordering guarantees only hold with a single Relay instance draining
// the store. Use postgres.OutboxStore when running multiple relays.
type InMemoryStore struct {
	mx      sync.RWMutex
	records map[uuid.UUID]Record
}

// NewInMemoryStore creates a new outbox.InMemoryStore instance.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[uuid.UUID]Record),
	}
}

// Append stages the provided Records for publication.
//
// A DuplicateRecordError is returned if any of the message ids
// has already been staged.
func (s *InMemoryStore) Append(_ context.Context, records ...Record) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	for _, record := range records {
		if _, ok := s.records[record.MessageID]; ok {
			return DuplicateRecordError{MessageID: record.MessageID}
		}
	}

	for _, record := range records {
		s.records[record.MessageID] = record
	}

	return nil
}

// ListPending returns the pending Records due at the provided time,
// ordered by occurrence time ascending, up to the provided limit.
func (s *InMemoryStore) ListPending(_ context.Context, req ListPendingRequest) ([]Record, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	var pending []Record

	for _, record := range s.records {
		if record.Status != StatusPending {
			continue
		}

		if record.NextAttemptAt.After(req.Now) {
			continue
		}

		pending = append(pending, record)
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].OccurredAt.Before(pending[j].OccurredAt)
	})

	if req.Limit > 0 && len(pending) > req.Limit {
		pending = pending[:req.Limit]
	}

	return pending, nil
}

// MarkPublished transitions the addressed Record to the terminal
// published status.
func (s *InMemoryStore) MarkPublished(_ context.Context, messageID uuid.UUID) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	record, ok := s.records[messageID]
	if !ok {
		return RecordNotFoundError{MessageID: messageID}
	}

	record.Status = StatusPublished
	record.UpdatedAt = time.Now().UTC()
	s.records[messageID] = record

	return nil
}

// MarkFailed records a failed publication attempt on the addressed Record,
// which stays pending and becomes due again at the requested time.
func (s *InMemoryStore) MarkFailed(_ context.Context, req MarkFailedRequest) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	record, ok := s.records[req.MessageID]
	if !ok {
		return RecordNotFoundError{MessageID: req.MessageID}
	}

	record.Attempts = req.Attempts
	record.NextAttemptAt = req.NextAttemptAt
	record.UpdatedAt = time.Now().UTC()

	if req.LastError != nil {
		record.LastError = req.LastError.Error()
	}

	s.records[req.MessageID] = record

	return nil
}
