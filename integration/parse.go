package integration

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Parse validates the provided JSON payload against the Integration Event
// wire schema and returns the typed envelope.
//
// EventID, EventName, EventVersion, TenantID and PartitionKey are mandatory:
// a FieldError naming the offending field is returned when any of them is
// missing or invalid. Optional fields that are absent, or carry a value of
// the wrong type, are left to their zero value.
func Parse(data []byte) (Event, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Event{}, fmt.Errorf("integration.Parse: payload is not a JSON object, %w", err)
	}

	return ParseRecord(payload)
}

// ParseRecord works like Parse, on an already-decoded untyped object.
func ParseRecord(payload map[string]any) (Event, error) {
	if payload == nil {
		return Event{}, FieldError{Field: "payload", Reason: "is not an object"}
	}

	evt := Event{
		Source:        optionalString(payload, "source"),
		ActorID:       optionalString(payload, "actorId"),
		RequestID:     optionalString(payload, "requestId"),
		CorrelationID: optionalString(payload, "correlationId"),
		CausationID:   optionalString(payload, "causationId"),
		Locale:        optionalString(payload, "locale"),
	}

	var err error

	if evt.EventID, err = requiredString(payload, "eventId"); err != nil {
		return Event{}, err
	}

	if evt.EventName, err = requiredString(payload, "eventName"); err != nil {
		return Event{}, err
	}

	if evt.EventVersion, err = requiredVersion(payload, "eventVersion"); err != nil {
		return Event{}, err
	}

	if evt.TenantID, err = requiredString(payload, "tenantId"); err != nil {
		return Event{}, err
	}

	if evt.PartitionKey, err = requiredString(payload, "partitionKey"); err != nil {
		return Event{}, err
	}

	if occurredAt, ok := payload["occurredAt"].(string); ok {
		if t, parseErr := time.Parse(time.RFC3339, occurredAt); parseErr == nil {
			evt.OccurredAt = t
		}
	}

	if scope := Scope(optionalString(payload, "scope")); scope == ScopeTenant || scope == ScopePlatform {
		evt.Scope = scope
	}

	switch classification := Classification(optionalString(payload, "classification")); classification {
	case ClassificationPublic, ClassificationInternal, ClassificationPII:
		evt.Classification = classification
	}

	if data, ok := payload["data"].(map[string]any); ok {
		// Round-trip through the encoder cannot fail on a decoded object.
		evt.Data, _ = json.Marshal(data)
	}

	return evt, nil
}

// IsValid reports whether the provided payload parses as a valid Integration
// Event envelope. It never panics nor returns an error: use it for
// best-effort filtering of malformed messages from untrusted sources.
func IsValid(data []byte) bool {
	_, err := Parse(data)
	return err == nil
}

func requiredString(payload map[string]any, field string) (string, error) {
	value, ok := payload[field]
	if !ok {
		return "", FieldError{Field: field, Reason: "is required"}
	}

	s, ok := value.(string)
	if !ok {
		return "", FieldError{Field: field, Reason: fmt.Sprintf("must be a string, got %T", value)}
	}

	if s == "" {
		return "", FieldError{Field: field, Reason: "must be a non-empty string"}
	}

	return s, nil
}

func requiredVersion(payload map[string]any, field string) (int, error) {
	value, ok := payload[field]
	if !ok {
		return 0, FieldError{Field: field, Reason: "is required"}
	}

	number, ok := value.(float64)
	if !ok {
		return 0, FieldError{Field: field, Reason: fmt.Sprintf("must be a number, got %T", value)}
	}

	if math.IsNaN(number) || math.IsInf(number, 0) || number != math.Trunc(number) {
		return 0, FieldError{Field: field, Reason: "must be a finite integer"}
	}

	if number < 1 {
		return 0, FieldError{Field: field, Reason: "must be greater than or equal to 1"}
	}

	return int(number), nil
}

func optionalString(payload map[string]any, field string) string {
	s, _ := payload[field].(string)
	return s
}
