package integration_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/integration"
)

func validPayload() map[string]any {
	return map[string]any{
		"eventId":      "event-1",
		"eventName":    "support.ticket.opened",
		"eventVersion": float64(1),
		"tenantId":     "tenant-1",
		"partitionKey": "ticket-1",
	}
}

func marshalPayload(t *testing.T, payload map[string]any) []byte {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	return data
}

func TestParse(t *testing.T) {
	t.Run("a payload with all required fields parses", func(t *testing.T) {
		evt, err := integration.Parse(marshalPayload(t, validPayload()))
		require.NoError(t, err)

		assert.Equal(t, "event-1", evt.EventID)
		assert.Equal(t, "support.ticket.opened", evt.EventName)
		assert.Equal(t, 1, evt.EventVersion)
		assert.Equal(t, "tenant-1", evt.TenantID)
		assert.Equal(t, "ticket-1", evt.PartitionKey)
	})

	t.Run("each missing required field is named in the error", func(t *testing.T) {
		for _, field := range []string{"eventId", "eventName", "eventVersion", "tenantId", "partitionKey"} {
			t.Run(field, func(t *testing.T) {
				payload := validPayload()
				delete(payload, field)

				_, err := integration.Parse(marshalPayload(t, payload))

				var fieldErr integration.FieldError

				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, field, fieldErr.Field)
			})
		}
	})

	t.Run("an empty required string is rejected", func(t *testing.T) {
		payload := validPayload()
		payload["tenantId"] = ""

		_, err := integration.Parse(marshalPayload(t, payload))

		var fieldErr integration.FieldError

		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "tenantId", fieldErr.Field)
	})

	t.Run("a required field of the wrong type is rejected", func(t *testing.T) {
		payload := validPayload()
		payload["eventId"] = 42

		_, err := integration.Parse(marshalPayload(t, payload))

		var fieldErr integration.FieldError

		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "eventId", fieldErr.Field)
	})

	t.Run("the event version must be an integer greater than or equal to 1", func(t *testing.T) {
		for name, value := range map[string]any{
			"zero":       float64(0),
			"negative":   float64(-1),
			"fractional": 1.5,
			"string":     "1",
		} {
			t.Run(name, func(t *testing.T) {
				payload := validPayload()
				payload["eventVersion"] = value

				_, err := integration.Parse(marshalPayload(t, payload))

				var fieldErr integration.FieldError

				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, "eventVersion", fieldErr.Field)
			})
		}
	})

	t.Run("optional fields are preserved when present", func(t *testing.T) {
		payload := validPayload()
		payload["source"] = "support-service"
		payload["actorId"] = "user-1"
		payload["requestId"] = "request-1"
		payload["correlationId"] = "correlation-1"
		payload["causationId"] = "causation-1"
		payload["locale"] = "en-US"
		payload["occurredAt"] = "2024-05-10T15:04:05Z"
		payload["scope"] = "platform"
		payload["classification"] = "pii"
		payload["data"] = map[string]any{"subject": "hello"}

		evt, err := integration.Parse(marshalPayload(t, payload))
		require.NoError(t, err)

		assert.Equal(t, "support-service", evt.Source)
		assert.Equal(t, "user-1", evt.ActorID)
		assert.Equal(t, "request-1", evt.RequestID)
		assert.Equal(t, "correlation-1", evt.CorrelationID)
		assert.Equal(t, "causation-1", evt.CausationID)
		assert.Equal(t, "en-US", evt.Locale)
		assert.Equal(t, time.Date(2024, 5, 10, 15, 4, 5, 0, time.UTC), evt.OccurredAt)
		assert.Equal(t, integration.ScopePlatform, evt.Scope)
		assert.Equal(t, integration.ClassificationPII, evt.Classification)
		assert.JSONEq(t, `{"subject":"hello"}`, string(evt.Data))
	})

	t.Run("optional fields of the wrong type are left to their zero value", func(t *testing.T) {
		payload := validPayload()
		payload["source"] = 42
		payload["occurredAt"] = "not-a-timestamp"
		payload["scope"] = "galaxy"
		payload["classification"] = "secret"
		payload["data"] = "not-an-object"

		evt, err := integration.Parse(marshalPayload(t, payload))
		require.NoError(t, err)

		assert.Empty(t, evt.Source)
		assert.True(t, evt.OccurredAt.IsZero())
		assert.Empty(t, evt.Scope)
		assert.Empty(t, evt.Classification)
		assert.Nil(t, evt.Data)
	})

	t.Run("a non-object payload is rejected", func(t *testing.T) {
		_, err := integration.Parse([]byte(`"just a string"`))
		assert.Error(t, err)

		_, err = integration.Parse([]byte(`null`))
		assert.Error(t, err)
	})
}

func TestIsValid(t *testing.T) {
	assert.True(t, integration.IsValid(marshalPayload(t, validPayload())))

	for name, data := range map[string][]byte{
		"empty":          {},
		"garbage":        []byte("{{{{"),
		"null":           []byte("null"),
		"array":          []byte("[1,2,3]"),
		"missing fields": []byte(`{"eventId":"event-1"}`),
	} {
		t.Run(name, func(t *testing.T) {
			assert.False(t, integration.IsValid(data))
		})
	}
}

func TestEventForTenant(t *testing.T) {
	t.Run("an empty envelope tenant adopts the authenticated one", func(t *testing.T) {
		evt := integration.Event{EventName: "support.ticket.opened"}

		trusted, err := evt.ForTenant("tenant-1")
		require.NoError(t, err)
		assert.Equal(t, "tenant-1", trusted.TenantID)
	})

	t.Run("a matching envelope tenant is kept", func(t *testing.T) {
		evt := integration.New("support.ticket.opened", 1, "tenant-1", "ticket-1")

		trusted, err := evt.ForTenant("tenant-1")
		require.NoError(t, err)
		assert.Equal(t, "tenant-1", trusted.TenantID)
	})

	t.Run("a mismatching envelope tenant is rejected", func(t *testing.T) {
		evt := integration.New("support.ticket.opened", 1, "tenant-1", "ticket-1")

		_, err := evt.ForTenant("tenant-2")

		var mismatchErr integration.TenantMismatchError

		require.ErrorAs(t, err, &mismatchErr)
		assert.Equal(t, "tenant-1", mismatchErr.Envelope)
		assert.Equal(t, "tenant-2", mismatchErr.Authenticated)
	})
}

func TestNew(t *testing.T) {
	evt := integration.New("support.ticket.opened", 1, "tenant-1", "ticket-1")

	assert.NotEmpty(t, evt.EventID)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.Equal(t, integration.ScopeTenant, evt.Scope)

	other := integration.New("support.ticket.opened", 1, "tenant-1", "ticket-1")
	assert.NotEqual(t, evt.EventID, other.EventID)
}
