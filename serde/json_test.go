package serde_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-relayed/go-relayed/serde"
)

type ticketState struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Closed  bool   `json:"closed"`
}

func TestJSON(t *testing.T) {
	stateSerde := serde.NewJSON(func() *ticketState { return new(ticketState) })

	t.Run("it works with valid data", func(t *testing.T) {
		state := &ticketState{
			ID:      "ticket-1",
			Subject: "printer is on fire",
			Closed:  true,
		}

		expected, err := json.Marshal(state)
		require.NoError(t, err)

		serialized, err := stateSerde.Serialize(state)
		assert.NoError(t, err)
		assert.Equal(t, expected, serialized)

		deserialized, err := stateSerde.Deserialize(serialized)
		assert.NoError(t, err)
		assert.Equal(t, state, deserialized)
	})

	t.Run("it fails deserialization of invalid json data", func(t *testing.T) {
		deserialized, err := stateSerde.Deserialize([]byte("{"))
		assert.Error(t, err)
		assert.Zero(t, deserialized)
	})

	t.Run("it works also with by-value semantics", func(t *testing.T) {
		byValueSerde := serde.NewJSON(func() ticketState { return ticketState{} })
		state := ticketState{ID: "ticket-2", Subject: "keyboard missing keys"}

		serialized, err := byValueSerde.Serialize(state)
		assert.NoError(t, err)
		assert.NotEmpty(t, serialized)

		deserialized, err := byValueSerde.Deserialize(serialized)
		assert.NoError(t, err)
		assert.Equal(t, state, deserialized)
	})
}

func TestFuse(t *testing.T) {
	upper := serde.Fuse[string, string](
		serde.SerializerFunc[string, string](func(src string) (string, error) {
			return strings.ToUpper(src), nil
		}),
		serde.DeserializerFunc[string, string](func(dst string) (string, error) {
			return strings.ToLower(dst), nil
		}),
	)

	serialized, err := upper.Serialize("hello")
	assert.NoError(t, err)
	assert.Equal(t, "HELLO", serialized)

	deserialized, err := upper.Deserialize(serialized)
	assert.NoError(t, err)
	assert.Equal(t, "hello", deserialized)
}
