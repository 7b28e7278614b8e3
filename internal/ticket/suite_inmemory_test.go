package ticket_test

import (
	"testing"

	"github.com/get-relayed/go-relayed/event"
	"github.com/get-relayed/go-relayed/internal/ticket"
)

func TestEventStoreSuiteInMemory(t *testing.T) {
	ticket.EventStoreSuite(event.NewInMemoryStore())(t)
}
