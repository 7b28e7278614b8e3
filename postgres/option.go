package postgres

import "github.com/get-relayed/go-relayed/aggregate"

// Option can be used to change the configuration of an object.
type Option[T any] interface {
	apply(T)
}

type option[T any] func(T)

func newOption[T any](f func(T)) option[T] { return option[T](f) }

func (apply option[T]) apply(val T) { apply(val) }

// WithOutbox configures an AggregateRepository to stage Integration Events
// on the provided outbox store during Save, inside the same transaction as
// the aggregate state and Domain Events writes.
//
// The mapper decides which Domain Events have an external representation
// and how they translate to the Integration Event contract.
func WithOutbox[I aggregate.ID, T aggregate.Root[I]](
	store *OutboxStore,
	mapper IntegrationMapper[I, T],
) Option[*AggregateRepository[I, T]] {
	return newOption(func(repository *AggregateRepository[I, T]) {
		repository.outboxStore = store
		repository.outboxMapper = mapper
	})
}
