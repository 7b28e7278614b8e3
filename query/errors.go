package query

import "fmt"

// DuplicateHandlerError is returned by Bus.Register when a Handler has
// already been registered for the same Query name.
//
// One Handler per Query type is a hard invariant of the dispatch layer:
// treat this error as a fatal configuration error during startup wiring.
type DuplicateHandlerError struct {
	QueryName string
}

func (err DuplicateHandlerError) Error() string {
	return fmt.Sprintf("query.Bus: handler already registered for query '%s'", err.QueryName)
}

// HandlerNotFoundError is returned by Bus.Dispatch when no Handler has been
// registered for the name of the dispatched Query.
type HandlerNotFoundError struct {
	QueryName string
}

func (err HandlerNotFoundError) Error() string {
	return fmt.Sprintf("query.Bus: no handler registered for query '%s'", err.QueryName)
}

// UnexpectedQueryError is returned by a Handler adapted through AsGeneric
// when the dispatched Query has the registered name but an unexpected
// concrete type.
type UnexpectedQueryError struct {
	Query Query
}

func (err UnexpectedQueryError) Error() string {
	return fmt.Sprintf("query: unexpected query type, %T", err.Query)
}
