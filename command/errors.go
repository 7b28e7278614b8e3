package command

import "fmt"

// DuplicateHandlerError is returned by Bus.Register when a Handler has
// already been registered for the same Command name.
//
// One Handler per Command type is a hard invariant of the dispatch layer:
// treat this error as a fatal configuration error during startup wiring.
type DuplicateHandlerError struct {
	CommandName string
}

func (err DuplicateHandlerError) Error() string {
	return fmt.Sprintf("command.Bus: handler already registered for command '%s'", err.CommandName)
}

// HandlerNotFoundError is returned by Bus.Dispatch when no Handler has been
// registered for the name of the dispatched Command.
type HandlerNotFoundError struct {
	CommandName string
}

func (err HandlerNotFoundError) Error() string {
	return fmt.Sprintf("command.Bus: no handler registered for command '%s'", err.CommandName)
}

// UnexpectedCommandError is returned by a Handler adapted through AsGeneric
// when the dispatched Command has the registered name but an unexpected
// concrete type.
type UnexpectedCommandError struct {
	Command Command
}

func (err UnexpectedCommandError) Error() string {
	return fmt.Sprintf("command: unexpected command type, %T", err.Command)
}
