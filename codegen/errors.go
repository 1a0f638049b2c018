package codegen

import "errors"

var (
	// ErrUnimplemented is returned for an operator or construct the emitter
	// has no lowering for.
	ErrUnimplemented = errors.New("unimplemented")

	// ErrUnboundIdentifier is returned when a register is requested for a
	// name that scope resolution could not find.
	ErrUnboundIdentifier = errors.New("unbound identifier")

	// ErrArgumentsUnavailable is returned when the arguments object is
	// requested in a scope that never declared use of it.
	ErrArgumentsUnavailable = errors.New("arguments object not available")

	// ErrUnboundLabel is returned by Finish when a jump targets a label
	// that was never bound.
	ErrUnboundLabel = errors.New("label referenced but never bound")

	// ErrFinished is returned when emitting into a finished generator.
	ErrFinished = errors.New("generator already finished")
)
