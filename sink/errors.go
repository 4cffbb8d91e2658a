package sink

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCapabilities is returned when no source capabilities are known yet.
	ErrNoCapabilities = errors.New("no source capabilities")

	// ErrNoSelection is returned when an operation needs a selected capability.
	ErrNoSelection = errors.New("no capability selected")
)

// TransportError wraps a failed register transfer.
type TransportError struct {
	// Op is "read" or "write"
	Op string

	// Register is the register address of the transfer
	Register byte

	// Err is the error returned by the device
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s register 0x%02X: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// OutOfRangeError indicates that a requested value cannot be satisfied by
// the selected capability.
type OutOfRangeError struct {
	// Quantity is what was requested, e.g. "current"
	Quantity string

	// Unit of Requested and Limit, e.g. "mA"
	Unit string

	Requested uint32
	Limit     uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %d%s out of range: limit is %d%s",
		e.Quantity, e.Requested, e.Unit, e.Limit, e.Unit)
}

// IsOutOfRange returns true if err is or wraps an OutOfRangeError.
func IsOutOfRange(err error) bool {
	var e *OutOfRangeError
	return errors.As(err, &e)
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}
