package protocol

import "fmt"

// DecodeError reports a record that could not be decoded.
type DecodeError struct {
	// Offset is the byte offset of the record within its block
	Offset int

	// Length is the number of bytes that were available
	Length int

	// Reason describes what was wrong
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record at offset %d (%d bytes): %s", e.Offset, e.Length, e.Reason)
}

// IsDecodeError returns true if the error is a DecodeError.
func IsDecodeError(err error) bool {
	_, ok := err.(*DecodeError)
	return ok
}
