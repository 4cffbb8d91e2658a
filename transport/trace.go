package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"periph.io/x/conn/v3"
)

// Op classifies a register transfer.
type Op uint8

const (
	// OpRead is a register read: the write half carries only the address.
	OpRead Op = 0
	// OpWrite is a register write with no read half.
	OpWrite Op = 1
	// OpWriteRead is a write followed by a read in one transaction.
	OpWriteRead Op = 2
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpWriteRead:
		return "WRITE_READ"
	default:
		return "UNKNOWN"
	}
}

// TraceEvent is one recorded register transfer.
// CBOR encoding uses integer keys for compactness.
type TraceEvent struct {
	// Timestamp when the transfer completed.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the recorder that captured the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Seq is the 0-based index of the transfer within the session.
	Seq uint64 `cbor:"3,keyasint"`

	// Op classifies the transfer.
	Op Op `cbor:"4,keyasint"`

	// Register is the first byte of the write half.
	Register uint8 `cbor:"5,keyasint"`

	// Write is the payload written after the register address.
	Write []byte `cbor:"6,keyasint,omitempty"`

	// Read is the data returned by the device.
	Read []byte `cbor:"7,keyasint,omitempty"`

	// ReadLen is the number of bytes requested.
	ReadLen int `cbor:"8,keyasint,omitempty"`

	// Error is the device error, if the transfer failed.
	Error string `cbor:"9,keyasint,omitempty"`
}

func (e TraceEvent) String() string {
	s := fmt.Sprintf("#%d %s reg=0x%02X", e.Seq, e.Op, e.Register)
	if len(e.Write) > 0 {
		s += fmt.Sprintf(" w=[% X]", e.Write)
	}
	if e.ReadLen > 0 {
		s += fmt.Sprintf(" r=[% X]", e.Read)
	}
	if e.Error != "" {
		s += " err=" + e.Error
	}
	return s
}

// Recorder wraps a register device and records every transfer.
// It is safe for concurrent use from multiple goroutines.
type Recorder struct {
	dev       conn.Conn
	encoder   *cbor.Encoder
	sessionID string

	mu     sync.Mutex
	seq    uint64
	encErr error
}

// NewRecorder returns a Recorder that forwards transfers to dev and appends
// a CBOR TraceEvent per transfer to w.
func NewRecorder(dev conn.Conn, w io.Writer) *Recorder {
	return &Recorder{
		dev:       dev,
		encoder:   traceEncMode.NewEncoder(w),
		sessionID: uuid.New().String(),
	}
}

// SessionID returns the UUID stamped on every event of this recorder.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Err returns the first error encountered while writing the trace.
// Trace write failures never fail the transfer itself.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.encErr
}

func (r *Recorder) String() string {
	return "trace(" + r.dev.String() + ")"
}

func (r *Recorder) Duplex() conn.Duplex {
	return r.dev.Duplex()
}

// Tx forwards the transfer and records its outcome.
func (r *Recorder) Tx(w, rd []byte) error {
	err := r.dev.Tx(w, rd)

	ev := TraceEvent{
		Timestamp: time.Now(),
		SessionID: r.sessionID,
		Op:        classify(w, rd),
		ReadLen:   len(rd),
	}
	if len(w) > 0 {
		ev.Register = w[0]
		if len(w) > 1 {
			ev.Write = append([]byte(nil), w[1:]...)
		}
	}
	if err != nil {
		ev.Error = err.Error()
	} else if len(rd) > 0 {
		ev.Read = append([]byte(nil), rd...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	ev.Seq = r.seq
	r.seq++
	if encErr := r.encoder.Encode(ev); encErr != nil && r.encErr == nil {
		r.encErr = encErr
	}

	return err
}

func classify(w, r []byte) Op {
	switch {
	case len(w) > 1 && len(r) > 0:
		return OpWriteRead
	case len(w) > 1:
		return OpWrite
	default:
		return OpRead
	}
}

// Compile-time interface satisfaction check.
var _ conn.Conn = (*Recorder)(nil)
