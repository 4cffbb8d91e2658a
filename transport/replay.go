package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3"
)

// ErrTraceExhausted is returned when a transfer is attempted after the last
// recorded event.
var ErrTraceExhausted = errors.New("trace exhausted")

// MismatchError reports a transfer that differs from the recorded one.
type MismatchError struct {
	Seq     uint64
	Want    TraceEvent
	Reg     uint8
	Write   []byte
	ReadLen int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("transfer %d mismatch: got reg=0x%02X w=[% X] rlen=%d, recorded %s",
		e.Seq, e.Reg, e.Write, e.ReadLen, e.Want)
}

// Replayer answers transfers from a recorded trace, in order.
// Each transfer must match the recorded register, write payload and read
// length; recorded device errors are returned again.
type Replayer struct {
	mu     sync.Mutex
	events []TraceEvent
	next   int
}

// NewReplayer decodes a trace stream and returns a Replayer over it.
func NewReplayer(r io.Reader) (*Replayer, error) {
	events, err := ReadTrace(r)
	if err != nil {
		return nil, err
	}
	return NewReplayerFromEvents(events), nil
}

// NewReplayerFromEvents returns a Replayer over already decoded events.
func NewReplayerFromEvents(events []TraceEvent) *Replayer {
	return &Replayer{events: events}
}

// Remaining returns the number of events not yet replayed.
func (p *Replayer) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events) - p.next
}

func (p *Replayer) String() string {
	return "replay"
}

func (p *Replayer) Duplex() conn.Duplex {
	return conn.Half
}

// Tx checks the transfer against the next recorded event and copies the
// recorded read data into r.
func (p *Replayer) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= len(p.events) {
		return ErrTraceExhausted
	}
	ev := p.events[p.next]

	var reg uint8
	var payload []byte
	if len(w) > 0 {
		reg = w[0]
		payload = w[1:]
	}
	if reg != ev.Register || !bytes.Equal(payload, ev.Write) || len(r) != ev.ReadLen {
		return &MismatchError{Seq: ev.Seq, Want: ev, Reg: reg, Write: append([]byte(nil), payload...), ReadLen: len(r)}
	}
	p.next++

	if ev.Error != "" {
		return errors.New(ev.Error)
	}
	copy(r, ev.Read)
	return nil
}

// Compile-time interface satisfaction check.
var _ conn.Conn = (*Replayer)(nil)
