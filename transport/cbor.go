package transport

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// traceEncMode is the CBOR encoder mode for trace events.
var traceEncMode cbor.EncMode

// traceDecMode is the CBOR decoder mode for trace events.
var traceDecMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	traceEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	traceDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create trace CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes a TraceEvent to CBOR.
func EncodeEvent(ev TraceEvent) ([]byte, error) {
	return traceEncMode.Marshal(ev)
}

// DecodeEvent decodes one CBOR-encoded TraceEvent.
func DecodeEvent(data []byte) (TraceEvent, error) {
	var ev TraceEvent
	if err := traceDecMode.Unmarshal(data, &ev); err != nil {
		return TraceEvent{}, err
	}
	return ev, nil
}

// ReadTrace decodes every event in a trace stream.
func ReadTrace(r io.Reader) ([]TraceEvent, error) {
	dec := traceDecMode.NewDecoder(r)
	var events []TraceEvent
	for {
		var ev TraceEvent
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				return events, nil
			}
			return events, fmt.Errorf("decode trace event %d: %w", len(events), err)
		}
		events = append(events, ev)
	}
}
