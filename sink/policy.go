package sink

import (
	"fmt"

	"github.com/moffa90/go-pdsink/protocol"
)

// Selection is the outcome of the selection policy.
type Selection struct {
	// Index is the 0-based catalog index of the chosen capability
	Index int

	// Request is the request to send for the chosen capability
	Request protocol.Request

	// Fallback is set when no fixed capability was at or below the target
	// and the first catalog entry was used instead
	Fallback bool
}

// String renders the selection as "PDO[n] <request>", numbering entries
// from 1 like protocol.Catalog.String.
func (s Selection) String() string {
	out := fmt.Sprintf("PDO[%d] %s", s.Index+1, s.Request)
	if s.Fallback {
		out += " (fallback)"
	}
	return out
}

// Select chooses the capability to request for a target voltage.
//
// The catalog is assumed to list fixed capabilities in ascending voltage,
// as sources advertise them. Steps, first match wins:
//  1. If a PPS capability covers the target, request it at the target
//     voltage (truncated to 20mV) and its maximum current.
//  2. Otherwise scan the fixed capabilities and keep the last one whose
//     voltage does not exceed the target. If none qualifies, use index 0
//     and set Fallback.
//  3. If a PPS capability exists and the chosen fixed voltage is not above
//     the PPS maximum, request the PPS capability at its maximum voltage
//     and maximum current instead.
//
// Requests always ask for the full current of the slot; use
// Session.AdjustCurrent to lower it.
func Select(targetMV uint16, cat *protocol.Catalog) (Selection, error) {
	if cat == nil || cat.Len() == 0 {
		return Selection{}, ErrNoCapabilities
	}

	ppsIndex, hasPPS := cat.ProgrammableIndex()
	var pps protocol.Capability
	if hasPPS {
		pps = cat.At(ppsIndex)
		if pps.Contains(targetMV) {
			return Selection{
				Index:   ppsIndex,
				Request: programmableRequest(ppsIndex, pps, targetMV/protocol.RequestVoltageLSBmV),
			}, nil
		}
	}

	chosen, found := 0, false
	for i := 0; i < cat.Len(); i++ {
		c := cat.At(i)
		if c.Kind != protocol.KindFixed {
			continue
		}
		if c.VoltageMV() <= targetMV {
			chosen, found = i, true
		}
	}
	fixed := cat.At(chosen)

	// A non-fixed fallback entry reports 0mV here, so any PPS wins.
	if hasPPS && fixed.VoltageMV() <= pps.MaxVoltageMV() {
		return Selection{
			Index:    ppsIndex,
			Request:  programmableRequest(ppsIndex, pps, pps.MaxVoltageMV()/protocol.RequestVoltageLSBmV),
			Fallback: !found,
		}, nil
	}

	if fixed.Kind != protocol.KindFixed {
		lowest := lowestFixedMV(cat)
		return Selection{}, &OutOfRangeError{
			Quantity:  "voltage",
			Unit:      "mV",
			Requested: uint32(targetMV),
			Limit:     uint32(lowest),
		}
	}

	return Selection{
		Index:    chosen,
		Request:  fixedRequest(chosen, fixed),
		Fallback: !found,
	}, nil
}

func programmableRequest(index int, c protocol.Capability, voltage uint16) protocol.Request {
	return protocol.Request{
		Kind:      protocol.KindProgrammable,
		ObjPos:    uint8(index + 1),
		OpCurrent: c.MaxCurrent,
		Voltage:   voltage,
	}
}

func fixedRequest(index int, c protocol.Capability) protocol.Request {
	return protocol.Request{
		Kind:       protocol.KindFixed,
		ObjPos:     uint8(index + 1),
		MaxCurrent: c.MaxCurrent,
		OpCurrent:  c.MaxCurrent,
	}
}

func lowestFixedMV(cat *protocol.Catalog) uint16 {
	var lowest uint16
	for _, c := range cat.Entries() {
		if c.Kind == protocol.KindFixed && (lowest == 0 || c.VoltageMV() < lowest) {
			lowest = c.VoltageMV()
		}
	}
	return lowest
}
