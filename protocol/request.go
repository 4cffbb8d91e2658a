package protocol

import (
	"encoding/binary"
	"fmt"
)

// EncodeRequest packs a Request into the 4 bytes written to RegRDO.
//
// Fixed layout:
//
//	[30:28] obj pos  [19:10] op current  [9:0] max current
//
// PPS layout:
//
//	[30:28] obj pos  [19:9] voltage  [6:0] op current
//
// All other bits are zero. Returns an error if a field does not fit its
// bit width or ObjPos is not in 1..MaxObjPos.
func EncodeRequest(r Request) ([]byte, error) {
	if r.ObjPos < 1 || r.ObjPos > MaxObjPos {
		return nil, fmt.Errorf("object position must be 1-%d, got %d", MaxObjPos, r.ObjPos)
	}

	raw := uint32(r.ObjPos) << rdoObjPosShift

	switch r.Kind {
	case KindFixed:
		if r.MaxCurrent > rdoFixedMaxCurrentMask {
			return nil, fmt.Errorf("max current %d exceeds 10-bit field", r.MaxCurrent)
		}
		if r.OpCurrent > rdoFixedOpCurrentMask {
			return nil, fmt.Errorf("operating current %d exceeds 10-bit field", r.OpCurrent)
		}
		raw |= uint32(r.MaxCurrent) | uint32(r.OpCurrent)<<rdoFixedOpCurrentShift
	case KindProgrammable:
		if r.OpCurrent > rdoPPSOpCurrentMask {
			return nil, fmt.Errorf("operating current %d exceeds 7-bit field", r.OpCurrent)
		}
		if r.Voltage > rdoPPSVoltageMask {
			return nil, fmt.Errorf("voltage %d exceeds 11-bit field", r.Voltage)
		}
		raw |= uint32(r.OpCurrent) | uint32(r.Voltage)<<rdoPPSVoltageShift
	default:
		return nil, fmt.Errorf("cannot request %s capability", r.Kind)
	}

	out := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(out, raw)
	return out, nil
}

// DecodeRequest unpacks a request record. The layout is not self-describing,
// so the kind of the referenced capability must be supplied.
func DecodeRequest(record []byte, kind Kind) (Request, error) {
	if len(record) != RecordSize {
		return Request{}, &DecodeError{
			Length: len(record),
			Reason: fmt.Sprintf("request record must be %d bytes", RecordSize),
		}
	}

	raw := binary.LittleEndian.Uint32(record)
	r := Request{
		Kind:   kind,
		ObjPos: uint8((raw >> rdoObjPosShift) & rdoObjPosMask),
	}
	if r.ObjPos == 0 {
		return Request{}, &DecodeError{Length: len(record), Reason: "object position is zero"}
	}

	switch kind {
	case KindFixed:
		if raw&rdoFixedReservedMask != 0 {
			return Request{}, &DecodeError{Length: len(record), Reason: fmt.Sprintf("reserved bits set: 0x%08X", raw&rdoFixedReservedMask)}
		}
		r.MaxCurrent = uint16(raw & rdoFixedMaxCurrentMask)
		r.OpCurrent = uint16((raw >> rdoFixedOpCurrentShift) & rdoFixedOpCurrentMask)
	case KindProgrammable:
		if raw&rdoPPSReservedMask != 0 {
			return Request{}, &DecodeError{Length: len(record), Reason: fmt.Sprintf("reserved bits set: 0x%08X", raw&rdoPPSReservedMask)}
		}
		r.OpCurrent = uint16(raw & rdoPPSOpCurrentMask)
		r.Voltage = uint16((raw >> rdoPPSVoltageShift) & rdoPPSVoltageMask)
	default:
		return Request{}, &DecodeError{Length: len(record), Reason: "request kind must be fixed or pps"}
	}

	return r, nil
}

// ResetRequest is the all-zero record that makes the controller drop the
// contract and renegotiate from the start.
func ResetRequest() []byte {
	return make([]byte, RecordSize)
}
