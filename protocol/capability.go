package protocol

import (
	"encoding/binary"
	"fmt"
)

// DecodeCapability decodes a single 4-byte capability record.
//
// The variant is chosen from the most significant byte (record[3]):
//   - bits 7:6 == 00b: fixed supply
//   - bits 7:4 == 1100b: programmable (PPS)
//   - anything else: KindUnrecognized, with Raw preserved
func DecodeCapability(record []byte) (Capability, error) {
	if len(record) != RecordSize {
		return Capability{}, &DecodeError{
			Length: len(record),
			Reason: fmt.Sprintf("capability record must be %d bytes", RecordSize),
		}
	}

	raw := binary.LittleEndian.Uint32(record)
	high := record[3]

	switch {
	case high&fixedTypeMask == 0:
		return Capability{
			Kind:       KindFixed,
			MaxCurrent: uint16(raw & fixedCurrentMask),
			Voltage:    uint16((raw >> fixedVoltageShift) & fixedVoltageMask),
			Raw:        raw,
		}, nil
	case high&augmentedTypeMask == augmentedTypeHighTag:
		return Capability{
			Kind:       KindProgrammable,
			MaxCurrent: uint16(raw & ppsCurrentMask),
			MinVoltage: uint16((raw >> ppsMinVoltageShift) & ppsMinVoltageMask),
			MaxVoltage: uint16((raw >> ppsMaxVoltageShift) & ppsMaxVoltageMask),
			Raw:        raw,
		}, nil
	default:
		return Capability{Kind: KindUnrecognized, Raw: raw}, nil
	}
}

// EncodeCapability packs a capability back into its 4-byte record.
// Unrecognized capabilities are written out from Raw unchanged.
// Returns an error if a field does not fit its bit width.
func EncodeCapability(c Capability) ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	out := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(out, c.pack())
	return out, nil
}

func (c Capability) validate() error {
	switch c.Kind {
	case KindFixed:
		if c.MaxCurrent > fixedCurrentMask {
			return fmt.Errorf("max current %d exceeds 10-bit field", c.MaxCurrent)
		}
		if c.Voltage > fixedVoltageMask {
			return fmt.Errorf("voltage %d exceeds 10-bit field", c.Voltage)
		}
	case KindProgrammable:
		if c.MaxCurrent > ppsCurrentMask {
			return fmt.Errorf("max current %d exceeds 7-bit field", c.MaxCurrent)
		}
		if c.MinVoltage > ppsMinVoltageMask {
			return fmt.Errorf("min voltage %d exceeds 8-bit field", c.MinVoltage)
		}
		if c.MaxVoltage > ppsMaxVoltageMask {
			return fmt.Errorf("max voltage %d exceeds 8-bit field", c.MaxVoltage)
		}
	}
	return nil
}

func (c Capability) pack() uint32 {
	switch c.Kind {
	case KindFixed:
		return uint32(c.MaxCurrent)&fixedCurrentMask |
			(uint32(c.Voltage)&fixedVoltageMask)<<fixedVoltageShift
	case KindProgrammable:
		return ppsTypeTag<<ppsTypeShift |
			uint32(c.MaxCurrent)&ppsCurrentMask |
			(uint32(c.MinVoltage)&ppsMinVoltageMask)<<ppsMinVoltageShift |
			(uint32(c.MaxVoltage)&ppsMaxVoltageMask)<<ppsMaxVoltageShift
	default:
		return c.Raw
	}
}
