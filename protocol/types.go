package protocol

import "fmt"

// Kind identifies the variant of a capability or request record.
type Kind uint8

const (
	// KindUnrecognized is a record whose type tag is neither fixed nor PPS.
	// It is preserved but never selected.
	KindUnrecognized Kind = iota

	// KindFixed is a fixed-supply object
	KindFixed

	// KindProgrammable is a Programmable Power Supply augmented object
	KindProgrammable
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindProgrammable:
		return "pps"
	default:
		return "unrecognized"
	}
}

// Capability is one decoded source capability record.
// Field values are kept in their wire units; use the accessor methods
// for millivolts and milliamps.
type Capability struct {
	// Kind is the record variant
	Kind Kind

	// MaxCurrent is the maximum current (10mA units for fixed, 50mA for PPS)
	MaxCurrent uint16

	// Voltage is the fixed output voltage in 50mV units (fixed only)
	Voltage uint16

	// MinVoltage is the lowest programmable voltage in 100mV units (PPS only)
	MinVoltage uint16

	// MaxVoltage is the highest programmable voltage in 100mV units (PPS only)
	MaxVoltage uint16

	// Raw is the undecoded 32-bit record
	Raw uint32
}

// NewFixed returns a fixed capability for the given voltage and current.
// Values are truncated to the record resolution and saturate at the
// largest value the field can hold (51.15V, 10.23A).
func NewFixed(voltageMV, currentMA uint16) Capability {
	c := Capability{
		Kind:       KindFixed,
		Voltage:    saturate(voltageMV/FixedVoltageLSBmV, fixedVoltageMask),
		MaxCurrent: saturate(currentMA/FixedCurrentLSBmA, fixedCurrentMask),
	}
	c.Raw = c.pack()
	return c
}

// NewProgrammable returns a PPS capability covering minMV to maxMV.
// Values are truncated to the record resolution and saturate at the
// largest value the field can hold (25.5V, 6.35A).
func NewProgrammable(minMV, maxMV, currentMA uint16) Capability {
	c := Capability{
		Kind:       KindProgrammable,
		MinVoltage: saturate(minMV/PPSVoltageLSBmV, ppsMinVoltageMask),
		MaxVoltage: saturate(maxMV/PPSVoltageLSBmV, ppsMaxVoltageMask),
		MaxCurrent: saturate(currentMA/PPSCurrentLSBmA, ppsCurrentMask),
	}
	c.Raw = c.pack()
	return c
}

func saturate(v, limit uint16) uint16 {
	if v > limit {
		return limit
	}
	return v
}

// VoltageMV returns the fixed voltage in millivolts, or 0 for other kinds.
func (c Capability) VoltageMV() uint16 {
	if c.Kind != KindFixed {
		return 0
	}
	return c.Voltage * FixedVoltageLSBmV
}

// MinVoltageMV returns the PPS minimum voltage in millivolts, or 0 for other kinds.
func (c Capability) MinVoltageMV() uint16 {
	if c.Kind != KindProgrammable {
		return 0
	}
	return c.MinVoltage * PPSVoltageLSBmV
}

// MaxVoltageMV returns the PPS maximum voltage in millivolts, or 0 for other kinds.
func (c Capability) MaxVoltageMV() uint16 {
	if c.Kind != KindProgrammable {
		return 0
	}
	return c.MaxVoltage * PPSVoltageLSBmV
}

// MaxCurrentMA returns the maximum current in milliamps.
func (c Capability) MaxCurrentMA() uint16 {
	switch c.Kind {
	case KindFixed:
		return c.MaxCurrent * FixedCurrentLSBmA
	case KindProgrammable:
		return c.MaxCurrent * PPSCurrentLSBmA
	default:
		return 0
	}
}

// Contains reports whether a PPS capability can deliver voltageMV.
func (c Capability) Contains(voltageMV uint16) bool {
	return c.Kind == KindProgrammable &&
		voltageMV >= c.MinVoltageMV() && voltageMV <= c.MaxVoltageMV()
}

func (c Capability) String() string {
	switch c.Kind {
	case KindFixed:
		return fmt.Sprintf("Fixed: %sV @ %sA", milli(c.VoltageMV()), milli(c.MaxCurrentMA()))
	case KindProgrammable:
		return fmt.Sprintf("PPS: %sV~%sV @ %sA", milli(c.MinVoltageMV()), milli(c.MaxVoltageMV()), milli(c.MaxCurrentMA()))
	default:
		return fmt.Sprintf("Unrecognized 0x%08X", c.Raw)
	}
}

// Request is the Request Data Object sent to the source.
type Request struct {
	// Kind selects the fixed or PPS field layout
	Kind Kind

	// ObjPos is the 1-based position of the requested capability
	ObjPos uint8

	// MaxCurrent is the maximum operating current in 10mA units (fixed only)
	MaxCurrent uint16

	// OpCurrent is the operating current (10mA units for fixed, 50mA for PPS)
	OpCurrent uint16

	// Voltage is the output voltage in 20mV units (PPS only)
	Voltage uint16
}

// Index returns the 0-based catalog index of the requested capability.
func (r Request) Index() int {
	return int(r.ObjPos) - 1
}

// OpCurrentMA returns the operating current in milliamps.
func (r Request) OpCurrentMA() uint16 {
	if r.Kind == KindProgrammable {
		return r.OpCurrent * PPSCurrentLSBmA
	}
	return r.OpCurrent * FixedCurrentLSBmA
}

// MaxCurrentMA returns the maximum operating current in milliamps.
// PPS requests carry no separate maximum, so the operating current is returned.
func (r Request) MaxCurrentMA() uint16 {
	if r.Kind == KindProgrammable {
		return r.OpCurrentMA()
	}
	return r.MaxCurrent * FixedCurrentLSBmA
}

// VoltageMV returns the requested PPS voltage in millivolts, or 0 for fixed requests.
func (r Request) VoltageMV() uint16 {
	if r.Kind != KindProgrammable {
		return 0
	}
	return r.Voltage * RequestVoltageLSBmV
}

func (r Request) String() string {
	if r.Kind == KindProgrammable {
		return fmt.Sprintf("PPS #%d: %sV @ %sA", r.ObjPos, milli(r.VoltageMV()), milli(r.OpCurrentMA()))
	}
	return fmt.Sprintf("Fixed #%d: %sA (max %sA)", r.ObjPos, milli(r.OpCurrentMA()), milli(r.MaxCurrentMA()))
}

// milli formats a milli-unit value with three decimals, e.g. 9000 -> "9.000".
func milli(v uint16) string {
	return fmt.Sprintf("%d.%03d", v/1000, v%1000)
}
