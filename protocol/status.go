package protocol

import "strings"

// Mask selects status conditions. The same bit positions are used by
// RegStatus and RegMask.
type Mask uint8

// Status and mask bits.
const (
	MaskReady      Mask = 1 << 0
	MaskSuccess    Mask = 1 << 1
	MaskNewPDO     Mask = 1 << 2
	MaskOVP        Mask = 1 << 4
	MaskOCP        Mask = 1 << 5
	MaskOTP        Mask = 1 << 6
	MaskDerating   Mask = 1 << 7
	maskFaultsOnly Mask = MaskOVP | MaskOCP | MaskOTP | MaskDerating
)

var maskNames = []struct {
	bit  Mask
	name string
}{
	{MaskReady, "ready"},
	{MaskSuccess, "success"},
	{MaskNewPDO, "newpdo"},
	{MaskOVP, "ovp"},
	{MaskOCP, "ocp"},
	{MaskOTP, "otp"},
	{MaskDerating, "derating"},
}

// ParseMask returns the mask bit for a name such as "ready" or "ovp".
func ParseMask(name string) (Mask, bool) {
	name = strings.ToLower(name)
	for _, m := range maskNames {
		if m.name == name {
			return m.bit, true
		}
	}
	return 0, false
}

func (m Mask) String() string {
	var names []string
	for _, n := range maskNames {
		if m&n.bit != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Status is the decoded status register.
type Status struct {
	Ready           bool
	Successful      bool
	NewPDO          bool
	Overvoltage     bool
	Overcurrent     bool
	Overtemperature bool
	Derating        bool

	// Raw is the register value as read
	Raw byte
}

// DecodeStatus splits a status register value into its flags.
func DecodeStatus(b byte) Status {
	m := Mask(b)
	return Status{
		Ready:           m&MaskReady != 0,
		Successful:      m&MaskSuccess != 0,
		NewPDO:          m&MaskNewPDO != 0,
		Overvoltage:     m&MaskOVP != 0,
		Overcurrent:     m&MaskOCP != 0,
		Overtemperature: m&MaskOTP != 0,
		Derating:        m&MaskDerating != 0,
		Raw:             b,
	}
}

// Event classifies the negotiation outcome.
//
//	ready  new_pdo  successful  event
//	1      1        1           EventNewNegotiationSucceeded
//	1      1        0           EventNewNegotiationFailed
//	1      0        1           EventRenegotiationSucceeded
//	1      0        0           EventRenegotiationFailed
//	0      -        -           EventNotReady
func (s Status) Event() Event {
	switch {
	case !s.Ready:
		return EventNotReady
	case s.NewPDO && s.Successful:
		return EventNewNegotiationSucceeded
	case s.NewPDO:
		return EventNewNegotiationFailed
	case s.Successful:
		return EventRenegotiationSucceeded
	default:
		return EventRenegotiationFailed
	}
}

// Faults returns the protection flags of the status.
func (s Status) Faults() Faults {
	return Faults(Mask(s.Raw) & maskFaultsOnly)
}

// Event is a negotiation outcome derived from a Status.
type Event uint8

const (
	EventNotReady Event = iota
	EventNewNegotiationSucceeded
	EventNewNegotiationFailed
	EventRenegotiationSucceeded
	EventRenegotiationFailed
)

func (e Event) String() string {
	switch e {
	case EventNewNegotiationSucceeded:
		return "new negotiation succeeded"
	case EventNewNegotiationFailed:
		return "new negotiation failed"
	case EventRenegotiationSucceeded:
		return "renegotiation succeeded"
	case EventRenegotiationFailed:
		return "renegotiation failed"
	default:
		return "not ready"
	}
}

// Faults is a set of protection flags.
type Faults uint8

const (
	FaultOvervoltage     = Faults(MaskOVP)
	FaultOvercurrent     = Faults(MaskOCP)
	FaultOvertemperature = Faults(MaskOTP)
	FaultDerating        = Faults(MaskDerating)
)

// Has reports whether every fault in f2 is set in f.
func (f Faults) Has(f2 Faults) bool {
	return f2 != 0 && f&f2 == f2
}

// Add returns the union of f and f2.
func (f Faults) Add(f2 Faults) Faults {
	return f | f2
}

func (f Faults) String() string {
	return Mask(f).String()
}
