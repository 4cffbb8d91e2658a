package protocol

import "testing"

func TestStatusEvent(t *testing.T) {
	tests := []struct {
		name   string
		status byte
		want   Event
	}{
		{"ready new successful", 0b00000111, EventNewNegotiationSucceeded},
		{"ready new failed", 0b00000101, EventNewNegotiationFailed},
		{"ready renegotiation successful", 0b00000011, EventRenegotiationSucceeded},
		{"ready renegotiation failed", 0b00000001, EventRenegotiationFailed},
		{"not ready", 0b00000110, EventNotReady},
		{"zero", 0x00, EventNotReady},
		{"faults do not change the event", 0b11110111, EventNewNegotiationSucceeded},
		{"bit 3 is ignored", 0b00001011, EventRenegotiationSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeStatus(tt.status).Event(); got != tt.want {
				t.Errorf("Event() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventIsTotal(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		s := DecodeStatus(byte(b))
		e := s.Event()
		if !s.Ready && e != EventNotReady {
			t.Errorf("0x%02X: not ready but event %v", b, e)
		}
		if s.Ready && e == EventNotReady {
			t.Errorf("0x%02X: ready but no event", b)
		}
	}
}

func TestDecodeStatusBits(t *testing.T) {
	tests := []struct {
		name  string
		bit   byte
		check func(Status) bool
	}{
		{"ready", 1 << 0, func(s Status) bool { return s.Ready }},
		{"successful", 1 << 1, func(s Status) bool { return s.Successful }},
		{"new pdo", 1 << 2, func(s Status) bool { return s.NewPDO }},
		{"overvoltage", 1 << 4, func(s Status) bool { return s.Overvoltage }},
		{"overcurrent", 1 << 5, func(s Status) bool { return s.Overcurrent }},
		{"overtemperature", 1 << 6, func(s Status) bool { return s.Overtemperature }},
		{"derating", 1 << 7, func(s Status) bool { return s.Derating }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DecodeStatus(tt.bit)
			if !tt.check(s) {
				t.Errorf("bit 0x%02X not decoded", tt.bit)
			}
			if s.Raw != tt.bit {
				t.Errorf("Raw = 0x%02X, want 0x%02X", s.Raw, tt.bit)
			}
			if tt.check(DecodeStatus(^tt.bit)) {
				t.Errorf("flag set when bit 0x%02X is clear", tt.bit)
			}
		})
	}
}

func TestStatusFaults(t *testing.T) {
	f := DecodeStatus(0b01010111).Faults()
	if !f.Has(FaultOvervoltage) || !f.Has(FaultOvertemperature) {
		t.Errorf("Faults() = %v, want ovp|otp", f)
	}
	if f.Has(FaultOvercurrent) || f.Has(FaultDerating) {
		t.Errorf("Faults() = %v, unexpected ocp or derating", f)
	}
	if DecodeStatus(0b00000111).Faults() != 0 {
		t.Error("expected no faults")
	}
}

func TestFaultsSet(t *testing.T) {
	var f Faults
	if f.String() != "none" {
		t.Errorf("String() = %q, want none", f.String())
	}
	f = f.Add(FaultOvercurrent).Add(FaultDerating)
	if !f.Has(FaultOvercurrent | FaultDerating) {
		t.Errorf("Has() false for added faults: %v", f)
	}
	if f.Has(0) {
		t.Error("Has(0) must be false")
	}
	if f.String() != "ocp|derating" {
		t.Errorf("String() = %q, want ocp|derating", f.String())
	}
}

func TestParseMask(t *testing.T) {
	for _, name := range []string{"ready", "success", "newpdo", "ovp", "ocp", "otp", "derating"} {
		m, ok := ParseMask(name)
		if !ok {
			t.Errorf("ParseMask(%q) failed", name)
			continue
		}
		if m.String() != name {
			t.Errorf("ParseMask(%q).String() = %q", name, m.String())
		}
	}
	if m, ok := ParseMask("OVP"); !ok || m != MaskOVP {
		t.Error("ParseMask should ignore case")
	}
	if _, ok := ParseMask("bogus"); ok {
		t.Error("ParseMask(bogus) should fail")
	}
}
