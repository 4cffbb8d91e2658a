package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moffa90/go-pdsink/protocol"
)

func TestSetNTC(t *testing.T) {
	dev := NewMockDevice()
	s := New(dev, WithWriteDelay(0))

	if err := s.SetNTC(context.Background(), DefaultNTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []mockWrite{
		{protocol.RegTR25, []byte{0x10, 0x27}},
		{protocol.RegTR50, []byte{0x41, 0x10}},
		{protocol.RegTR75, []byte{0x88, 0x07}},
		{protocol.RegTR100, []byte{0xCE, 0x03}},
	}
	if len(dev.writes) != len(want) {
		t.Fatalf("writes = %d, want %d", len(dev.writes), len(want))
	}
	for i, w := range want {
		got := dev.writes[i]
		if got.reg != w.reg || !bytes.Equal(got.data, w.data) {
			t.Errorf("write %d = 0x%02X % X, want 0x%02X % X", i, got.reg, got.data, w.reg, w.data)
		}
	}
}

func TestSetNTCPacesWrites(t *testing.T) {
	dev := NewMockDevice()
	s := New(dev, WithWriteDelay(2*time.Millisecond))

	start := time.Now()
	if err := s.SetNTC(context.Background(), DefaultNTC); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 6*time.Millisecond {
		t.Errorf("SetNTC took %v, want at least three write delays", elapsed)
	}
}

func TestSetNTCCancelledDuringDelay(t *testing.T) {
	dev := NewMockDevice()
	s := New(dev, WithWriteDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.SetNTC(ctx, DefaultNTC)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if len(dev.writes) != 1 {
		t.Errorf("writes = %d, want 1 before the delay", len(dev.writes))
	}
}

func TestSetNTCWriteError(t *testing.T) {
	dev := NewMockDevice()
	dev.writeErr[protocol.RegTR75] = errors.New("nack")
	s := New(dev, WithWriteDelay(0))

	err := s.SetNTC(context.Background(), DefaultNTC)
	var te *TransportError
	if !errors.As(err, &te) || te.Register != protocol.RegTR75 || te.Op != "write" {
		t.Fatalf("err = %v, want write TransportError on TR75", err)
	}
	if len(dev.writes) != 2 {
		t.Errorf("writes = %d, want 2 before the failure", len(dev.writes))
	}
}

func TestThresholds(t *testing.T) {
	dev := NewMockDevice()
	s := New(dev)
	ctx := context.Background()

	if err := s.SetDeratingTemp(ctx, 120); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOTPThreshold(ctx, 130); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOCPThreshold(ctx, 3000); err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		reg  byte
		want byte
	}{
		{protocol.RegDeratingThreshold, 120},
		{protocol.RegOTPThreshold, 130},
		{protocol.RegOCPThreshold, 60},
	}
	for _, c := range checks {
		got, ok := dev.LastWrite(c.reg)
		if !ok || !bytes.Equal(got, []byte{c.want}) {
			t.Errorf("register 0x%02X = % X, want %02X", c.reg, got, c.want)
		}
	}
}

func TestSetOCPThresholdOutOfRange(t *testing.T) {
	dev := NewMockDevice()
	s := New(dev)

	err := s.SetOCPThreshold(context.Background(), 13000)
	if !IsOutOfRange(err) {
		t.Fatalf("err = %v, want OutOfRangeError", err)
	}
	if len(dev.writes) != 0 {
		t.Error("out-of-range threshold must not be written")
	}
}

func TestMaskReadModifyWrite(t *testing.T) {
	dev := NewMockDevice()
	dev.regs[protocol.RegMask] = byte(protocol.MaskReady)
	s := New(dev, WithWriteDelay(0))
	ctx := context.Background()

	if err := s.SetMask(ctx, protocol.MaskOVP|protocol.MaskOCP); err != nil {
		t.Fatalf("SetMask: %v", err)
	}
	if got := dev.regs[protocol.RegMask]; got != 0x31 {
		t.Errorf("mask after SetMask = 0x%02X, want 0x31", got)
	}

	if err := s.ClearMask(ctx, protocol.MaskReady); err != nil {
		t.Fatalf("ClearMask: %v", err)
	}
	m, err := s.Mask(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if m != protocol.MaskOVP|protocol.MaskOCP {
		t.Errorf("Mask() = %v, want ovp|ocp", m)
	}
}

func TestMaskReadError(t *testing.T) {
	dev := NewMockDevice()
	dev.readErr[protocol.RegMask] = errors.New("nack")
	s := New(dev, WithWriteDelay(0))

	if err := s.SetMask(context.Background(), protocol.MaskOTP); !IsTransportError(err) {
		t.Errorf("err = %v, want TransportError", err)
	}
	if len(dev.writes) != 0 {
		t.Error("mask must not be written when the read fails")
	}
}
