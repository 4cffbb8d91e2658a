package sink

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-pdsink/protocol"
)

// NTCTable holds the thermistor resistance, in ohms, at the four
// calibration temperatures used by the controller.
type NTCTable struct {
	TR25  uint16
	TR50  uint16
	TR75  uint16
	TR100 uint16
}

// DefaultNTC is the table for a 10k NTC thermistor.
var DefaultNTC = NTCTable{TR25: 10000, TR50: 4161, TR75: 1928, TR100: 974}

// SetNTC writes the thermistor table. Each value is written little-endian
// to its register, with the configured write delay between writes.
func (s *Session) SetNTC(ctx context.Context, t NTCTable) error {
	writes := []struct {
		reg   byte
		value uint16
	}{
		{protocol.RegTR25, t.TR25},
		{protocol.RegTR50, t.TR50},
		{protocol.RegTR75, t.TR75},
		{protocol.RegTR100, t.TR100},
	}

	for i, w := range writes {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				return err
			}
		}
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, w.value)
		if err := s.writeRegister(ctx, w.reg, buf); err != nil {
			return fmt.Errorf("set ntc: %w", err)
		}
	}

	s.logDebug("ntc table written", "tr25", t.TR25, "tr50", t.TR50, "tr75", t.TR75, "tr100", t.TR100)
	return nil
}

// SetDeratingTemp sets the temperature, in degrees Celsius, at which the
// controller starts derating output power.
func (s *Session) SetDeratingTemp(ctx context.Context, celsius uint8) error {
	if err := s.writeRegister(ctx, protocol.RegDeratingThreshold, []byte{celsius}); err != nil {
		return fmt.Errorf("set derating temperature: %w", err)
	}
	s.logDebug("derating temperature set", "celsius", celsius)
	return nil
}

// SetOTPThreshold sets the over-temperature protection threshold in degrees Celsius.
func (s *Session) SetOTPThreshold(ctx context.Context, celsius uint8) error {
	if err := s.writeRegister(ctx, protocol.RegOTPThreshold, []byte{celsius}); err != nil {
		return fmt.Errorf("set otp threshold: %w", err)
	}
	s.logDebug("otp threshold set", "celsius", celsius)
	return nil
}

// SetOCPThreshold sets the over-current protection threshold. The value is
// truncated to the register resolution of protocol.OCPThresholdLSBmA.
func (s *Session) SetOCPThreshold(ctx context.Context, currentMA uint16) error {
	raw := currentMA / protocol.OCPThresholdLSBmA
	if raw > 0xFF {
		return &OutOfRangeError{
			Quantity:  "ocp threshold",
			Unit:      "mA",
			Requested: uint32(currentMA),
			Limit:     0xFF * protocol.OCPThresholdLSBmA,
		}
	}

	if err := s.writeRegister(ctx, protocol.RegOCPThreshold, []byte{byte(raw)}); err != nil {
		return fmt.Errorf("set ocp threshold: %w", err)
	}
	s.logDebug("ocp threshold set", "current_ma", uint16(raw)*protocol.OCPThresholdLSBmA)
	return nil
}

// SetMask enables the given status conditions on the interrupt line,
// leaving the other mask bits unchanged.
func (s *Session) SetMask(ctx context.Context, m protocol.Mask) error {
	return s.updateMask(ctx, func(cur protocol.Mask) protocol.Mask { return cur | m })
}

// ClearMask disables the given status conditions on the interrupt line,
// leaving the other mask bits unchanged.
func (s *Session) ClearMask(ctx context.Context, m protocol.Mask) error {
	return s.updateMask(ctx, func(cur protocol.Mask) protocol.Mask { return cur &^ m })
}

// Mask reads the interrupt mask register.
func (s *Session) Mask(ctx context.Context) (protocol.Mask, error) {
	raw, err := s.readRegister(ctx, protocol.RegMask, 1)
	if err != nil {
		return 0, fmt.Errorf("read mask: %w", err)
	}
	return protocol.Mask(raw[0]), nil
}

func (s *Session) updateMask(ctx context.Context, f func(protocol.Mask) protocol.Mask) error {
	cur, err := s.Mask(ctx)
	if err != nil {
		return err
	}

	if err := s.pause(ctx); err != nil {
		return err
	}

	next := f(cur)
	if err := s.writeRegister(ctx, protocol.RegMask, []byte{byte(next)}); err != nil {
		return fmt.Errorf("write mask: %w", err)
	}

	s.logDebug("mask updated", "from", cur.String(), "to", next.String())
	return nil
}
