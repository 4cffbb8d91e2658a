// Package simulator implements an in-memory AP33772 register file that
// negotiates against a configurable list of source capabilities.
//
// Device implements periph.io/x/conn/v3.Conn and can be handed to
// sink.New in tests and demos:
//
//	dev := simulator.New(
//	    protocol.NewFixed(5000, 3000),
//	    protocol.NewFixed(9000, 3000),
//	    protocol.NewProgrammable(3300, 11000, 3000),
//	)
//	s := sink.New(dev)
package simulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"

	"github.com/moffa90/go-pdsink/protocol"
)

// VendorID is the value returned from protocol.RegVID.
const VendorID = 0x3372

// Device is a simulated sink controller.
//
// Reading the status register returns the current flags and then clears the
// new-PDO and fault bits, as the hardware does. Writing a request renegotiates
// immediately: a valid request against the attached capabilities sets the
// ready and successful flags and drives the voltage register, an invalid one
// sets only ready, and an all-zero request restarts negotiation from the
// source capabilities.
//
// Device is safe for concurrent use.
type Device struct {
	mu       sync.Mutex
	regs     [0x40]byte
	caps     []protocol.Capability
	requests [][]byte
	failNext error
	txCount  int
}

// New returns a Device attached to a source offering caps. The source is
// considered freshly attached: the first status read reports a successful
// new negotiation.
func New(caps ...protocol.Capability) *Device {
	d := &Device{}
	binary.LittleEndian.PutUint16(d.regs[protocol.RegVID:], VendorID)
	d.Attach(caps...)
	return d
}

// Attach replaces the source capabilities and signals a new negotiation.
// No more than protocol.MaxCapabilities are kept.
//
// Attach panics if a capability does not fit its record.
func (d *Device) Attach(caps ...protocol.Capability) {
	if len(caps) > protocol.MaxCapabilities {
		caps = caps[:protocol.MaxCapabilities]
	}
	cat, err := protocol.NewCatalog(caps...)
	if err != nil {
		panic(fmt.Sprintf("simulator: %v", err))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.caps = cat.Entries()
	copy(d.regs[protocol.RegSourcePDO:], cat.Block())
	d.regs[protocol.RegPDONum] = byte(len(d.caps))
	d.negotiateNew()
}

// negotiateNew mimics the controller accepting the source's first capability.
func (d *Device) negotiateNew() {
	status := protocol.MaskReady | protocol.MaskNewPDO
	if len(d.caps) > 0 {
		status |= protocol.MaskSuccess
		d.regs[protocol.RegVoltage] = scale(d.caps[0].VoltageMV(), protocol.VoltageLSBmV)
	} else {
		d.regs[protocol.RegVoltage] = 0
	}
	d.regs[protocol.RegStatus] = byte(status)
}

// Detach removes the source. Status reads report not ready.
func (d *Device) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.caps = nil
	d.regs[protocol.RegPDONum] = 0
	d.regs[protocol.RegStatus] = 0
	d.regs[protocol.RegVoltage] = 0
	d.regs[protocol.RegCurrent] = 0
}

// RaiseFaults sets protection flags in the status register until the next
// status read.
func (d *Device) RaiseFaults(f protocol.Faults) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[protocol.RegStatus] |= byte(f)
}

// SetMeasurements sets the telemetry registers. Values are truncated to the
// register resolution and saturate at the register maximum.
func (d *Device) SetMeasurements(voltageMV, currentMA uint16, celsius uint8) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.regs[protocol.RegVoltage] = scale(voltageMV, protocol.VoltageLSBmV)
	d.regs[protocol.RegCurrent] = scale(currentMA, protocol.CurrentLSBmA)
	d.regs[protocol.RegTemperature] = celsius
}

// FailNext makes the next transfer return err without touching any register.
func (d *Device) FailNext(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = err
}

// Requests returns every request record written, oldest first.
func (d *Device) Requests() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.requests))
	for i, r := range d.requests {
		out[i] = append([]byte(nil), r...)
	}
	return out
}

// Register returns the current value of a register.
func (d *Device) Register(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg]
}

// Registers returns n bytes of the register file starting at reg.
func (d *Device) Registers(reg byte, n int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.regs[reg:int(reg)+n]...)
}

// TxCount returns the number of transfers attempted.
func (d *Device) TxCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txCount
}

func (d *Device) String() string {
	return fmt.Sprintf("ap33772-sim(0x%02X)", protocol.DefaultAddress)
}

func (d *Device) Duplex() conn.Duplex {
	return conn.Half
}

// Tx performs one register transfer.
func (d *Device) Tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.txCount++
	if err := d.failNext; err != nil {
		d.failNext = nil
		return err
	}

	if len(w) == 0 {
		return errors.New("simulator: missing register address")
	}
	reg := int(w[0])
	if reg+len(w)-1 > len(d.regs) || reg+len(r) > len(d.regs) {
		return fmt.Errorf("simulator: transfer past register 0x%02X", len(d.regs)-1)
	}

	if len(w) > 1 {
		d.write(reg, w[1:])
	}
	if len(r) > 0 {
		d.read(reg, r)
	}
	return nil
}

func (d *Device) write(reg int, data []byte) {
	copy(d.regs[reg:], data)

	if reg == protocol.RegRDO && len(data) == protocol.RecordSize {
		d.requests = append(d.requests, append([]byte(nil), data...))
		d.negotiateRequest(data)
	}
}

func (d *Device) read(reg int, r []byte) {
	copy(r, d.regs[reg:])

	if reg <= protocol.RegStatus && reg+len(r) > protocol.RegStatus {
		sticky := protocol.MaskNewPDO | protocol.MaskOVP | protocol.MaskOCP | protocol.MaskOTP | protocol.MaskDerating
		d.regs[protocol.RegStatus] &^= byte(sticky)
	}
}

func (d *Device) negotiateRequest(record []byte) {
	if binary.LittleEndian.Uint32(record) == 0 {
		d.negotiateNew()
		return
	}

	objPos := int(record[3]>>4) & 0x7
	if objPos < 1 || objPos > len(d.caps) {
		d.regs[protocol.RegStatus] = byte(protocol.MaskReady)
		return
	}

	c := d.caps[objPos-1]
	req, err := protocol.DecodeRequest(record, c.Kind)
	if err != nil || !accepts(c, req) {
		d.regs[protocol.RegStatus] = byte(protocol.MaskReady)
		return
	}

	mv := c.VoltageMV()
	if c.Kind == protocol.KindProgrammable {
		mv = req.VoltageMV()
	}
	d.regs[protocol.RegVoltage] = scale(mv, protocol.VoltageLSBmV)
	d.regs[protocol.RegStatus] = byte(protocol.MaskReady | protocol.MaskSuccess)
}

// scale converts a physical value to a one-byte register, saturating at 0xFF.
func scale(v, lsb uint16) byte {
	if v/lsb > 0xFF {
		return 0xFF
	}
	return byte(v / lsb)
}

// accepts reports whether the source can honour req against c.
func accepts(c protocol.Capability, req protocol.Request) bool {
	switch c.Kind {
	case protocol.KindFixed:
		return req.OpCurrent <= c.MaxCurrent && req.MaxCurrent <= c.MaxCurrent
	case protocol.KindProgrammable:
		return req.OpCurrent <= c.MaxCurrent && c.Contains(req.VoltageMV())
	default:
		return false
	}
}
