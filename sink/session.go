package sink

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3"

	"github.com/moffa90/go-pdsink/protocol"
)

// Session negotiates power with a USB PD source through an AP33772-class
// sink controller. It owns the capability catalog and the last request
// sent, and performs at most one register transfer at a time.
//
// A Session is not safe for concurrent use.
type Session struct {
	dev    conn.Conn
	config Config

	catalog  *protocol.Catalog
	request  protocol.Request
	selected bool

	status protocol.Status
	faults protocol.Faults
}

// New creates a new Session over the given register device.
// The device must answer register reads as Tx([]byte{reg}, buf) and
// register writes as Tx(append([]byte{reg}, data...), nil), as an
// *i2c.Dev does.
//
// Example:
//
//	bus, _ := i2creg.Open("")
//	dev := &i2c.Dev{Addr: protocol.DefaultAddress, Bus: bus}
//	s := sink.New(dev, sink.WithLogger(logger))
func New(dev conn.Conn, opts ...Option) *Session {
	if dev == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	empty, _ := protocol.NewCatalog()
	return &Session{
		dev:     dev,
		config:  cfg,
		catalog: empty,
	}
}

// RefreshStatus reads the status register, latches any protection faults
// and, when the controller reports a successful new negotiation, rebuilds
// the capability catalog.
//
// A rebuild discards the current selection because object positions refer
// to the previous catalog. If the rebuild fails the previous catalog is kept
// and the error is returned together with the decoded status.
//
// Example:
//
//	st, err := s.RefreshStatus(ctx)
//	if err != nil {
//	    return err
//	}
//	if st.Event() == protocol.EventNewNegotiationSucceeded {
//	    fmt.Print(s.Catalog())
//	}
func (s *Session) RefreshStatus(ctx context.Context) (protocol.Status, error) {
	raw, err := s.readRegister(ctx, protocol.RegStatus, 1)
	if err != nil {
		return protocol.Status{}, fmt.Errorf("read status: %w", err)
	}

	st := protocol.DecodeStatus(raw[0])
	s.status = st

	if f := st.Faults(); f != 0 {
		s.faults = s.faults.Add(f)
		s.logError("protection fault", "faults", f.String())
	}

	event := st.Event()
	s.logDebug("status", "raw", fmt.Sprintf("0x%02X", st.Raw), "event", event.String())

	if event == protocol.EventNewNegotiationSucceeded {
		cat, err := s.readCatalog(ctx)
		if err != nil {
			s.logError("catalog rebuild failed", "error", err)
			s.notify(event, st)
			return st, fmt.Errorf("rebuild catalog: %w", err)
		}

		s.catalog = cat
		s.selected = false
		s.logInfo("source capabilities", "count", cat.Len(), "pps", cat.HasProgrammable())
	}

	s.notify(event, st)
	return st, nil
}

// notify runs the event callback. It is called after any catalog rebuild,
// so the callback sees the catalog that belongs to the event.
func (s *Session) notify(event protocol.Event, st protocol.Status) {
	if s.config.EventCallback != nil {
		s.config.EventCallback(event, st)
	}
}

func (s *Session) readCatalog(ctx context.Context) (*protocol.Catalog, error) {
	count, err := s.readRegister(ctx, protocol.RegPDONum, 1)
	if err != nil {
		return nil, err
	}

	n := int(count[0])
	if n > protocol.MaxCapabilities {
		s.logDebug("capability count clamped", "reported", n, "max", protocol.MaxCapabilities)
		n = protocol.MaxCapabilities
	}

	block, err := s.readRegister(ctx, protocol.RegSourcePDO, protocol.SourcePDOLength)
	if err != nil {
		return nil, err
	}

	return protocol.BuildCatalog(n, block)
}

// SelectVoltage runs the selection policy for targetMV against the current
// catalog and writes the resulting request to the controller.
//
// The returned Selection reports whether the first catalog entry was used as a
// fallback. The session's request only changes when the write succeeds.
//
// Example:
//
//	sel, err := s.SelectVoltage(ctx, 9000)
//	if err != nil {
//	    return err
//	}
//	if sel.Fallback {
//	    log.Printf("no profile at or below 9V, using %v", sel.Request)
//	}
func (s *Session) SelectVoltage(ctx context.Context, targetMV uint16) (Selection, error) {
	sel, err := Select(targetMV, s.catalog)
	if err != nil {
		return Selection{}, fmt.Errorf("select %dmV: %w", targetMV, err)
	}

	if err := s.writeRequest(ctx, sel.Request); err != nil {
		return Selection{}, err
	}

	if sel.Fallback {
		s.logInfo("no capability at or below target, using fallback",
			"target_mv", targetMV, "request", sel.Request.String())
	} else {
		s.logInfo("requested", "target_mv", targetMV, "request", sel.Request.String())
	}

	return sel, nil
}

// AdjustCurrent lowers or raises the operating current of the selected
// capability and writes the updated request. Only the operating current
// field changes.
//
// Returns ErrNoSelection before a capability has been selected, and an
// *OutOfRangeError without writing anything when currentMA exceeds the
// slot's maximum current.
func (s *Session) AdjustCurrent(ctx context.Context, currentMA uint16) error {
	if !s.selected {
		return ErrNoSelection
	}

	limit, _ := s.MaxCurrentMA()
	if currentMA > limit {
		return &OutOfRangeError{
			Quantity:  "current",
			Unit:      "mA",
			Requested: uint32(currentMA),
			Limit:     uint32(limit),
		}
	}

	req := s.request
	if req.Kind == protocol.KindProgrammable {
		req.OpCurrent = currentMA / protocol.PPSCurrentLSBmA
	} else {
		req.OpCurrent = currentMA / protocol.FixedCurrentLSBmA
	}

	if err := s.writeRequest(ctx, req); err != nil {
		return err
	}

	s.logInfo("operating current adjusted", "current_ma", req.OpCurrentMA(), "request", req.String())
	return nil
}

func (s *Session) writeRequest(ctx context.Context, req protocol.Request) error {
	data, err := protocol.EncodeRequest(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if err := s.writeRegister(ctx, protocol.RegRDO, data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	s.request = req
	s.selected = true
	s.logDebug("request written", "rdo", fmt.Sprintf("% X", data))
	return nil
}

// Reset writes an all-zero request, which makes the controller drop the
// contract and renegotiate. The selection is cleared; the next
// RefreshStatus reports the new negotiation and rebuilds the catalog.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.writeRegister(ctx, protocol.RegRDO, protocol.ResetRequest()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	s.selected = false
	s.request = protocol.Request{}
	s.logInfo("hard reset requested")
	return nil
}

// ReadVoltage returns the measured VBUS voltage in millivolts.
func (s *Session) ReadVoltage(ctx context.Context) (uint16, error) {
	raw, err := s.readRegister(ctx, protocol.RegVoltage, 1)
	if err != nil {
		return 0, fmt.Errorf("read voltage: %w", err)
	}
	return protocol.VoltageMV(raw[0]), nil
}

// ReadCurrent returns the measured VBUS current in milliamps.
func (s *Session) ReadCurrent(ctx context.Context) (uint16, error) {
	raw, err := s.readRegister(ctx, protocol.RegCurrent, 1)
	if err != nil {
		return 0, fmt.Errorf("read current: %w", err)
	}
	return protocol.CurrentMA(raw[0]), nil
}

// ReadTemperature returns the NTC temperature in degrees Celsius.
func (s *Session) ReadTemperature(ctx context.Context) (uint8, error) {
	raw, err := s.readRegister(ctx, protocol.RegTemperature, 1)
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	return protocol.TemperatureC(raw[0]), nil
}

// Catalog returns the current capability catalog. It is empty until the
// first successful negotiation has been observed.
func (s *Session) Catalog() *protocol.Catalog {
	return s.catalog
}

// Request returns the last request written and whether one is active.
func (s *Session) Request() (protocol.Request, bool) {
	return s.request, s.selected
}

// MaxCurrentMA returns the maximum current of the selected capability.
func (s *Session) MaxCurrentMA() (uint16, bool) {
	if !s.selected {
		return 0, false
	}
	idx := s.request.Index()
	if idx < 0 || idx >= s.catalog.Len() {
		return 0, false
	}
	return s.catalog.At(idx).MaxCurrentMA(), true
}

// Status returns the status decoded by the last RefreshStatus.
func (s *Session) Status() protocol.Status {
	return s.status
}

// LastEvent returns the negotiation event of the last RefreshStatus.
func (s *Session) LastEvent() protocol.Event {
	return s.status.Event()
}

// Faults returns every protection fault observed since the last ClearFaults.
func (s *Session) Faults() protocol.Faults {
	return s.faults
}

// ClearFaults forgets the latched faults.
func (s *Session) ClearFaults() {
	s.faults = 0
}

// readRegister reads n bytes starting at reg.
func (s *Session) readRegister(ctx context.Context, reg byte, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf := make([]byte, n)
	if err := s.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, &TransportError{Op: "read", Register: reg, Err: err}
	}
	return buf, nil
}

// writeRegister writes data starting at reg.
func (s *Session) writeRegister(ctx context.Context, reg byte, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := s.dev.Tx(w, nil); err != nil {
		return &TransportError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// pause waits for the configured write delay or until ctx is done.
func (s *Session) pause(ctx context.Context) error {
	if s.config.WriteDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.config.WriteDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
