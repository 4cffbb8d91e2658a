// Package sink negotiates USB Power Delivery contracts through an
// AP33772-class sink controller.
//
// A Session reads the source capabilities the controller has collected,
// chooses one for a target voltage, writes the request back and tracks the
// negotiation status and protection faults.
//
// # Basic Usage
//
//	if _, err := host.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	bus, err := i2creg.Open("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Close()
//
//	s := sink.New(&i2c.Dev{Addr: protocol.DefaultAddress, Bus: bus})
//
//	if _, err := s.RefreshStatus(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	sel, err := s.SelectVoltage(ctx, 9000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("requested", sel.Request)
//
// # Catalog Lifecycle
//
// The catalog is rebuilt only when RefreshStatus observes a successful new
// negotiation; any other status leaves it untouched. Call RefreshStatus
// after power-up and whenever the interrupt line asserts.
//
// # Selection Policy
//
// Select prefers a PPS capability that covers the target voltage, then the
// highest fixed capability that does not exceed it. When a PPS capability
// exists and the fixed choice is not above its maximum, the PPS capability
// is requested at its maximum voltage. See Select for the exact rules.
//
// # Current Adjustment
//
// Requests always start at the slot's maximum current. AdjustCurrent
// rewrites only the operating current:
//
//	if err := s.AdjustCurrent(ctx, 1500); sink.IsOutOfRange(err) {
//	    log.Printf("source cannot supply 1.5A: %v", err)
//	}
//
// # Error Handling
//
// Register transfer failures are returned as *TransportError and are never
// retried. Requests the selected capability cannot satisfy return
// *OutOfRangeError and leave the controller untouched.
//
//	var te *sink.TransportError
//	if errors.As(err, &te) {
//	    log.Printf("bus error on register 0x%02X", te.Register)
//	}
//
// # Logging
//
// Provide any Logger implementation, or adapt log/slog:
//
//	s := sink.New(dev, sink.WithLogger(sink.NewSlogLogger(slog.Default())))
package sink
