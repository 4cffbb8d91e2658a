// Package transport provides register devices for a sink Session.
//
// Every device implements periph.io/x/conn/v3.Conn: a register read is
// Tx([]byte{reg}, buf) and a register write is Tx(append([]byte{reg}, data...), nil).
//
// Open attaches to a real I2C bus through periph.io host drivers. Recorder
// wraps any device and appends one CBOR TraceEvent per transfer to a writer;
// Replayer answers transfers from a recorded trace so a session can be rerun
// without hardware.
//
//	dev, err := transport.Open("", protocol.DefaultAddress)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	f, _ := os.Create("session.trace")
//	rec := transport.NewRecorder(dev, f)
//	s := sink.New(rec)
package transport
