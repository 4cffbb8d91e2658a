package transport

import (
	"fmt"
	"io"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// I2C is a register device on an I2C bus.
type I2C struct {
	dev    *i2c.Dev
	bus    i2c.Bus
	closer io.Closer
}

// Open initializes the host drivers, opens the named I2C bus and returns
// the device at addr. An empty bus name opens the first bus found.
//
// Example:
//
//	dev, err := transport.Open("1", protocol.DefaultAddress)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
func Open(bus string, addr uint16) (*I2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}

	d := NewI2C(b, addr)
	d.closer = b
	return d, nil
}

// NewI2C returns the device at addr on an already open bus. Close does not
// close a bus passed in this way.
func NewI2C(bus i2c.Bus, addr uint16) *I2C {
	return &I2C{
		dev: &i2c.Dev{Addr: addr, Bus: bus},
		bus: bus,
	}
}

// Buses returns the names of the I2C buses registered with the host drivers.
func Buses() ([]string, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	var names []string
	for _, ref := range i2creg.All() {
		names = append(names, ref.Name)
	}
	return names, nil
}

func (d *I2C) String() string {
	return d.dev.String()
}

// Tx performs one I2C transaction to the device.
func (d *I2C) Tx(w, r []byte) error {
	return d.dev.Tx(w, r)
}

func (d *I2C) Duplex() conn.Duplex {
	return d.dev.Duplex()
}

// SetSpeed sets the bus clock.
func (d *I2C) SetSpeed(f physic.Frequency) error {
	return d.bus.SetSpeed(f)
}

// Close closes the bus if it was opened by Open.
func (d *I2C) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// Compile-time interface satisfaction check.
var _ conn.Conn = (*I2C)(nil)
