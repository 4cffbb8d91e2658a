package sink

import "time"

// Config holds the session configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// EventCallback is called after every status refresh (optional)
	EventCallback EventCallback

	// WriteDelay is the pause between consecutive calibration writes.
	// The controller needs a few milliseconds to latch each register.
	WriteDelay time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		WriteDelay: 5 * time.Millisecond,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithLogger sets a logger for the session operations.
//
// Example:
//
//	s := sink.New(dev, sink.WithLogger(sink.NewSlogLogger(slog.Default())))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithEventCallback sets a function called with each decoded status.
// On a new negotiation it runs after the catalog has been rebuilt, so
// Session.Catalog already reflects the new source.
//
// Example:
//
//	s := sink.New(dev,
//	    sink.WithEventCallback(func(e protocol.Event, st protocol.Status) {
//	        fmt.Println("negotiation:", e)
//	    }),
//	)
func WithEventCallback(callback EventCallback) Option {
	return func(c *Config) {
		c.EventCallback = callback
	}
}

// WithWriteDelay sets the pause between calibration writes. Default is 5ms.
// Zero disables the pause.
func WithWriteDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.WriteDelay = d
		}
	}
}
