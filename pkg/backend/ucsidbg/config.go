// Package ucsidbg implements a Transport over the Linux kernel's UCSI
// debugfs interface. Commands are written to the debugfs command node
// and responses are read back after the kernel signals completion.
//
// The interface lives under /sys/kernel/debug/usb/ucsi/<device>/ and
// requires root. Platforms without a UCSI-capable embedded controller
// have no such node; New reports ErrNotSupported there so callers can
// fall back to another backend.
package ucsidbg

import "time"

// DefaultTimeout is how long Execute waits for the kernel to complete
// a command before giving up.
const DefaultTimeout = 10 * time.Second

type config struct {
	path    string
	timeout time.Duration
}

// Option configures the transport.
type Option func(*config)

// WithPath sets the debugfs device directory explicitly instead of
// discovering the first UCSI device.
func WithPath(path string) Option {
	return func(c *config) {
		c.path = path
	}
}

// WithTimeout sets the per-command completion timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func newConfig(opts []Option) config {
	c := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
