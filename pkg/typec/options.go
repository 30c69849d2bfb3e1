package typec

import (
	"time"

	"github.com/usb-typec/typec-go/pkg/backend"
	"github.com/usb-typec/typec-go/pkg/log"
)

// BackendKind selects how a session reaches the platform.
type BackendKind uint8

const (
	// BackendAuto picks the first backend the platform supports:
	// sysfs, then UCSI debugfs.
	BackendAuto BackendKind = iota
	// BackendSysfs reads the Linux typec class.
	BackendSysfs
	// BackendUCSIDebugfs drives UCSI commands through debugfs.
	BackendUCSIDebugfs
	// BackendFixture answers from a scripted response table.
	BackendFixture
)

// String returns the backend kind name.
func (k BackendKind) String() string {
	switch k {
	case BackendAuto:
		return "auto"
	case BackendSysfs:
		return "sysfs"
	case BackendUCSIDebugfs:
		return "ucsi_debugfs"
	case BackendFixture:
		return "fixture"
	default:
		return "unknown"
	}
}

type sessionConfig struct {
	logger      log.Logger
	transport   backend.Transport
	fixtureFile string
	sysfsRoot   string
	psyRoot     string
	debugfsPath string
	timeout     time.Duration
}

// Option configures a Session.
type Option func(*sessionConfig)

// WithLogger sets the trace logger for all protocol exchanges and
// session state changes.
func WithLogger(logger log.Logger) Option {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransport injects a raw transport directly, bypassing backend
// discovery. Intended for fixtures built in code.
func WithTransport(transport backend.Transport) Option {
	return func(c *sessionConfig) {
		c.transport = transport
	}
}

// WithFixtureFile loads the fixture backend's response table from a
// YAML file.
func WithFixtureFile(path string) Option {
	return func(c *sessionConfig) {
		c.fixtureFile = path
	}
}

// WithSysfsRoot overrides the typec class directory of the sysfs
// backend.
func WithSysfsRoot(root string) Option {
	return func(c *sessionConfig) {
		c.sysfsRoot = root
	}
}

// WithPowerSupplyRoot overrides the power supply class directory of
// the sysfs backend.
func WithPowerSupplyRoot(root string) Option {
	return func(c *sessionConfig) {
		c.psyRoot = root
	}
}

// WithDebugfsPath pins the UCSI debugfs backend to a specific device
// directory.
func WithDebugfsPath(path string) Option {
	return func(c *sessionConfig) {
		c.debugfsPath = path
	}
}

// WithCommandTimeout sets the per-command completion timeout of the
// UCSI debugfs backend.
func WithCommandTimeout(timeout time.Duration) Option {
	return func(c *sessionConfig) {
		c.timeout = timeout
	}
}
