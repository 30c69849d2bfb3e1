// Package sysfs implements a Backend over the Linux typec and
// power_supply sysfs classes. Unlike the debugfs transport it needs no
// root privileges, but the kernel exposes only a subset of the UCSI
// data there, so some queries answer with zero-valued fields or
// ErrNotSupported.
//
// The expected layout under the typec root is the kernel's:
//
//	portN/                          connector N
//	portN/portN.M                   connector alternate modes
//	portN/portN-partner/            attached partner
//	portN/portN-partner/portN-partner.M
//	portN/portN-cable/              attached cable
//	portN/portN-cable/portN-plugK/  cable plug K
//
// The roots are injectable so the backend can be pointed at a fake
// tree in tests.
package sysfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

const (
	// DefaultRoot is the kernel's typec class directory.
	DefaultRoot = "/sys/class/typec"
	// DefaultPowerSupplyRoot is the kernel's power supply class
	// directory, where UCSI source power readings live.
	DefaultPowerSupplyRoot = "/sys/class/power_supply"
)

var (
	portPattern    = regexp.MustCompile(`^port\d+$`)
	altModePattern = regexp.MustCompile(`^port\d+(-partner|-plug\d+)?\.\d+$`)
)

// Backend reads connector state from sysfs attribute files.
type Backend struct {
	root    string
	psyRoot string
}

// Option configures the backend.
type Option func(*Backend)

// WithRoot overrides the typec class directory.
func WithRoot(root string) Option {
	return func(b *Backend) {
		b.root = root
	}
}

// WithPowerSupplyRoot overrides the power supply class directory.
func WithPowerSupplyRoot(root string) Option {
	return func(b *Backend) {
		b.psyRoot = root
	}
}

// New opens the sysfs backend. The error unwraps to ErrNotSupported
// when the typec class is absent or empty, so callers can fall back to
// another backend.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		root:    DefaultRoot,
		psyRoot: DefaultPowerSupplyRoot,
	}
	for _, opt := range opts {
		opt(b)
	}

	ports, err := b.portNames()
	if err != nil || len(ports) == 0 {
		return nil, fmt.Errorf("no typec ports under %s: %w", b.root, errdefs.ErrNotSupported)
	}
	return b, nil
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return "sysfs" }

// Close implements backend.Backend.
func (b *Backend) Close() error { return nil }

// portNames returns the portN entries under the typec root, sorted by
// the directory listing.
func (b *Backend) portNames() ([]string, error) {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if portPattern.MatchString(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// portDir returns the connector's directory, validating the index.
func (b *Backend) portDir(connector uint8) (string, error) {
	dir := filepath.Join(b.root, fmt.Sprintf("port%d", connector))
	if !exists(dir) {
		return "", fmt.Errorf("connector %d: %w", connector, errdefs.ErrInvalidArgument)
	}
	return dir, nil
}

func (b *Backend) partnerDir(connector uint8) string {
	return filepath.Join(b.root, fmt.Sprintf("port%d", connector), fmt.Sprintf("port%d-partner", connector))
}

func (b *Backend) cableDir(connector uint8) string {
	return filepath.Join(b.root, fmt.Sprintf("port%d", connector), fmt.Sprintf("port%d-cable", connector))
}

func (b *Backend) plugDir(connector uint8, plug int) string {
	return filepath.Join(b.cableDir(connector), fmt.Sprintf("port%d-plug%d", connector, plug))
}

// Capabilities implements backend.Backend. Connector and alternate
// mode counts come from directory enumeration; the kernel does not
// expose the UCSI capability bitmaps, so only the features this
// backend can actually answer are reported.
func (b *Backend) Capabilities(ctx context.Context) (ucsi.Capability, error) {
	ports, err := b.portNames()
	if err != nil {
		return ucsi.Capability{}, errdefs.Transport("scan typec class", err)
	}
	if len(ports) == 0 {
		return ucsi.Capability{}, fmt.Errorf("no typec ports: %w", errdefs.ErrNotSupported)
	}

	var caps ucsi.Capability
	caps.NumConnectors = uint8(len(ports))
	for _, port := range ports {
		caps.NumAltModes += uint8(countAltModes(filepath.Join(b.root, port)))
	}

	first := filepath.Join(b.root, ports[0])
	caps.PDVersion = readRevision(filepath.Join(first, "usb_power_delivery_revision"))
	caps.TypeCVersion = readRevision(filepath.Join(first, "usb_typec_revision"))
	caps.Attributes.PowerDelivery = caps.PDVersion != 0
	caps.OptionalFeatures.AlternateModeDetails = true
	caps.OptionalFeatures.PdoDetails = true
	caps.OptionalFeatures.CableDetails = true
	caps.OptionalFeatures.GetPdMessage = true
	return caps, nil
}

// countAltModes counts the alternate mode subdirectories of a device
// directory.
func countAltModes(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var n int
	for _, entry := range entries {
		if altModePattern.MatchString(entry.Name()) {
			n++
		}
	}
	return n
}

// ConnectorCapabilities implements backend.Backend. The operation mode
// is derived from the port's power_role attribute, which lists the
// supported roles with the active one in brackets.
func (b *Backend) ConnectorCapabilities(ctx context.Context, connector uint8) (ucsi.ConnectorCapability, error) {
	dir, err := b.portDir(connector)
	if err != nil {
		return ucsi.ConnectorCapability{}, err
	}

	role, err := readTrimmed(filepath.Join(dir, "power_role"))
	if err != nil {
		return ucsi.ConnectorCapability{}, errdefs.Transport("read power_role", err)
	}

	var caps ucsi.ConnectorCapability
	source := strings.Contains(role, "source")
	sink := strings.Contains(role, "sink")
	switch {
	case source && sink:
		caps.OperationMode = ucsi.OperationDRP
		caps.Provider = true
		caps.Consumer = true
		caps.SwapToSrc = true
		caps.SwapToSnk = true
	case sink:
		caps.OperationMode = ucsi.OperationRdOnly
		caps.Consumer = true
	default:
		caps.OperationMode = ucsi.OperationRpOnly
		caps.Provider = true
	}

	if rev := readRevision(filepath.Join(b.partnerDir(connector), "usb_power_delivery_revision")); rev != 0 {
		caps.PartnerPDRevision = rev.Major()
	}
	return caps, nil
}

// exists reports whether a path is present.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readTrimmed reads a sysfs attribute file as a trimmed string.
func readTrimmed(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// readHexWord reads an attribute holding a hex value, with or without
// a 0x prefix.
func readHexWord(path string) (uint32, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, errdefs.Protocol("malformed hex attribute %s: %q", path, s)
	}
	return uint32(v), nil
}

// readMilli reads an attribute holding an integer quantity, tolerating
// a trailing unit suffix such as "5000mV".
func readMilli(path string) (uint32, error) {
	s, err := readTrimmed(path)
	if err != nil {
		return 0, err
	}
	s = strings.TrimRight(s, "mAVWuµ")
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errdefs.Protocol("malformed numeric attribute %s", path)
	}
	return uint32(v), nil
}

// readFlag reads a boolean attribute holding "0"/"1" or "no"/"yes".
func readFlag(path string) bool {
	s, err := readTrimmed(path)
	if err != nil {
		return false
	}
	return s == "1" || s == "yes"
}

// readRevision parses a "major.minor" revision attribute into BCD
// form. Missing or malformed attributes read as zero.
func readRevision(path string) pd.BCD {
	s, err := readTrimmed(path)
	if err != nil {
		return 0
	}
	major, minor, ok := strings.Cut(s, ".")
	if !ok {
		return 0
	}
	hi, err := strconv.ParseUint(major, 16, 8)
	if err != nil {
		return 0
	}
	lo, err := strconv.ParseUint(minor, 16, 8)
	if err != nil {
		return 0
	}
	return pd.BCD(hi<<8 | lo)
}
