package sysfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/usb-typec/typec-go/pkg/backend"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// PDOs implements backend.Backend. Capabilities are read from the
// usb_power_delivery directory the kernel registers per device, one
// subdirectory per object with the decoded fields as attribute files.
// Values are already in millivolts, milliamps and milliwatts, so no
// PDO unit scaling applies. Only the currently advertised source
// capability set exists in sysfs.
func (b *Backend) PDOs(ctx context.Context, connector uint8, req backend.PDORequest) ([]pd.PDO, error) {
	dir, err := b.portDir(connector)
	if err != nil {
		return nil, err
	}
	if req.Partner {
		dir = b.partnerDir(connector)
		if !exists(dir) {
			return nil, fmt.Errorf("connector %d has no partner: %w", connector, errdefs.ErrNotSupported)
		}
	}
	if req.SourceCaps != 0 {
		return nil, fmt.Errorf("source capability set %d: %w", req.SourceCaps, errdefs.ErrNotSupported)
	}

	roleDir := "source-capabilities"
	if req.Role == pd.RoleSink {
		roleDir = "sink-capabilities"
	}
	capsDir := filepath.Join(dir, "usb_power_delivery", roleDir)
	names, err := pdoDirNames(capsDir)
	if err != nil {
		// No capability directory means an empty set. Anything else
		// is a real I/O failure and must not look like one.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errdefs.Transport("list capability objects", err)
	}

	var pdos []pd.PDO
	for _, name := range names {
		pdo, err := b.readPDO(filepath.Join(capsDir, name), name, req.Role)
		if err != nil {
			return nil, err
		}
		pdos = append(pdos, pdo)
	}

	if int(req.Offset) >= len(pdos) {
		return nil, nil
	}
	pdos = pdos[req.Offset:]
	if req.MaxPDOs > 0 && int(req.MaxPDOs) < len(pdos) {
		pdos = pdos[:req.MaxPDOs]
	}
	return pdos, nil
}

// pdoDirNames lists the capability subdirectories in object order.
// The kernel names them "<position>:<type>", position starting at 1.
func pdoDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && strings.Contains(entry.Name(), ":") {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pdoPosition(names[i]) < pdoPosition(names[j])
	})
	return names, nil
}

func pdoPosition(name string) int {
	idx, _, _ := strings.Cut(name, ":")
	n, _ := strconv.Atoi(idx)
	return n
}

// readPDO builds one decoded PDO from a capability subdirectory.
func (b *Backend) readPDO(dir, name string, role pd.PowerRole) (pd.PDO, error) {
	switch {
	case strings.Contains(name, "fixed"):
		return b.readFixedPDO(dir, role)
	case strings.Contains(name, "variable"):
		return &pd.VariableSupply{
			MaxVoltageMV: readMilliOrZero(dir, "maximum_voltage"),
			MinVoltageMV: readMilliOrZero(dir, "minimum_voltage"),
			CurrentMA:    readCurrent(dir, role),
		}, nil
	case strings.Contains(name, "battery"):
		power := "maximum_power"
		if role == pd.RoleSink {
			power = "operational_power"
		}
		return &pd.BatterySupply{
			MaxVoltageMV: readMilliOrZero(dir, "maximum_voltage"),
			MinVoltageMV: readMilliOrZero(dir, "minimum_voltage"),
			PowerMW:      readMilliOrZero(dir, power),
		}, nil
	case strings.Contains(name, "programmable"):
		return &pd.ProgrammableSupply{
			PowerLimited: readFlag(filepath.Join(dir, "pps_power_limited")),
			MaxVoltageMV: readMilliOrZero(dir, "maximum_voltage"),
			MinVoltageMV: readMilliOrZero(dir, "minimum_voltage"),
			MaxCurrentMA: readMilliOrZero(dir, "maximum_current"),
		}, nil
	default:
		return nil, errdefs.Protocol("unrecognized capability directory %q", name)
	}
}

func (b *Backend) readFixedPDO(dir string, role pd.PowerRole) (pd.PDO, error) {
	voltage, err := readMilli(filepath.Join(dir, "voltage"))
	if err != nil {
		return nil, err
	}
	p := &pd.FixedSupply{
		Role:               role,
		DualRolePower:      readFlag(filepath.Join(dir, "dual_role_power")),
		UnconstrainedPower: readFlag(filepath.Join(dir, "unconstrained_power")),
		USBCommsCapable:    readFlag(filepath.Join(dir, "usb_communication_capable")),
		DualRoleData:       readFlag(filepath.Join(dir, "dual_role_data")),
		VoltageMV:          voltage,
		CurrentMA:          readCurrent(dir, role),
	}
	if role == pd.RoleSink {
		p.HigherCapability = readFlag(filepath.Join(dir, "higher_capability"))
		if frs, err := readMilli(filepath.Join(dir, "fast_role_swap_current")); err == nil {
			p.FastRoleSwap = pd.FastRoleSwap(frs)
		}
	} else {
		p.USBSuspendSupported = readFlag(filepath.Join(dir, "usb_suspend_supported"))
		p.UnchunkedExtMsgs = readFlag(filepath.Join(dir, "unchunked_extended_messages_supported"))
	}
	return p, nil
}

// readCurrent reads the role-appropriate current attribute.
func readCurrent(dir string, role pd.PowerRole) uint32 {
	name := "maximum_current"
	if role == pd.RoleSink {
		name = "operational_current"
	}
	return readMilliOrZero(dir, name)
}

func readMilliOrZero(dir, name string) uint32 {
	v, err := readMilli(filepath.Join(dir, name))
	if err != nil {
		return 0
	}
	return v
}

// Compile-time interface satisfaction check.
var _ backend.Backend = (*Backend)(nil)
