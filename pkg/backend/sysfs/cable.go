package sysfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// CableProperties implements backend.Backend. The kernel exposes the
// plug type and active/passive classification; speed and current
// ratings are not available through this class and read as zero.
func (b *Backend) CableProperties(ctx context.Context, connector uint8) (ucsi.CableProperty, error) {
	if _, err := b.portDir(connector); err != nil {
		return ucsi.CableProperty{}, err
	}

	dir := b.cableDir(connector)
	if !exists(dir) {
		return ucsi.CableProperty{}, fmt.Errorf("connector %d has no cable: %w", connector, errdefs.ErrNotSupported)
	}

	var prop ucsi.CableProperty

	if plug, err := readTrimmed(filepath.Join(dir, "plug_type")); err == nil {
		switch plug {
		case "type-a":
			prop.PlugEndType = ucsi.PlugTypeA
		case "type-b":
			prop.PlugEndType = ucsi.PlugTypeB
		case "type-c":
			prop.PlugEndType = ucsi.PlugTypeC
		default:
			prop.PlugEndType = ucsi.PlugOther
		}
	}

	if kind, err := readTrimmed(filepath.Join(dir, "type")); err == nil && kind == "active" {
		prop.CableType = ucsi.CableActive
	}

	if rev := readRevision(filepath.Join(dir, "usb_power_delivery_revision")); rev != 0 {
		prop.CablePDRevision = rev.Major()
	}

	if n, err := readMilli(filepath.Join(b.plugDir(connector, 0), "number_of_alternate_modes")); err == nil && n > 0 {
		prop.ModeSupport = true
	}
	return prop, nil
}
