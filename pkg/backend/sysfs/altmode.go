package sysfs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// altModeBase returns the directory holding the recipient's alternate
// mode subdirectories and the name prefix those subdirectories use.
func (b *Backend) altModeBase(recipient pd.MessageRecipient, connector uint8) (dir, prefix string, err error) {
	switch recipient {
	case pd.RecipientConnector:
		dir, err = b.portDir(connector)
		return dir, fmt.Sprintf("port%d", connector), err
	case pd.RecipientSOP:
		return b.partnerDir(connector), fmt.Sprintf("port%d-partner", connector), nil
	case pd.RecipientSOPPrime:
		return b.plugDir(connector, 0), fmt.Sprintf("port%d-plug0", connector), nil
	case pd.RecipientSOPDoublePrime:
		return b.plugDir(connector, 1), fmt.Sprintf("port%d-plug1", connector), nil
	default:
		return "", "", fmt.Errorf("alternate mode recipient %s: %w", recipient, errdefs.ErrInvalidArgument)
	}
}

// AlternateModes implements backend.Backend. Modes are read from the
// numbered subdirectories the kernel creates per discovered mode; an
// absent recipient simply has no modes.
func (b *Backend) AlternateModes(ctx context.Context, recipient pd.MessageRecipient, connector uint8) ([]ucsi.AlternateMode, error) {
	dir, prefix, err := b.altModeBase(recipient, connector)
	if err != nil {
		return nil, err
	}
	if !exists(dir) {
		return nil, nil
	}

	var modes []ucsi.AlternateMode
	for i := 0; ; i++ {
		modeDir := filepath.Join(dir, fmt.Sprintf("%s.%d", prefix, i))
		if !exists(modeDir) {
			break
		}
		svid, err := readHexWord(filepath.Join(modeDir, "svid"))
		if err != nil {
			return nil, err
		}
		vdo, err := readHexWord(filepath.Join(modeDir, "vdo"))
		if err != nil {
			return nil, err
		}
		modes = append(modes, ucsi.AlternateMode{
			Recipient: recipient,
			Index:     uint8(i),
			SVID:      uint16(svid),
			VDO:       vdo,
		})
	}
	return modes, nil
}

// CamSupported implements backend.Backend. The kernel marks a
// connector mode's availability in its active attribute.
func (b *Backend) CamSupported(ctx context.Context, connector uint8, numModes int) ([]bool, error) {
	dir, err := b.portDir(connector)
	if err != nil {
		return nil, err
	}

	supported := make([]bool, numModes)
	for i := range supported {
		modeDir := filepath.Join(dir, fmt.Sprintf("port%d.%d", connector, i))
		if !exists(modeDir) {
			break
		}
		supported[i] = readFlag(filepath.Join(modeDir, "active"))
	}
	return supported, nil
}

// CurrentCam implements backend.Backend. A mode is current when the
// partner's corresponding mode is active.
func (b *Backend) CurrentCam(ctx context.Context, connector uint8) ([]uint8, error) {
	if _, err := b.portDir(connector); err != nil {
		return nil, err
	}

	dir := b.partnerDir(connector)
	var offsets []uint8
	for i := 0; ; i++ {
		modeDir := filepath.Join(dir, fmt.Sprintf("port%d-partner.%d", connector, i))
		if !exists(modeDir) {
			break
		}
		if readFlag(filepath.Join(modeDir, "active")) {
			offsets = append(offsets, uint8(i))
		}
	}
	return offsets, nil
}
