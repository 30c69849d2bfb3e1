package ucsi

import (
	"github.com/usb-typec/typec-go/internal/bits"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// AlternateMode is one alternate mode entry reported by
// GET_ALTERNATE_MODES. Recipient is filled in by the caller driving
// the query loop, which also rebases Index from response slot to
// absolute discovery position.
type AlternateMode struct {
	// Recipient is the party the mode was queried from.
	Recipient pd.MessageRecipient
	// Index is the mode's position in discovery order.
	Index uint8
	// SVID is the standard or vendor ID of the mode.
	SVID uint16
	// VDO is the mode's vendor defined object.
	VDO uint32
}

// altModePairDataSize is the size of one GET_ALTERNATE_MODES response
// carrying two (SVID, VDO) entries of six bytes each.
const altModePairDataSize = 12

// DecodeAlternateModes decodes one GET_ALTERNATE_MODES response. Each
// response carries up to two entries; entries with a zero SVID are
// absent and are not returned. Index holds the entry's slot within the
// response so the caller can recover its wire position even when an
// earlier slot is absent. An all-absent response decodes to an empty
// slice, which terminates the query loop.
func DecodeAlternateModes(data []byte) ([]AlternateMode, error) {
	if len(data) < altModePairDataSize {
		return nil, errdefs.Protocol("alternate mode data truncated: %d bytes", len(data))
	}
	r := bits.NewReader(data)

	var modes []AlternateMode
	for i := 0; i < 2; i++ {
		svid := r.Read16(16)
		vdo := r.Read32(32)
		if svid == 0 {
			continue
		}
		modes = append(modes, AlternateMode{Index: uint8(i), SVID: svid, VDO: vdo})
	}
	return modes, nil
}

// DecodeCamSupported decodes the GET_CAM_SUPPORTED bit vector into one
// flag per alternate mode, in the order GET_ALTERNATE_MODES returned
// them.
func DecodeCamSupported(data []byte, numModes int) []bool {
	r := bits.NewReader(data)
	supported := make([]bool, numModes)
	for i := range supported {
		supported[i] = r.Bool()
	}
	return supported
}

// NoCurrentMode is the GET_CURRENT_CAM offset reported when no
// alternate mode is active.
const NoCurrentMode = 0xFF

// DecodeCurrentCam decodes the GET_CURRENT_CAM response into the list
// of active alternate mode offsets.
func DecodeCurrentCam(data []byte) []uint8 {
	var offsets []uint8
	for _, b := range data {
		if b == NoCurrentMode {
			break
		}
		offsets = append(offsets, b)
	}
	return offsets
}
