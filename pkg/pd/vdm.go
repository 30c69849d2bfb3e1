package pd

// VDMCommandType is the command type field of a structured VDM header.
type VDMCommandType uint8

const (
	// VDMRequest is a request from the initiator port.
	VDMRequest VDMCommandType = 0
	// VDMAck is an acknowledge response.
	VDMAck VDMCommandType = 1
	// VDMNak is a negative acknowledge response.
	VDMNak VDMCommandType = 2
	// VDMBusy indicates the responder cannot answer yet.
	VDMBusy VDMCommandType = 3
)

// String returns the command type name.
func (t VDMCommandType) String() string {
	switch t {
	case VDMRequest:
		return "REQ"
	case VDMAck:
		return "ACK"
	case VDMNak:
		return "NAK"
	case VDMBusy:
		return "BUSY"
	default:
		return "UNKNOWN"
	}
}

// VDMCommand is the command field of a structured VDM header.
type VDMCommand uint8

const (
	// VDMDiscoverIdentity requests the responder's identity.
	VDMDiscoverIdentity VDMCommand = 1
	// VDMDiscoverSVIDs requests the responder's supported SVIDs.
	VDMDiscoverSVIDs VDMCommand = 2
	// VDMDiscoverModes requests the modes of one SVID.
	VDMDiscoverModes VDMCommand = 3
	// VDMEnterMode enters an alternate mode.
	VDMEnterMode VDMCommand = 4
	// VDMExitMode exits an alternate mode.
	VDMExitMode VDMCommand = 5
	// VDMAttention signals the DFP from a UFP.
	VDMAttention VDMCommand = 6
)

// String returns the command name.
func (c VDMCommand) String() string {
	switch c {
	case VDMDiscoverIdentity:
		return "DISCOVER_IDENTITY"
	case VDMDiscoverSVIDs:
		return "DISCOVER_SVIDS"
	case VDMDiscoverModes:
		return "DISCOVER_MODES"
	case VDMEnterMode:
		return "ENTER_MODE"
	case VDMExitMode:
		return "EXIT_MODE"
	case VDMAttention:
		return "ATTENTION"
	default:
		return "UNKNOWN"
	}
}

// VDMHeader is the first 32-bit object of a vendor defined message.
// See the "Structured VDM Header" table in the USB PD specification.
type VDMHeader struct {
	// SVID is the standard or vendor ID the message belongs to.
	// 0xFF00 (the PD SID) for identity discovery.
	SVID uint16
	// Structured is false for unstructured VDMs, in which case only
	// SVID carries meaning.
	Structured bool
	// Major and Minor carry the structured VDM version.
	Major uint8
	Minor uint8
	// ObjectPosition indexes the mode list for Enter/Exit Mode and
	// Attention commands, zero otherwise.
	ObjectPosition uint8
	CommandType    VDMCommandType
	Command        VDMCommand
}

// DecodeVDMHeader decodes a raw VDM header word.
func DecodeVDMHeader(word uint32) VDMHeader {
	return VDMHeader{
		SVID:           uint16(word >> 16),
		Structured:     word>>15&1 != 0,
		Major:          uint8(word >> 13 & 0b11),
		Minor:          uint8(word >> 11 & 0b11),
		ObjectPosition: uint8(word >> 8 & 0b111),
		CommandType:    VDMCommandType(word >> 6 & 0b11),
		Command:        VDMCommand(word & 0x1F),
	}
}

// Encode packs the header back into its wire representation.
func (h VDMHeader) Encode() uint32 {
	var w uint32
	w |= uint32(h.SVID) << 16
	if h.Structured {
		w |= 1 << 15
	}
	w |= uint32(h.Major&0b11) << 13
	w |= uint32(h.Minor&0b11) << 11
	w |= uint32(h.ObjectPosition&0b111) << 8
	w |= uint32(h.CommandType&0b11) << 6
	w |= uint32(h.Command) & 0x1F
	return w
}
