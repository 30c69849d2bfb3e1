// Package ucsi implements the USB Type-C Connector System Software
// Interface command set used by this library: the 64-bit control
// encoding of the query commands and the decoders for their response
// data structures.
//
// Commands are built LSB first: the command number in bits 7..0, the
// data length in bits 15..8 and command-specific fields above. UCSI
// numbers connectors starting at 1, so a zero-based connector index n
// is carried on the wire as n+1.
package ucsi

import "github.com/usb-typec/typec-go/pkg/pd"

// Command numbers, UCSI Appendix A.
const (
	cmdGetCapability          = 0x06
	cmdGetConnectorCapability = 0x07
	cmdGetAlternateModes      = 0x0C
	cmdGetCamSupported        = 0x0D
	cmdGetCurrentCam          = 0x0E
	cmdGetPdos                = 0x10
	cmdGetCableProperty       = 0x11
	cmdGetConnectorStatus     = 0x12
	cmdGetPdMessage           = 0x15
)

// Command is a UCSI control command.
type Command interface {
	// Number returns the UCSI command number.
	Number() uint8
	// Encode packs the command into its 64-bit control value.
	Encode() uint64
}

// SourceCapabilitiesType selects which source capability set GET_PDOS
// retrieves when querying the connector itself.
type SourceCapabilitiesType uint8

const (
	// CurrentSourceCapabilities requests the currently supported
	// source capabilities.
	CurrentSourceCapabilities SourceCapabilitiesType = 0
	// AdvertisedCapabilities requests the capabilities currently
	// advertised to the port partner.
	AdvertisedCapabilities SourceCapabilitiesType = 1
	// MaximumSourceCapabilities requests the maximum capabilities the
	// connector can support.
	MaximumSourceCapabilities SourceCapabilitiesType = 2
)

// GetCapability retrieves the platform policy manager capabilities.
type GetCapability struct{}

func (GetCapability) Number() uint8 { return cmdGetCapability }

func (GetCapability) Encode() uint64 { return cmdGetCapability }

// GetConnectorCapability retrieves the capabilities of one connector.
type GetConnectorCapability struct {
	// Connector is the zero-based connector index.
	Connector uint8
}

func (GetConnectorCapability) Number() uint8 { return cmdGetConnectorCapability }

func (c GetConnectorCapability) Encode() uint64 {
	return cmdGetConnectorCapability | connectorField(c.Connector)<<16
}

// GetAlternateModes retrieves one response worth of alternate modes
// supported by the connector, cable or attached device.
type GetAlternateModes struct {
	Recipient pd.MessageRecipient
	Connector uint8
	// Offset is the index of the first mode to return.
	Offset uint8
}

func (GetAlternateModes) Number() uint8 { return cmdGetAlternateModes }

func (c GetAlternateModes) Encode() uint64 {
	return cmdGetAlternateModes |
		uint64(c.Recipient&0b111)<<16 |
		connectorField(c.Connector)<<24 |
		uint64(c.Offset)<<32
}

// GetCamSupported retrieves the bit vector of alternate modes currently
// available on the connector.
type GetCamSupported struct {
	Connector uint8
}

func (GetCamSupported) Number() uint8 { return cmdGetCamSupported }

func (c GetCamSupported) Encode() uint64 {
	return cmdGetCamSupported | connectorField(c.Connector)<<16
}

// GetCurrentCam retrieves the offsets of the alternate modes currently
// active on the connector.
type GetCurrentCam struct {
	Connector uint8
}

func (GetCurrentCam) Number() uint8 { return cmdGetCurrentCam }

func (c GetCurrentCam) Encode() uint64 {
	return cmdGetCurrentCam | connectorField(c.Connector)<<16
}

// GetPdos retrieves sink or source power data objects from a connector
// or its partner.
type GetPdos struct {
	Connector uint8
	// Partner selects the port partner's PDOs instead of the
	// connector's own.
	Partner bool
	// Offset is the index of the first PDO to return.
	Offset uint8
	// Count is the number of PDOs to return minus one; the wire field
	// is two bits wide, so at most four PDOs per command.
	Count uint8
	Role  pd.PowerRole
	// SourceCaps is only meaningful when querying the connector's own
	// source capabilities.
	SourceCaps SourceCapabilitiesType
}

func (GetPdos) Number() uint8 { return cmdGetPdos }

func (c GetPdos) Encode() uint64 {
	v := uint64(cmdGetPdos) | connectorField(c.Connector)<<16
	if c.Partner {
		v |= 1 << 23
	}
	v |= uint64(c.Offset) << 24
	v |= uint64(c.Count&0b11) << 32
	if c.Role == pd.RoleSource {
		v |= 1 << 34
	}
	v |= uint64(c.SourceCaps&0b11) << 35
	return v
}

// GetCableProperty retrieves the cable properties of a connector.
type GetCableProperty struct {
	Connector uint8
}

func (GetCableProperty) Number() uint8 { return cmdGetCableProperty }

func (c GetCableProperty) Encode() uint64 {
	return cmdGetCableProperty | connectorField(c.Connector)<<16
}

// GetConnectorStatus retrieves the current status of a connector.
type GetConnectorStatus struct {
	Connector uint8
}

func (GetConnectorStatus) Number() uint8 { return cmdGetConnectorStatus }

func (c GetConnectorStatus) Encode() uint64 {
	return cmdGetConnectorStatus | connectorField(c.Connector)<<16
}

// GetPdMessage retrieves a PD response message previously received
// from the given recipient.
type GetPdMessage struct {
	Connector    uint8
	Recipient    pd.MessageRecipient
	ResponseType pd.MessageResponseType
}

func (GetPdMessage) Number() uint8 { return cmdGetPdMessage }

func (c GetPdMessage) Encode() uint64 {
	return cmdGetPdMessage |
		connectorField(c.Connector)<<16 |
		uint64(c.Recipient&0b111)<<23 |
		uint64(c.ResponseType&0x3F)<<42
}

// connectorField converts a zero-based connector index to the 7-bit
// one-based wire field.
func connectorField(connector uint8) uint64 {
	return uint64(connector+1) & 0x7F
}

// Compile-time interface checks.
var (
	_ Command = GetCapability{}
	_ Command = GetConnectorCapability{}
	_ Command = GetAlternateModes{}
	_ Command = GetCamSupported{}
	_ Command = GetCurrentCam{}
	_ Command = GetPdos{}
	_ Command = GetCableProperty{}
	_ Command = GetConnectorStatus{}
	_ Command = GetPdMessage{}
)
