package ucsi

import (
	"fmt"

	"github.com/usb-typec/typec-go/internal/bits"
	"github.com/usb-typec/typec-go/pkg/errdefs"
)

// SpeedExponent scales the cable speed mantissa, UCSI Table 6-40.
type SpeedExponent uint8

const (
	SpeedBps SpeedExponent = iota
	SpeedKbps
	SpeedMbps
	SpeedGbps
)

// String returns the unit name.
func (e SpeedExponent) String() string {
	switch e {
	case SpeedBps:
		return "bps"
	case SpeedKbps:
		return "Kbps"
	case SpeedMbps:
		return "Mbps"
	case SpeedGbps:
		return "Gbps"
	default:
		return "?"
	}
}

// CableType distinguishes passive from active cables.
type CableType uint8

const (
	CablePassive CableType = 0
	CableActive  CableType = 1
)

// String returns the cable type name.
func (t CableType) String() string {
	if t == CableActive {
		return "ACTIVE"
	}
	return "PASSIVE"
}

// PlugEndType identifies the far-end plug of the cable.
type PlugEndType uint8

const (
	PlugTypeA PlugEndType = iota
	PlugTypeB
	PlugTypeC
	PlugOther
)

// String returns the plug end name.
func (t PlugEndType) String() string {
	switch t {
	case PlugTypeA:
		return "USB_TYPE_A"
	case PlugTypeB:
		return "USB_TYPE_B"
	case PlugTypeC:
		return "USB_TYPE_C"
	default:
		return "OTHER_NOT_USB"
	}
}

// CableProperty is the GET_CABLE_PROPERTY response, UCSI Table 6-40.
type CableProperty struct {
	SpeedExponent SpeedExponent
	SpeedMantissa uint16
	// CurrentCapability is in 50mA units.
	CurrentCapability uint8
	VBUSInCable       bool
	CableType         CableType
	// DirectionalityFixed is set when the cable direction is fixed
	// rather than configurable.
	DirectionalityFixed bool
	PlugEndType         PlugEndType
	// ModeSupport indicates the cable supports alternate modes.
	ModeSupport bool
	// CablePDRevision is the cable's major PD revision from the
	// message header specification revision field.
	CablePDRevision uint8
	// Latency is the cable latency code.
	Latency uint8
}

// Speed formats the maximum bit rate of the cable.
func (p CableProperty) Speed() string {
	return fmt.Sprintf("%d %s", p.SpeedMantissa, p.SpeedExponent)
}

const cablePropertyDataSize = 5

// DecodeCableProperty decodes the GET_CABLE_PROPERTY data structure.
func DecodeCableProperty(data []byte) (CableProperty, error) {
	if len(data) < cablePropertyDataSize {
		return CableProperty{}, errdefs.Protocol("cable property data truncated: %d bytes", len(data))
	}
	r := bits.NewReader(data)

	return CableProperty{
		SpeedExponent:       SpeedExponent(r.Read8(2)),
		SpeedMantissa:       r.Read16(14),
		CurrentCapability:   r.Read8(8),
		VBUSInCable:         r.Bool(),
		CableType:           CableType(r.Read8(1)),
		DirectionalityFixed: r.Bool(),
		PlugEndType:         PlugEndType(r.Read8(2)),
		ModeSupport:         r.Bool(),
		CablePDRevision:     r.Read8(2),
		Latency:             r.Read8(4),
	}, nil
}
