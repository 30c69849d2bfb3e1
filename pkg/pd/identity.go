package pd

import (
	"errors"
	"fmt"

	"github.com/usb-typec/typec-go/pkg/errdefs"
)

// UFPProductType is the SOP product type of an ID header VDO when the
// responder acts in the UFP data role.
type UFPProductType uint8

const (
	// UFPNotUFP means no UFP product type VDO follows.
	UFPNotUFP UFPProductType = 0
	// UFPHub is a PD-capable USB hub.
	UFPHub UFPProductType = 1
	// UFPPeripheral is a PD-capable USB peripheral.
	UFPPeripheral UFPProductType = 2
	// UFPPSD is a power-only sink device.
	UFPPSD UFPProductType = 3
	// UFPAlternateModeAdapter is an alternate mode adapter (revision
	// 3.0 and earlier).
	UFPAlternateModeAdapter UFPProductType = 5
	// UFPVPD is a VCONN-powered USB device.
	UFPVPD UFPProductType = 6
)

// String returns the UFP product type name.
func (t UFPProductType) String() string {
	switch t {
	case UFPNotUFP:
		return "NOT_UFP"
	case UFPHub:
		return "PDUSB_HUB"
	case UFPPeripheral:
		return "PDUSB_PERIPHERAL"
	case UFPPSD:
		return "PSD"
	case UFPAlternateModeAdapter:
		return "AMA"
	case UFPVPD:
		return "VPD"
	default:
		return "RESERVED"
	}
}

// CableProductType is the SOP' / SOP” product type of an ID header
// VDO when the responder is a cable plug or VPD.
type CableProductType uint8

const (
	// CableNone means the responder is not a cable plug.
	CableNone CableProductType = 0
	// CablePassive is a passive cable.
	CablePassive CableProductType = 3
	// CableActive is an active cable.
	CableActive CableProductType = 4
	// CableVPD is a VCONN-powered USB device.
	CableVPD CableProductType = 6
)

// String returns the cable product type name.
func (t CableProductType) String() string {
	switch t {
	case CableNone:
		return "NOT_CABLE"
	case CablePassive:
		return "PASSIVE_CABLE"
	case CableActive:
		return "ACTIVE_CABLE"
	case CableVPD:
		return "VPD"
	default:
		return "RESERVED"
	}
}

// DFPProductType is the SOP product type of an ID header VDO when the
// responder acts in the DFP data role.
type DFPProductType uint8

const (
	// DFPNotDFP means no DFP product type VDO follows.
	DFPNotDFP DFPProductType = 0
	// DFPHub is a PD-capable USB hub.
	DFPHub DFPProductType = 1
	// DFPHost is a PD-capable USB host.
	DFPHost DFPProductType = 2
	// DFPPowerBrick is a power brick.
	DFPPowerBrick DFPProductType = 3
)

// String returns the DFP product type name.
func (t DFPProductType) String() string {
	switch t {
	case DFPNotDFP:
		return "NOT_DFP"
	case DFPHub:
		return "PDUSB_HUB"
	case DFPHost:
		return "PDUSB_HOST"
	case DFPPowerBrick:
		return "POWER_BRICK"
	default:
		return "RESERVED"
	}
}

// ConnectorType identifies the product's connector in an ID header VDO.
type ConnectorType uint8

const (
	// ConnectorTypeCReceptacle is a USB Type-C receptacle.
	ConnectorTypeCReceptacle ConnectorType = 2
	// ConnectorTypeCPlug is a USB Type-C plug.
	ConnectorTypeCPlug ConnectorType = 3
)

// String returns the connector type name.
func (t ConnectorType) String() string {
	switch t {
	case ConnectorTypeCReceptacle:
		return "TYPE_C_RECEPTACLE"
	case ConnectorTypeCPlug:
		return "TYPE_C_PLUG"
	default:
		return "RESERVED"
	}
}

// IDHeader is the ID header VDO of a Discover Identity response.
// SOPProductType holds the raw 3-bit field; interpret it with UFPType
// or CableType depending on who answered.
type IDHeader struct {
	Raw uint32

	USBHostCapable   bool
	USBDeviceCapable bool
	SOPProductType   uint8
	ModalOperation   bool
	DFPType          DFPProductType
	ConnectorType    ConnectorType
	// VendorID is the USB-IF assigned VID.
	VendorID uint16
}

// UFPType interprets the SOP product type field for a port partner.
func (h IDHeader) UFPType() UFPProductType {
	return UFPProductType(h.SOPProductType)
}

// CableType interprets the SOP product type field for a cable plug.
func (h IDHeader) CableType() CableProductType {
	return CableProductType(h.SOPProductType)
}

// DecodeIDHeader decodes a raw ID header VDO word.
func DecodeIDHeader(word uint32) IDHeader {
	return IDHeader{
		Raw:              word,
		USBHostCapable:   word>>31&1 != 0,
		USBDeviceCapable: word>>30&1 != 0,
		SOPProductType:   uint8(word >> 27 & 0b111),
		ModalOperation:   word>>26&1 != 0,
		DFPType:          DFPProductType(word >> 23 & 0b111),
		ConnectorType:    ConnectorType(word >> 21 & 0b11),
		VendorID:         uint16(word),
	}
}

// CertStat is the cert stat VDO: the XID assigned by USB-IF before
// certification.
type CertStat struct {
	XID uint32
}

// Product is the product VDO.
type Product struct {
	// ProductID is the manufacturer assigned PID.
	ProductID uint16
	// Device is the BCD-coded device release number.
	Device BCD
}

// DiscoverIdentity is a decoded Discover Identity response.
type DiscoverIdentity struct {
	Header   VDMHeader
	IDHeader IDHeader
	CertStat CertStat
	Product  Product
	// ProductTypeVDOs are the raw product type VDOs, up to three,
	// whose layout depends on the announced product type.
	ProductTypeVDOs []uint32
	// Raw preserves the full message payload.
	Raw []uint32
}

// DecodeDiscoverIdentity decodes a Discover Identity response retrieved
// from the given recipient. The VDM header must carry an acknowledged
// Discover Identity command and the announced product type must be
// consistent with the recipient: cable plugs must identify as a cable
// or VPD. Inconsistent responses yield a ProtocolError; a NAK from the
// responder maps to ErrNotSupported.
func DecodeDiscoverIdentity(words []uint32, recipient MessageRecipient) (*DiscoverIdentity, error) {
	if len(words) < 4 {
		return nil, errdefs.Protocol("discover identity response truncated: %d objects", len(words))
	}

	hdr := DecodeVDMHeader(words[0])
	if !hdr.Structured {
		return nil, errdefs.Protocol("discover identity response is not a structured VDM")
	}
	if hdr.Command != VDMDiscoverIdentity {
		return nil, errdefs.Protocol("unexpected VDM command %s in discover identity response", hdr.Command)
	}
	switch hdr.CommandType {
	case VDMAck:
	case VDMNak:
		return nil, fmt.Errorf("discover identity refused by %s: %w", recipient, errdefs.ErrNotSupported)
	case VDMBusy:
		return nil, errdefs.Transport("discover identity", errors.New("responder busy"))
	default:
		return nil, errdefs.Protocol("discover identity response has command type %s", hdr.CommandType)
	}

	id := DecodeIDHeader(words[1])
	if err := checkProductType(id, recipient); err != nil {
		return nil, err
	}

	di := &DiscoverIdentity{
		Header:   hdr,
		IDHeader: id,
		CertStat: CertStat{XID: words[2]},
		Product: Product{
			ProductID: uint16(words[3] >> 16),
			Device:    BCD(words[3]),
		},
		Raw: words,
	}
	if len(words) > 4 {
		vdos := words[4:]
		if len(vdos) > 3 {
			vdos = vdos[:3]
		}
		di.ProductTypeVDOs = vdos
	}
	return di, nil
}

// checkProductType validates the SOP product type field against the
// party that produced the response.
func checkProductType(id IDHeader, recipient MessageRecipient) error {
	if recipient.CablePlug() {
		switch id.CableType() {
		case CablePassive, CableActive, CableVPD:
			return nil
		default:
			return errdefs.Protocol("%s identity announces non-cable product type %d", recipient, id.SOPProductType)
		}
	}
	switch id.UFPType() {
	case UFPNotUFP, UFPHub, UFPPeripheral, UFPPSD, UFPAlternateModeAdapter, UFPVPD:
		return nil
	default:
		return errdefs.Protocol("%s identity announces reserved product type %d", recipient, id.SOPProductType)
	}
}
