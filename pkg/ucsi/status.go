package ucsi

import (
	"github.com/usb-typec/typec-go/internal/bits"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// StatusChange is the connector status change bitmap, UCSI Table 6-44.
type StatusChange uint16

const (
	ChangeExternalSupply       StatusChange = 1 << 1
	ChangePowerOperationMode   StatusChange = 1 << 2
	ChangeAttention            StatusChange = 1 << 3
	ChangeProviderCapabilities StatusChange = 1 << 5
	ChangeNegotiatedPowerLevel StatusChange = 1 << 6
	ChangePDReset              StatusChange = 1 << 7
	ChangeCAM                  StatusChange = 1 << 8
	ChangeBatteryCharging      StatusChange = 1 << 9
	ChangeConnector            StatusChange = 1 << 14
	ChangeError                StatusChange = 1 << 15
)

// PowerOperationMode is the power mode a connector operates in.
type PowerOperationMode uint8

const (
	PowerModeReserved   PowerOperationMode = 0
	PowerModeUSBDefault PowerOperationMode = 1
	PowerModeBC         PowerOperationMode = 2
	PowerModePD         PowerOperationMode = 3
	PowerModeTypeC1A5   PowerOperationMode = 4
	PowerModeTypeC3A    PowerOperationMode = 5
	PowerModeTypeC5A    PowerOperationMode = 6
)

// String returns the power operation mode name.
func (m PowerOperationMode) String() string {
	switch m {
	case PowerModeUSBDefault:
		return "USB_DEFAULT"
	case PowerModeBC:
		return "BC"
	case PowerModePD:
		return "PD"
	case PowerModeTypeC1A5:
		return "TYPE_C@1.5A"
	case PowerModeTypeC3A:
		return "TYPE_C@3A"
	case PowerModeTypeC5A:
		return "TYPE_C@5A"
	default:
		return "RESERVED"
	}
}

// PartnerType identifies what is attached to a connector.
type PartnerType uint8

const (
	PartnerNone              PartnerType = 0
	PartnerDFP               PartnerType = 1
	PartnerUFP               PartnerType = 2
	PartnerPoweredCableNoUFP PartnerType = 3
	PartnerPoweredCableUFP   PartnerType = 4
	PartnerDebugAccessory    PartnerType = 5
	PartnerAudioAdapter      PartnerType = 6
)

// String returns the partner type name.
func (t PartnerType) String() string {
	switch t {
	case PartnerDFP:
		return "DFP"
	case PartnerUFP:
		return "UFP"
	case PartnerPoweredCableNoUFP:
		return "POWERED_CABLE"
	case PartnerPoweredCableUFP:
		return "POWERED_CABLE_UFP"
	case PartnerDebugAccessory:
		return "DEBUG_ACCESSORY"
	case PartnerAudioAdapter:
		return "AUDIO_ADAPTER"
	default:
		return "NONE"
	}
}

// ChargingStatus is the battery charging capability status, valid only
// when the connector operates as a sink.
type ChargingStatus uint8

const (
	ChargingNone     ChargingStatus = 0
	ChargingNominal  ChargingStatus = 1
	ChargingSlow     ChargingStatus = 2
	ChargingVerySlow ChargingStatus = 3
)

// ConnectorStatus is the GET_CONNECTOR_STATUS response, UCSI Table 6-43.
type ConnectorStatus struct {
	StatusChange       StatusChange
	PowerOperationMode PowerOperationMode
	Connected          bool
	// PowerProvider is set when the connector currently provides
	// power rather than consuming it.
	PowerProvider bool
	// PartnerFlags describes the partner's USB mode.
	PartnerFlags uint8
	PartnerType  PartnerType
	// RequestDataObject is the negotiated RDO, valid only in PD mode.
	RequestDataObject uint32
	ChargingStatus    ChargingStatus
	// ProviderCapsLimitedReason is the bitmap of reasons why provider
	// capabilities are limited.
	ProviderCapsLimitedReason uint8
	// PDVersion is the PD revision in use for the explicit contract.
	PDVersion pd.BCD
	// OrientationReversed is set when the connection is in the
	// flipped orientation.
	OrientationReversed      bool
	SinkPathReady            bool
	ReverseCurrentProtection bool
	// PowerReadingReady is set when the current and voltage readings
	// below are valid.
	PowerReadingReady bool
	// CurrentScale is the current resolution in 5mA units.
	CurrentScale uint8
	// PeakCurrent is the peak current reading in CurrentScale units.
	PeakCurrent uint16
	// AverageCurrent is the moving average in CurrentScale units.
	AverageCurrent uint16
	// VoltageScale is the voltage resolution in 5mV units.
	VoltageScale uint8
	// VoltageReading is the VBUS voltage in VoltageScale units.
	VoltageReading uint16
}

const connectorStatusDataSize = 16

// DecodeConnectorStatus decodes the GET_CONNECTOR_STATUS data
// structure.
func DecodeConnectorStatus(data []byte) (ConnectorStatus, error) {
	if len(data) < connectorStatusDataSize {
		return ConnectorStatus{}, errdefs.Protocol("connector status data truncated: %d bytes", len(data))
	}
	r := bits.NewReader(data)

	var s ConnectorStatus
	s.StatusChange = StatusChange(r.Read16(16))
	s.PowerOperationMode = PowerOperationMode(r.Read8(3))
	s.Connected = r.Bool()
	s.PowerProvider = r.Bool()
	s.PartnerFlags = r.Read8(8)
	s.PartnerType = PartnerType(r.Read8(3))
	s.RequestDataObject = r.Read32(32)
	s.ChargingStatus = ChargingStatus(r.Read8(2))
	s.ProviderCapsLimitedReason = r.Read8(4)
	s.PDVersion = pd.BCD(r.Read16(16))
	s.OrientationReversed = r.Bool()
	s.SinkPathReady = r.Bool()
	s.ReverseCurrentProtection = r.Bool()
	s.PowerReadingReady = r.Bool()
	s.CurrentScale = r.Read8(3)
	s.PeakCurrent = r.Read16(16)
	s.AverageCurrent = r.Read16(16)
	s.VoltageScale = r.Read8(4)
	s.VoltageReading = r.Read16(16)
	return s, nil
}
