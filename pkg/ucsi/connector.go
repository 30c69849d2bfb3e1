package ucsi

import (
	"strings"

	"github.com/usb-typec/typec-go/internal/bits"
	"github.com/usb-typec/typec-go/pkg/errdefs"
)

// OperationMode is the connector operation mode bitmap, UCSI Table 6-17.
type OperationMode uint8

const (
	OperationRpOnly OperationMode = 1 << iota
	OperationRdOnly
	OperationDRP
	OperationAnalogAudio
	OperationDebugAccessory
	OperationUSB2
	OperationUSB3
	OperationAlternateMode
)

// Has reports whether all modes in m are set.
func (o OperationMode) Has(m OperationMode) bool { return o&m == m }

// String returns the set mode names joined by "|".
func (o OperationMode) String() string {
	names := []struct {
		bit  OperationMode
		name string
	}{
		{OperationRpOnly, "RP_ONLY"},
		{OperationRdOnly, "RD_ONLY"},
		{OperationDRP, "DRP"},
		{OperationAnalogAudio, "ANALOG_AUDIO"},
		{OperationDebugAccessory, "DEBUG_ACCESSORY"},
		{OperationUSB2, "USB2"},
		{OperationUSB3, "USB3"},
		{OperationAlternateMode, "ALTERNATE_MODE"},
	}
	var set []string
	for _, n := range names {
		if o.Has(n.bit) {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "NONE"
	}
	return strings.Join(set, "|")
}

// ExtendedOperationMode is the extended operation mode bitmap of the
// connector capability data.
type ExtendedOperationMode uint8

const (
	ExtendedUSB4Gen2 ExtendedOperationMode = 1 << iota
	ExtendedEPRSource
	ExtendedEPRSink
	ExtendedUSB4Gen3
	ExtendedUSB4Gen4
)

// MiscCapabilities is the miscellaneous capabilities bitmap of the
// connector capability data.
type MiscCapabilities uint8

const (
	MiscFwUpdate MiscCapabilities = 1 << iota
	MiscSecurity
)

// ConnectorCapability is the GET_CONNECTOR_CAPABILITY response,
// UCSI Table 6-17.
type ConnectorCapability struct {
	OperationMode OperationMode
	// Provider is valid when the operation mode is DRP or Rp only.
	Provider bool
	// Consumer is valid when the operation mode is DRP or Rd only.
	Consumer                 bool
	SwapToDFP                bool
	SwapToUFP                bool
	SwapToSrc                bool
	SwapToSnk                bool
	ExtendedOperationMode    ExtendedOperationMode
	MiscCapabilities         MiscCapabilities
	ReverseCurrentProtection bool
	// PartnerPDRevision is the partner's major PD revision from the
	// message header specification revision field.
	PartnerPDRevision uint8
}

// connectorCapabilityDataSize covers the defined bits, rounded up to
// whole bytes.
const connectorCapabilityDataSize = 4

// DecodeConnectorCapability decodes the GET_CONNECTOR_CAPABILITY data
// structure.
func DecodeConnectorCapability(data []byte) (ConnectorCapability, error) {
	if len(data) < connectorCapabilityDataSize {
		return ConnectorCapability{}, errdefs.Protocol("connector capability data truncated: %d bytes", len(data))
	}
	r := bits.NewReader(data)

	return ConnectorCapability{
		OperationMode:            OperationMode(r.Read8(8)),
		Provider:                 r.Bool(),
		Consumer:                 r.Bool(),
		SwapToDFP:                r.Bool(),
		SwapToUFP:                r.Bool(),
		SwapToSrc:                r.Bool(),
		SwapToSnk:                r.Bool(),
		ExtendedOperationMode:    ExtendedOperationMode(r.Read8(8)),
		MiscCapabilities:         MiscCapabilities(r.Read8(4)),
		ReverseCurrentProtection: r.Bool(),
		PartnerPDRevision:        r.Read8(2),
	}, nil
}
