package ucsi

import (
	"github.com/usb-typec/typec-go/internal/bits"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// capabilityDataSize is the size of the GET_CAPABILITY data structure.
const capabilityDataSize = 16

// PowerSource indicates which supply kinds feed the platform.
type PowerSource struct {
	ACSupply bool
	Other    bool
	UsesVBUS bool
}

// Attributes is the bmAttributes field of the capability data.
type Attributes struct {
	// DisabledStateSupport indicates support for the Type-C disabled
	// state.
	DisabledStateSupport bool
	// BatteryCharging indicates Battery Charging specification
	// support at the revision in BCVersion.
	BatteryCharging bool
	// PowerDelivery indicates USB PD support at the revision in
	// PDVersion.
	PowerDelivery bool
	// TypeCCurrent indicates USB Type-C current support at the
	// revision in TypeCVersion.
	TypeCCurrent bool
	PowerSource  PowerSource
}

// OptionalFeatures is the bmOptionalFeatures field of the capability
// data, UCSI Table 6-88.
type OptionalFeatures struct {
	SetCcom                    bool
	SetPowerLevel              bool
	AlternateModeDetails       bool
	AlternateModeOverride      bool
	PdoDetails                 bool
	CableDetails               bool
	ExternalSupplyNotification bool
	PDResetNotification        bool
	GetPdMessage               bool
	GetAttentionVdo            bool
	FwUpdateRequest            bool
	NegotiatedPowerLevelChange bool
	SecurityRequest            bool
	SetRetimerMode             bool
	Chunking                   bool
}

// Capability is the GET_CAPABILITY response, UCSI Table 6-13.
type Capability struct {
	Attributes       Attributes
	NumConnectors    uint8
	OptionalFeatures OptionalFeatures
	NumAltModes      uint8
	BCVersion        pd.BCD
	PDVersion        pd.BCD
	TypeCVersion     pd.BCD
}

// DecodeCapability decodes the 128-bit GET_CAPABILITY data structure.
func DecodeCapability(data []byte) (Capability, error) {
	if len(data) < capabilityDataSize {
		return Capability{}, errdefs.Protocol("capability data truncated: %d bytes", len(data))
	}
	r := bits.NewReader(data)

	var c Capability
	c.Attributes.DisabledStateSupport = r.Bool()
	c.Attributes.BatteryCharging = r.Bool()
	c.Attributes.PowerDelivery = r.Bool()
	r.Skip(3)
	c.Attributes.TypeCCurrent = r.Bool()
	r.Skip(1)
	c.Attributes.PowerSource.ACSupply = r.Bool()
	r.Skip(1)
	c.Attributes.PowerSource.Other = r.Bool()
	r.Skip(3)
	c.Attributes.PowerSource.UsesVBUS = r.Bool()
	r.Skip(1)
	r.Skip(16) // reserved tail of bmAttributes

	c.NumConnectors = r.Read8(7)
	r.Skip(1)

	f := &c.OptionalFeatures
	f.SetCcom = r.Bool()
	f.SetPowerLevel = r.Bool()
	f.AlternateModeDetails = r.Bool()
	f.AlternateModeOverride = r.Bool()
	f.PdoDetails = r.Bool()
	f.CableDetails = r.Bool()
	f.ExternalSupplyNotification = r.Bool()
	f.PDResetNotification = r.Bool()
	f.GetPdMessage = r.Bool()
	f.GetAttentionVdo = r.Bool()
	f.FwUpdateRequest = r.Bool()
	f.NegotiatedPowerLevelChange = r.Bool()
	f.SecurityRequest = r.Bool()
	f.SetRetimerMode = r.Bool()
	f.Chunking = r.Bool()
	// bmOptionalFeatures is 24 bits wide but only 15 are defined.
	r.Skip(9)

	c.NumAltModes = r.Read8(8)
	r.Skip(8)
	c.BCVersion = pd.BCD(r.Read16(16))
	c.PDVersion = pd.BCD(r.Read16(16))
	c.TypeCVersion = pd.BCD(r.Read16(16))
	return c, nil
}
