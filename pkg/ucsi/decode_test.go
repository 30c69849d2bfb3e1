package ucsi

import (
	"errors"
	"testing"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
)

// bitBuf builds little-endian bitfield test data, LSB first.
type bitBuf struct {
	data []byte
	pos  int
}

func (b *bitBuf) write(n int, v uint64) *bitBuf {
	for i := 0; i < n; i++ {
		if b.pos%8 == 0 {
			b.data = append(b.data, 0)
		}
		if v>>i&1 != 0 {
			b.data[b.pos/8] |= 1 << (b.pos % 8)
		}
		b.pos++
	}
	return b
}

func (b *bitBuf) pad(to int) []byte {
	for len(b.data) < to {
		b.data = append(b.data, 0)
	}
	return b.data
}

func TestDecodeCapability(t *testing.T) {
	var b bitBuf
	b.write(1, 1). // disabled state support
			write(1, 1). // battery charging
			write(1, 1). // power delivery
			write(3, 0).
			write(1, 1). // type-c current
			write(1, 0).
			write(1, 1). // ac supply
			write(1, 0).
			write(1, 0). // other
			write(3, 0).
			write(1, 1). // uses vbus
			write(1, 0).
			write(16, 0).
			write(7, 2). // num connectors
			write(1, 0).
			write(1, 0). // set ccom
			write(1, 1). // set power level
			write(1, 1). // alt mode details
			write(1, 0). // alt mode override
			write(1, 1). // pdo details
			write(1, 1). // cable details
			write(2, 0).
			write(1, 1). // get pd message
			write(15, 0).
			write(8, 3). // num alt modes
			write(8, 0).
			write(16, 0x0102). // bc version
			write(16, 0x0301). // pd version
			write(16, 0x0200)  // type-c version

	caps, err := DecodeCapability(b.pad(16))
	if err != nil {
		t.Fatalf("DecodeCapability failed: %v", err)
	}

	if !caps.Attributes.PowerDelivery {
		t.Error("PowerDelivery not set")
	}
	if !caps.Attributes.PowerSource.ACSupply || caps.Attributes.PowerSource.Other {
		t.Errorf("PowerSource = %+v", caps.Attributes.PowerSource)
	}
	if caps.NumConnectors != 2 {
		t.Errorf("NumConnectors = %d, want 2", caps.NumConnectors)
	}
	if !caps.OptionalFeatures.PdoDetails || !caps.OptionalFeatures.GetPdMessage {
		t.Errorf("OptionalFeatures = %+v", caps.OptionalFeatures)
	}
	if caps.OptionalFeatures.AlternateModeOverride {
		t.Error("AlternateModeOverride should be clear")
	}
	if caps.NumAltModes != 3 {
		t.Errorf("NumAltModes = %d, want 3", caps.NumAltModes)
	}
	if caps.PDVersion != pd.Revision31 {
		t.Errorf("PDVersion = %s, want 3.1", caps.PDVersion)
	}
	if got := caps.BCVersion.String(); got != "1.2" {
		t.Errorf("BCVersion = %s, want 1.2", got)
	}
}

func TestDecodeCapabilityTruncated(t *testing.T) {
	_, err := DecodeCapability(make([]byte, 8))

	var pe *errdefs.ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want ProtocolError", err)
	}
}

func TestDecodeConnectorCapability(t *testing.T) {
	var b bitBuf
	b.write(8, uint64(OperationDRP|OperationUSB2|OperationUSB3)).
		write(1, 1). // provider
		write(1, 1). // consumer
		write(1, 1). // swap to dfp
		write(1, 1). // swap to ufp
		write(1, 0). // swap to src
		write(1, 1). // swap to snk
		write(8, uint64(ExtendedEPRSink)).
		write(4, uint64(MiscFwUpdate)).
		write(1, 1). // reverse current protection
		write(2, 2)  // partner pd revision

	cc, err := DecodeConnectorCapability(b.pad(4))
	if err != nil {
		t.Fatalf("DecodeConnectorCapability failed: %v", err)
	}

	if !cc.OperationMode.Has(OperationDRP) {
		t.Errorf("OperationMode = %s, want DRP set", cc.OperationMode)
	}
	if !cc.Provider || !cc.Consumer {
		t.Error("Provider/Consumer not set")
	}
	if cc.SwapToSrc {
		t.Error("SwapToSrc should be clear")
	}
	if !cc.SwapToSnk {
		t.Error("SwapToSnk not set")
	}
	if cc.ExtendedOperationMode != ExtendedEPRSink {
		t.Errorf("ExtendedOperationMode = %#x", cc.ExtendedOperationMode)
	}
	if cc.MiscCapabilities != MiscFwUpdate {
		t.Errorf("MiscCapabilities = %#x", cc.MiscCapabilities)
	}
	if !cc.ReverseCurrentProtection {
		t.Error("ReverseCurrentProtection not set")
	}
	if cc.PartnerPDRevision != 2 {
		t.Errorf("PartnerPDRevision = %d, want 2", cc.PartnerPDRevision)
	}
}

func TestOperationModeString(t *testing.T) {
	m := OperationDRP | OperationAlternateMode
	if got := m.String(); got != "DRP|ALTERNATE_MODE" {
		t.Errorf("String() = %q", got)
	}
	if got := OperationMode(0).String(); got != "NONE" {
		t.Errorf("String() = %q, want NONE", got)
	}
}

func TestDecodeCableProperty(t *testing.T) {
	var b bitBuf
	b.write(2, uint64(SpeedGbps)).
		write(14, 10). // mantissa
		write(8, 100). // 5A in 50mA units
		write(1, 1).   // vbus in cable
		write(1, 1).   // active
		write(1, 1).   // fixed directionality
		write(2, uint64(PlugTypeC)).
		write(1, 1). // mode support
		write(2, 3). // cable pd revision
		write(4, 2)  // latency

	cp, err := DecodeCableProperty(b.pad(5))
	if err != nil {
		t.Fatalf("DecodeCableProperty failed: %v", err)
	}

	if cp.Speed() != "10 Gbps" {
		t.Errorf("Speed = %q, want \"10 Gbps\"", cp.Speed())
	}
	if cp.CurrentCapability != 100 {
		t.Errorf("CurrentCapability = %d, want 100", cp.CurrentCapability)
	}
	if cp.CableType != CableActive {
		t.Errorf("CableType = %s, want ACTIVE", cp.CableType)
	}
	if !cp.DirectionalityFixed || !cp.VBUSInCable || !cp.ModeSupport {
		t.Errorf("flags = %+v", cp)
	}
	if cp.PlugEndType != PlugTypeC {
		t.Errorf("PlugEndType = %s", cp.PlugEndType)
	}
	if cp.Latency != 2 {
		t.Errorf("Latency = %d, want 2", cp.Latency)
	}
}

func TestDecodeAlternateModes(t *testing.T) {
	var b bitBuf
	b.write(16, 0xFF01). // DisplayPort SVID
				write(32, 0x001C0045).
				write(16, 0x8087).
				write(32, 0x00000001)

	modes, err := DecodeAlternateModes(b.pad(12))
	if err != nil {
		t.Fatalf("DecodeAlternateModes failed: %v", err)
	}

	if len(modes) != 2 {
		t.Fatalf("len = %d, want 2", len(modes))
	}
	if modes[0].SVID != 0xFF01 || modes[0].VDO != 0x001C0045 || modes[0].Index != 0 {
		t.Errorf("modes[0] = %+v", modes[0])
	}
	if modes[1].SVID != 0x8087 || modes[1].VDO != 1 || modes[1].Index != 1 {
		t.Errorf("modes[1] = %+v", modes[1])
	}
}

func TestDecodeAlternateModesSecondSlotOnly(t *testing.T) {
	var b bitBuf
	b.write(48, 0). // empty first slot
			write(16, 0x8087).
			write(32, 0x00000001)

	modes, err := DecodeAlternateModes(b.pad(12))
	if err != nil {
		t.Fatalf("DecodeAlternateModes failed: %v", err)
	}
	if len(modes) != 1 {
		t.Fatalf("len = %d, want 1", len(modes))
	}
	if modes[0].SVID != 0x8087 || modes[0].Index != 1 {
		t.Errorf("modes[0] = %+v, want SVID 0x8087 at slot 1", modes[0])
	}
}

func TestDecodeAlternateModesPartial(t *testing.T) {
	var b bitBuf
	b.write(16, 0xFF01).write(32, 0x45)

	modes, err := DecodeAlternateModes(b.pad(12))
	if err != nil {
		t.Fatalf("DecodeAlternateModes failed: %v", err)
	}
	if len(modes) != 1 {
		t.Fatalf("len = %d, want 1", len(modes))
	}
}

func TestDecodeAlternateModesEmpty(t *testing.T) {
	modes, err := DecodeAlternateModes(make([]byte, 12))
	if err != nil {
		t.Fatalf("DecodeAlternateModes failed: %v", err)
	}
	if len(modes) != 0 {
		t.Errorf("len = %d, want 0", len(modes))
	}
}

func TestDecodeCamSupported(t *testing.T) {
	got := DecodeCamSupported([]byte{0b0000_0101}, 3)
	want := []bool{true, false, true}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mode %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeCurrentCam(t *testing.T) {
	got := DecodeCurrentCam([]byte{1, 2, NoCurrentMode, 0})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("DecodeCurrentCam = %v, want [1 2]", got)
	}

	if got := DecodeCurrentCam([]byte{NoCurrentMode}); len(got) != 0 {
		t.Errorf("DecodeCurrentCam = %v, want empty", got)
	}
}

func TestDecodeConnectorStatus(t *testing.T) {
	var b bitBuf
	b.write(16, uint64(ChangeConnector)).
		write(3, uint64(PowerModePD)).
		write(1, 1). // connected
		write(1, 0). // consumer
		write(8, 0).
		write(3, uint64(PartnerUFP)).
		write(32, 0x1304B12C). // RDO
		write(2, uint64(ChargingNominal)).
		write(4, 0).
		write(16, 0x0300).
		write(1, 1). // reversed orientation
		write(1, 1). // sink path ready
		write(1, 0).
		write(1, 1). // power reading ready
		write(3, 1). // current scale
		write(16, 600).
		write(16, 580).
		write(4, 2). // voltage scale
		write(16, 500)

	s, err := DecodeConnectorStatus(b.pad(16))
	if err != nil {
		t.Fatalf("DecodeConnectorStatus failed: %v", err)
	}

	if s.StatusChange&ChangeConnector == 0 {
		t.Error("ChangeConnector not set")
	}
	if s.PowerOperationMode != PowerModePD {
		t.Errorf("PowerOperationMode = %s, want PD", s.PowerOperationMode)
	}
	if !s.Connected || s.PowerProvider {
		t.Errorf("Connected/PowerProvider = %v/%v", s.Connected, s.PowerProvider)
	}
	if s.PartnerType != PartnerUFP {
		t.Errorf("PartnerType = %s, want UFP", s.PartnerType)
	}
	if s.RequestDataObject != 0x1304B12C {
		t.Errorf("RequestDataObject = %#x", s.RequestDataObject)
	}
	if s.PDVersion != pd.Revision30 {
		t.Errorf("PDVersion = %s, want 3.0", s.PDVersion)
	}
	if !s.OrientationReversed || !s.SinkPathReady || !s.PowerReadingReady {
		t.Error("status flags not decoded")
	}
	if s.AverageCurrent != 580 || s.VoltageReading != 500 {
		t.Errorf("readings = %d/%d", s.AverageCurrent, s.VoltageReading)
	}
}
