package pd

import (
	"github.com/usb-typec/typec-go/pkg/errdefs"
)

// PDOKind identifies the power data object variant, taken from bits
// 31..30 of the raw word.
type PDOKind uint8

const (
	// PDOKindFixed is a fixed voltage supply.
	PDOKindFixed PDOKind = 0
	// PDOKindBattery is a battery supply.
	PDOKindBattery PDOKind = 1
	// PDOKindVariable is a variable (non-battery) supply.
	PDOKindVariable PDOKind = 2
	// PDOKindProgrammable is an augmented PDO carrying a programmable
	// power supply (PPS).
	PDOKindProgrammable PDOKind = 3
)

// String returns the PDO kind name.
func (k PDOKind) String() string {
	switch k {
	case PDOKindFixed:
		return "FIXED"
	case PDOKindBattery:
		return "BATTERY"
	case PDOKindVariable:
		return "VARIABLE"
	case PDOKindProgrammable:
		return "PROGRAMMABLE"
	default:
		return "UNKNOWN"
	}
}

// PowerRole selects which capability table a PDO was taken from. Source
// and sink fixed supply PDOs share a wire format but assign different
// meanings to bits 28..20.
type PowerRole uint8

const (
	// RoleSource marks a PDO from a source capabilities message.
	RoleSource PowerRole = 0
	// RoleSink marks a PDO from a sink capabilities message.
	RoleSink PowerRole = 1
)

// String returns the role name.
func (r PowerRole) String() string {
	switch r {
	case RoleSource:
		return "SOURCE"
	case RoleSink:
		return "SINK"
	default:
		return "UNKNOWN"
	}
}

// FastRoleSwap is the fast role swap current requirement advertised in
// a sink fixed supply PDO.
type FastRoleSwap uint8

const (
	// FRSNotSupported indicates fast role swap is not supported.
	FRSNotSupported FastRoleSwap = 0
	// FRSDefaultUSB requires default USB power after swap.
	FRSDefaultUSB FastRoleSwap = 1
	// FRS1A5At5V requires 1.5A at 5V after swap.
	FRS1A5At5V FastRoleSwap = 2
	// FRS3AAt5V requires 3A at 5V after swap.
	FRS3AAt5V FastRoleSwap = 3
)

// String returns the fast role swap requirement name.
func (f FastRoleSwap) String() string {
	switch f {
	case FRSNotSupported:
		return "NOT_SUPPORTED"
	case FRSDefaultUSB:
		return "DEFAULT_USB"
	case FRS1A5At5V:
		return "1.5A@5V"
	case FRS3AAt5V:
		return "3A@5V"
	default:
		return "UNKNOWN"
	}
}

// PDO is a decoded power data object. Concrete types are FixedSupply,
// BatterySupply, VariableSupply and ProgrammableSupply.
type PDO interface {
	// Kind identifies the concrete variant.
	Kind() PDOKind
	// Word returns the raw 32-bit object the variant was decoded from.
	Word() uint32
}

// FixedSupply is a fixed voltage supply PDO. Role-specific fields are
// only meaningful for the role the PDO was decoded for.
type FixedSupply struct {
	Raw  uint32
	Role PowerRole

	DualRolePower       bool
	USBSuspendSupported bool // source only
	HigherCapability    bool // sink only
	UnconstrainedPower  bool
	USBCommsCapable     bool
	DualRoleData        bool
	UnchunkedExtMsgs    bool         // source, revision 3.x
	EPRCapable          bool         // revision 3.1 and later
	FastRoleSwap        FastRoleSwap // sink, revision 3.x
	PeakCurrent         uint8        // source overload capability code

	// VoltageMV is the fixed supply voltage in millivolts.
	VoltageMV uint32
	// CurrentMA is the maximum (source) or operational (sink) current
	// in milliamps.
	CurrentMA uint32
}

func (p *FixedSupply) Kind() PDOKind { return PDOKindFixed }
func (p *FixedSupply) Word() uint32  { return p.Raw }

// BatterySupply is a battery supply PDO.
type BatterySupply struct {
	Raw uint32

	MaxVoltageMV uint32
	MinVoltageMV uint32
	// PowerMW is the maximum allowable (source) or operational (sink)
	// power in milliwatts.
	PowerMW uint32
}

func (p *BatterySupply) Kind() PDOKind { return PDOKindBattery }
func (p *BatterySupply) Word() uint32  { return p.Raw }

// VariableSupply is a variable (non-battery) supply PDO.
type VariableSupply struct {
	Raw uint32

	MaxVoltageMV uint32
	MinVoltageMV uint32
	CurrentMA    uint32
}

func (p *VariableSupply) Kind() PDOKind { return PDOKindVariable }
func (p *VariableSupply) Word() uint32  { return p.Raw }

// ProgrammableSupply is an SPR programmable power supply augmented PDO.
type ProgrammableSupply struct {
	Raw uint32

	PowerLimited bool
	MaxVoltageMV uint32
	MinVoltageMV uint32
	MaxCurrentMA uint32
}

func (p *ProgrammableSupply) Kind() PDOKind { return PDOKindProgrammable }
func (p *ProgrammableSupply) Word() uint32  { return p.Raw }

// Compile-time interface checks.
var (
	_ PDO = (*FixedSupply)(nil)
	_ PDO = (*BatterySupply)(nil)
	_ PDO = (*VariableSupply)(nil)
	_ PDO = (*ProgrammableSupply)(nil)
)

// DecodePDO decodes a raw 32-bit power data object. The revision
// selects the field layout (2.x and 3.x are supported) and role selects
// between the source and sink interpretations of the fixed supply
// variant. Reserved type encodings yield a ProtocolError; revisions
// without a layout table yield an UnsupportedRevisionError.
func DecodePDO(word uint32, revision BCD, role PowerRole) (PDO, error) {
	switch revision.Major() {
	case 2, 3:
	default:
		return nil, errdefs.UnsupportedRevision(uint16(revision))
	}

	switch PDOKind(word >> 30) {
	case PDOKindFixed:
		return decodeFixed(word, revision, role), nil
	case PDOKindBattery:
		return &BatterySupply{
			Raw:          word,
			MaxVoltageMV: (word >> 20 & 0x3FF) * 50,
			MinVoltageMV: (word >> 10 & 0x3FF) * 50,
			PowerMW:      (word & 0x3FF) * 250,
		}, nil
	case PDOKindVariable:
		return &VariableSupply{
			Raw:          word,
			MaxVoltageMV: (word >> 20 & 0x3FF) * 50,
			MinVoltageMV: (word >> 10 & 0x3FF) * 50,
			CurrentMA:    (word & 0x3FF) * 10,
		}, nil
	default:
		return decodeAugmented(word, revision)
	}
}

// decodeFixed decodes a fixed supply PDO. See USB PD "Fixed Supply PDO"
// source and sink tables; bits 28 and 24..20 change meaning with the
// role and revision.
func decodeFixed(word uint32, revision BCD, role PowerRole) *FixedSupply {
	p := &FixedSupply{
		Raw:                word,
		Role:               role,
		DualRolePower:      word>>29&1 != 0,
		UnconstrainedPower: word>>27&1 != 0,
		USBCommsCapable:    word>>26&1 != 0,
		DualRoleData:       word>>25&1 != 0,
		VoltageMV:          (word >> 10 & 0x3FF) * 50,
		CurrentMA:          (word & 0x3FF) * 10,
	}

	switch role {
	case RoleSink:
		p.HigherCapability = word>>28&1 != 0
		if revision.Major() >= 3 {
			p.FastRoleSwap = FastRoleSwap(word >> 23 & 0b11)
		}
	default:
		p.USBSuspendSupported = word>>28&1 != 0
		p.PeakCurrent = uint8(word >> 20 & 0b11)
		if revision.Major() >= 3 {
			p.UnchunkedExtMsgs = word>>24&1 != 0
			p.EPRCapable = word>>23&1 != 0
		}
	}
	return p
}

// decodeAugmented decodes an augmented PDO. Only the SPR programmable
// power supply subtype is defined; augmented PDOs do not exist before
// revision 3.0.
func decodeAugmented(word uint32, revision BCD) (PDO, error) {
	if revision.Major() < 3 {
		return nil, errdefs.Protocol("augmented PDO %#08x in revision %s capabilities", word, revision)
	}
	if subtype := word >> 28 & 0b11; subtype != 0 {
		return nil, errdefs.Protocol("reserved augmented PDO subtype %#b", subtype)
	}
	return &ProgrammableSupply{
		Raw:          word,
		PowerLimited: word>>27&1 != 0,
		MaxVoltageMV: (word >> 17 & 0xFF) * 100,
		MinVoltageMV: (word >> 8 & 0xFF) * 100,
		MaxCurrentMA: (word & 0x7F) * 50,
	}, nil
}
