// Package capi exposes the query engine through a foreign-function
// friendly surface: opaque integer handles, negative-errno statuses
// and flat output records, mirroring what a C shim would export. Go
// callers should use pkg/typec directly.
package capi

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/typec"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// Handle identifies a session or result set owned by this package.
type Handle uint64

// InvalidHandle is never issued; failed calls return it.
const InvalidHandle Handle = 0

// Status is zero on success or a negative errno value.
type Status int32

// StatusOK is the success status.
const StatusOK Status = 0

// Backend kind selectors, matching typec.BackendKind.
const (
	KindAuto        = uint32(typec.BackendAuto)
	KindSysfs       = uint32(typec.BackendSysfs)
	KindUCSIDebugfs = uint32(typec.BackendUCSIDebugfs)
	KindFixture     = uint32(typec.BackendFixture)
)

// statusFromError maps the library error taxonomy onto errno values.
func statusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, errdefs.ErrNotSupported):
		return -Status(unix.EOPNOTSUPP)
	case errors.Is(err, errdefs.ErrInvalidArgument):
		return -Status(unix.EINVAL)
	case errors.Is(err, errdefs.ErrClosed):
		return -Status(unix.EBADF)
	case errors.Is(err, os.ErrDeadlineExceeded):
		return -Status(unix.ETIMEDOUT)
	case errors.Is(err, os.ErrPermission):
		return -Status(unix.EACCES)
	default:
		var protoErr *errdefs.ProtocolError
		if errors.As(err, &protoErr) {
			return -Status(unix.EPROTO)
		}
		return -Status(unix.EIO)
	}
}

// state is the global handle table. Handles are process-wide, the way
// file descriptors are.
var state = struct {
	mu       sync.Mutex
	next     Handle
	sessions map[Handle]*typec.Session
	pdoSets  map[Handle][]PDORecord
	modeSets map[Handle][]ucsi.AlternateMode
}{
	next:     1,
	sessions: make(map[Handle]*typec.Session),
	pdoSets:  make(map[Handle][]PDORecord),
	modeSets: make(map[Handle][]ucsi.AlternateMode),
}

func issueHandle() Handle {
	h := state.next
	state.next++
	return h
}

// SessionOpen opens a session on the given backend kind. fixturePath
// is only consulted for KindFixture.
func SessionOpen(kind uint32, fixturePath string) (Handle, Status) {
	var opts []typec.Option
	if fixturePath != "" {
		opts = append(opts, typec.WithFixtureFile(fixturePath))
	}
	s, err := typec.New(context.Background(), typec.BackendKind(kind), opts...)
	if err != nil {
		return InvalidHandle, statusFromError(err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	h := issueHandle()
	state.sessions[h] = s
	return h, StatusOK
}

// SessionClose closes and invalidates a session handle. Closing an
// unknown or already closed handle fails with -EBADF.
func SessionClose(h Handle) Status {
	state.mu.Lock()
	s, ok := state.sessions[h]
	delete(state.sessions, h)
	state.mu.Unlock()
	if !ok {
		return -Status(unix.EBADF)
	}
	return statusFromError(s.Close())
}

func session(h Handle) (*typec.Session, Status) {
	state.mu.Lock()
	defer state.mu.Unlock()
	s, ok := state.sessions[h]
	if !ok {
		return nil, -Status(unix.EBADF)
	}
	return s, StatusOK
}

// GetCapability fills out with the platform capabilities. On failure
// out is left untouched.
func GetCapability(h Handle, out *ucsi.Capability) Status {
	s, st := session(h)
	if st != StatusOK {
		return st
	}
	caps, err := s.Capabilities(context.Background())
	if err != nil {
		return statusFromError(err)
	}
	*out = caps
	return StatusOK
}

// GetConnectorCapability fills out with one connector's capabilities.
func GetConnectorCapability(h Handle, connector uint8, out *ucsi.ConnectorCapability) Status {
	s, st := session(h)
	if st != StatusOK {
		return st
	}
	caps, err := s.ConnectorCapabilities(context.Background(), connector)
	if err != nil {
		return statusFromError(err)
	}
	*out = caps
	return StatusOK
}

// GetConnectorStatus fills out with one connector's status.
func GetConnectorStatus(h Handle, connector uint8, out *ucsi.ConnectorStatus) Status {
	s, st := session(h)
	if st != StatusOK {
		return st
	}
	status, err := s.ConnectorStatus(context.Background(), connector)
	if err != nil {
		return statusFromError(err)
	}
	*out = status
	return StatusOK
}

// GetCableProperty fills out with one connector's cable properties.
func GetCableProperty(h Handle, connector uint8, out *ucsi.CableProperty) Status {
	s, st := session(h)
	if st != StatusOK {
		return st
	}
	prop, err := s.CableProperties(context.Background(), connector)
	if err != nil {
		return statusFromError(err)
	}
	*out = prop
	return StatusOK
}

// GetDiscoverIdentity fills out with the Discover Identity response of
// the partner or a cable plug.
func GetDiscoverIdentity(h Handle, connector, recipient uint8, out *pd.DiscoverIdentity) Status {
	s, st := session(h)
	if st != StatusOK {
		return st
	}
	identity, err := s.DiscoverIdentity(context.Background(), connector, pd.MessageRecipient(recipient))
	if err != nil {
		return statusFromError(err)
	}
	*out = *identity
	return StatusOK
}

// PDORecord is the flat, fixed-size view of a decoded power data
// object. Fields that do not apply to a kind read as zero.
type PDORecord struct {
	Kind         uint8
	Role         uint8
	Flags        uint16
	VoltageMV    uint32
	MinVoltageMV uint32
	MaxVoltageMV uint32
	CurrentMA    uint32
	PowerMW      uint32
	Raw          uint32
}

// PDORecord flag bits.
const (
	PDOFlagDualRolePower uint16 = 1 << iota
	PDOFlagUnconstrained
	PDOFlagUSBComms
	PDOFlagDualRoleData
	PDOFlagHigherCapability
	PDOFlagUSBSuspend
	PDOFlagPowerLimited
)

// PDORecordSize is the in-memory size of one PDORecord in bytes.
var PDORecordSize = int32(binary.Size(PDORecord{}))

// AltModeRecordSize is the in-memory size of one alternate mode entry
// in bytes.
var AltModeRecordSize = int32(binary.Size(ucsi.AlternateMode{}))

func flattenPDO(p pd.PDO) PDORecord {
	rec := PDORecord{Kind: uint8(p.Kind()), Raw: p.Word()}
	switch v := p.(type) {
	case *pd.FixedSupply:
		rec.Role = uint8(v.Role)
		rec.VoltageMV = v.VoltageMV
		rec.CurrentMA = v.CurrentMA
		setFlag(&rec, PDOFlagDualRolePower, v.DualRolePower)
		setFlag(&rec, PDOFlagUnconstrained, v.UnconstrainedPower)
		setFlag(&rec, PDOFlagUSBComms, v.USBCommsCapable)
		setFlag(&rec, PDOFlagDualRoleData, v.DualRoleData)
		setFlag(&rec, PDOFlagHigherCapability, v.HigherCapability)
		setFlag(&rec, PDOFlagUSBSuspend, v.USBSuspendSupported)
	case *pd.BatterySupply:
		rec.MinVoltageMV = v.MinVoltageMV
		rec.MaxVoltageMV = v.MaxVoltageMV
		rec.PowerMW = v.PowerMW
	case *pd.VariableSupply:
		rec.MinVoltageMV = v.MinVoltageMV
		rec.MaxVoltageMV = v.MaxVoltageMV
		rec.CurrentMA = v.CurrentMA
	case *pd.ProgrammableSupply:
		rec.MinVoltageMV = v.MinVoltageMV
		rec.MaxVoltageMV = v.MaxVoltageMV
		rec.CurrentMA = v.MaxCurrentMA
		setFlag(&rec, PDOFlagPowerLimited, v.PowerLimited)
	}
	return rec
}

func setFlag(rec *PDORecord, flag uint16, on bool) {
	if on {
		rec.Flags |= flag
	}
}

// GetPdos retrieves a PDO set and returns a handle to it along with
// the record count and the total allocated byte size. All three values
// are required by DestroyPdoSet. A failed query issues no handle.
func GetPdos(h Handle, connector uint8, partner bool, role uint8) (Handle, int32, int32, Status) {
	s, st := session(h)
	if st != StatusOK {
		return InvalidHandle, 0, 0, st
	}
	pdos, err := s.PDOs(context.Background(), connector, typec.PDORequest{
		Partner: partner,
		Role:    pd.PowerRole(role),
	})
	if err != nil {
		return InvalidHandle, 0, 0, statusFromError(err)
	}

	records := make([]PDORecord, len(pdos))
	for i, p := range pdos {
		records[i] = flattenPDO(p)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	set := issueHandle()
	state.pdoSets[set] = records
	count := int32(len(records))
	return set, count, count * PDORecordSize, StatusOK
}

// PdoAt fills out with one record of a PDO set.
func PdoAt(set Handle, index int32, out *PDORecord) Status {
	state.mu.Lock()
	records, ok := state.pdoSets[set]
	state.mu.Unlock()
	if !ok {
		return -Status(unix.EBADF)
	}
	if index < 0 || int(index) >= len(records) {
		return -Status(unix.EINVAL)
	}
	*out = records[index]
	return StatusOK
}

// DestroyPdoSet releases a PDO set handle. count and size must be the
// values GetPdos returned with the handle; a mismatch fails with
// -EINVAL and keeps the set alive. Destroying a handle twice fails
// with -EBADF.
func DestroyPdoSet(set Handle, count, size int32) Status {
	state.mu.Lock()
	defer state.mu.Unlock()
	records, ok := state.pdoSets[set]
	if !ok {
		return -Status(unix.EBADF)
	}
	if count != int32(len(records)) || size != count*PDORecordSize {
		return -Status(unix.EINVAL)
	}
	delete(state.pdoSets, set)
	return StatusOK
}

// GetAlternateModes retrieves the recipient's alternate modes and
// returns a handle to the set along with the mode count and the total
// allocated byte size. All three values are required by
// DestroyAltModeSet. A failed query issues no handle.
func GetAlternateModes(h Handle, recipient, connector uint8) (Handle, int32, int32, Status) {
	s, st := session(h)
	if st != StatusOK {
		return InvalidHandle, 0, 0, st
	}
	modes, err := s.AlternateModes(context.Background(), pd.MessageRecipient(recipient), connector)
	if err != nil {
		return InvalidHandle, 0, 0, statusFromError(err)
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	set := issueHandle()
	state.modeSets[set] = modes
	count := int32(len(modes))
	return set, count, count * AltModeRecordSize, StatusOK
}

// AltModeAt fills out with one entry of an alternate mode set.
func AltModeAt(set Handle, index int32, out *ucsi.AlternateMode) Status {
	state.mu.Lock()
	modes, ok := state.modeSets[set]
	state.mu.Unlock()
	if !ok {
		return -Status(unix.EBADF)
	}
	if index < 0 || int(index) >= len(modes) {
		return -Status(unix.EINVAL)
	}
	*out = modes[index]
	return StatusOK
}

// DestroyAltModeSet releases an alternate mode set handle. count and
// size must be the values GetAlternateModes returned with the handle;
// a mismatch fails with -EINVAL and keeps the set alive.
func DestroyAltModeSet(set Handle, count, size int32) Status {
	state.mu.Lock()
	defer state.mu.Unlock()
	modes, ok := state.modeSets[set]
	if !ok {
		return -Status(unix.EBADF)
	}
	if count != int32(len(modes)) || size != count*AltModeRecordSize {
		return -Status(unix.EINVAL)
	}
	delete(state.modeSets, set)
	return StatusOK
}
