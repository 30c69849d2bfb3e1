// End-to-end test of the full query path: a scripted platform is
// queried through a session with tracing enabled, the captured trace
// is turned back into a fixture and the replay answers identically.
package typec_test

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usb-typec/typec-go/pkg/backend/fixture"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/typec"
	"github.com/usb-typec/typec-go/pkg/ucsi"
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

func words(ws ...uint32) []byte {
	data := make([]byte, 16)
	for i, w := range ws {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

// laptopFixture scripts a platform with two connectors: connector 0 is
// a DRP with a PD 3.1 charger attached, connector 1 is empty.
func laptopFixture() *fixture.Transport {
	tr := fixture.New()

	var caps bitBuf
	caps.write(2, 0).
		write(1, 1). // power delivery
		write(29, 0).
		write(7, 2). // num connectors
		write(1, 0).
		write(5, 0b10100). // optional features: pdo and alt mode details
		write(19, 0).
		write(8, 2). // num alt modes
		write(8, 0).
		write(16, 0).
		write(16, 0x0301) // pd revision
	tr.SetResponse(ucsi.GetCapability{}, caps.pad(16))

	tr.SetResponse(ucsi.GetConnectorCapability{Connector: 0}, []byte{0x04, 0x03, 0, 0})
	tr.SetResponse(ucsi.GetConnectorCapability{Connector: 1}, []byte{0x01, 0x01, 0, 0})

	var status bitBuf
	status.write(16, 0).
		write(3, uint64(ucsi.PowerModePD)).
		write(1, 1). // connected
		write(1, 0). // consuming, not providing
		write(8, 0).
		write(3, uint64(ucsi.PartnerDFP)).
		write(32, 0).
		write(2, uint64(ucsi.ChargingNominal)).
		write(4, 0).
		write(16, 0x0300) // contract pd revision
	tr.SetResponse(ucsi.GetConnectorStatus{Connector: 0}, status.pad(16))

	// Charger advertises 5V/3A and 9V/2A.
	tr.SetResponse(ucsi.GetPdos{Connector: 0, Partner: true, Count: 3, Role: pd.RoleSource},
		words(0x0001912C, 0x0002D0C8))

	// DisplayPort alternate mode on the partner.
	page := make([]byte, 16)
	binary.LittleEndian.PutUint16(page[0:], 0xFF01)
	binary.LittleEndian.PutUint32(page[2:], 0x00000C05)
	tr.SetResponse(ucsi.GetAlternateModes{Recipient: pd.RecipientSOP, Connector: 0}, page)

	header := pd.VDMHeader{
		SVID:        0xFF00,
		Structured:  true,
		CommandType: pd.VDMAck,
		Command:     pd.VDMDiscoverIdentity,
	}
	idHeader := uint32(1)<<30 | uint32(pd.UFPPeripheral)<<27 | 0x18D1
	tr.SetResponse(ucsi.GetPdMessage{
		Connector:    0,
		Recipient:    pd.RecipientSOP,
		ResponseType: pd.ResponseDiscoverIdentity,
	}, words(header.Encode(), idHeader, 0x12345, 0x4EE10310))

	return tr
}

// sweep queries everything lstypec would, skipping unsupported
// answers, and returns what it found.
func sweep(t *testing.T, s *typec.Session) (pdos []pd.PDO, modes []ucsi.AlternateMode) {
	t.Helper()
	ctx := context.Background()

	caps, err := s.Capabilities(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(2), caps.NumConnectors)
	assert.Equal(t, "3.1", caps.PDVersion.String())

	for connector := uint8(0); connector < caps.NumConnectors; connector++ {
		_, err := s.ConnectorCapabilities(ctx, connector)
		require.NoError(t, err)

		if _, err := s.ConnectorStatus(ctx, connector); errdefs.IsFatal(err) {
			t.Fatalf("connector %d status: %v", connector, err)
		}
		if _, err := s.CableProperties(ctx, connector); errdefs.IsFatal(err) {
			t.Fatalf("connector %d cable: %v", connector, err)
		}

		m, err := s.AlternateModes(ctx, pd.RecipientSOP, connector)
		require.NoError(t, err)
		modes = append(modes, m...)

		p, err := s.PDOs(ctx, connector, typec.PDORequest{Partner: true, Role: pd.RoleSource})
		require.NoError(t, err)
		pdos = append(pdos, p...)

		if _, err := s.DiscoverIdentity(ctx, connector, pd.RecipientSOP); errdefs.IsFatal(err) {
			t.Fatalf("connector %d identity: %v", connector, err)
		}
	}
	return pdos, modes
}

func TestQuerySweepAndTraceReplay(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "sweep.tlog")
	traceLogger, err := log.NewFileLogger(tracePath)
	require.NoError(t, err)

	ctx := context.Background()
	s, err := typec.New(ctx, typec.BackendFixture,
		typec.WithTransport(laptopFixture()),
		typec.WithLogger(traceLogger))
	require.NoError(t, err)

	pdos, modes := sweep(t, s)

	require.Len(t, pdos, 2)
	fixed, ok := pdos[0].(*pd.FixedSupply)
	require.True(t, ok)
	assert.Equal(t, uint32(5000), fixed.VoltageMV)
	assert.Equal(t, uint32(3000), fixed.CurrentMA)

	require.Len(t, modes, 1)
	assert.Equal(t, uint16(0xFF01), modes[0].SVID)

	status, err := s.ConnectorStatus(ctx, 0)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, ucsi.PowerModePD, status.PowerOperationMode)
	assert.Equal(t, ucsi.PartnerDFP, status.PartnerType)
	assert.Equal(t, "3.0", status.PDVersion.String())

	identity, err := s.DiscoverIdentity(ctx, 0, pd.RecipientSOP)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x18D1), identity.IDHeader.VendorID)

	require.NoError(t, s.Close())
	require.NoError(t, traceLogger.Close())

	// Rebuild the platform from the captured trace and sweep again.
	replay, err := fixture.FromTrace(tracePath)
	require.NoError(t, err)

	s2, err := typec.New(ctx, typec.BackendFixture, typec.WithTransport(replay))
	require.NoError(t, err)
	defer s2.Close()

	replayPdos, replayModes := sweep(t, s2)
	assert.Equal(t, pdos, replayPdos)
	assert.Equal(t, modes, replayModes)
}
