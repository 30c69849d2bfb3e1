package typec

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usb-typec/typec-go/pkg/backend"
	"github.com/usb-typec/typec-go/pkg/backend/fixture"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// capabilityData builds a GET_CAPABILITY payload for a platform with
// the given connector count and PD revision.
func capabilityData(connectors uint8, pdRevision pd.BCD) []byte {
	data := make([]byte, 16)
	data[4] = connectors
	binary.LittleEndian.PutUint16(data[12:], uint16(pdRevision))
	return data
}

// platformFixture scripts a one-connector PD 3.1 platform.
func platformFixture() *fixture.Transport {
	tr := fixture.New()
	tr.SetResponse(ucsi.GetCapability{}, capabilityData(1, pd.Revision31))
	tr.SetResponse(ucsi.GetConnectorCapability{Connector: 0}, []byte{0x05, 0x03, 0, 0})
	return tr
}

func openSession(t *testing.T, tr backend.Transport, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithTransport(tr)}, opts...)
	s, err := New(context.Background(), BackendFixture, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionOpen(t *testing.T) {
	s := openSession(t, platformFixture())

	assert.Len(t, s.ID(), 36)
	assert.Equal(t, "fixture", s.BackendName())

	caps, err := s.Capabilities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint8(1), caps.NumConnectors)
	assert.Equal(t, "3.1", caps.PDVersion.String())
}

func TestSessionFixtureNeedsSource(t *testing.T) {
	_, err := New(context.Background(), BackendFixture)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)
}

func TestSessionConnectorOutOfRange(t *testing.T) {
	s := openSession(t, platformFixture())

	_, err := s.ConnectorCapabilities(context.Background(), 1)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)

	_, err = s.ConnectorStatus(context.Background(), 7)
	assert.ErrorIs(t, err, errdefs.ErrInvalidArgument)
}

func TestSessionConnectorCapabilities(t *testing.T) {
	s := openSession(t, platformFixture())

	caps, err := s.ConnectorCapabilities(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, caps.OperationMode.Has(ucsi.OperationRpOnly))
	assert.True(t, caps.Provider)
}

func TestSessionClose(t *testing.T) {
	s := openSession(t, platformFixture())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Capabilities(context.Background())
	assert.ErrorIs(t, err, errdefs.ErrClosed)

	_, err = s.ConnectorStatus(context.Background(), 0)
	assert.ErrorIs(t, err, errdefs.ErrClosed)
}

// countingTransport counts Execute calls per command number.
type countingTransport struct {
	backend.Transport
	executes int
}

func (c *countingTransport) Execute(ctx context.Context, cmd ucsi.Command) ([]byte, error) {
	c.executes++
	return c.Transport.Execute(ctx, cmd)
}

func TestSessionCapabilitiesCached(t *testing.T) {
	tr := &countingTransport{Transport: platformFixture()}
	s := openSession(t, tr)
	ctx := context.Background()

	opened := tr.executes
	_, err := s.Capabilities(ctx)
	require.NoError(t, err)
	_, err = s.Capabilities(ctx)
	require.NoError(t, err)
	assert.Equal(t, opened, tr.executes)

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, opened+1, tr.executes)
}

func TestSessionPDOsDefaultRevision(t *testing.T) {
	tr := platformFixture()
	tr.SetResponse(ucsi.GetPdos{Connector: 0, Count: 3, Role: pd.RoleSource}, pdoWords(0x0001912C))
	s := openSession(t, tr)

	pdos, err := s.PDOs(context.Background(), 0, PDORequest{Role: pd.RoleSource})
	require.NoError(t, err)
	require.Len(t, pdos, 1)

	fixed, ok := pdos[0].(*pd.FixedSupply)
	require.True(t, ok)
	assert.Equal(t, uint32(5000), fixed.VoltageMV)
	assert.Equal(t, uint32(3000), fixed.CurrentMA)
}

func TestSessionCamSupported(t *testing.T) {
	tr := platformFixture()
	page := make([]byte, 16)
	binary.LittleEndian.PutUint16(page[0:], 0xFF01)
	binary.LittleEndian.PutUint32(page[2:], 0x0C05)
	tr.SetResponse(ucsi.GetAlternateModes{Recipient: pd.RecipientConnector, Connector: 0}, page)
	tr.SetResponse(ucsi.GetCamSupported{Connector: 0}, []byte{0x01})
	s := openSession(t, tr)

	supported, err := s.CamSupported(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, supported)
}

func TestSessionCamSupportedNoModes(t *testing.T) {
	s := openSession(t, platformFixture())

	supported, err := s.CamSupported(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, supported)
}

func TestSessionDiscoverIdentityAbsent(t *testing.T) {
	s := openSession(t, platformFixture())

	_, err := s.DiscoverIdentity(context.Background(), 0, pd.RecipientSOP)
	assert.ErrorIs(t, err, errdefs.ErrNotSupported)
	assert.False(t, errdefs.IsFatal(err))
}

func TestSessionTracesLifecycle(t *testing.T) {
	var rec recordingLogger
	s := openSession(t, platformFixture(), WithLogger(&rec))
	require.NoError(t, s.Close())

	var states []string
	for _, e := range rec.events {
		if e.Category == log.CategoryState {
			require.NotNil(t, e.StateChange)
			assert.Equal(t, s.ID(), e.SessionID)
			states = append(states, e.StateChange.NewState)
		}
	}
	assert.Equal(t, []string{"open", "closed"}, states)
}

// pdoWords packs PDO words into a 16-byte little-endian response.
func pdoWords(words ...uint32) []byte {
	data := make([]byte, 16)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	return data
}

// recordingLogger collects events for assertions.
type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.events = append(r.events, event)
}
