package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

func TestScriptedResponse(t *testing.T) {
	tr := New()
	tr.SetResponse(ucsi.GetConnectorCapability{Connector: 0}, []byte{0x05, 0x03, 0, 0})

	data, err := tr.Execute(context.Background(), ucsi.GetConnectorCapability{Connector: 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x03, 0, 0}, data)

	// Mutating the returned slice must not corrupt the table.
	data[0] = 0xFF
	again, err := tr.Execute(context.Background(), ucsi.GetConnectorCapability{Connector: 0})
	require.NoError(t, err)
	assert.Equal(t, byte(0x05), again[0])
}

func TestUnscriptedCommandReturnsNull(t *testing.T) {
	tr := New()

	data, err := tr.Execute(context.Background(), ucsi.GetCapability{})
	require.NoError(t, err)
	require.Len(t, data, 16)
	for _, b := range data {
		assert.Zero(t, b)
	}
}

func TestExecuteAfterClose(t *testing.T) {
	tr := New()
	require.NoError(t, tr.Close())

	_, err := tr.Execute(context.Background(), ucsi.GetCapability{})
	assert.ErrorIs(t, err, errdefs.ErrClosed)
}

func TestLoadYAML(t *testing.T) {
	raw := []byte(`
name: test-laptop
responses:
  - control: 0x06
    data: "00000000 02000000 00000000 00020103"
  - control: 0x10007
    data: "05030000"
`)
	tr, err := Load(raw)
	require.NoError(t, err)
	assert.Equal(t, "test-laptop", tr.Name())

	data, err := tr.Execute(context.Background(), ucsi.GetCapability{})
	require.NoError(t, err)
	require.Len(t, data, 16)
	assert.Equal(t, byte(0x02), data[4])

	data, err = tr.Execute(context.Background(), ucsi.GetConnectorCapability{Connector: 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x03, 0, 0}, data)
}

func TestLoadRejectsBadHex(t *testing.T) {
	_, err := Load([]byte("responses:\n  - control: 0x06\n    data: \"zz\"\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	raw := "responses:\n  - control: 0x12\n    data: \"01\"\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	tr, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fixture", tr.Name())
}

func TestFromTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.tlog")
	logger, err := log.NewFileLogger(path)
	require.NoError(t, err)

	logger.Log(exchangeEvent(log.CategoryCommand, &log.ExchangeEvent{
		Command: 0x07,
		Control: 0x10007,
	}))
	logger.Log(exchangeEvent(log.CategoryResponse, &log.ExchangeEvent{
		Command: 0x07,
		Data:    []byte{0x05, 0x03, 0, 0},
	}))
	// A failed exchange contributes nothing to the table.
	logger.Log(exchangeEvent(log.CategoryCommand, &log.ExchangeEvent{
		Command: 0x12,
		Control: 0x30012,
	}))
	require.NoError(t, logger.Close())

	tr, err := FromTrace(path)
	require.NoError(t, err)
	assert.Equal(t, "trace-replay", tr.Name())

	data, err := tr.Execute(context.Background(), ucsi.GetConnectorCapability{Connector: 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x03, 0, 0}, data)

	data, err = tr.Execute(context.Background(), ucsi.GetConnectorStatus{Connector: 2})
	require.NoError(t, err)
	for _, b := range data {
		assert.Zero(t, b)
	}
}

func exchangeEvent(cat log.Category, exchange *log.ExchangeEvent) log.Event {
	dir := log.DirectionOut
	if cat == log.CategoryResponse {
		dir = log.DirectionIn
	}
	return log.Event{
		Timestamp: time.Now().UTC(),
		SessionID: "s1",
		Direction: dir,
		Category:  cat,
		Backend:   "ucsi_debugfs",
		Exchange:  exchange,
	}
}
