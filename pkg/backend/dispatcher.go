package backend

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

const (
	// maxAltModes bounds the alternate mode discovery loop
	// (UCSI_MAX_NUM_ALT_MODE).
	maxAltModes = 128

	// maxPDOOffset bounds the PDO retrieval loop. A capability set
	// holds at most 7 objects plus the vSafe5V anchor.
	maxPDOOffset = 8

	// pdosPerRequest is the largest batch GET_PDOS can return in one
	// exchange. The wire field carries the count minus one in 2 bits.
	pdosPerRequest = 4
)

// Dispatcher implements Backend on top of a raw Transport. It encodes
// UCSI commands, drives the offset-based retrieval loops, decodes
// responses and traces every exchange through the configured logger.
type Dispatcher struct {
	transport Transport
	logger    log.Logger
	sessionID string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the trace logger. The default discards all events.
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithSessionID tags all trace events with the given session ID.
func WithSessionID(id string) Option {
	return func(d *Dispatcher) {
		d.sessionID = id
	}
}

// NewDispatcher creates a Dispatcher over the given transport.
func NewDispatcher(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		logger:    &log.NoopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the underlying transport name.
func (d *Dispatcher) Name() string {
	return d.transport.Name()
}

// Close closes the underlying transport.
func (d *Dispatcher) Close() error {
	return d.transport.Close()
}

// execute sends one command, tracing the exchange. connector is nil
// for platform-scoped commands.
func (d *Dispatcher) execute(ctx context.Context, cmd ucsi.Command, connector *uint8) ([]byte, error) {
	d.logger.Log(log.Event{
		Timestamp: time.Now().UTC(),
		SessionID: d.sessionID,
		Direction: log.DirectionOut,
		Category:  log.CategoryCommand,
		Backend:   d.transport.Name(),
		Connector: connector,
		Exchange: &log.ExchangeEvent{
			Command: cmd.Number(),
			Control: cmd.Encode(),
		},
	})

	data, err := d.transport.Execute(ctx, cmd)
	if err != nil {
		d.logger.Log(log.Event{
			Timestamp: time.Now().UTC(),
			SessionID: d.sessionID,
			Direction: log.DirectionIn,
			Category:  log.CategoryError,
			Backend:   d.transport.Name(),
			Connector: connector,
			Error: &log.ErrorEventData{
				Message: err.Error(),
				Context: fmt.Sprintf("command %#x", cmd.Number()),
			},
		})
		return nil, err
	}

	d.logger.Log(log.Event{
		Timestamp: time.Now().UTC(),
		SessionID: d.sessionID,
		Direction: log.DirectionIn,
		Category:  log.CategoryResponse,
		Backend:   d.transport.Name(),
		Connector: connector,
		Exchange: &log.ExchangeEvent{
			Command: cmd.Number(),
			Data:    data,
		},
	})
	return data, nil
}

// Capabilities implements Backend.
func (d *Dispatcher) Capabilities(ctx context.Context) (ucsi.Capability, error) {
	data, err := d.execute(ctx, ucsi.GetCapability{}, nil)
	if err != nil {
		return ucsi.Capability{}, err
	}
	return ucsi.DecodeCapability(data)
}

// ConnectorCapabilities implements Backend.
func (d *Dispatcher) ConnectorCapabilities(ctx context.Context, connector uint8) (ucsi.ConnectorCapability, error) {
	data, err := d.execute(ctx, ucsi.GetConnectorCapability{Connector: connector}, &connector)
	if err != nil {
		return ucsi.ConnectorCapability{}, err
	}
	return ucsi.DecodeConnectorCapability(data)
}

// AlternateModes implements Backend. It repeats GET_ALTERNATE_MODES
// with increasing offsets until the platform reports no more modes.
func (d *Dispatcher) AlternateModes(ctx context.Context, recipient pd.MessageRecipient, connector uint8) ([]ucsi.AlternateMode, error) {
	var modes []ucsi.AlternateMode
	for offset := 0; offset < maxAltModes; {
		data, err := d.execute(ctx, ucsi.GetAlternateModes{
			Recipient: recipient,
			Connector: connector,
			Offset:    uint8(offset),
		}, &connector)
		if err != nil {
			return nil, err
		}
		if isNull(data) {
			break
		}

		batch, err := ucsi.DecodeAlternateModes(data)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			batch[i].Recipient = recipient
			batch[i].Index += uint8(offset)
		}
		modes = append(modes, batch...)
		offset = int(batch[len(batch)-1].Index) + 1
	}
	return modes, nil
}

// CamSupported implements Backend.
func (d *Dispatcher) CamSupported(ctx context.Context, connector uint8, numModes int) ([]bool, error) {
	data, err := d.execute(ctx, ucsi.GetCamSupported{Connector: connector}, &connector)
	if err != nil {
		return nil, err
	}
	return ucsi.DecodeCamSupported(data, numModes), nil
}

// CurrentCam implements Backend.
func (d *Dispatcher) CurrentCam(ctx context.Context, connector uint8) ([]uint8, error) {
	data, err := d.execute(ctx, ucsi.GetCurrentCam{Connector: connector}, &connector)
	if err != nil {
		return nil, err
	}
	return ucsi.DecodeCurrentCam(data), nil
}

// CableProperties implements Backend.
func (d *Dispatcher) CableProperties(ctx context.Context, connector uint8) (ucsi.CableProperty, error) {
	data, err := d.execute(ctx, ucsi.GetCableProperty{Connector: connector}, &connector)
	if err != nil {
		return ucsi.CableProperty{}, err
	}
	return ucsi.DecodeCableProperty(data)
}

// ConnectorStatus implements Backend.
func (d *Dispatcher) ConnectorStatus(ctx context.Context, connector uint8) (ucsi.ConnectorStatus, error) {
	data, err := d.execute(ctx, ucsi.GetConnectorStatus{Connector: connector}, &connector)
	if err != nil {
		return ucsi.ConnectorStatus{}, err
	}
	return ucsi.DecodeConnectorStatus(data)
}

// PDMessage implements Backend. Only the Discover Identity response
// type has a decoder; other response types return ErrNotSupported.
func (d *Dispatcher) PDMessage(ctx context.Context, connector uint8, recipient pd.MessageRecipient, responseType pd.MessageResponseType) (*pd.DiscoverIdentity, error) {
	if responseType != pd.ResponseDiscoverIdentity {
		return nil, fmt.Errorf("pd message response type %s: %w", responseType, errdefs.ErrNotSupported)
	}

	data, err := d.execute(ctx, ucsi.GetPdMessage{
		Connector:    connector,
		Recipient:    recipient,
		ResponseType: responseType,
	}, &connector)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, fmt.Errorf("no discover identity response: %w", errdefs.ErrNotSupported)
	}

	words := trimZeroWords(leWords(data), 4)
	identity, err := pd.DecodeDiscoverIdentity(words, recipient)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// PDOs implements Backend. It retrieves the selected capability set in
// batches of four objects and decodes every object; a single
// undecodable object fails the whole query.
func (d *Dispatcher) PDOs(ctx context.Context, connector uint8, req PDORequest) ([]pd.PDO, error) {
	var pdos []pd.PDO
	for offset := int(req.Offset); offset < maxPDOOffset; {
		count := pdosPerRequest
		if req.MaxPDOs > 0 {
			if remaining := int(req.MaxPDOs) - len(pdos); remaining < count {
				count = remaining
			}
		}
		if count <= 0 {
			break
		}

		data, err := d.execute(ctx, ucsi.GetPdos{
			Connector:  connector,
			Partner:    req.Partner,
			Offset:     uint8(offset),
			Count:      uint8(count - 1),
			Role:       req.Role,
			SourceCaps: req.SourceCaps,
		}, &connector)
		if err != nil {
			return nil, err
		}
		if isNull(data) {
			break
		}

		words := trimZeroWords(leWords(data), 0)
		if len(words) == 0 {
			break
		}
		for _, word := range words {
			pdo, err := pd.DecodePDO(word, req.Revision, req.Role)
			if err != nil {
				return nil, err
			}
			pdos = append(pdos, pdo)
		}
		if len(words) < count {
			break
		}
		offset += len(words)
	}
	return pdos, nil
}

// isNull reports whether the response carries no data at all. The
// platform answers retrieval commands past the end of a set with an
// all-zero response.
func isNull(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// leWords splits response data into little-endian 32-bit words,
// discarding a trailing partial word.
func leWords(data []byte) []uint32 {
	words := make([]uint32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(data[i:i+4]))
	}
	return words
}

// trimZeroWords drops trailing zero words, keeping at least min words.
func trimZeroWords(words []uint32, min int) []uint32 {
	end := len(words)
	for end > min && words[end-1] == 0 {
		end--
	}
	return words[:end]
}

// Compile-time interface satisfaction check.
var _ Backend = (*Dispatcher)(nil)
