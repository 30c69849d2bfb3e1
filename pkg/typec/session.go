// Package typec is the high level entry point of the library. A
// Session binds a backend, validates connector indexes against the
// platform capabilities and exposes typed queries for everything the
// UCSI query surface offers.
package typec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/usb-typec/typec-go/pkg/backend"
	"github.com/usb-typec/typec-go/pkg/backend/fixture"
	"github.com/usb-typec/typec-go/pkg/backend/sysfs"
	"github.com/usb-typec/typec-go/pkg/backend/ucsidbg"
	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// PDORequest selects which power data objects Session.PDOs retrieves.
// The zero value asks for the connector's own currently advertised
// source capabilities, decoded at the platform's PD revision.
type PDORequest = backend.PDORequest

// Session is a handle to one platform's Type-C connectors. It caches
// the platform capabilities at open time; Refresh re-reads them.
// A Session is safe for concurrent use.
type Session struct {
	id      string
	kind    BackendKind
	backend backend.Backend
	logger  log.Logger

	mu     sync.Mutex
	caps   *ucsi.Capability
	closed bool
}

// New opens a session on the given backend kind. The returned error
// unwraps to ErrNotSupported when the platform offers no such backend,
// and to ErrInvalidArgument when the options are inconsistent.
func New(ctx context.Context, kind BackendKind, opts ...Option) (*Session, error) {
	cfg := sessionConfig{logger: &log.NoopLogger{}}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Session{
		id:     uuid.NewString(),
		kind:   kind,
		logger: cfg.logger,
	}

	be, err := openBackend(kind, &cfg, s.id)
	if err != nil {
		return nil, err
	}
	s.backend = be

	if _, err := s.Capabilities(ctx); err != nil {
		be.Close()
		return nil, fmt.Errorf("reading platform capabilities: %w", err)
	}

	s.logState("", "open", "session created on "+be.Name())
	return s, nil
}

// openBackend builds the backend for the requested kind.
func openBackend(kind BackendKind, cfg *sessionConfig, sessionID string) (backend.Backend, error) {
	dispatch := func(t backend.Transport) backend.Backend {
		return backend.NewDispatcher(t,
			backend.WithLogger(cfg.logger),
			backend.WithSessionID(sessionID))
	}

	switch kind {
	case BackendFixture:
		if cfg.transport != nil {
			return dispatch(cfg.transport), nil
		}
		if cfg.fixtureFile == "" {
			return nil, fmt.Errorf("fixture backend needs a transport or fixture file: %w", errdefs.ErrInvalidArgument)
		}
		t, err := fixture.LoadFile(cfg.fixtureFile)
		if err != nil {
			return nil, err
		}
		return dispatch(t), nil

	case BackendUCSIDebugfs:
		t, err := openDebugfs(cfg)
		if err != nil {
			return nil, err
		}
		return dispatch(t), nil

	case BackendSysfs:
		return openSysfs(cfg)

	case BackendAuto:
		if cfg.transport != nil {
			return dispatch(cfg.transport), nil
		}
		be, err := openSysfs(cfg)
		if err == nil {
			return be, nil
		}
		if !errors.Is(err, errdefs.ErrNotSupported) {
			return nil, err
		}
		t, err := openDebugfs(cfg)
		if err != nil {
			return nil, err
		}
		return dispatch(t), nil

	default:
		return nil, fmt.Errorf("backend kind %d: %w", kind, errdefs.ErrInvalidArgument)
	}
}

func openSysfs(cfg *sessionConfig) (backend.Backend, error) {
	var opts []sysfs.Option
	if cfg.sysfsRoot != "" {
		opts = append(opts, sysfs.WithRoot(cfg.sysfsRoot))
	}
	if cfg.psyRoot != "" {
		opts = append(opts, sysfs.WithPowerSupplyRoot(cfg.psyRoot))
	}
	return sysfs.New(opts...)
}

func openDebugfs(cfg *sessionConfig) (backend.Transport, error) {
	var opts []ucsidbg.Option
	if cfg.debugfsPath != "" {
		opts = append(opts, ucsidbg.WithPath(cfg.debugfsPath))
	}
	if cfg.timeout > 0 {
		opts = append(opts, ucsidbg.WithTimeout(cfg.timeout))
	}
	return ucsidbg.New(opts...)
}

// ID returns the session's unique identifier, used to correlate trace
// events.
func (s *Session) ID() string { return s.id }

// BackendName returns the name of the backend serving this session.
func (s *Session) BackendName() string { return s.backend.Name() }

// Close releases the session's backend. Close is idempotent; queries
// after Close fail with ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logState("open", "closed", "")
	return s.backend.Close()
}

func (s *Session) logState(oldState, newState, reason string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now().UTC(),
		SessionID: s.id,
		Direction: log.DirectionOut,
		Category:  log.CategoryState,
		Backend:   s.backend.Name(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}

// guard snapshots the cached capabilities, failing on closed sessions.
func (s *Session) guard() (*ucsi.Capability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errdefs.ErrClosed
	}
	return s.caps, nil
}

// validateConnector checks the index against the connector count the
// platform reported.
func (s *Session) validateConnector(connector uint8) error {
	caps, err := s.guard()
	if err != nil {
		return err
	}
	if caps != nil && connector >= caps.NumConnectors {
		return fmt.Errorf("connector %d out of range, platform has %d: %w",
			connector, caps.NumConnectors, errdefs.ErrInvalidArgument)
	}
	return nil
}

// Capabilities returns the platform capabilities, cached since the
// session was opened or last refreshed.
func (s *Session) Capabilities(ctx context.Context) (ucsi.Capability, error) {
	caps, err := s.guard()
	if err != nil {
		return ucsi.Capability{}, err
	}
	if caps != nil {
		return *caps, nil
	}
	return s.refreshLocked(ctx)
}

// Refresh re-reads the platform capabilities, picking up connector or
// alternate mode count changes.
func (s *Session) Refresh(ctx context.Context) error {
	if _, err := s.guard(); err != nil {
		return err
	}
	_, err := s.refreshLocked(ctx)
	return err
}

func (s *Session) refreshLocked(ctx context.Context) (ucsi.Capability, error) {
	caps, err := s.backend.Capabilities(ctx)
	if err != nil {
		return ucsi.Capability{}, err
	}
	s.mu.Lock()
	s.caps = &caps
	s.mu.Unlock()
	return caps, nil
}

// ConnectorCapabilities returns the capabilities of one connector.
func (s *Session) ConnectorCapabilities(ctx context.Context, connector uint8) (ucsi.ConnectorCapability, error) {
	if err := s.validateConnector(connector); err != nil {
		return ucsi.ConnectorCapability{}, err
	}
	return s.backend.ConnectorCapabilities(ctx, connector)
}

// ConnectorStatus returns the current status of one connector.
func (s *Session) ConnectorStatus(ctx context.Context, connector uint8) (ucsi.ConnectorStatus, error) {
	if err := s.validateConnector(connector); err != nil {
		return ucsi.ConnectorStatus{}, err
	}
	return s.backend.ConnectorStatus(ctx, connector)
}

// CableProperties returns the cable properties of one connector.
func (s *Session) CableProperties(ctx context.Context, connector uint8) (ucsi.CableProperty, error) {
	if err := s.validateConnector(connector); err != nil {
		return ucsi.CableProperty{}, err
	}
	return s.backend.CableProperties(ctx, connector)
}

// AlternateModes returns all alternate modes the recipient supports.
// An empty result means the recipient has none; it is not an error.
func (s *Session) AlternateModes(ctx context.Context, recipient pd.MessageRecipient, connector uint8) ([]ucsi.AlternateMode, error) {
	if err := s.validateConnector(connector); err != nil {
		return nil, err
	}
	return s.backend.AlternateModes(ctx, recipient, connector)
}

// CamSupported returns one availability flag per alternate mode of the
// connector, in discovery order.
func (s *Session) CamSupported(ctx context.Context, connector uint8) ([]bool, error) {
	if err := s.validateConnector(connector); err != nil {
		return nil, err
	}
	modes, err := s.backend.AlternateModes(ctx, pd.RecipientConnector, connector)
	if err != nil {
		return nil, err
	}
	if len(modes) == 0 {
		return nil, nil
	}
	return s.backend.CamSupported(ctx, connector, len(modes))
}

// CurrentCam returns the offsets of the currently active alternate
// modes of the connector.
func (s *Session) CurrentCam(ctx context.Context, connector uint8) ([]uint8, error) {
	if err := s.validateConnector(connector); err != nil {
		return nil, err
	}
	return s.backend.CurrentCam(ctx, connector)
}

// DiscoverIdentity returns the Discover Identity response of the
// partner or a cable plug.
func (s *Session) DiscoverIdentity(ctx context.Context, connector uint8, recipient pd.MessageRecipient) (*pd.DiscoverIdentity, error) {
	if err := s.validateConnector(connector); err != nil {
		return nil, err
	}
	return s.backend.PDMessage(ctx, connector, recipient, pd.ResponseDiscoverIdentity)
}

// PDOs retrieves decoded power data objects. When the request does not
// pin a PD revision, the platform's reported revision is used.
func (s *Session) PDOs(ctx context.Context, connector uint8, req PDORequest) ([]pd.PDO, error) {
	if err := s.validateConnector(connector); err != nil {
		return nil, err
	}
	if req.Revision == 0 {
		caps, err := s.Capabilities(ctx)
		if err != nil {
			return nil, err
		}
		req.Revision = caps.PDVersion
		if req.Revision == 0 {
			req.Revision = pd.Revision30
		}
	}
	return s.backend.PDOs(ctx, connector, req)
}
