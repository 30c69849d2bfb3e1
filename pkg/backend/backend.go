// Package backend defines the platform abstraction of the UCSI query
// engine. A Backend answers typed queries about connectors; a
// Transport carries raw UCSI commands to the platform policy manager.
// The Dispatcher turns any Transport into a Backend, so transports
// only implement command delivery while all decoding and query-loop
// logic lives in one place.
package backend

import (
	"context"

	"github.com/usb-typec/typec-go/pkg/pd"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// PDORequest selects which power data objects PDOs retrieves.
type PDORequest struct {
	// Partner selects the port partner's capabilities instead of the
	// connector's own.
	Partner bool
	// Offset is the index of the first PDO to retrieve.
	Offset uint8
	// MaxPDOs limits how many PDOs to retrieve; zero retrieves the
	// whole set.
	MaxPDOs uint8
	// Role selects source or sink capabilities.
	Role pd.PowerRole
	// SourceCaps selects the source capability set when querying the
	// connector's own source PDOs.
	SourceCaps ucsi.SourceCapabilitiesType
	// Revision is the PD specification revision used to decode the
	// raw objects, normally the platform's PDVersion.
	Revision pd.BCD
}

// Backend answers typed queries about the platform's Type-C connectors.
// Implementations must return errors from the errdefs taxonomy:
// ErrNotSupported for queries the platform cannot answer, so callers
// can skip and continue.
type Backend interface {
	// Name identifies the backend in logs and traces.
	Name() string

	// Capabilities returns the platform capabilities.
	Capabilities(ctx context.Context) (ucsi.Capability, error)

	// ConnectorCapabilities returns the capabilities of one connector.
	ConnectorCapabilities(ctx context.Context, connector uint8) (ucsi.ConnectorCapability, error)

	// AlternateModes returns all alternate modes of the recipient in
	// discovery order. No supported modes is not an error: the result
	// is empty and err is nil.
	AlternateModes(ctx context.Context, recipient pd.MessageRecipient, connector uint8) ([]ucsi.AlternateMode, error)

	// CamSupported returns one flag per alternate mode of the
	// connector indicating whether the mode is currently available.
	CamSupported(ctx context.Context, connector uint8, numModes int) ([]bool, error)

	// CurrentCam returns the offsets of the currently active
	// alternate modes of the connector.
	CurrentCam(ctx context.Context, connector uint8) ([]uint8, error)

	// CableProperties returns the cable properties of a connector.
	CableProperties(ctx context.Context, connector uint8) (ucsi.CableProperty, error)

	// ConnectorStatus returns the current status of a connector.
	ConnectorStatus(ctx context.Context, connector uint8) (ucsi.ConnectorStatus, error)

	// PDMessage retrieves and decodes a PD response message. Only the
	// Discover Identity response type is supported.
	PDMessage(ctx context.Context, connector uint8, recipient pd.MessageRecipient, responseType pd.MessageResponseType) (*pd.DiscoverIdentity, error)

	// PDOs retrieves the power data objects selected by req, decoded
	// and in platform order. An empty set is not an error.
	PDOs(ctx context.Context, connector uint8, req PDORequest) ([]pd.PDO, error)

	// Close releases the backend's resources.
	Close() error
}

// Transport delivers raw UCSI commands to the platform policy manager
// and returns the raw response data. Implementations wrap delivery
// failures in errdefs.TransportError.
type Transport interface {
	// Name identifies the transport in logs and traces.
	Name() string

	// Execute sends cmd and returns the response data. An all-zero
	// response indicates the platform has nothing (more) to report.
	Execute(ctx context.Context, cmd ucsi.Command) ([]byte, error)

	// Close releases the transport's resources.
	Close() error
}
