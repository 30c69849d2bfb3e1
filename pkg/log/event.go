package log

import (
	"time"
)

// Event represents one protocol trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates whether data flowed to or from the platform.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Backend names the backend that carried the exchange.
	Backend string `cbor:"5,keyasint,omitempty"`

	// Connector is the zero-based connector index, if the event is
	// scoped to one connector.
	Connector *uint8 `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Exchange    *ExchangeEvent    `cbor:"7,keyasint,omitempty"` // Command/response data
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"` // Session/backend state
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"` // Failures at any point
}

// Direction indicates the direction of an exchange.
type Direction uint8

const (
	// DirectionIn indicates data received from the platform.
	DirectionIn Direction = 0
	// DirectionOut indicates a command sent to the platform.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a UCSI command sent to the platform.
	CategoryCommand Category = 0
	// CategoryResponse indicates response data from the platform.
	CategoryResponse Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ExchangeEvent captures one direction of a UCSI exchange: either the
// encoded command or the raw response data.
type ExchangeEvent struct {
	// Command is the UCSI command number the exchange belongs to.
	Command uint8 `cbor:"1,keyasint"`

	// Control is the encoded 64-bit command value (commands only).
	Control uint64 `cbor:"2,keyasint,omitempty"`

	// Data is the raw response payload (responses only).
	Data []byte `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures session and backend lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 0
	// StateEntityBackend indicates a backend state change.
	StateEntityBackend StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityBackend:
		return "BACKEND"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures failures at any point of a query.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
