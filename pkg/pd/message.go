package pd

// MessageRecipient identifies which party of a connector a PD message
// was exchanged with. The values match the recipient field of the UCSI
// GET_PD_MESSAGE command.
type MessageRecipient uint8

const (
	// RecipientConnector addresses the connector itself.
	RecipientConnector MessageRecipient = 0
	// RecipientSOP addresses the port partner.
	RecipientSOP MessageRecipient = 1
	// RecipientSOPPrime addresses the cable plug nearest the port.
	RecipientSOPPrime MessageRecipient = 2
	// RecipientSOPDoublePrime addresses the cable plug at the far end.
	RecipientSOPDoublePrime MessageRecipient = 3
)

// String returns the recipient name.
func (r MessageRecipient) String() string {
	switch r {
	case RecipientConnector:
		return "CONNECTOR"
	case RecipientSOP:
		return "SOP"
	case RecipientSOPPrime:
		return "SOP'"
	case RecipientSOPDoublePrime:
		return "SOP''"
	default:
		return "UNKNOWN"
	}
}

// CablePlug reports whether the recipient is one of the cable plugs.
func (r MessageRecipient) CablePlug() bool {
	return r == RecipientSOPPrime || r == RecipientSOPDoublePrime
}

// MessageResponseType identifies which PD response message to retrieve
// with GET_PD_MESSAGE. The values match the response message type field
// of the command.
type MessageResponseType uint8

const (
	// ResponseSinkCapsExtended is the Sink Capabilities Extended message.
	ResponseSinkCapsExtended MessageResponseType = 0
	// ResponseSourceCapsExtended is the Source Capabilities Extended message.
	ResponseSourceCapsExtended MessageResponseType = 1
	// ResponseBatteryCaps is the Battery Capabilities message.
	ResponseBatteryCaps MessageResponseType = 2
	// ResponseBatteryStatus is the Battery Status message.
	ResponseBatteryStatus MessageResponseType = 3
	// ResponseDiscoverIdentity is the Discover Identity response.
	ResponseDiscoverIdentity MessageResponseType = 4
	// ResponseRevision is the Revision message.
	ResponseRevision MessageResponseType = 5
)

// String returns the response type name.
func (t MessageResponseType) String() string {
	switch t {
	case ResponseSinkCapsExtended:
		return "SINK_CAPS_EXTENDED"
	case ResponseSourceCapsExtended:
		return "SOURCE_CAPS_EXTENDED"
	case ResponseBatteryCaps:
		return "BATTERY_CAPS"
	case ResponseBatteryStatus:
		return "BATTERY_STATUS"
	case ResponseDiscoverIdentity:
		return "DISCOVER_IDENTITY"
	case ResponseRevision:
		return "REVISION"
	default:
		return "UNKNOWN"
	}
}
