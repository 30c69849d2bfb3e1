package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.Backend != "" {
		attrs = append(attrs, slog.String("backend", event.Backend))
	}
	if event.Connector != nil {
		attrs = append(attrs, slog.Uint64("connector", uint64(*event.Connector)))
	}

	// Add type-specific attributes
	switch {
	case event.Exchange != nil:
		attrs = append(attrs, slog.Uint64("command", uint64(event.Exchange.Command)))
		if event.Exchange.Control != 0 {
			attrs = append(attrs, slog.Uint64("control", event.Exchange.Control))
		}
		if len(event.Exchange.Data) > 0 {
			attrs = append(attrs, slog.Int("data_size", len(event.Exchange.Data)))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "ucsi", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
