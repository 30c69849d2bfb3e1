package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

// writeTrace writes events to a fresh trace file and returns its path.
func writeTrace(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func traceEvent(session string, dir Direction, cat Category, connector uint8) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		SessionID: session,
		Direction: dir,
		Category:  cat,
		Backend:   "fixture",
		Connector: &connector,
		Exchange:  &ExchangeEvent{Command: 0x06},
	}
}

func TestFileLoggerAndReaderRoundTrip(t *testing.T) {
	path := writeTrace(t,
		traceEvent("s1", DirectionOut, CategoryCommand, 0),
		traceEvent("s1", DirectionIn, CategoryResponse, 0),
		traceEvent("s1", DirectionOut, CategoryCommand, 1),
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var count int
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("read %d events, want 3", count)
	}
}

func TestFilteredReader(t *testing.T) {
	path := writeTrace(t,
		traceEvent("s1", DirectionOut, CategoryCommand, 0),
		traceEvent("s1", DirectionIn, CategoryResponse, 0),
		traceEvent("s2", DirectionOut, CategoryCommand, 1),
	)

	dir := DirectionOut
	r, err := NewFilteredReader(path, Filter{SessionID: "s1", Direction: &dir})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	event, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.SessionID != "s1" || event.Direction != DirectionOut {
		t.Errorf("unexpected event: %+v", event)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestFilterByConnector(t *testing.T) {
	path := writeTrace(t,
		traceEvent("s1", DirectionOut, CategoryCommand, 0),
		traceEvent("s1", DirectionOut, CategoryCommand, 1),
	)

	connector := uint8(1)
	r, err := NewFilteredReader(path, Filter{Connector: &connector})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	event, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.Connector == nil || *event.Connector != 1 {
		t.Errorf("Connector = %v, want 1", event.Connector)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.tlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Logging after Close is silently ignored.
	logger.Log(traceEvent("s1", DirectionOut, CategoryCommand, 0))
}

func TestMultiLogger(t *testing.T) {
	var a, b recordingLogger
	m := NewMultiLogger(&a, &b)

	m.Log(traceEvent("s1", DirectionOut, CategoryCommand, 0))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events = %d/%d, want 1/1", len(a.events), len(b.events))
	}
}

// recordingLogger collects events for assertions.
type recordingLogger struct {
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.events = append(r.events, event)
}
