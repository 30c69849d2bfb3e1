// Package fixture provides a scripted Transport that answers UCSI
// commands from a response table instead of real hardware. Tables can
// be built in code, loaded from a YAML file or replayed from a CBOR
// trace captured on a real system, which makes platform-specific bug
// reports reproducible anywhere.
package fixture

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/log"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// nullResponseSize is the size of the all-zero response returned for
// commands the table does not script. Retrieval loops read it as "end
// of set", so a sparse fixture still terminates every query.
const nullResponseSize = 16

// Transport answers commands from a table keyed on the encoded control
// value.
type Transport struct {
	mu        sync.Mutex
	name      string
	responses map[uint64][]byte
	closed    bool
}

// New creates an empty fixture transport.
func New() *Transport {
	return &Transport{
		name:      "fixture",
		responses: make(map[uint64][]byte),
	}
}

// SetResponse scripts the response data for cmd.
func (t *Transport) SetResponse(cmd ucsi.Command, data []byte) {
	t.SetRaw(cmd.Encode(), data)
}

// SetRaw scripts the response data for an encoded control value.
func (t *Transport) SetRaw(control uint64, data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.responses[control] = append([]byte(nil), data...)
}

// Name implements backend.Transport.
func (t *Transport) Name() string { return t.name }

// Execute implements backend.Transport. Scripted commands return a
// copy of their data; unscripted commands return an all-zero response.
func (t *Transport) Execute(_ context.Context, cmd ucsi.Command) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, errdefs.ErrClosed
	}
	if data, ok := t.responses[cmd.Encode()]; ok {
		return append([]byte(nil), data...), nil
	}
	return make([]byte, nullResponseSize), nil
}

// Close implements backend.Transport.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

// fixtureFile is the YAML layout of a fixture file.
type fixtureFile struct {
	Name      string `yaml:"name"`
	Responses []struct {
		Control uint64 `yaml:"control"`
		Data    string `yaml:"data"`
	} `yaml:"responses"`
}

// LoadFile builds a fixture transport from a YAML file. Control values
// may be written in hex; response data is a hex string, spaces allowed.
func LoadFile(path string) (*Transport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(raw)
}

// Load builds a fixture transport from YAML data.
func Load(raw []byte) (*Transport, error) {
	var file fixtureFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	t := New()
	if file.Name != "" {
		t.name = file.Name
	}
	for i, resp := range file.Responses {
		data, err := hex.DecodeString(strings.ReplaceAll(resp.Data, " ", ""))
		if err != nil {
			return nil, fmt.Errorf("fixture response %d: %w", i, err)
		}
		t.SetRaw(resp.Control, data)
	}
	return t, nil
}

// FromTrace builds a fixture transport from a CBOR trace file by
// pairing each command event with the response event that follows it.
// Replaying the fixture reproduces the traced platform's answers.
func FromTrace(path string) (*Transport, error) {
	r, err := log.NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	t := New()
	t.name = "trace-replay"

	var pending uint64
	var havePending bool
	for {
		event, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading trace: %w", err)
		}
		if event.Exchange == nil {
			continue
		}
		switch event.Category {
		case log.CategoryCommand:
			pending = event.Exchange.Control
			havePending = true
		case log.CategoryResponse:
			if havePending {
				t.SetRaw(pending, event.Exchange.Data)
				havePending = false
			}
		}
	}
	return t, nil
}
