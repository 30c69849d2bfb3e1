//go:build linux

package ucsidbg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// debugfsRoot is where the kernel exposes UCSI devices.
const debugfsRoot = "/sys/kernel/debug/usb/ucsi"

// Transport talks to one UCSI device through its debugfs nodes.
type Transport struct {
	dir      string
	response *os.File
	timeout  time.Duration
}

// New opens the UCSI debugfs interface. Without WithPath it picks the
// first device under the debugfs root; if none exists the platform has
// no UCSI debugfs support and the error unwraps to ErrNotSupported.
func New(opts ...Option) (*Transport, error) {
	c := newConfig(opts)

	dir := c.path
	if dir == "" {
		var err error
		dir, err = discoverDevice()
		if err != nil {
			return nil, err
		}
	}

	response, err := os.Open(filepath.Join(dir, "response"))
	if err != nil {
		return nil, errdefs.Transport("open response node", err)
	}
	return &Transport{
		dir:      dir,
		response: response,
		timeout:  c.timeout,
	}, nil
}

// discoverDevice returns the directory of the first UCSI device that
// exposes a command node.
func discoverDevice() (string, error) {
	entries, err := filepath.Glob(filepath.Join(debugfsRoot, "*"))
	if err != nil {
		return "", errdefs.Transport("scan debugfs", err)
	}
	for _, entry := range entries {
		if _, err := os.Stat(filepath.Join(entry, "command")); err == nil {
			return entry, nil
		}
	}
	return "", fmt.Errorf("no UCSI device under %s: %w", debugfsRoot, errdefs.ErrNotSupported)
}

// Name implements backend.Transport.
func (t *Transport) Name() string { return "ucsi_debugfs" }

// Execute implements backend.Transport. The control value is written
// to the command node as a decimal string; the kernel completes the
// command asynchronously and the response node becomes readable.
func (t *Transport) Execute(ctx context.Context, cmd ucsi.Command) ([]byte, error) {
	control := strconv.FormatUint(cmd.Encode(), 10) + "\x00"
	if err := os.WriteFile(filepath.Join(t.dir, "command"), []byte(control), 0); err != nil {
		return nil, errdefs.Transport("write command", err)
	}

	if err := t.awaitResponse(ctx); err != nil {
		return nil, err
	}

	if _, err := t.response.Seek(0, 0); err != nil {
		return nil, errdefs.Transport("rewind response", err)
	}
	buf := make([]byte, 64)
	n, err := t.response.Read(buf)
	if err != nil {
		return nil, errdefs.Transport("read response", err)
	}
	return parseResponse(string(buf[:n]))
}

// awaitResponse polls the response node until it is readable or the
// deadline expires.
func (t *Transport) awaitResponse(ctx context.Context) error {
	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for {
		if err := ctx.Err(); err != nil {
			return errdefs.Transport("await response", err)
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return errdefs.Transport("await response", os.ErrDeadlineExceeded)
		}

		fds := []unix.PollFd{{Fd: int32(t.response.Fd()), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds())+1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errdefs.Transport("poll response", err)
		}
		if n > 0 {
			return nil
		}
	}
}

// Close implements backend.Transport.
func (t *Transport) Close() error {
	return t.response.Close()
}
