//go:build !linux

package ucsidbg

import (
	"context"
	"fmt"

	"github.com/usb-typec/typec-go/pkg/errdefs"
	"github.com/usb-typec/typec-go/pkg/ucsi"
)

// Transport is unavailable off Linux; New always fails.
type Transport struct{}

// New reports that UCSI debugfs exists only on Linux.
func New(opts ...Option) (*Transport, error) {
	return nil, fmt.Errorf("ucsi debugfs requires linux: %w", errdefs.ErrNotSupported)
}

func (t *Transport) Name() string { return "ucsi_debugfs" }

func (t *Transport) Execute(context.Context, ucsi.Command) ([]byte, error) {
	return nil, errdefs.ErrNotSupported
}

func (t *Transport) Close() error { return nil }
