package errdefs

import (
	"errors"
	"fmt"
	"testing"
)

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("write: broken pipe")
	err := Transport("command write", cause)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatal("expected TransportError")
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}
	if errors.Is(err, ErrNotSupported) {
		t.Error("transport errors must not match ErrNotSupported")
	}
}

func TestProtocolError(t *testing.T) {
	err := Protocol("reserved PDO type %#x", 0b11)

	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatal("expected ProtocolError")
	}
	if want := "protocol: reserved PDO type 0x3"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestUnsupportedRevisionIsNotSupported(t *testing.T) {
	err := UnsupportedRevision(0x0100)

	if !errors.Is(err, ErrNotSupported) {
		t.Error("unsupported revision should match ErrNotSupported")
	}
	if got, want := err.Error(), "unsupported specification revision 1.0"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnsupportedRevisionSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("decoding source capabilities: %w", UnsupportedRevision(0x0510))

	if !errors.Is(err, ErrNotSupported) {
		t.Error("wrapped unsupported revision should still match ErrNotSupported")
	}
	var ur *UnsupportedRevisionError
	if !errors.As(err, &ur) {
		t.Fatal("expected UnsupportedRevisionError")
	}
	if ur.Revision != 0x0510 {
		t.Errorf("Revision = %#x, want 0x0510", ur.Revision)
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not supported", ErrNotSupported, false},
		{"wrapped not supported", fmt.Errorf("pdos: %w", ErrNotSupported), false},
		{"unsupported revision", UnsupportedRevision(0x0200), false},
		{"transport", Transport("poll", errors.New("timeout")), true},
		{"protocol", Protocol("truncated response"), true},
		{"invalid argument", ErrInvalidArgument, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
