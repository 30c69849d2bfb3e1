package ucsidbg

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/usb-typec/typec-go/pkg/errdefs"
)

// responseHexDigits is the width of the hex payload in a debugfs
// response line: two 64-bit halves.
const responseHexDigits = 32

// parseResponse decodes the debugfs response text. The kernel prints
// the 16-byte message data as "0x" followed by 32 hex digits, most
// significant half first. The returned bytes are in wire order, least
// significant byte first.
func parseResponse(text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "0x") {
		return nil, errdefs.Protocol("malformed debugfs response %q", text)
	}
	digits := text[2:]
	if len(digits) != responseHexDigits {
		return nil, errdefs.Protocol("debugfs response has %d hex digits, want %d", len(digits), responseHexDigits)
	}

	high, err := strconv.ParseUint(digits[:16], 16, 64)
	if err != nil {
		return nil, errdefs.Protocol("malformed debugfs response %q", text)
	}
	low, err := strconv.ParseUint(digits[16:], 16, 64)
	if err != nil {
		return nil, errdefs.Protocol("malformed debugfs response %q", text)
	}

	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data[:8], low)
	binary.LittleEndian.PutUint64(data[8:], high)
	return data, nil
}
