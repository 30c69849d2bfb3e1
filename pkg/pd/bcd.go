// Package pd implements the USB Power Delivery data model used by the
// UCSI query engine: specification revisions, power data objects and
// vendor defined messages. Decoding is strict: reserved bit patterns
// and inconsistent responses are reported as errors rather than
// silently accepted.
package pd

import "fmt"

// BCD is a binary-coded-decimal specification revision as carried in
// UCSI capability structures. The major revision lives in the high
// byte and the minor in the low byte, so 0x0301 reads as revision 3.1.
type BCD uint16

// Revisions this library carries PDO layout tables for.
const (
	Revision20 BCD = 0x0200
	Revision30 BCD = 0x0300
	Revision31 BCD = 0x0301
)

// Major returns the major revision digit.
func (b BCD) Major() uint8 {
	return uint8(b >> 8)
}

// Minor returns the minor revision digit.
func (b BCD) Minor() uint8 {
	return uint8(b)
}

// String formats the revision as "major.minor".
func (b BCD) String() string {
	return fmt.Sprintf("%x.%x", b.Major(), b.Minor())
}
