// Package bits provides a little-endian bit reader for packed bitfield
// structures. UCSI data structures are defined as contiguous bitfields
// laid out LSB-first within a little-endian byte stream, which maps
// poorly onto encoding/binary; this reader extracts arbitrary-width
// fields in declaration order instead.
package bits

// Reader extracts bit fields from a byte slice, least significant bit
// first. The zero value is not usable; use NewReader.
type Reader struct {
	data []byte
	pos  int // bit offset from the start of data
}

// NewReader returns a Reader over data starting at bit 0.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.data)*8 - r.pos
}

// Read returns the next n bits as an unsigned integer. n must be in
// [0, 64]. Reading past the end of the data yields zero bits, matching
// the convention that short UCSI responses are zero padded.
func (r *Reader) Read(n int) uint64 {
	if n < 0 || n > 64 {
		panic("bits: read width out of range")
	}
	var v uint64
	for i := 0; i < n; i++ {
		byteIdx := r.pos >> 3
		if byteIdx < len(r.data) {
			bit := (r.data[byteIdx] >> (r.pos & 7)) & 1
			v |= uint64(bit) << i
		}
		r.pos++
	}
	return v
}

// Read8 returns the next n bits as a uint8. n must be at most 8.
func (r *Reader) Read8(n int) uint8 {
	if n > 8 {
		panic("bits: read width exceeds 8")
	}
	return uint8(r.Read(n))
}

// Read16 returns the next n bits as a uint16. n must be at most 16.
func (r *Reader) Read16(n int) uint16 {
	if n > 16 {
		panic("bits: read width exceeds 16")
	}
	return uint16(r.Read(n))
}

// Read32 returns the next n bits as a uint32. n must be at most 32.
func (r *Reader) Read32(n int) uint32 {
	if n > 32 {
		panic("bits: read width exceeds 32")
	}
	return uint32(r.Read(n))
}

// Bool returns the next bit as a boolean.
func (r *Reader) Bool() bool {
	return r.Read(1) != 0
}

// Skip advances past n bits without decoding them.
func (r *Reader) Skip(n int) {
	r.pos += n
}
