package blazorpack

// MaxVarintLen is the maximum number of bytes a frame length prefix can occupy.
// A uint32 requires at most 5 bytes in varint encoding.
const MaxVarintLen = 5

// EncodeUvarint encodes v as a varint into buf and returns the number of bytes
// written. buf must have at least MaxVarintLen bytes available.
// 7 bits of data per byte, least significant group first, MSB set on every
// byte but the last.
func EncodeUvarint(buf []byte, v uint32) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// AppendUvarint appends the varint encoding of v to dst.
func AppendUvarint(dst []byte, v uint32) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// DecodeUvarint decodes a varint from the start of buf.
// Returns the value and the number of bytes consumed. It fails with
// ErrTruncatedVarint when buf ends before a byte with a clear high bit, and
// with ErrVarintOverflow when the value does not fit in 32 bits.
func DecodeUvarint(buf []byte) (uint32, int, error) {
	var v uint32
	var shift uint

	for i, b := range buf {
		if i == MaxVarintLen-1 && b > 0x0F {
			return 0, 0, ErrVarintOverflow
		}
		v |= uint32(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncatedVarint
}

// UvarintLen returns the number of bytes needed to encode v as a varint.
func UvarintLen(v uint32) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}
