package codec

import "io"

// maxVarintLen is the longest encoding of a uint64
const maxVarintLen = 10

// AppendUvarint appends the minimal unsigned varint encoding of v to dst
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// UvarintLen returns the number of bytes AppendUvarint produces for v
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// AppendString appends s as a varint byte length followed by its UTF-8 bytes.
// The prefix counts bytes, not runes.
func AppendString(dst []byte, s string) []byte {
	dst = AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// WriteUvarint writes the varint encoding of v to w one byte at a time and
// returns the number of bytes written
func WriteUvarint(w io.ByteWriter, v uint64) (int, error) {
	n := 0
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return n, err
		}
		v >>= 7
		n++
	}
	if err := w.WriteByte(byte(v)); err != nil {
		return n, err
	}
	return n + 1, nil
}

// WriteString writes s to w in the same layout as AppendString
func WriteString(w io.Writer, s string) (int, error) {
	var prefix [maxVarintLen]byte
	n, err := w.Write(AppendUvarint(prefix[:0], uint64(len(s))))
	if err != nil {
		return n, err
	}
	m, err := io.WriteString(w, s)
	return n + m, err
}

// stringLen is the encoded size of s including its length prefix
func stringLen(s string) int {
	return UvarintLen(uint64(len(s))) + len(s)
}
