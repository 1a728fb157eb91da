package codec

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
)

// MessageType is the first byte of every message
type MessageType uint8

const (
	// MessageTypeProfileContent marks a profile content message
	MessageTypeProfileContent MessageType = 3

	// FormatVersion is the second byte of every message
	FormatVersion byte = 1

	// HeaderSize is the number of bytes before the gzip stream
	HeaderSize = 2
)

// Compression levels accepted by WithCompressionLevel
const (
	HuffmanOnly        = gzip.HuffmanOnly
	NoCompression      = gzip.NoCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
	DefaultCompression = gzip.DefaultCompression
)

// ProfileCodec encodes profiles into profile content messages
type ProfileCodec struct {
	level int
}

// Option configures a ProfileCodec
type Option func(*ProfileCodec)

// WithCompressionLevel sets the gzip level. Values outside
// HuffmanOnly..BestCompression are rejected by Encode.
func WithCompressionLevel(level int) Option {
	return func(c *ProfileCodec) {
		c.level = level
	}
}

// NewProfileCodec creates a codec. The default level is BestCompression,
// which is what the reference encoder uses.
func NewProfileCodec(opts ...Option) *ProfileCodec {
	c := &ProfileCodec{level: BestCompression}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Level returns the configured gzip level
func (c *ProfileCodec) Level() int {
	return c.level
}

// Encode serializes a profile into a complete message
// Format: [MessageType(1)][Version(1)][gzip(Payload)]
func (c *ProfileCodec) Encode(p Profile) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := c.EncodeTo(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes the encoded message for p to w and returns the number of
// bytes written. Nothing is written if the payload cannot be built.
func (c *ProfileCodec) EncodeTo(w io.Writer, p Profile) (int64, error) {
	payload, err := BuildPayload(p)
	if err != nil {
		return 0, fmt.Errorf("failed to build payload: %w", err)
	}

	compressed, err := Compress(payload, c.level)
	if err != nil {
		return 0, err
	}

	header := [HeaderSize]byte{byte(MessageTypeProfileContent), FormatVersion}
	n, err := w.Write(header[:])
	if err != nil {
		return int64(n), fmt.Errorf("failed to write header: %w", err)
	}
	m, err := w.Write(compressed)
	if err != nil {
		return int64(n + m), fmt.Errorf("failed to write payload: %w", err)
	}

	return int64(n + m), nil
}

// Compress wraps payload in a single gzip stream at the given level. The
// writer is closed before the buffer is returned, so the stream is complete.
// The header carries no name and an MTIME of 0.
func Compress(payload []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("invalid compression level %d: %w", level, err)
	}
	// klauspost writes ModTime.Unix() without a zero check
	zw.ModTime = time.Unix(0, 0)
	if _, err := zw.Write(payload); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish gzip stream: %w", err)
	}

	return buf.Bytes(), nil
}
