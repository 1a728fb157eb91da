package codec

import (
	"encoding/binary"
	"fmt"
)

// BuildPayload serializes a profile into the flat, uncompressed payload.
// Format: [Name][Type(4)][Config] then the variant fields described in the
// package documentation.
func BuildPayload(p Profile) ([]byte, error) {
	if isNil(p) {
		return nil, ErrNilProfile
	}

	buf := make([]byte, 0, PayloadSize(p))
	buf = AppendString(buf, p.Name())
	buf = appendInt32(buf, int32(p.Type()))
	buf = AppendString(buf, p.Config())

	switch p := p.(type) {
	case *LocalProfile:
	case *ICloudProfile:
		buf = AppendString(buf, p.remotePath)
	case *RemoteProfile:
		buf = AppendString(buf, p.remotePath)
		buf = appendBool(buf, p.opts.AutoUpdate)
		buf = appendInt32(buf, p.opts.AutoUpdateInterval)
		buf = appendInt64(buf, p.opts.LastUpdated)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownProfileType, p)
	}

	return buf, nil
}

// PayloadSize returns the length of the payload BuildPayload produces for p,
// or 0 for a nil profile
func PayloadSize(p Profile) int {
	if isNil(p) {
		return 0
	}

	// Name + Type(4) + Config
	size := stringLen(p.Name()) + 4 + stringLen(p.Config())

	switch p := p.(type) {
	case *ICloudProfile:
		size += stringLen(p.remotePath)
	case *RemoteProfile:
		// RemotePath + AutoUpdate(1) + AutoUpdateInterval(4) + LastUpdated(8)
		size += stringLen(p.remotePath) + 1 + 4 + 8
	}

	return size
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func appendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

func appendInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}

// isNil reports whether p is nil or a nil pointer of a known variant
func isNil(p Profile) bool {
	switch v := p.(type) {
	case nil:
		return true
	case *LocalProfile:
		return v == nil
	case *ICloudProfile:
		return v == nil
	case *RemoteProfile:
		return v == nil
	}
	return false
}
