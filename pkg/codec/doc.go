// Package codec encodes sing-box profile records into the binary
// "profile content" message consumed by the sing-box profile manager.
//
// The package only produces the format. There is no decoder; the message is
// written once and handed to an external consumer that must read it byte for
// byte.
//
// # Message Format
//
// A message is a two byte header followed by a single gzip stream:
//
//	[MessageType(1)][Version(1)][gzip(Payload)]
//
// Fields:
//   - MessageType: always 0x03 (profile content)
//   - Version: always 0x01
//   - gzip(Payload): one self-terminating gzip stream, no outer length or trailer
//
// # Payload Format
//
// The decompressed payload is a flat sequence of fields whose presence
// depends on the profile type:
//
//	[Name(str)][Type(4)][Config(str)]                              local
//	[Name(str)][Type(4)][Config(str)][RemotePath(str)]             icloud
//	[Name(str)][Type(4)][Config(str)][RemotePath(str)]
//	    [AutoUpdate(1)][AutoUpdateInterval(4)][LastUpdated(8)]     remote
//
// Fields:
//   - str: unsigned varint byte length followed by the raw UTF-8 bytes
//   - Type: int32 big-endian (local=0, icloud=1, remote=2)
//   - AutoUpdate: 0x00 or 0x01
//   - AutoUpdateInterval: int32 big-endian, seconds
//   - LastUpdated: int64 big-endian, Unix seconds
//
// Fields that do not apply to a profile type are left out entirely. The
// consumer reads positionally, so nothing may be reordered or zero-filled.
//
// # Unsigned Varints
//
// String lengths use the minimal little-endian base-128 encoding: seven
// value bits per byte, high bit set on every byte except the last.
//
//	0   -> 00
//	127 -> 7f
//	128 -> 80 01
//
// # Usage
//
//	profile, err := codec.NewRemoteProfile("work", configJSON, "https://example.com/work.json",
//	    codec.RemoteOptions{AutoUpdate: true, AutoUpdateInterval: 3600, LastUpdated: time.Now().Unix()})
//	if err != nil {
//	    return err
//	}
//
//	message, err := codec.NewProfileCodec().Encode(profile)
//	if err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Profiles are immutable after construction. ProfileCodec holds no mutable
// state and is safe for concurrent use.
package codec
