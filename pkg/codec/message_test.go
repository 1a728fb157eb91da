package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// payloadFields is what a consumer would read back from a payload
type payloadFields struct {
	name               string
	profileType        ProfileType
	config             string
	remotePath         *string
	autoUpdate         *bool
	autoUpdateInterval *int32
	lastUpdated        *int64
	count              int
}

// walkPayload reads a payload positionally, the way the external consumer
// does, and fails if any bytes are left over
func walkPayload(t *testing.T, data []byte) payloadFields {
	t.Helper()
	r := bytes.NewReader(data)

	readString := func() string {
		n, err := binary.ReadUvarint(r)
		if err != nil {
			t.Fatalf("reading string length: %v", err)
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			t.Fatalf("reading %d string bytes: %v", n, err)
		}
		return string(b)
	}

	var f payloadFields
	f.name = readString()
	var typ int32
	if err := binary.Read(r, binary.BigEndian, &typ); err != nil {
		t.Fatalf("reading type: %v", err)
	}
	f.profileType = ProfileType(typ)
	f.config = readString()
	f.count = 3

	if f.profileType != ProfileTypeLocal {
		path := readString()
		f.remotePath = &path
		f.count++
	}
	if f.profileType == ProfileTypeRemote {
		flag, err := r.ReadByte()
		if err != nil {
			t.Fatalf("reading auto update: %v", err)
		}
		if flag > 1 {
			t.Fatalf("auto update flag = %#x", flag)
		}
		autoUpdate := flag == 1
		var interval int32
		var lastUpdated int64
		if err := binary.Read(r, binary.BigEndian, &interval); err != nil {
			t.Fatalf("reading interval: %v", err)
		}
		if err := binary.Read(r, binary.BigEndian, &lastUpdated); err != nil {
			t.Fatalf("reading last updated: %v", err)
		}
		f.autoUpdate, f.autoUpdateInterval, f.lastUpdated = &autoUpdate, &interval, &lastUpdated
		f.count += 3
	}

	if r.Len() != 0 {
		t.Fatalf("%d unread bytes after %s payload", r.Len(), f.profileType)
	}
	return f
}

// gunzip decompresses with the standard library, independent of the encoder
func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("gzip header: %v", err)
	}
	zr.Multistream(false)
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("gzip body: %v", err)
	}
	if err := zr.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return out
}

func TestProfileCodec_EndToEndLocal(t *testing.T) {
	p, err := NewLocalProfile("test", "{}")
	if err != nil {
		t.Fatal(err)
	}

	message, err := NewProfileCodec().Encode(p)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if !bytes.Equal(message[:2], []byte{0x03, 0x01}) {
		t.Fatalf("header = %x, want 0301", message[:2])
	}

	payload := gunzip(t, message[2:])
	want := []byte{0x04, 0x74, 0x65, 0x73, 0x74, 0x00, 0x00, 0x00, 0x00, 0x02, 0x7B, 0x7D}
	if !bytes.Equal(payload, want) {
		t.Errorf("payload = %x, want %x", payload, want)
	}
}

func TestProfileCodec_VariantFieldSets(t *testing.T) {
	local, _ := NewLocalProfile("local profile", `{"log":{}}`)
	icloud, _ := NewICloudProfile("iCloud profile", `{"dns":{}}`, "sing-box/profiles/home.json")
	remote, _ := NewRemoteProfile("remote profile", `{"route":{}}`, "https://example.com/sub.json", RemoteOptions{
		AutoUpdate:         true,
		AutoUpdateInterval: 86400,
		LastUpdated:        1760486400,
	})

	c := NewProfileCodec()

	t.Run("local has three fields", func(t *testing.T) {
		message, err := c.Encode(local)
		if err != nil {
			t.Fatal(err)
		}
		f := walkPayload(t, gunzip(t, message[HeaderSize:]))
		if f.count != 3 || f.remotePath != nil || f.autoUpdate != nil {
			t.Errorf("unexpected fields: %+v", f)
		}
		if f.name != "local profile" || f.profileType != ProfileTypeLocal || f.config != `{"log":{}}` {
			t.Errorf("unexpected values: %+v", f)
		}
	})

	t.Run("icloud has four fields", func(t *testing.T) {
		message, err := c.Encode(icloud)
		if err != nil {
			t.Fatal(err)
		}
		f := walkPayload(t, gunzip(t, message[HeaderSize:]))
		if f.count != 4 || f.autoUpdate != nil {
			t.Errorf("unexpected fields: %+v", f)
		}
		if f.profileType != ProfileTypeICloud || *f.remotePath != "sing-box/profiles/home.json" {
			t.Errorf("unexpected values: %+v", f)
		}
	})

	t.Run("remote has six fields", func(t *testing.T) {
		message, err := c.Encode(remote)
		if err != nil {
			t.Fatal(err)
		}
		f := walkPayload(t, gunzip(t, message[HeaderSize:]))
		if f.count != 6 {
			t.Errorf("field count = %d, want 6", f.count)
		}
		if f.profileType != ProfileTypeRemote || *f.remotePath != "https://example.com/sub.json" {
			t.Errorf("unexpected values: %+v", f)
		}
		if !*f.autoUpdate || *f.autoUpdateInterval != 86400 || *f.lastUpdated != 1760486400 {
			t.Errorf("auto update fields = %v %v %v", *f.autoUpdate, *f.autoUpdateInterval, *f.lastUpdated)
		}
	})

	t.Run("header is constant", func(t *testing.T) {
		for _, p := range []Profile{local, icloud, remote} {
			message, err := c.Encode(p)
			if err != nil {
				t.Fatal(err)
			}
			if message[0] != byte(MessageTypeProfileContent) || message[1] != FormatVersion {
				t.Errorf("%s: header = %x", p.Type(), message[:2])
			}
		}
	})
}

func TestProfileCodec_CompressionLevels(t *testing.T) {
	p, err := NewLocalProfile("levels", `{"outbounds":[{"type":"direct"},{"type":"direct"},{"type":"direct"}]}`)
	if err != nil {
		t.Fatal(err)
	}
	want, err := BuildPayload(p)
	if err != nil {
		t.Fatal(err)
	}

	for _, level := range []int{HuffmanOnly, DefaultCompression, NoCompression, BestSpeed, 5, BestCompression} {
		c := NewProfileCodec(WithCompressionLevel(level))
		if c.Level() != level {
			t.Fatalf("Level() = %d, want %d", c.Level(), level)
		}
		message, err := c.Encode(p)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if got := gunzip(t, message[HeaderSize:]); !bytes.Equal(got, want) {
			t.Errorf("level %d: payload = %x, want %x", level, got, want)
		}
	}
}

func TestProfileCodec_InvalidLevel(t *testing.T) {
	p, _ := NewLocalProfile("x", "{}")

	var buf bytes.Buffer
	_, err := NewProfileCodec(WithCompressionLevel(42)).EncodeTo(&buf, p)
	if err == nil {
		t.Fatal("expected error for invalid compression level")
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written: %x", buf.Bytes())
	}
}

func TestProfileCodec_NilProfile(t *testing.T) {
	profiles := map[string]Profile{
		"nil interface": nil,
		"nil local":     (*LocalProfile)(nil),
		"nil icloud":    (*ICloudProfile)(nil),
		"nil remote":    (*RemoteProfile)(nil),
	}

	for name, p := range profiles {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := NewProfileCodec().EncodeTo(&buf, p)
			if !errors.Is(err, ErrNilProfile) {
				t.Errorf("expected ErrNilProfile, got %v", err)
			}
			if buf.Len() != 0 {
				t.Errorf("partial output written: %x", buf.Bytes())
			}
		})
	}
}

func TestProfileCodec_EncodeTo(t *testing.T) {
	p, _ := NewICloudProfile("w", "{}", "p")
	c := NewProfileCodec()

	var buf bytes.Buffer
	n, err := c.EncodeTo(&buf, p)
	if err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("EncodeTo reported %d bytes, wrote %d", n, buf.Len())
	}

	encoded, err := c.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(encoded, buf.Bytes()) {
		t.Error("EncodeTo and Encode disagree")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestProfileCodec_EncodeToError(t *testing.T) {
	p, _ := NewLocalProfile("w", "{}")
	if _, err := NewProfileCodec().EncodeTo(failingWriter{}, p); err == nil {
		t.Error("expected write error")
	}
}

func TestCompress_SingleStream(t *testing.T) {
	compressed, err := Compress([]byte("payload"), BestCompression)
	if err != nil {
		t.Fatal(err)
	}
	// gzip magic and deflate method
	if !bytes.HasPrefix(compressed, []byte{0x1f, 0x8b, 0x08}) {
		t.Errorf("not a gzip stream: %x", compressed[:3])
	}
	if got := gunzip(t, compressed); string(got) != "payload" {
		t.Errorf("got %q", got)
	}

	// Same input and level always produce the same bytes
	again, err := Compress([]byte("payload"), BestCompression)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(compressed, again) {
		t.Error("Compress is not deterministic")
	}
}

func TestCompress_HeaderHasNoTimestamp(t *testing.T) {
	p, _ := NewLocalProfile("test", "{}")
	message, err := NewProfileCodec().Encode(p)
	if err != nil {
		t.Fatal(err)
	}

	// gzip header: ID1 ID2 CM FLG MTIME(4) XFL OS
	mtime := message[HeaderSize+4 : HeaderSize+8]
	if !bytes.Equal(mtime, []byte{0, 0, 0, 0}) {
		t.Errorf("MTIME = % x, want 00 00 00 00", mtime)
	}
	if flags := message[HeaderSize+3]; flags != 0 {
		t.Errorf("FLG = %#x, want no name or comment", flags)
	}

	zr, err := gzip.NewReader(bytes.NewReader(message[HeaderSize:]))
	if err != nil {
		t.Fatal(err)
	}
	if !zr.ModTime.IsZero() {
		t.Errorf("ModTime = %v, want unset", zr.ModTime)
	}
	if zr.Name != "" {
		t.Errorf("Name = %q, want empty", zr.Name)
	}
}

func TestCompress_Empty(t *testing.T) {
	compressed, err := Compress(nil, DefaultCompression)
	if err != nil {
		t.Fatal(err)
	}
	if got := gunzip(t, compressed); len(got) != 0 {
		t.Errorf("got %x", got)
	}
}
