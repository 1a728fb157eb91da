// Package vless turns a vless:// share link into a sing-box configuration
// by patching the first vless outbound of a JSON (or JSONC) template.
package vless

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	scheme      = "vless://"
	defaultName = "VLESS Server"
	defaultPort = 443
)

var ErrNotVLESS = errors.New("URL must start with 'vless://'")

// Link holds the connection parameters of a vless:// URL. Fingerprint,
// Transport, PublicKey and ShortID come from the fp, type, pbk and sid
// query parameters.
type Link struct {
	Name        string
	UUID        string
	Server      string
	Port        int
	Security    string
	Fingerprint string
	Transport   string
	Flow        string
	PublicKey   string
	SNI         string
	ShortID     string
	Path        string
	Host        string
}

// Parse parses vless://uuid@server[:port][?params][#name]. Missing query
// parameters take the defaults sing-box expects. Name is "VLESS Server"
// when there is no fragment and empty when the fragment is empty.
func Parse(raw string) (*Link, error) {
	if !strings.HasPrefix(raw, scheme) {
		return nil, ErrNotVLESS
	}
	rest, fragment, hasName := strings.Cut(raw[len(scheme):], "#")

	name := defaultName
	if hasName {
		// text after a second '#' is not part of the name
		fragment, _, _ = strings.Cut(fragment, "#")
		name = unescapeName(fragment)
	}

	authority, rawQuery, _ := strings.Cut(rest, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	uuid, address, ok := strings.Cut(authority, "@")
	if !ok || uuid == "" {
		return nil, fmt.Errorf("missing uuid in %q", authority)
	}

	server, portText, hasPort := strings.Cut(address, ":")
	if server == "" {
		return nil, fmt.Errorf("missing server in %q", authority)
	}
	port := defaultPort
	if hasPort {
		port, err = strconv.Atoi(portText)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", portText, err)
		}
	}

	param := func(key, fallback string) string {
		if v := params.Get(key); v != "" {
			return v
		}
		return fallback
	}

	return &Link{
		Name:        name,
		UUID:        uuid,
		Server:      server,
		Port:        port,
		Security:    param("security", "none"),
		Fingerprint: param("fp", "chrome"),
		Transport:   param("type", "tcp"),
		Flow:        param("flow", ""),
		PublicKey:   param("pbk", ""),
		SNI:         param("sni", ""),
		ShortID:     param("sid", ""),
		Path:        param("path", ""),
		Host:        param("host", ""),
	}, nil
}

// unescapeName decodes %XX escapes. Malformed escapes are kept as written
// and invalid UTF-8 is replaced with U+FFFD.
func unescapeName(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}

	if !utf8.Valid(buf) {
		return strings.ToValidUTF8(string(buf), string(utf8.RuneError))
	}
	return string(buf)
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}
