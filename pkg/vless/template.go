package vless

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
)

var ErrNoVLESSOutbound = errors.New("VLESS outbound not found in template")

// maxFilenameLen caps the sanitized name, in characters, before the extension is added
const maxFilenameLen = 100

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// ParseTemplate strips JSONC comments and trailing commas, then decodes the
// sing-box configuration
func ParseTemplate(data []byte) (map[string]any, error) {
	var config map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("JSON template parsing error: %w", err)
	}
	return config, nil
}

// LoadTemplate reads and parses a template file
func LoadTemplate(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("template file not found: %s: %w", path, err)
	}
	return ParseTemplate(data)
}

// Apply writes the link's server, credentials, TLS and transport settings
// into the first outbound whose type is "vless"
func Apply(config map[string]any, link *Link) error {
	outbound := findVLESSOutbound(config)
	if outbound == nil {
		return ErrNoVLESSOutbound
	}

	outbound["server"] = link.Server
	outbound["server_port"] = link.Port
	outbound["uuid"] = link.UUID

	if link.Flow != "" {
		outbound["flow"] = link.Flow
	}

	switch link.Security {
	case "reality":
		tls := applyTLS(outbound, link)
		reality := child(tls, "reality")
		reality["enabled"] = true
		if link.PublicKey != "" {
			reality["public_key"] = link.PublicKey
		}
		if link.ShortID != "" {
			reality["short_id"] = link.ShortID
		}
	case "tls":
		applyTLS(outbound, link)
	}

	switch link.Transport {
	case "ws":
		transport := child(outbound, "transport")
		transport["type"] = "ws"
		ws := child(transport, "ws")
		if link.Path != "" {
			ws["path"] = link.Path
		}
		if link.Host != "" {
			ws["headers"] = map[string]any{"Host": link.Host}
		}
	case "grpc":
		transport := child(outbound, "transport")
		transport["type"] = "grpc"
		if link.Path != "" {
			grpc := child(transport, "grpc")
			grpc["service_name"] = link.Path
		}
	}

	return nil
}

// Marshal renders the configuration as two-space indented JSON without
// HTML escaping
func Marshal(config map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// SanitizeFilename converts a server name into a .json file name
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, " .")
	if runes := []rune(sanitized); len(runes) > maxFilenameLen {
		sanitized = string(runes[:maxFilenameLen])
	}
	if sanitized == "" {
		sanitized = "vless_config"
	}
	return sanitized + ".json"
}

func applyTLS(outbound map[string]any, link *Link) map[string]any {
	tls := child(outbound, "tls")
	tls["enabled"] = true
	if link.SNI != "" {
		tls["server_name"] = link.SNI
	}
	utls := child(tls, "utls")
	utls["enabled"] = true
	utls["fingerprint"] = link.Fingerprint
	return tls
}

func findVLESSOutbound(config map[string]any) map[string]any {
	outbounds, _ := config["outbounds"].([]any)
	for _, o := range outbounds {
		outbound, ok := o.(map[string]any)
		if ok && outbound["type"] == "vless" {
			return outbound
		}
	}
	return nil
}

// child returns parent[key] as an object, creating it if absent or not an object
func child(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}
