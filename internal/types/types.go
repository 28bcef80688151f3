package types

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Platform identifies the desktop OS a header set pretends to run on
type Platform string

const (
	Mac     Platform = "mac"
	Windows Platform = "win"
)

// Platforms lists every supported platform in canonical order
var Platforms = []Platform{Mac, Windows}

// ParsePlatform maps user input such as "macos" or "Windows" to a Platform
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "macos", "darwin", "osx":
		return Mac, nil
	case "win", "windows":
		return Windows, nil
	}
	return "", fmt.Errorf("%w: platform must be 'mac' or 'win', got %q", ErrInvalidPlatform, s)
}

// Valid reports whether p is one of the supported platforms
func (p Platform) Valid() bool {
	return p == Mac || p == Windows
}

// Token returns the value Chrome sends in sec-ch-ua-platform, unquoted
func (p Platform) Token() string {
	switch p {
	case Mac:
		return "macOS"
	case Windows:
		return "Windows"
	}
	return ""
}

func (p Platform) String() string {
	return string(p)
}

// PlatformProfile describes how a platform shows up in the UA string and client hints
type PlatformProfile struct {
	OSName        Platform
	PlatformToken string
	// UAFragment is a format string taking the OS version, e.g. "Macintosh; Intel %s"
	UAFragment string
}

// BrowserVersion is a four part Chrome version number
type BrowserVersion struct {
	Major int
	Minor int
	Build int
	Patch int
}

// ParseBrowserVersion accepts "137" or "137.0.7151.69"
func ParseBrowserVersion(s string) (BrowserVersion, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 1 && len(parts) != 4 {
		return BrowserVersion{}, fmt.Errorf("%w: malformed chrome version %q", ErrInvalidVersion, s)
	}

	nums := make([]int, 4)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return BrowserVersion{}, fmt.Errorf("%w: malformed chrome version %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	if nums[0] == 0 {
		return BrowserVersion{}, fmt.Errorf("%w: malformed chrome version %q", ErrInvalidVersion, s)
	}

	return BrowserVersion{Major: nums[0], Minor: nums[1], Build: nums[2], Patch: nums[3]}, nil
}

func (v BrowserVersion) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Patch)
}

// Reduced returns the frozen form Chrome exposes in User-Agent, e.g. "137.0.0.0"
func (v BrowserVersion) Reduced() string {
	return fmt.Sprintf("%d.0.0.0", v.Major)
}

// MajorString returns the major version as used for table keys
func (v BrowserVersion) MajorString() string {
	return strconv.Itoa(v.Major)
}

func (v BrowserVersion) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *BrowserVersion) UnmarshalText(b []byte) error {
	parsed, err := ParseBrowserVersion(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalJSON accepts a version string or a bare integer major
func (v *BrowserVersion) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return v.UnmarshalText([]byte(s))
	}

	var major int
	if err := json.Unmarshal(b, &major); err != nil {
		return fmt.Errorf("%w: chrome version must be a string or an integer, got %s", ErrInvalidVersion, b)
	}
	return v.UnmarshalText([]byte(strconv.Itoa(major)))
}

// Agent is one row of the user-agent table
type Agent struct {
	Platform  Platform       `json:"platform" yaml:"platform"`
	OSVersion string         `json:"os_version" yaml:"os_version"`
	Version   BrowserVersion `json:"version" yaml:"version"`
	UserAgent string         `json:"user_agent" yaml:"user_agent"`
}

// Table is the curated data a generator draws from
type Table struct {
	Agents []Agent `json:"agents" yaml:"agents"`
	// SecUA maps a Chrome major version ("137") to its sec-ch-ua brand list
	SecUA map[string]string `json:"sec_ua" yaml:"sec_ua"`
}

// Header is a single name/value pair
type Header struct {
	Name  string
	Value string
}

// HeaderSet is an ordered, immutable list of headers. Lookups ignore case.
type HeaderSet struct {
	headers []Header
}

// NewHeaderSet builds a set from headers, later duplicates replacing earlier ones in place
func NewHeaderSet(headers ...Header) HeaderSet {
	hs := HeaderSet{headers: make([]Header, 0, len(headers))}
	for _, h := range headers {
		hs.headers = hs.set(h.Name, h.Value)
	}
	return hs
}

// With returns a copy of hs with name set to value
func (hs HeaderSet) With(name, value string) HeaderSet {
	return HeaderSet{headers: hs.set(name, value)}
}

func (hs HeaderSet) set(name, value string) []Header {
	out := make([]Header, len(hs.headers), len(hs.headers)+1)
	copy(out, hs.headers)
	for i := range out {
		if strings.EqualFold(out[i].Name, name) {
			out[i].Value = value
			return out
		}
	}
	return append(out, Header{Name: name, Value: value})
}

// Lookup returns the value for name and whether it was present
func (hs HeaderSet) Lookup(name string) (string, bool) {
	for _, h := range hs.headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Get returns the value for name, or "" if absent
func (hs HeaderSet) Get(name string) string {
	v, _ := hs.Lookup(name)
	return v
}

func (hs HeaderSet) Len() int {
	return len(hs.headers)
}

// Headers returns a copy of the ordered pairs
func (hs HeaderSet) Headers() []Header {
	out := make([]Header, len(hs.headers))
	copy(out, hs.headers)
	return out
}

// Names returns header names in order
func (hs HeaderSet) Names() []string {
	names := make([]string, len(hs.headers))
	for i, h := range hs.headers {
		names[i] = h.Name
	}
	return names
}

// Map returns the headers as a plain map, losing order
func (hs HeaderSet) Map() map[string]string {
	m := make(map[string]string, len(hs.headers))
	for _, h := range hs.headers {
		m[h.Name] = h.Value
	}
	return m
}

// Header converts the set into a net/http header
func (hs HeaderSet) Header() http.Header {
	h := make(http.Header, len(hs.headers))
	for _, kv := range hs.headers {
		h.Set(kv.Name, kv.Value)
	}
	return h
}

// Equal reports whether both sets hold the same headers in the same order
func (hs HeaderSet) Equal(other HeaderSet) bool {
	if len(hs.headers) != len(other.headers) {
		return false
	}
	for i := range hs.headers {
		if hs.headers[i] != other.headers[i] {
			return false
		}
	}
	return true
}
