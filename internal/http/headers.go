package http

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/BenjaminSRussell/macwinua/internal/types"
	"golang.org/x/net/http/httpguts"
)

// Header names emitted by the generator. Client hints are lower case, matching
// what Chrome puts on the wire over HTTP/2.
const (
	HeaderUserAgent       = "User-Agent"
	HeaderSecCHUA         = "sec-ch-ua"
	HeaderSecCHUAMobile   = "sec-ch-ua-mobile"
	HeaderSecCHUAPlatform = "sec-ch-ua-platform"
	HeaderSecCHUAFullList = "sec-ch-ua-full-version-list"
)

// DefaultChromeVersion is the sec-ch-ua entry used when a major has none of its own
const DefaultChromeVersion = "135"

var (
	uaMajorVersionRegex = regexp.MustCompile(`Chrome/(\d+)`)
	brandRegex          = regexp.MustCompile(`"([^"]*)";v="([^"]*)"`)
)

// platformProfiles is in types.Platforms order
var platformProfiles = []types.PlatformProfile{
	{
		OSName:        types.Mac,
		PlatformToken: "macOS",
		UAFragment:    "Macintosh; Intel %s",
	},
	{
		OSName:        types.Windows,
		PlatformToken: "Windows",
		UAFragment:    "%s",
	},
}

// Chrome stable releases the default table is built from
var chromeReleases = []types.BrowserVersion{
	{Major: 135, Minor: 0, Build: 7049, Patch: 115},
	{Major: 136, Minor: 0, Build: 7103, Patch: 114},
	{Major: 137, Minor: 0, Build: 7151, Patch: 69},
}

var osVersions = map[types.Platform][]string{
	types.Mac: {
		"Mac OS X 10_15_7",
		"Mac OS X 13_5_2",
		"Mac OS X 14_0",
	},
	types.Windows: {
		"Windows NT 10.0; Win64; x64",
	},
}

var secUA = map[string]string{
	"135": `"Google Chrome";v="135", "Not-A.Brand";v="8", "Chromium";v="135"`,
	"136": `"Chromium";v="136", "Google Chrome";v="136", "Not.A/Brand";v="99"`,
	"137": `"Google Chrome";v="137", "Chromium";v="137", "Not/A)Brand";v="24"`,
}

// defaultHeaders follow the client hints on a top-level navigation
var defaultHeaders = []types.Header{
	{Name: "Accept", Value: "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"},
	{Name: "Accept-Encoding", Value: "gzip, deflate, br, zstd"},
	{Name: "Accept-Language", Value: "en-US,en;q=0.9"},
	{Name: "Upgrade-Insecure-Requests", Value: "1"},
	{Name: "Sec-Fetch-Site", Value: "none"},
	{Name: "Sec-Fetch-Mode", Value: "navigate"},
	{Name: "Sec-Fetch-User", Value: "?1"},
	{Name: "Sec-Fetch-Dest", Value: "document"},
	{Name: "Priority", Value: "u=0, i"},
}

// Profile returns the platform profile for p
func Profile(p types.Platform) (types.PlatformProfile, bool) {
	for _, profile := range platformProfiles {
		if profile.OSName == p {
			return profile, true
		}
	}
	return types.PlatformProfile{}, false
}

// UserAgent renders a Chrome UA string for the platform, OS version and browser version
func UserAgent(p types.Platform, osVersion string, v types.BrowserVersion) string {
	profile, ok := Profile(p)
	if !ok {
		return ""
	}
	os := fmt.Sprintf(profile.UAFragment, osVersion)
	return "Mozilla/5.0 (" + os + ") AppleWebKit/537.36 (KHTML, like Gecko) Chrome/" + v.Reduced() + " Safari/537.36"
}

// DefaultTable returns a fresh copy of the curated agent table
func DefaultTable() types.Table {
	table := types.Table{
		Agents: make([]types.Agent, 0, len(chromeReleases)*4),
		SecUA:  make(map[string]string, len(secUA)),
	}

	for _, profile := range platformProfiles {
		p := profile.OSName
		for _, osVersion := range osVersions[p] {
			for _, v := range chromeReleases {
				table.Agents = append(table.Agents, types.Agent{
					Platform:  p,
					OSVersion: osVersion,
					Version:   v,
					UserAgent: UserAgent(p, osVersion, v),
				})
			}
		}
	}

	for k, v := range secUA {
		table.SecUA[k] = v
	}

	return table
}

// DefaultHeaders returns the navigation headers appended after the client hints
func DefaultHeaders() []types.Header {
	out := make([]types.Header, len(defaultHeaders))
	copy(out, defaultHeaders)
	return out
}

// Brand is one entry of a sec-ch-ua brand list
type Brand struct {
	Name    string
	Version string
}

// ParseBrands splits a sec-ch-ua value into its brands
func ParseBrands(value string) []Brand {
	matches := brandRegex.FindAllStringSubmatch(value, -1)
	brands := make([]Brand, 0, len(matches))
	for _, m := range matches {
		brands = append(brands, Brand{Name: m[1], Version: m[2]})
	}
	return brands
}

// FormatBrands is the inverse of ParseBrands
func FormatBrands(brands []Brand) string {
	parts := make([]string, len(brands))
	for i, b := range brands {
		parts[i] = strconv.Quote(b.Name) + ";v=" + strconv.Quote(b.Version)
	}
	return strings.Join(parts, ", ")
}

// FullVersionList rewrites a sec-ch-ua value into sec-ch-ua-full-version-list form.
// Brands carrying the Chrome major get the full version, GREASE brands get ".0.0.0".
func FullVersionList(secCHUA string, v types.BrowserVersion) string {
	brands := ParseBrands(secCHUA)
	major := v.MajorString()
	for i := range brands {
		if brands[i].Version == major {
			brands[i].Version = v.String()
		} else if !strings.Contains(brands[i].Version, ".") {
			brands[i].Version += ".0.0.0"
		}
	}
	return FormatBrands(brands)
}

// ChromeMajor extracts the Chrome major version from a UA string
func ChromeMajor(userAgent string) (string, bool) {
	m := uaMajorVersionRegex.FindStringSubmatch(userAgent)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// PlatformFromUA infers the platform a UA string claims
func PlatformFromUA(userAgent string) (types.Platform, bool) {
	switch {
	case strings.Contains(userAgent, "Macintosh"), strings.Contains(userAgent, "Mac OS X"):
		return types.Mac, true
	case strings.Contains(userAgent, "Windows"):
		return types.Windows, true
	}
	return "", false
}

// ValidateHeader checks that name and value could be sent on the wire
func ValidateHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: bad header name %q", types.ErrInvalidHeader, name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: bad value for header %q", types.ErrInvalidHeader, name)
	}
	return nil
}

// ApplyHeaders copies a header set onto an HTTP request, replacing existing values
func ApplyHeaders(req *http.Request, hs types.HeaderSet) {
	for _, h := range hs.Headers() {
		req.Header.Set(h.Name, h.Value)
	}
}
