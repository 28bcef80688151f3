// Package macwinua generates realistic Chrome request headers for macOS and Windows.
//
// Every header set it returns is self-consistent: the Chrome version in
// User-Agent matches sec-ch-ua, and sec-ch-ua-platform matches the OS in the
// UA string.
//
//	headers, err := macwinua.GetChromeHeaders(macwinua.Options{Platform: "mac"})
package macwinua

import (
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	customhttp "github.com/BenjaminSRussell/macwinua/internal/http"
	"github.com/BenjaminSRussell/macwinua/internal/persona"
	"github.com/BenjaminSRussell/macwinua/internal/types"
	"go.uber.org/zap"
)

type (
	Platform       = types.Platform
	BrowserVersion = types.BrowserVersion
	Agent          = types.Agent
	Table          = types.Table
	Header         = types.Header
	HeaderSet      = types.HeaderSet
	Persona        = persona.Persona
	TLSProfile     = customhttp.TLSProfile
)

const (
	Mac     = types.Mac
	Windows = types.Windows
)

// VersionLatest selects the highest Chrome major in the table
const VersionLatest = "latest"

// DefaultChromeVersion must always have a sec-ch-ua entry
const DefaultChromeVersion = customhttp.DefaultChromeVersion

var (
	ErrInvalidConfig    = types.ErrInvalidConfig
	ErrInvalidPlatform  = types.ErrInvalidPlatform
	ErrInvalidVersion   = types.ErrInvalidVersion
	ErrInvalidOSVersion = types.ErrInvalidOSVersion
	ErrInvalidHeader    = types.ErrInvalidHeader
	ErrInvalidTable     = types.ErrInvalidTable
	ErrNoMatch          = types.ErrNoMatch
	ErrNoAgents         = types.ErrNoAgents
)

// Options select which agent a header set is built from. The zero value picks
// any platform and any version at random.
type Options struct {
	// Platform fixes the platform ("mac" or "win"). Takes precedence over Platforms.
	Platform string
	// Platforms picks at random from a set
	Platforms []string
	// ChromeVersion is a major such as "137", VersionLatest, or empty for random
	ChromeVersion string
	// OSVersion matches the OS part of the UA exactly, e.g. "Mac OS X 14_0"
	OSVersion string
	// ExtraHeaders are added after the generated ones, overriding on a name clash
	ExtraHeaders map[string]string
	// FullVersionList adds sec-ch-ua-full-version-list
	FullVersionList bool
	// Seed makes agent selection deterministic
	Seed *int64
}

// ChromeUA holds an agent table and renders header sets from it.
// It is safe for concurrent use.
type ChromeUA struct {
	mu sync.RWMutex
	// table is never mutated in place, Update swaps in a new one
	table  types.Table
	gen    uint64
	cache  map[filterKey][]types.Agent
	logger *zap.Logger
}

type filterKey struct {
	platforms string
	version   string
	osVersion string
}

// Option configures a ChromeUA
type Option func(*ChromeUA)

// WithLogger sets the logger used for table updates
func WithLogger(logger *zap.Logger) Option {
	return func(c *ChromeUA) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTable replaces the built-in table without validation. Use Update for
// tables from untrusted sources.
func WithTable(table Table) Option {
	return func(c *ChromeUA) {
		c.table = cloneTable(table)
	}
}

// New creates a ChromeUA backed by the built-in table
func New(opts ...Option) *ChromeUA {
	c := &ChromeUA{
		table:  customhttp.DefaultTable(),
		cache:  make(map[filterKey][]types.Agent),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is the shared instance used by the package-level helpers
var Default = New()

// GetChromeHeaders generates headers from Default
func GetChromeHeaders(opts Options) (HeaderSet, error) {
	return Default.Generate(opts)
}

// GetHeaders is an alias for Generate
func (c *ChromeUA) GetHeaders(opts Options) (HeaderSet, error) {
	return c.Generate(opts)
}

// Generate returns a fresh header set for an agent matching opts
func (c *ChromeUA) Generate(opts Options) (HeaderSet, error) {
	p, err := c.Persona(opts)
	if err != nil {
		return HeaderSet{}, err
	}
	return p.Headers, nil
}

// Persona is Generate plus the agent it picked and the matching TLS profile
func (c *ChromeUA) Persona(opts Options) (*Persona, error) {
	platforms, err := resolvePlatforms(opts)
	if err != nil {
		return nil, err
	}

	extra, err := extraHeaders(opts.ExtraHeaders)
	if err != nil {
		return nil, err
	}

	candidates, secUA, err := c.candidates(platforms, normalizeVersion(opts.ChromeVersion), strings.TrimSpace(opts.OSVersion))
	if err != nil {
		return nil, err
	}

	agent := candidates[pick(len(candidates), opts.Seed)]

	return persona.Render(agent, secUA, persona.RenderOptions{
		FullVersionList: opts.FullVersionList,
		Extra:           extra,
	})
}

// Fingerprint returns the TLS ClientHello profile matching the Chrome
// version in a generated header set
func Fingerprint(hs HeaderSet) (TLSProfile, error) {
	major, ok := customhttp.ChromeMajor(hs.Get(customhttp.HeaderUserAgent))
	if !ok {
		return TLSProfile{}, fmt.Errorf("%w: user-agent carries no Chrome version", ErrInvalidVersion)
	}
	n, err := strconv.Atoi(major)
	if err != nil {
		return TLSProfile{}, fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}
	return customhttp.MatchTLSProfile(n), nil
}

// Check reports whether hs is internally consistent
func Check(hs HeaderSet) error {
	return persona.Check(hs)
}

// Apply sets every header in hs on req, replacing values already there
func Apply(req *http.Request, hs HeaderSet) {
	customhttp.ApplyHeaders(req, hs)
}

// TLSProfiles lists the ClientHello profiles Fingerprint can return, oldest first
func TLSProfiles() []TLSProfile {
	return customhttp.TLSProfiles()
}

func resolvePlatforms(opts Options) ([]types.Platform, error) {
	raw := opts.Platforms
	if opts.Platform != "" {
		raw = []string{opts.Platform}
	}
	if len(raw) == 0 {
		return nil, nil
	}

	seen := make(map[types.Platform]bool, len(raw))
	out := make([]types.Platform, 0, len(raw))
	for _, s := range raw {
		p, err := types.ParsePlatform(s)
		if err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func extraHeaders(extra map[string]string) ([]types.Header, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Header, 0, len(names))
	for _, name := range names {
		if err := customhttp.ValidateHeader(name, extra[name]); err != nil {
			return nil, err
		}
		out = append(out, types.Header{Name: name, Value: extra[name]})
	}
	return out, nil
}

// candidates returns the agents matching a filter together with the sec-ch-ua
// table of the same snapshot. Results are memoized until the next Update.
func (c *ChromeUA) candidates(platforms []types.Platform, version, osVersion string) ([]types.Agent, map[string]string, error) {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	key := filterKey{platforms: strings.Join(names, ","), version: version, osVersion: osVersion}

	c.mu.RLock()
	table, gen := c.table, c.gen
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, table.SecUA, nil
	}

	result, err := filterAgents(table, platforms, version, osVersion)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.cache[key] = result
	}
	c.mu.Unlock()

	return result, table.SecUA, nil
}

func filterAgents(table types.Table, platforms []types.Platform, version, osVersion string) ([]types.Agent, error) {
	if len(table.Agents) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoMatch, ErrNoAgents)
	}

	if version == VersionLatest {
		version = latestMajor(table.Agents)
	} else if version != "" {
		known := availableVersions(table.Agents)
		if !contains(known, version) {
			return nil, fmt.Errorf("%w: chrome version must be one of %v, got %q", ErrInvalidVersion, known, version)
		}
	}

	out := table.Agents
	if len(platforms) > 0 {
		out = filter(out, func(a types.Agent) bool {
			for _, p := range platforms {
				if a.Platform == p {
					return true
				}
			}
			return false
		})
		if len(out) == 0 {
			return nil, fmt.Errorf("%w for platform '%s'", ErrNoMatch, joinPlatforms(platforms))
		}
	}

	if version != "" {
		out = filter(out, func(a types.Agent) bool { return a.Version.MajorString() == version })
		if len(out) == 0 {
			return nil, fmt.Errorf("%w for chrome version '%s'", ErrNoMatch, version)
		}
	}

	if osVersion != "" {
		out = filter(out, func(a types.Agent) bool { return a.OSVersion == osVersion })
		if len(out) == 0 {
			return nil, fmt.Errorf("%w: no matching user-agent found for OS version '%s'", ErrInvalidOSVersion, osVersion)
		}
	}

	return out, nil
}

// normalizeVersion reduces a full version to its major so that every build of
// one release shares a cache entry
func normalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" || version == VersionLatest {
		return version
	}
	if v, err := types.ParseBrowserVersion(version); err == nil {
		return v.MajorString()
	}
	return version
}

func filter(agents []types.Agent, keep func(types.Agent) bool) []types.Agent {
	out := make([]types.Agent, 0, len(agents))
	for _, a := range agents {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func joinPlatforms(platforms []types.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return strings.Join(names, "', '")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// pick draws an index in [0, n). With a seed the choice is reproducible.
func pick(n int, seed *int64) int {
	if seed != nil {
		return rand.New(rand.NewSource(*seed)).Intn(n)
	}
	return rand.Intn(n)
}
