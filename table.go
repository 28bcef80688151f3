package macwinua

import (
	"fmt"
	"sort"
	"strconv"

	customhttp "github.com/BenjaminSRussell/macwinua/internal/http"
	"github.com/BenjaminSRussell/macwinua/internal/persona"
	"github.com/BenjaminSRussell/macwinua/internal/types"
	"go.uber.org/zap"
)

// Chrome returns a random Chrome UA string from any platform
func (c *ChromeUA) Chrome() (string, error) {
	return c.randomUA(func(types.Agent) bool { return true })
}

// Random is an alias for Chrome
func (c *ChromeUA) Random() (string, error) {
	return c.Chrome()
}

// Mac returns a random macOS UA string
func (c *ChromeUA) Mac() (string, error) {
	return c.randomUA(func(a types.Agent) bool { return a.Platform == types.Mac })
}

// Windows returns a random Windows UA string
func (c *ChromeUA) Windows() (string, error) {
	return c.randomUA(func(a types.Agent) bool { return a.Platform == types.Windows })
}

// Latest returns a random UA string carrying the newest Chrome major in the table
func (c *ChromeUA) Latest() (string, error) {
	table := c.snapshot()
	latest := latestMajor(table.Agents)
	return c.randomUA(func(a types.Agent) bool { return a.Version.MajorString() == latest })
}

func (c *ChromeUA) randomUA(keep func(types.Agent) bool) (string, error) {
	table := c.snapshot()
	if len(table.Agents) == 0 {
		return "", ErrNoAgents
	}
	agents := filter(table.Agents, keep)
	if len(agents) == 0 {
		return "", ErrNoMatch
	}
	return agents[pick(len(agents), nil)].UserAgent, nil
}

// AvailableVersions returns the Chrome majors in the table, ascending
func (c *ChromeUA) AvailableVersions() []string {
	return availableVersions(c.snapshot().Agents)
}

// AvailablePlatforms returns the platforms present in the table, sorted
func (c *ChromeUA) AvailablePlatforms() []string {
	seen := make(map[types.Platform]bool)
	out := make([]string, 0, len(types.Platforms))
	for _, a := range c.snapshot().Agents {
		if !seen[a.Platform] {
			seen[a.Platform] = true
			out = append(out, string(a.Platform))
		}
	}
	sort.Strings(out)
	return out
}

// AvailableOSVersions returns OS versions per platform in table order
func (c *ChromeUA) AvailableOSVersions() map[string][]string {
	out := make(map[string][]string)
	seen := make(map[string]bool)
	for _, a := range c.snapshot().Agents {
		key := string(a.Platform) + "\x00" + a.OSVersion
		if seen[key] {
			continue
		}
		seen[key] = true
		out[string(a.Platform)] = append(out[string(a.Platform)], a.OSVersion)
	}
	return out
}

// Table returns a copy of the current table
func (c *ChromeUA) Table() Table {
	return cloneTable(c.snapshot())
}

// Update replaces parts of the table. A nil Agents or SecUA keeps the current
// value; an empty non-nil one replaces it. The merged table is validated as a
// whole and nothing changes if validation fails. Memoized lookups are dropped.
func (c *ChromeUA) Update(t Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := cloneTable(c.table)
	if t.Agents != nil {
		next.Agents = cloneTable(Table{Agents: t.Agents}).Agents
	}
	if t.SecUA != nil {
		next.SecUA = cloneTable(Table{SecUA: t.SecUA}).SecUA
	}

	if err := ValidateTable(next); err != nil {
		c.logger.Debug("rejected table update", zap.Error(err))
		return err
	}

	c.table = next
	c.gen++
	c.cache = make(map[filterKey][]types.Agent)

	c.logger.Debug("table updated",
		zap.Int("agents", len(next.Agents)),
		zap.Int("sec_ua", len(next.SecUA)),
		zap.Uint64("generation", c.gen),
	)
	return nil
}

// ValidateTable checks a table the way Update does
func ValidateTable(t Table) error {
	if len(t.SecUA) == 0 {
		return fmt.Errorf("%w: sec_ua dictionary cannot be empty", ErrInvalidTable)
	}
	if _, ok := t.SecUA[DefaultChromeVersion]; !ok {
		return fmt.Errorf("%w: default Chrome version '%s' must exist in sec_ua", ErrInvalidTable, DefaultChromeVersion)
	}
	for major, value := range t.SecUA {
		if err := customhttp.ValidateHeader(customhttp.HeaderSecCHUA, value); err != nil {
			return fmt.Errorf("%w: sec_ua entry %s: %v", ErrInvalidTable, major, err)
		}
	}

	for i, a := range t.Agents {
		if !a.Platform.Valid() {
			return fmt.Errorf("%w: platform at index %d must be 'mac' or 'win', got %q", ErrInvalidTable, i, a.Platform)
		}
		if a.Version.Major <= 0 {
			return fmt.Errorf("%w: agent at index %d has no chrome version", ErrInvalidTable, i)
		}
		if a.UserAgent == "" {
			return fmt.Errorf("%w: agent at index %d has an empty user-agent", ErrInvalidTable, i)
		}
		if err := customhttp.ValidateHeader(customhttp.HeaderUserAgent, a.UserAgent); err != nil {
			return fmt.Errorf("%w: agent at index %d: %v", ErrInvalidTable, i, err)
		}
	}

	var missing []string
	for _, v := range availableVersions(t.Agents) {
		if _, ok := t.SecUA[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: sec_ua is missing entries for Chrome versions %v", ErrInvalidTable, missing)
	}

	for i, a := range t.Agents {
		if _, err := persona.Render(a, t.SecUA, persona.RenderOptions{}); err != nil {
			return fmt.Errorf("agent at index %d: %w", i, err)
		}
	}

	return nil
}

func (c *ChromeUA) snapshot() types.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

func cloneTable(t types.Table) types.Table {
	out := types.Table{}
	if t.Agents != nil {
		out.Agents = make([]types.Agent, len(t.Agents))
		copy(out.Agents, t.Agents)
	}
	if t.SecUA != nil {
		out.SecUA = make(map[string]string, len(t.SecUA))
		for k, v := range t.SecUA {
			out.SecUA[k] = v
		}
	}
	return out
}

func availableVersions(agents []types.Agent) []string {
	seen := make(map[int]bool)
	majors := make([]int, 0)
	for _, a := range agents {
		if !seen[a.Version.Major] {
			seen[a.Version.Major] = true
			majors = append(majors, a.Version.Major)
		}
	}
	sort.Ints(majors)

	out := make([]string, len(majors))
	for i, m := range majors {
		out[i] = strconv.Itoa(m)
	}
	return out
}

func latestMajor(agents []types.Agent) string {
	versions := availableVersions(agents)
	if len(versions) == 0 {
		return ""
	}
	return versions[len(versions)-1]
}
