package persona

import (
	"fmt"
	"strconv"

	customhttp "github.com/BenjaminSRussell/macwinua/internal/http"
	"github.com/BenjaminSRussell/macwinua/internal/types"
)

// Persona represents a consistent browser identity: one agent row rendered into
// headers, plus the TLS profile a client would need to match them.
type Persona struct {
	Agent      types.Agent
	Headers    types.HeaderSet
	TLSProfile customhttp.TLSProfile
}

// RenderOptions control what goes into the header set beyond the client hints
type RenderOptions struct {
	FullVersionList bool
	Extra           []types.Header
}

// Render maps an agent onto a header set.
// secUA is the brand table keyed by Chrome major.
func Render(agent types.Agent, secUA map[string]string, opts RenderOptions) (*Persona, error) {
	brands, err := brandList(agent.Version, secUA)
	if err != nil {
		return nil, err
	}

	profile, ok := customhttp.Profile(agent.Platform)
	if !ok {
		return nil, fmt.Errorf("%w: platform must be 'mac' or 'win', got %q", types.ErrInvalidPlatform, agent.Platform)
	}

	headers := []types.Header{
		{Name: customhttp.HeaderUserAgent, Value: agent.UserAgent},
		{Name: customhttp.HeaderSecCHUA, Value: brands},
		{Name: customhttp.HeaderSecCHUAMobile, Value: "?0"},
		{Name: customhttp.HeaderSecCHUAPlatform, Value: strconv.Quote(profile.PlatformToken)},
	}
	if opts.FullVersionList {
		headers = append(headers, types.Header{
			Name:  customhttp.HeaderSecCHUAFullList,
			Value: customhttp.FullVersionList(brands, agent.Version),
		})
	}
	headers = append(headers, customhttp.DefaultHeaders()...)

	hs := types.NewHeaderSet(headers...)
	if err := Check(hs); err != nil {
		return nil, err
	}

	for _, h := range opts.Extra {
		if err := customhttp.ValidateHeader(h.Name, h.Value); err != nil {
			return nil, err
		}
		hs = hs.With(h.Name, h.Value)
	}
	if len(opts.Extra) > 0 {
		if err := Check(hs); err != nil {
			return nil, fmt.Errorf("%w: extra headers contradict the generated ones: %v", types.ErrInvalidHeader, err)
		}
	}

	return &Persona{
		Agent:      agent,
		Headers:    hs,
		TLSProfile: customhttp.MatchTLSProfile(agent.Version.Major),
	}, nil
}

// brandList picks the sec-ch-ua value for v. When the table has no entry for the
// major, the default version's list is used with its Chrome brands moved to v.
func brandList(v types.BrowserVersion, secUA map[string]string) (string, error) {
	major := v.MajorString()
	if value, ok := secUA[major]; ok {
		return value, nil
	}

	fallback, ok := secUA[customhttp.DefaultChromeVersion]
	if !ok {
		return "", fmt.Errorf("%w: no sec-ch-ua entry for %s or default %s",
			types.ErrInvalidTable, major, customhttp.DefaultChromeVersion)
	}

	brands := customhttp.ParseBrands(fallback)
	for i := range brands {
		if isChromeBrand(brands[i].Name) {
			brands[i].Version = major
		}
	}
	return customhttp.FormatBrands(brands), nil
}

func isChromeBrand(name string) bool {
	return name == "Google Chrome" || name == "Chromium"
}

// Check verifies that the UA and client hints in hs describe the same browser.
//
// It only compares what it can read. A UA without a "Chrome/N" token passes,
// as does a sec-ch-ua list naming neither "Google Chrome" nor "Chromium".
// The platform is compared only when the UA names macOS or Windows.
func Check(hs types.HeaderSet) error {
	ua := hs.Get(customhttp.HeaderUserAgent)
	major, ok := customhttp.ChromeMajor(ua)
	if !ok {
		return nil
	}

	for _, b := range customhttp.ParseBrands(hs.Get(customhttp.HeaderSecCHUA)) {
		if isChromeBrand(b.Name) && b.Version != major {
			return fmt.Errorf("%w: user-agent says Chrome %s but sec-ch-ua says %s %s",
				types.ErrInvalidTable, major, b.Name, b.Version)
		}
	}

	if p, ok := customhttp.PlatformFromUA(ua); ok {
		want := strconv.Quote(p.Token())
		if got := hs.Get(customhttp.HeaderSecCHUAPlatform); got != want {
			return fmt.Errorf("%w: user-agent implies %s but sec-ch-ua-platform is %s",
				types.ErrInvalidTable, want, got)
		}
	}

	return nil
}
