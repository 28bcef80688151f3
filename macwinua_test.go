package macwinua

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestGenerateIsConsistent(t *testing.T) {
	ua := New()

	for i := 0; i < 200; i++ {
		hs, err := ua.Generate(Options{})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if err := Check(hs); err != nil {
			t.Fatalf("Inconsistent header set: %v", err)
		}

		userAgent := hs.Get("User-Agent")
		major := userAgent[strings.Index(userAgent, "Chrome/")+len("Chrome/"):]
		major = major[:strings.Index(major, ".")]
		if !strings.Contains(hs.Get("sec-ch-ua"), `"Google Chrome";v="`+major+`"`) {
			t.Errorf("sec-ch-ua %q does not carry Chrome %s", hs.Get("sec-ch-ua"), major)
		}
	}
}

func TestPlatformToken(t *testing.T) {
	tests := []struct {
		platform string
		token    string
		uaPart   string
	}{
		{"mac", `"macOS"`, "Macintosh"},
		{"macos", `"macOS"`, "Macintosh"},
		{"win", `"Windows"`, "Windows NT"},
		{"Windows", `"Windows"`, "Windows NT"},
	}

	ua := New()
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				hs, err := ua.Generate(Options{Platform: tt.platform})
				if err != nil {
					t.Fatalf("Generate failed: %v", err)
				}
				if got := hs.Get("Sec-CH-UA-Platform"); got != tt.token {
					t.Errorf("Expected platform %s, got %s", tt.token, got)
				}
				if !strings.Contains(hs.Get("User-Agent"), tt.uaPart) {
					t.Errorf("Expected %q in User-Agent %q", tt.uaPart, hs.Get("User-Agent"))
				}
			}
		})
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"unsupported platform", Options{Platform: "linux"}, ErrInvalidPlatform},
		{"unsupported platform in set", Options{Platforms: []string{"mac", "android"}}, ErrInvalidPlatform},
		{"unknown version", Options{ChromeVersion: "999"}, ErrInvalidVersion},
		{"garbage version", Options{ChromeVersion: "abc"}, ErrInvalidVersion},
		{"unknown os version", Options{OSVersion: "Invalid OS"}, ErrInvalidOSVersion},
		{"bad extra header name", Options{ExtraHeaders: map[string]string{"Bad Header": "x"}}, ErrInvalidHeader},
		{"bad extra header value", Options{ExtraHeaders: map[string]string{"X-Test": "a\nb"}}, ErrInvalidHeader},
	}

	ua := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ua.Generate(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected error to be an ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestInvalidOSVersionMessage(t *testing.T) {
	_, err := New().Generate(Options{OSVersion: "Invalid OS"})
	if err == nil || !strings.Contains(err.Error(), "no matching user-agent found for OS version 'Invalid OS'") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestSeedIsDeterministic(t *testing.T) {
	ua := New()
	seed := int64(42)

	first, err := ua.Generate(Options{Seed: &seed})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := ua.Generate(Options{Seed: &seed})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if !first.Equal(again) {
			t.Fatalf("Expected identical output for the same seed")
		}
	}

	other := New()
	fromOther, err := other.Generate(Options{Seed: &seed})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !first.Equal(fromOther) {
		t.Errorf("Expected the same seed to give the same output across instances")
	}
}

func TestFixedVersion(t *testing.T) {
	ua := New()

	for _, version := range []string{"135", "136", "137"} {
		hs, err := ua.Generate(Options{ChromeVersion: version})
		if err != nil {
			t.Fatalf("Generate(%s) failed: %v", version, err)
		}
		if !strings.Contains(hs.Get("sec-ch-ua"), `v="`+version+`"`) {
			t.Errorf("Expected %s in sec-ch-ua, got %s", version, hs.Get("sec-ch-ua"))
		}
		if !strings.Contains(hs.Get("User-Agent"), "Chrome/"+version+".0.0.0") {
			t.Errorf("Expected Chrome/%s.0.0.0 in User-Agent, got %s", version, hs.Get("User-Agent"))
		}
	}

	hs, err := ua.Generate(Options{ChromeVersion: "137.0.7151.69"})
	if err != nil {
		t.Fatalf("Generate with full version failed: %v", err)
	}
	if !strings.Contains(hs.Get("User-Agent"), "Chrome/137.0.0.0") {
		t.Errorf("Expected Chrome 137, got %s", hs.Get("User-Agent"))
	}
}

func TestLatestVersion(t *testing.T) {
	hs, err := New().Generate(Options{ChromeVersion: VersionLatest, Platform: "win"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(hs.Get("User-Agent"), "Chrome/137.0.0.0") {
		t.Errorf("Expected latest Chrome 137, got %s", hs.Get("User-Agent"))
	}
}

func TestOSVersionFilter(t *testing.T) {
	ua := New()

	hs, err := ua.Generate(Options{Platform: "mac", ChromeVersion: "137", OSVersion: "Mac OS X 14_0"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(hs.Get("User-Agent"), "Macintosh; Intel Mac OS X 14_0") {
		t.Errorf("Unexpected User-Agent %s", hs.Get("User-Agent"))
	}

	hs, err = ua.Generate(Options{OSVersion: "Windows NT 10.0; Win64; x64"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(hs.Get("User-Agent"), "Windows NT 10.0; Win64; x64") {
		t.Errorf("Unexpected User-Agent %s", hs.Get("User-Agent"))
	}

	_, err = ua.Generate(Options{Platform: "win", OSVersion: "Mac OS X 14_0"})
	if !errors.Is(err, ErrInvalidOSVersion) {
		t.Errorf("Expected ErrInvalidOSVersion for mismatched platform, got %v", err)
	}
}

func TestPlatformSet(t *testing.T) {
	ua := New()
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		hs, err := ua.Generate(Options{Platforms: []string{"mac", "win"}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		seen[hs.Get("sec-ch-ua-platform")] = true
	}
	if !seen[`"macOS"`] || !seen[`"Windows"`] {
		t.Errorf("Expected both platforms to be picked, saw %v", seen)
	}

	for i := 0; i < 20; i++ {
		hs, err := ua.Generate(Options{Platforms: []string{"windows"}})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if hs.Get("sec-ch-ua-platform") != `"Windows"` {
			t.Fatalf("Expected only Windows, got %s", hs.Get("sec-ch-ua-platform"))
		}
	}

	hs, err := ua.Generate(Options{Platform: "mac", Platforms: []string{"win"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hs.Get("sec-ch-ua-platform") != `"macOS"` {
		t.Errorf("Expected Platform to take precedence over Platforms")
	}
}

func TestHeaderOrder(t *testing.T) {
	hs, err := New().Generate(Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	names := hs.Names()
	want := []string{"User-Agent", "sec-ch-ua", "sec-ch-ua-mobile", "sec-ch-ua-platform", "Accept"}
	if !reflect.DeepEqual(names[:len(want)], want) {
		t.Errorf("Expected header order %v, got %v", want, names[:len(want)])
	}
	if hs.Get("sec-ch-ua-mobile") != "?0" {
		t.Errorf("Expected desktop sec-ch-ua-mobile, got %s", hs.Get("sec-ch-ua-mobile"))
	}
	for _, name := range []string{"Accept-Language", "Accept-Encoding", "Sec-Fetch-Mode", "Upgrade-Insecure-Requests"} {
		if _, ok := hs.Lookup(name); !ok {
			t.Errorf("Expected default header %s", name)
		}
	}
}

func TestExtraHeaders(t *testing.T) {
	ua := New()

	hs, err := ua.Generate(Options{ExtraHeaders: map[string]string{
		"X-Custom-Header": "CustomValue",
		"Authorization":   "Bearer token123",
	}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hs.Get("X-Custom-Header") != "CustomValue" || hs.Get("Authorization") != "Bearer token123" {
		t.Errorf("Extra headers missing: %v", hs.Map())
	}
	names := hs.Names()
	if names[len(names)-2] != "Authorization" || names[len(names)-1] != "X-Custom-Header" {
		t.Errorf("Expected extra headers appended in name order, got %v", names)
	}

	hs, err = ua.Generate(Options{ExtraHeaders: map[string]string{"Sec-CH-UA-Mobile": "?1"}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hs.Get("sec-ch-ua-mobile") != "?1" {
		t.Errorf("Expected override, got %s", hs.Get("sec-ch-ua-mobile"))
	}
	if hs.Names()[2] != "sec-ch-ua-mobile" {
		t.Errorf("Expected override to keep the original position, got %v", hs.Names())
	}
}

func TestFullVersionList(t *testing.T) {
	hs, err := New().Generate(Options{ChromeVersion: "137", FullVersionList: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	got := hs.Get("sec-ch-ua-full-version-list")
	want := `"Google Chrome";v="137.0.7151.69", "Chromium";v="137.0.7151.69", "Not/A)Brand";v="24.0.0.0"`
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	hs, err = New().Generate(Options{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, ok := hs.Lookup("sec-ch-ua-full-version-list"); ok {
		t.Errorf("Expected no full version list unless asked for")
	}
}

func TestAccessors(t *testing.T) {
	ua := New()

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"chrome", ua.Chrome, "Chrome"},
		{"random", ua.Random, "Chrome"},
		{"mac", ua.Mac, "Macintosh"},
		{"windows", ua.Windows, "Windows"},
		{"latest", ua.Latest, "Chrome/137.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestAvailable(t *testing.T) {
	ua := New()

	if got := ua.AvailableVersions(); !reflect.DeepEqual(got, []string{"135", "136", "137"}) {
		t.Errorf("Unexpected versions %v", got)
	}
	if got := ua.AvailablePlatforms(); !reflect.DeepEqual(got, []string{"mac", "win"}) {
		t.Errorf("Unexpected platforms %v", got)
	}

	osVersions := ua.AvailableOSVersions()
	for _, v := range []string{"Mac OS X 13_5_2", "Mac OS X 14_0"} {
		if !contains(osVersions["mac"], v) {
			t.Errorf("Expected %s in mac OS versions %v", v, osVersions["mac"])
		}
	}
	if !reflect.DeepEqual(osVersions["win"], []string{"Windows NT 10.0; Win64; x64"}) {
		t.Errorf("Unexpected Windows OS versions %v", osVersions["win"])
	}
}

func TestGetChromeHeaders(t *testing.T) {
	hs, err := GetChromeHeaders(Options{
		Platform:     "mac",
		OSVersion:    "Mac OS X 14_0",
		ExtraHeaders: map[string]string{"X-Test": "Value"},
	})
	if err != nil {
		t.Fatalf("GetChromeHeaders failed: %v", err)
	}
	if hs.Get("sec-ch-ua-platform") != `"macOS"` || hs.Get("X-Test") != "Value" {
		t.Errorf("Unexpected headers %v", hs.Map())
	}
}

func TestFingerprint(t *testing.T) {
	ua := New()

	for _, tt := range []struct {
		version string
		profile string
	}{
		{"135", "Chrome_133"},
		{"137", "Chrome_133"},
	} {
		p, err := ua.Persona(Options{ChromeVersion: tt.version})
		if err != nil {
			t.Fatalf("Persona failed: %v", err)
		}
		if p.TLSProfile.Name != tt.profile {
			t.Errorf("Chrome %s: expected %s, got %s", tt.version, tt.profile, p.TLSProfile.Name)
		}

		fp, err := Fingerprint(p.Headers)
		if err != nil {
			t.Fatalf("Fingerprint failed: %v", err)
		}
		if fp.Name != p.TLSProfile.Name {
			t.Errorf("Expected Fingerprint to agree with Persona, got %s and %s", fp.Name, p.TLSProfile.Name)
		}
	}

	if _, err := Fingerprint(HeaderSet{}); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("Expected ErrInvalidVersion for empty set, got %v", err)
	}
}

func TestConcurrentUse(t *testing.T) {
	ua := New()

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hs, err := ua.Generate(Options{})
				if err != nil {
					errs <- err
					return
				}
				if err := Check(hs); err != nil {
					errs <- err
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 5; j++ {
			if err := ua.Update(Table{Agents: ua.Table().Agents}); err != nil {
				errs <- err
				return
			}
		}
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent use failed: %v", err)
	}
}

func TestExtraHeadersMustStayConsistent(t *testing.T) {
	ua := New()

	_, err := ua.Generate(Options{
		Platform:      "mac",
		ChromeVersion: "137",
		ExtraHeaders: map[string]string{
			"sec-ch-ua-platform": `"Windows"`,
			"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	})
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Expected ErrInvalidHeader, got %v", err)
	}

	_, err = ua.Generate(Options{
		Platform:     "win",
		ExtraHeaders: map[string]string{"Sec-CH-UA-Platform": `"macOS"`},
	})
	if !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("Expected ErrInvalidHeader for platform override, got %v", err)
	}

	hs, err := ua.Generate(Options{
		Platform:     "win",
		ExtraHeaders: map[string]string{"sec-ch-ua-mobile": "?1", "Accept-Language": "de-DE"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := Check(hs); err != nil {
		t.Errorf("Inconsistent header set: %v", err)
	}
}

func TestCacheKeyUsesMajor(t *testing.T) {
	ua := New()

	for i := 0; i < 50; i++ {
		if _, err := ua.Generate(Options{ChromeVersion: fmt.Sprintf("137.0.0.%d", i)}); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	if _, err := ua.Generate(Options{ChromeVersion: " 137 "}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	ua.mu.RLock()
	entries := len(ua.cache)
	ua.mu.RUnlock()
	if entries != 1 {
		t.Errorf("Expected 1 cache entry, got %d", entries)
	}

	if _, err := ua.Generate(Options{ChromeVersion: "999.0.0.1"}); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("Expected ErrInvalidVersion, got %v", err)
	}
	ua.mu.RLock()
	entries = len(ua.cache)
	ua.mu.RUnlock()
	if entries != 1 {
		t.Errorf("Expected failed lookups to stay out of the cache, got %d entries", entries)
	}
}

func TestApply(t *testing.T) {
	hs, err := New().Generate(Options{Platform: "win"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("User-Agent", "Go-http-client/1.1")

	Apply(req, hs)

	if req.Header.Get("User-Agent") != hs.Get("User-Agent") {
		t.Errorf("Expected User-Agent to be replaced, got %s", req.Header.Get("User-Agent"))
	}
	if req.Header.Get("Sec-Ch-Ua-Platform") != `"Windows"` {
		t.Errorf("Unexpected sec-ch-ua-platform %s", req.Header.Get("Sec-Ch-Ua-Platform"))
	}
	if len(req.Header) != hs.Len() {
		t.Errorf("Expected %d headers, got %d", hs.Len(), len(req.Header))
	}
}

func TestTLSProfiles(t *testing.T) {
	profiles := TLSProfiles()
	if len(profiles) == 0 {
		t.Fatal("Expected TLS profiles")
	}
	for i := 1; i < len(profiles); i++ {
		if profiles[i].MinMajor <= profiles[i-1].MinMajor {
			t.Errorf("Expected profiles oldest first, got %v", profiles)
		}
	}

	profiles[0].Name = "changed"
	if TLSProfiles()[0].Name == "changed" {
		t.Error("Expected TLSProfiles to return a copy")
	}
}
