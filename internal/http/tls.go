package http

import (
	"sort"

	utls "github.com/refraction-networking/utls"
)

// TLSProfile pairs a Chrome release with the ClientHello it sends
type TLSProfile struct {
	Name     string
	MinMajor int
	ClientID utls.ClientHelloID
}

// tlsProfiles is sorted by MinMajor, ascending
var tlsProfiles = []TLSProfile{
	{Name: "Chrome_120", MinMajor: 120, ClientID: utls.HelloChrome_120},
	{Name: "Chrome_131", MinMajor: 131, ClientID: utls.HelloChrome_131},
	{Name: "Chrome_133", MinMajor: 133, ClientID: utls.HelloChrome_133},
}

// MatchTLSProfile returns the newest ClientHello profile not newer than the
// given Chrome major. Majors older than every profile get the oldest one.
func MatchTLSProfile(major int) TLSProfile {
	i := sort.Search(len(tlsProfiles), func(i int) bool {
		return tlsProfiles[i].MinMajor > major
	})
	if i == 0 {
		return tlsProfiles[0]
	}
	return tlsProfiles[i-1]
}

// TLSProfiles returns all known profiles
func TLSProfiles() []TLSProfile {
	out := make([]TLSProfile, len(tlsProfiles))
	copy(out, tlsProfiles)
	return out
}
