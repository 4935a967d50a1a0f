package platform

import (
	"net/url"
	"strings"
)

type Platform string

const (
	YouTube   Platform = "youtube"
	Instagram Platform = "instagram"
	TikTok    Platform = "tiktok"
)

// Manual is only valid as a recipe source, never as a scraping target.
const Manual Platform = "manual"

var signatures = []struct {
	platform Platform
	hosts    []string
}{
	{platform: YouTube, hosts: []string{"youtube.com", "youtu.be"}},
	{platform: Instagram, hosts: []string{"instagram.com"}},
	{platform: TikTok, hosts: []string{"tiktok.com"}},
}

// specialSchemes need a host to form a valid absolute URL.
var specialSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ws":    {},
	"wss":   {},
	"ftp":   {},
}

// Supported reports whether p is one of the scrapeable platforms.
func (p Platform) Supported() bool {
	switch p {
	case YouTube, Instagram, TikTok:
		return true
	default:
		return false
	}
}

// ValidSource reports whether p may appear as a recipe source platform.
func (p Platform) ValidSource() bool {
	return p == Manual || p.Supported()
}

func (p Platform) String() string {
	return string(p)
}

// Parse maps a free-form tag to a supported platform.
func Parse(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Supported() {
		return "", false
	}
	return p, true
}

// IsValidURL reports whether s parses as an absolute URL, independent of
// the platform it points to.
func IsValidURL(s string) bool {
	_, ok := parseAbsolute(s)
	return ok
}

// Classify returns the platform a URL belongs to. Unparseable input and
// unknown hosts both yield ok=false.
func Classify(s string) (Platform, bool) {
	u, ok := parseAbsolute(s)
	if !ok {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", false
	}

	for _, sig := range signatures {
		for _, h := range sig.hosts {
			if strings.Contains(host, h) {
				return sig.platform, true
			}
		}
	}
	return "", false
}

func parseAbsolute(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if _, special := specialSchemes[strings.ToLower(u.Scheme)]; special && u.Host == "" {
		return withAuthority(u.Scheme, s[len(u.Scheme)+1:])
	}
	return u, true
}

// withAuthority reads a special-scheme URL with missing or extra slashes
// after the colon, e.g. "http:youtube.com/watch", the way browsers do:
// the first path segment becomes the host.
func withAuthority(scheme, rest string) (*url.URL, bool) {
	rest = strings.TrimLeft(rest, `/\`)
	if rest == "" {
		return nil, false
	}
	u, err := url.Parse(scheme + "://" + rest)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}
