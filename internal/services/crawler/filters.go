// -----------------------------------------------------------------------
// URL normalization and crawl frontier filtering
// -----------------------------------------------------------------------

package crawler

import (
	"net/url"
	"strings"
)

// File extensions that never hold crawlable documentation content.
var skippedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".gif", ".zip", ".exe"}

// Path segments that mark non-content routes.
var skippedPathSegments = []string{"/api/", "/assets/", "/static/"}

// NormalizeURL canonicalizes a URL for visited-set membership: lowercased
// scheme and host, fragment and query stripped, trailing slash removed from
// non-root paths. Two URLs that normalize equal are treated as the same page.
func NormalizeURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	parsed.Fragment = ""
	parsed.RawQuery = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String(), nil
}

// SameHost reports whether two URLs share a hostname. Crawls never leave the
// seed's host.
func SameHost(a, b string) bool {
	pa, err := url.Parse(a)
	if err != nil {
		return false
	}
	pb, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(pa.Hostname(), pb.Hostname())
}

// ShouldCrawl reports whether a normalized URL is worth visiting: not a
// binary asset and not a non-content route.
func ShouldCrawl(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)

	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	for _, segment := range skippedPathSegments {
		if strings.Contains(path, segment) {
			return false
		}
	}
	return true
}
