package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DomainFromURL extracts the host component from a URL.
// Returns an error for URLs without a host (relative paths, bare words).
func DomainFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %q: %w", rawURL, err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("URL %q has no host component", rawURL)
	}
	return parsed.Host, nil
}

// DomainKey converts a domain into a storage-safe key segment
// (dots and colons become underscores: "news.example.com" -> "news_example_com")
func DomainKey(domain string) string {
	replacer := strings.NewReplacer(".", "_", ":", "_")
	return replacer.Replace(domain)
}

// URLPattern builds the match pattern recorded with each scraper so that
// lookups by URL can fall back to pattern matching when the host differs
// (e.g. www-prefix variants resolved by redirects)
func URLPattern(domain string) string {
	return fmt.Sprintf("https?://%s/.*", regexp.QuoteMeta(domain))
}

// ResolveURL resolves a possibly-relative href against a base URL.
// Returns empty string when the href cannot produce an absolute http(s) URL.
func ResolveURL(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	return parsed.String()
}
