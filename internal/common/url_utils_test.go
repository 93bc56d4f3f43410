package common

import (
	"net/url"
	"testing"
)

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"plain https", "https://example.com/a/b", "example.com", false},
		{"subdomain", "https://news.example.com/articles", "news.example.com", false},
		{"with port", "http://localhost:8085/page", "localhost:8085", false},
		{"no host", "/relative/path", "", true},
		{"bare word", "example", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DomainFromURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DomainFromURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DomainFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDomainKey(t *testing.T) {
	if got := DomainKey("news.example.com"); got != "news_example_com" {
		t.Errorf("DomainKey = %q, want news_example_com", got)
	}
	if got := DomainKey("localhost:8085"); got != "localhost_8085" {
		t.Errorf("DomainKey = %q, want localhost_8085", got)
	}
}

func TestURLPattern(t *testing.T) {
	pattern := URLPattern("example.com")
	if pattern != `https?://example\.com/.*` {
		t.Errorf("URLPattern = %q", pattern)
	}
}

func TestResolveURL(t *testing.T) {
	base, _ := url.Parse("https://example.com/blog/")

	tests := []struct {
		name string
		href string
		want string
	}{
		{"absolute", "https://other.com/x", "https://other.com/x"},
		{"relative", "post-1", "https://example.com/blog/post-1"},
		{"root relative", "/about", "https://example.com/about"},
		{"mailto", "mailto:a@b.com", ""},
		{"javascript", "javascript:void(0)", ""},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveURL(tt.href, base); got != tt.want {
				t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}
