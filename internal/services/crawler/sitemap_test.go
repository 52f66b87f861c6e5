package crawler

import (
	"reflect"
	"testing"
)

const sampleSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://docs.example.com/intro</loc><lastmod>2025-01-01</lastmod></url>
  <url><loc>https://docs.example.com/guide/setup</loc></url>
  <url><loc> https://docs.example.com/blog/news </loc></url>
  <url><loc></loc></url>
</urlset>`

func TestParseSitemap(t *testing.T) {
	urls, err := parseSitemap(sampleSitemap)
	if err != nil {
		t.Fatalf("parseSitemap error: %v", err)
	}
	want := []string{
		"https://docs.example.com/intro",
		"https://docs.example.com/guide/setup",
		"https://docs.example.com/blog/news",
	}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("parseSitemap = %v, want %v", urls, want)
	}
}

func TestParseSitemapRejectsGarbage(t *testing.T) {
	if _, err := parseSitemap("not xml at all"); err == nil {
		t.Error("expected parse error for non-XML input")
	}
}

func TestFilterSitemapURLs(t *testing.T) {
	urls := []string{
		"https://docs.example.com/guide/setup",
		"https://docs.example.com/guide/advanced",
		"https://docs.example.com/blog/news",
		"https://docs.example.com/api/reference",
	}

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name: "no filters keeps everything",
			want: urls,
		},
		{
			name:    "include narrows",
			include: []string{"/guide/"},
			want:    []string{"https://docs.example.com/guide/setup", "https://docs.example.com/guide/advanced"},
		},
		{
			name:    "exclude drops",
			exclude: []string{"/blog/", "/api/"},
			want:    []string{"https://docs.example.com/guide/setup", "https://docs.example.com/guide/advanced"},
		},
		{
			name:    "include then exclude",
			include: []string{"example.com"},
			exclude: []string{"advanced"},
			want: []string{
				"https://docs.example.com/guide/setup",
				"https://docs.example.com/blog/news",
				"https://docs.example.com/api/reference",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterSitemapURLs(urls, tt.include, tt.exclude)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("filterSitemapURLs = %v, want %v", got, tt.want)
			}
		})
	}
}
