package models

import (
	"fmt"
	"strings"
)

// SeedSource is one entry in a YAML seed manifest: a starting point for
// crawling or a sitemap to expand. Manifests are loaded from the configured
// sources directory at startup and by the re-ingestion scheduler.
type SeedSource struct {
	Name       string   `yaml:"name" json:"name"`
	URL        string   `yaml:"url,omitempty" json:"url,omitempty"`
	SitemapURL string   `yaml:"sitemap_url,omitempty" json:"sitemap_url,omitempty"`
	Include    []string `yaml:"include,omitempty" json:"include,omitempty"`   // Substring filters, sitemap only
	Exclude    []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`   // Substring filters, sitemap only
	MaxPages   int      `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`
	Crawl      bool     `yaml:"crawl,omitempty" json:"crawl,omitempty"` // Follow same-domain links from URL
	Enabled    bool     `yaml:"enabled" json:"enabled"`
}

// SeedManifest is the top-level document of one manifest file.
type SeedManifest struct {
	Sources []SeedSource `yaml:"sources" json:"sources"`
}

// Validate checks that a source names exactly one entry point.
func (s *SeedSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("source has no name")
	}
	hasURL := s.URL != ""
	hasSitemap := s.SitemapURL != ""
	if hasURL == hasSitemap {
		return fmt.Errorf("source %q must set exactly one of url or sitemap_url", s.Name)
	}
	if len(s.Include) > 0 && !hasSitemap {
		return fmt.Errorf("source %q sets include filters without a sitemap_url", s.Name)
	}
	return nil
}
