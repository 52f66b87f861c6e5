package sources

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/respondeo/internal/common"
)

const sampleManifest = `sources:
  - name: go-docs
    url: https://go.dev/doc/
    crawl: true
    max_pages: 25
    enabled: true
  - name: hugo-sitemap
    sitemap_url: https://gohugo.io/sitemap.xml
    include:
      - /documentation/
    exclude:
      - /news/
    enabled: false
  - name: broken
    url: https://example.com/
    sitemap_url: https://example.com/sitemap.xml
    enabled: true
`

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func TestLoadParsesManifests(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "docs.yaml", sampleManifest)

	svc := NewService(dir, common.GetLogger())
	sources, err := svc.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The entry with both url and sitemap_url is invalid and dropped.
	if len(sources) != 2 {
		t.Fatalf("expected 2 valid sources, got %d", len(sources))
	}
	if sources[0].Name != "go-docs" || !sources[0].Crawl || sources[0].MaxPages != 25 {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
	if sources[1].SitemapURL != "https://gohugo.io/sitemap.xml" {
		t.Errorf("unexpected second source: %+v", sources[1])
	}
	if len(sources[1].Include) != 1 || sources[1].Include[0] != "/documentation/" {
		t.Errorf("unexpected include filters: %v", sources[1].Include)
	}
}

func TestEnabledSourcesFiltersDisabled(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "docs.yaml", sampleManifest)

	svc := NewService(dir, common.GetLogger())
	enabled, err := svc.EnabledSources()
	if err != nil {
		t.Fatalf("EnabledSources failed: %v", err)
	}
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled source, got %d", len(enabled))
	}
	if enabled[0].Name != "go-docs" {
		t.Errorf("unexpected enabled source: %s", enabled[0].Name)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "missing"), common.GetLogger())
	sources, err := svc.Load()
	if err != nil {
		t.Fatalf("expected missing directory to be tolerated, got %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("expected no sources, got %d", len(sources))
	}
}

func TestLoadSkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.yaml", "sources: [\n")
	writeManifest(t, dir, "good.yaml", "sources:\n  - name: ok\n    url: https://example.com/\n    enabled: true\n")

	svc := NewService(dir, common.GetLogger())
	sources, err := svc.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sources) != 1 || sources[0].Name != "ok" {
		t.Errorf("expected only the valid manifest's source, got %+v", sources)
	}
}

func TestLoadIgnoresNonYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "readme.txt", "not a manifest")
	writeManifest(t, dir, "docs.yml", "sources:\n  - name: ok\n    url: https://example.com/\n    enabled: true\n")

	svc := NewService(dir, common.GetLogger())
	sources, err := svc.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %d", len(sources))
	}
}
