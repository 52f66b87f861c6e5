// -------------------------------------------------------------------------
// Seed manifest loading
// -------------------------------------------------------------------------

package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondeo/internal/models"
	"gopkg.in/yaml.v3"
)

// Service loads seed source manifests from a directory. Manifest files are
// YAML documents with a top-level sources list; invalid entries are logged
// and skipped rather than failing the whole load.
type Service struct {
	dir    string
	logger arbor.ILogger
}

// NewService creates a new seed manifest loader.
func NewService(dir string, logger arbor.ILogger) *Service {
	return &Service{
		dir:    dir,
		logger: logger,
	}
}

// Load reads all manifest files in the configured directory and returns the
// valid seed sources. A missing directory is not an error; it means no seeds
// are configured.
func (s *Service) Load() ([]models.SeedSource, error) {
	if s.dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().
				Str("dir", s.dir).
				Msg("Sources directory does not exist, no seeds configured")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sources directory %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var sources []models.SeedSource
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		loaded, err := s.loadManifest(path)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("file", path).
				Msg("Skipping unreadable manifest")
			continue
		}
		sources = append(sources, loaded...)
	}

	s.logger.Info().
		Str("dir", s.dir).
		Int("files", len(names)).
		Int("sources", len(sources)).
		Msg("Seed manifests loaded")

	return sources, nil
}

// EnabledSources returns only the seeds marked enabled.
func (s *Service) EnabledSources() ([]models.SeedSource, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}

	enabled := make([]models.SeedSource, 0, len(all))
	for _, src := range all {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled, nil
}

// loadManifest parses one manifest file, dropping invalid entries.
func (s *Service) loadManifest(path string) ([]models.SeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest models.SeedManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	valid := make([]models.SeedSource, 0, len(manifest.Sources))
	for _, src := range manifest.Sources {
		if err := src.Validate(); err != nil {
			s.logger.Warn().
				Err(err).
				Str("file", path).
				Str("source", src.Name).
				Msg("Skipping invalid seed source")
			continue
		}
		valid = append(valid, src)
	}

	return valid, nil
}
