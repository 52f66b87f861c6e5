package processor

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/interfaces"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Characters permitted in cleaned text. Everything else is stripped
	// before chunking so boundary search operates on a known alphabet.
	disallowedRe = regexp.MustCompile(`[^\w\s.,!?;:\-()\[\]{}'"/@#$%&*+=<>|]`)
)

// Sentence and clause boundaries, in cut preference order. The chunker cuts a
// non-final window at the rightmost occurrence of the highest-priority
// boundary inside the trailing overlap region.
var boundaryChars = []byte{'.', '!', '?', '\n', ';', ':', ','}

// Service implements interfaces.TextProcessor with a whitespace-normalizing
// cleaner and a sliding-window chunker.
type Service struct {
	chunkSize    int
	chunkOverlap int
	minChunkSize int
	logger       arbor.ILogger
}

// NewService creates a text processor from chunking configuration.
func NewService(cfg common.ChunkingConfig, logger arbor.ILogger) *Service {
	if logger == nil {
		logger = common.GetLogger()
	}
	return &Service{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		minChunkSize: cfg.MinChunkSize,
		logger:       logger,
	}
}

// Clean collapses whitespace runs to single spaces and strips characters
// outside the processing character set.
func (s *Service) Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = disallowedRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Chunk splits text into overlapping windows of at most chunkSize bytes.
// Non-final windows are cut at the rightmost boundary character found inside
// the trailing overlap region; the next window starts overlap bytes before
// the cut, so every boundary region appears in both neighboring chunks.
// Pieces shorter than minChunkSize after trimming are dropped.
func (s *Service) Chunk(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= s.chunkSize {
		piece := strings.TrimSpace(text)
		if len(piece) < s.minChunkSize {
			return nil
		}
		return []string{piece}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		final := end >= len(text)
		if final {
			end = len(text)
		} else {
			end = s.findCut(text, start, end)
		}

		piece := strings.TrimSpace(text[start:end])
		if len(piece) >= s.minChunkSize {
			chunks = append(chunks, piece)
		}

		if final {
			break
		}

		next := end - s.chunkOverlap
		if next <= start {
			// Overlap would stall the window; step past the cut instead.
			next = end
		}
		start = next
	}

	return chunks
}

// findCut searches the trailing overlap region of the window [start,end) for
// the best boundary to cut at. Returns the exclusive cut position, which
// includes the boundary character itself.
func (s *Service) findCut(text string, start, end int) int {
	searchStart := end - s.chunkOverlap
	if searchStart < start {
		searchStart = start
	}
	region := text[searchStart:end]
	for _, b := range boundaryChars {
		if idx := strings.LastIndexByte(region, b); idx >= 0 {
			return searchStart + idx + 1
		}
	}
	return end
}

// ChunkSize returns the configured window size.
func (s *Service) ChunkSize() int { return s.chunkSize }

var _ interfaces.TextProcessor = (*Service)(nil)
