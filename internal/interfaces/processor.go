package interfaces

// TextProcessor cleans raw extracted text and splits it into chunks.
type TextProcessor interface {
	// Clean normalizes whitespace and strips characters outside the
	// processing character set.
	Clean(text string) string

	// Chunk splits cleaned text into overlapping windows. Returned strings
	// are ordered by position in the source text.
	Chunk(text string) []string
}
