package agent

import (
	"fmt"
	"strings"

	"github.com/ternarybob/respondeo/internal/interfaces"
	"github.com/ternarybob/respondeo/internal/models"
)

// groundedSystemPrompt constrains the generation model to the retrieved
// content. Answers outside the supplied documents are explicitly disallowed.
const groundedSystemPrompt = `You are a helpful AI assistant that answers questions using a knowledge base of ingested web documents.

When answering questions:
1. Answer ONLY from the provided context documents - do not use outside knowledge
2. If the context does not contain the answer, say so explicitly rather than guessing
3. Cite your sources by mentioning the source URL of each document you used
4. Be concise and accurate in your responses
5. Format your responses in clear, readable Markdown

If documents contradict each other, acknowledge the conflict and present both versions.`

// formatChunk renders one retrieved chunk as a labeled context document.
func formatChunk(chunk models.RetrievedChunk, index int, maxContent int, includeScore bool) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("=== Document %d ===", index+1))

	if chunk.SourceURL != "" {
		parts = append(parts, fmt.Sprintf("Source: %s", chunk.SourceURL))
	}
	if title, ok := chunk.Metadata["title"].(string); ok && title != "" {
		parts = append(parts, fmt.Sprintf("Title: %s", title))
	}
	if includeScore {
		parts = append(parts, fmt.Sprintf("Relevance: %.3f", chunk.Score))
	}

	parts = append(parts, fmt.Sprintf("Content:\n%s", truncateContent(chunk.Content, maxContent)))
	parts = append(parts, "")

	return strings.Join(parts, "\n")
}

// buildContextText assembles retrieved chunks into the prompt context block.
func buildContextText(chunks []models.RetrievedChunk, maxContent int, includeScores bool) string {
	if len(chunks) == 0 {
		return ""
	}

	var parts []string
	parts = append(parts, "KNOWLEDGE BASE CONTEXT")
	parts = append(parts, "======================")
	parts = append(parts, "")

	for i, chunk := range chunks {
		parts = append(parts, formatChunk(chunk, i, maxContent, includeScores))
	}

	parts = append(parts, "======================")
	parts = append(parts, "END OF CONTEXT")
	parts = append(parts, "")

	return strings.Join(parts, "\n")
}

// exchange is one completed user/assistant turn.
type exchange struct {
	User      string
	Assistant string
}

// buildMessages constructs the full message sequence: grounding system prompt
// augmented with the retrieved context, prior exchanges rendered as labeled
// turns (most recent last), then the current question.
func buildMessages(question string, contextText string, history []exchange) []interfaces.Message {
	systemPrompt := groundedSystemPrompt
	if contextText != "" {
		systemPrompt = fmt.Sprintf("%s\n\n%s", systemPrompt, contextText)
	} else {
		systemPrompt = fmt.Sprintf("%s\n\nNo context documents were retrieved for this question. State that the knowledge base has no relevant content.", systemPrompt)
	}

	messages := []interfaces.Message{
		{Role: "system", Content: systemPrompt},
	}

	for _, turn := range history {
		messages = append(messages, interfaces.Message{Role: "user", Content: turn.User})
		messages = append(messages, interfaces.Message{Role: "assistant", Content: turn.Assistant})
	}

	messages = append(messages, interfaces.Message{Role: "user", Content: question})

	return messages
}

// truncateContent truncates content to the specified length
func truncateContent(content string, maxLength int) string {
	if maxLength <= 0 || len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "..."
}
