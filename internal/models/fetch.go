package models

import "time"

// FetchResult is the outcome of fetching a single URL.
type FetchResult struct {
	URL         string    `json:"url"`
	StatusCode  int       `json:"status_code"`
	ContentType string    `json:"content_type"`
	Body        string    `json:"body"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// CrawlPage is one page produced by a crawl: the normalized URL and its
// extracted text content.
type CrawlPage struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}
