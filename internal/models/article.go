package models

import (
	"strings"
	"time"
)

// SourceKind identifies which fetcher produced an article.
type SourceKind string

const (
	SourceWeb    SourceKind = "web"
	SourceRSS    SourceKind = "rss"
	SourceVideo  SourceKind = "video"
	SourceSocial SourceKind = "social"
)

// Article is one fetched unit of content, normalized across source types.
// The URL is the identity key within a pipeline run.
type Article struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Body        string     `json:"content"`
	Kind        SourceKind `json:"source_kind"`
	WordCount   int        `json:"word_count"`
	FetchedAt   time.Time  `json:"fetched_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`

	// Fresh is true when the article was fetched live this run,
	// false when it was served from the freshness cache.
	Fresh bool `json:"is_fresh"`

	// Fallback marks synthesized placeholder content produced when live
	// retrieval failed but metadata allowed a usable body.
	Fallback bool `json:"fallback_content,omitempty"`

	// FetchError is set only on failure placeholders. An article with
	// FetchError and no Fallback carries no usable content.
	FetchError string `json:"fetch_error,omitempty"`

	// Feed metadata, set by the RSS fetcher.
	FeedTitle     string `json:"rss_title,omitempty"`
	FeedSummary   string `json:"rss_summary,omitempty"`
	FeedPublished string `json:"rss_published,omitempty"`

	// Video metadata, set by the video fetcher.
	Channel string   `json:"channel_title,omitempty"`
	Views   int64    `json:"view_count,omitempty"`
	Likes   int64    `json:"like_count,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Usable reports whether the article should flow into summarization.
// Failure placeholders are excluded unless they carry fallback content.
func (a Article) Usable() bool {
	return a.FetchError == "" || a.Fallback
}

// EffectiveTime is the best-available timestamp for freshness ordering:
// the publish time when known, the fetch time otherwise.
func (a Article) EffectiveTime() time.Time {
	if a.PublishedAt != nil && !a.PublishedAt.IsZero() {
		return *a.PublishedAt
	}
	return a.FetchedAt
}

// CountWords computes the whitespace-separated word count of the body.
func (a *Article) CountWords() {
	a.WordCount = len(strings.Fields(a.Body))
}

// SummarizedArticle is an Article plus its summary.
type SummarizedArticle struct {
	Article
	Summary string `json:"summary"`

	// SummaryFallback is true when the summary was produced locally
	// instead of by the LLM backend.
	SummaryFallback bool `json:"summary_is_fallback"`
}
