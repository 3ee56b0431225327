package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

const (
	// Bodies shorter than this are not worth prompting over.
	minBodyLength = 50
	// Word budget for the local extractive fallback.
	fallbackWords = 100
)

var markdownLink = regexp.MustCompile(`\[.+?\]\(.+?\)`)

// Summarizer turns fetched articles into per-article summaries, degrading
// to a local extractive summary when the LLM backend fails.
type Summarizer struct {
	client      Client
	temperature float64
	maxTokens   int
}

func New(client Client, temperature float64, maxTokens int) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &Summarizer{client: client, temperature: temperature, maxTokens: maxTokens}
}

// Summarize produces a summary for one article. The result is always
// usable; failures only flip the fallback flag.
func (s *Summarizer) Summarize(ctx context.Context, art models.Article) models.SummarizedArticle {
	out := models.SummarizedArticle{Article: art}

	if len(strings.TrimSpace(art.Body)) < minBodyLength {
		out.Summary = fmt.Sprintf("**%s**\n\n*Content too short or unavailable for summarization.*\n\n[Read more](%s)", art.Title, art.URL)
		out.SummaryFallback = true
		return out
	}

	maxTokens := s.maxTokens
	if art.Kind == models.SourceVideo {
		// Video summaries get more room, matching their structured prompt.
		maxTokens = s.maxTokens * 5 / 3
	}

	summary, err := s.client.Complete(ctx, "", buildPrompt(art), s.temperature, maxTokens)
	if err != nil {
		logger.Warn().Err(err).Str("url", art.URL).Msg("LLM summary failed, using local fallback")
		out.Summary = extractiveSummary(art)
		out.SummaryFallback = true
		return out
	}

	out.Summary = summary
	return out
}

// SummarizeAll processes items in order. One item's failure never aborts
// the rest; each is isolated behind its own fallback.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []models.Article) []models.SummarizedArticle {
	results := make([]models.SummarizedArticle, 0, len(articles))
	for _, art := range articles {
		results = append(results, s.Summarize(ctx, art))
	}
	return results
}

// extractiveSummary takes the first words of the body and appends a
// source attribution line, unless the excerpt already carries one.
func extractiveSummary(art models.Article) string {
	text := art.Body
	if len(text) > 2000 {
		text = text[:2000]
	}
	words := strings.Fields(text)
	short := strings.Join(words, " ")
	if len(words) > fallbackWords {
		short = strings.Join(words[:fallbackWords], " ") + "..."
	}

	if strings.Contains(short, "*Source:") || strings.Contains(short, "[Source:") || markdownLink.MatchString(short) {
		return short
	}

	if art.Kind == models.SourceVideo && art.Channel != "" {
		return fmt.Sprintf("%s\n\n*Source: [%s](%s) - %s*", short, art.Title, art.URL, art.Channel)
	}
	return fmt.Sprintf("%s\n\n*Source: [%s](%s)*", short, art.Title, art.URL)
}
