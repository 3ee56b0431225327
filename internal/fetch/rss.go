package fetch

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

// RSSFetcher expands a feed URL into articles by fetching each entry's
// linked page and attaching the feed's own metadata alongside.
type RSSFetcher struct {
	parser *gofeed.Parser
	web    *WebFetcher
	limit  int
	delay  time.Duration
}

// NewRSSFetcher builds a fetcher that takes at most limit entries per feed.
func NewRSSFetcher(web *WebFetcher, limit int) *RSSFetcher {
	if limit <= 0 {
		limit = 5
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &RSSFetcher{parser: parser, web: web, limit: limit}
}

// SetDelay throttles consecutive entry fetches within one feed.
func (f *RSSFetcher) SetDelay(d time.Duration) {
	f.delay = d
}

// Fetch parses the feed and fetches each entry's page, taking at most
// limit entries (the constructor default applies when limit <= 0). A feed
// that cannot be retrieved or parsed yields no articles rather than an
// error; the pipeline treats an empty slice as "feed contributed nothing".
func (f *RSSFetcher) Fetch(ctx context.Context, feedURL string, limit int, forceFresh bool) []models.Article {
	logger.Info().Str("feed", feedURL).Msg("Fetching RSS feed")

	if limit <= 0 {
		limit = f.limit
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		logger.Warn().Err(err).Str("feed", feedURL).Msg("Failed to parse feed")
		return nil
	}

	items := feed.Items
	if len(items) > limit {
		items = items[:limit]
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}

		if len(articles) > 0 && f.delay > 0 {
			select {
			case <-ctx.Done():
				return articles
			case <-time.After(f.delay):
			}
		}

		art := f.web.Fetch(ctx, item.Link, forceFresh)
		art.Kind = models.SourceRSS
		art.FeedTitle = feed.Title
		art.FeedSummary = item.Description
		if item.PublishedParsed != nil {
			art.FeedPublished = item.PublishedParsed.Format(time.RFC3339)
			if art.PublishedAt == nil {
				t := *item.PublishedParsed
				art.PublishedAt = &t
			}
		}
		if art.Title == "" || art.Title == "Error" {
			if item.Title != "" {
				art.Title = item.Title
			}
		}
		articles = append(articles, art)
	}

	logger.Info().Str("feed", feedURL).Int("articles", len(articles)).Msg("Feed expanded")
	return articles
}
