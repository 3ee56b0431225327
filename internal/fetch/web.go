package fetch

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/dkaraca/briefly/internal/cache"
	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
	"github.com/dkaraca/briefly/internal/utils"
)

// bodyCap bounds the extracted text per page.
const bodyCap = 5000

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// WebFetcher retrieves and extracts web pages, consulting the freshness
// cache unless the caller forces a live fetch. It never returns an error:
// failures come back as diagnostic-bearing placeholder articles.
type WebFetcher struct {
	client *resty.Client
	cache  *cache.Cache
}

// NewWebFetcher wires an HTTP client with the given timeout over the cache.
func NewWebFetcher(c *cache.Cache, timeout time.Duration) *WebFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WebFetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)),
		cache: c,
	}
}

// Fetch retrieves one URL. With forceFresh false a valid cache entry is
// returned as-is with Fresh=false; otherwise the page is scraped live,
// cached, and returned with Fresh=true.
func (f *WebFetcher) Fetch(ctx context.Context, url string, forceFresh bool) models.Article {
	key := utils.ShortHash(url)
	if !forceFresh && f.cache != nil {
		if art, ok := f.cache.Get(ctx, key); ok {
			logger.Info().Str("url", url).Msg("Using cached content")
			art.Fresh = false
			return art
		}
	}

	art := f.scrape(ctx, url)
	if art.FetchError == "" && f.cache != nil {
		f.cache.Set(ctx, key, art)
	}
	return art
}

func (f *WebFetcher) scrape(ctx context.Context, url string) models.Article {
	logger.Info().Str("url", url).Msg("Scraping URL")

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return failureArticle(url, models.SourceWeb, classifyFetchError(url, 0, err))
	}
	if resp.StatusCode() != http.StatusOK {
		return failureArticle(url, models.SourceWeb, classifyFetchError(url, resp.StatusCode(), nil))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return failureArticle(url, models.SourceWeb,
			fmt.Sprintf("Failed to parse content from %s: %v", url, err))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	publishedAt := extractPublishDate(doc)

	// Drop chrome before extracting text.
	doc.Find("script, style, nav, footer, header, aside").Remove()

	var content string
	main := doc.Find("main, article, div.content, div.post, div.entry").First()
	if main.Length() > 0 {
		content = main.Text()
	} else {
		content = doc.Find("body").Text()
	}
	content = strings.Join(strings.Fields(content), " ")

	if len(content) > bodyCap {
		content = content[:bodyCap] + "..."
	}

	art := models.Article{
		URL:         url,
		Title:       title,
		Body:        content,
		Kind:        models.SourceWeb,
		FetchedAt:   time.Now(),
		PublishedAt: publishedAt,
		Fresh:       true,
	}
	art.CountWords()
	return art
}

// extractPublishDate looks for the common publish-time markers.
func extractPublishDate(doc *goquery.Document) *time.Time {
	var raw string

	doc.Find(`meta[property="article:published_time"], meta[property="article:modified_time"], meta[property="og:pubdate"], meta[name="pubdate"]`).
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr("content"); ok && v != "" {
				raw = v
				return false
			}
			return true
		})

	if raw == "" {
		if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			raw = v
		}
	}
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// classifyFetchError maps common failure classes to human-readable
// diagnostics so downstream fallback generation can be class-aware.
func classifyFetchError(url string, status int, err error) string {
	switch {
	case status == http.StatusForbidden:
		return fmt.Sprintf("Unfortunately, the article URL provided (%s) is not accessible due to a 403 Forbidden error. The website is likely blocking automated scraping attempts.", url)
	case status == http.StatusNotFound:
		return fmt.Sprintf("The requested URL (%s) could not be found. The page may have been moved, deleted, or the URL may be incorrect.", url)
	case status != 0:
		return fmt.Sprintf("Failed to scrape content from %s: unexpected status code %d", url, status)
	case err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout"):
		return fmt.Sprintf("The request to %s timed out. The website may be experiencing high traffic or connectivity issues.", url)
	default:
		return fmt.Sprintf("Failed to scrape content from %s: %v", url, err)
	}
}

// failureArticle builds the placeholder returned when a fetch fails. The
// diagnostic lands in the body so downstream stages can surface it.
func failureArticle(url string, kind models.SourceKind, diagnostic string) models.Article {
	logger.Error().Str("url", url).Str("diagnostic", diagnostic).Msg("Fetch failed")
	return models.Article{
		URL:        url,
		Title:      "Error",
		Body:       diagnostic,
		Kind:       kind,
		FetchedAt:  time.Now(),
		Fresh:      true,
		FetchError: diagnostic,
	}
}
