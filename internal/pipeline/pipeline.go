package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkaraca/briefly/internal/fetch"
	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
)

// WebFetcher fetches one page, consulting the freshness cache.
type WebFetcher interface {
	Fetch(ctx context.Context, url string, forceFresh bool) models.Article
}

// RSSFetcher expands one feed into per-entry articles.
type RSSFetcher interface {
	Fetch(ctx context.Context, feedURL string, limit int, forceFresh bool) []models.Article
}

// RefFetcher turns a batch of platform references (video or social) into
// articles.
type RefFetcher interface {
	Fetch(ctx context.Context, refs []string) []models.Article
}

// Summarizer produces per-article summaries.
type Summarizer interface {
	SummarizeAll(ctx context.Context, articles []models.Article) []models.SummarizedArticle
}

// Assembler renders the digest document.
type Assembler interface {
	Assemble(ctx context.Context, items []models.SummarizedArticle, title string, profile models.StyleProfile) string
}

// Mailer delivers the digest. The response describes the outcome; it
// never carries a Go error because delivery failure does not fail a run.
type Mailer interface {
	SendDigest(ctx context.Context, content, subject string, recipients []string) models.EmailResponse
}

// Request enumerates the sources and options for one pipeline run.
type Request struct {
	WebURLs         []string
	RSSURLs         []string
	MaxItemsPerFeed int
	VideoRefs       []string
	SocialRefs      []string
	Recipients      []string
	Title           string
	Style           models.StyleProfile
	ForceFresh      bool
}

// Pipeline composes fetch, normalize, summarize, assemble, and deliver
// into one synchronous run. It holds no cross-run state; the freshness
// cache lives behind the fetchers.
type Pipeline struct {
	web        WebFetcher
	rss        RSSFetcher
	video      RefFetcher
	social     RefFetcher
	summarizer Summarizer
	assembler  Assembler
	mailer     Mailer
}

func New(web WebFetcher, rss RSSFetcher, video, social RefFetcher, summarizer Summarizer, assembler Assembler, mailer Mailer) *Pipeline {
	return &Pipeline{
		web:        web,
		rss:        rss,
		video:      video,
		social:     social,
		summarizer: summarizer,
		assembler:  assembler,
		mailer:     mailer,
	}
}

// Run executes one pipeline run and returns its result synchronously.
// The only failure path is zero usable content; every later stage
// degrades instead of failing.
func (p *Pipeline) Run(ctx context.Context, req Request) models.DigestResult {
	started := time.Now()
	logger.Info().
		Int("web", len(req.WebURLs)).
		Int("rss", len(req.RSSURLs)).
		Int("video", len(req.VideoRefs)).
		Int("social", len(req.SocialRefs)).
		Bool("force_fresh", req.ForceFresh).
		Msg("Pipeline run started")

	var webItems, rssItems, videoItems, socialItems []models.Article

	for _, url := range req.WebURLs {
		webItems = append(webItems, p.web.Fetch(ctx, url, req.ForceFresh))
	}
	for _, feedURL := range req.RSSURLs {
		rssItems = append(rssItems, p.rss.Fetch(ctx, feedURL, req.MaxItemsPerFeed, req.ForceFresh)...)
	}
	if len(req.VideoRefs) > 0 {
		videoItems = p.video.Fetch(ctx, req.VideoRefs)
	}
	if len(req.SocialRefs) > 0 {
		socialItems = p.social.Fetch(ctx, req.SocialRefs)
	}

	items := Normalize(webItems, rssItems, videoItems, socialItems)
	if len(items) == 0 {
		err := zeroContentError(req)
		logger.Error().Str("error", err).Msg("Pipeline run produced no content")
		return models.DigestResult{
			Success:     false,
			Error:       err,
			ProcessedAt: time.Now(),
		}
	}

	summarized := p.summarizer.SummarizeAll(ctx, items)
	content := p.assembler.Assemble(ctx, summarized, req.Title, req.Style)

	result := models.DigestResult{
		Success:       true,
		Articles:      summarized,
		DigestContent: content,
		ProcessedAt:   time.Now(),
	}

	if len(req.Recipients) > 0 {
		resp := p.mailer.SendDigest(ctx, content, req.Title, req.Recipients)
		result.EmailResponse = &resp
	} else {
		result.EmailResponse = &models.EmailResponse{Message: "no recipients specified, email skipped"}
	}

	logger.Info().
		Int("articles", len(summarized)).
		Dur("elapsed", time.Since(started)).
		Msg("Pipeline run finished")
	return result
}

// zeroContentError describes which source categories were attempted so
// callers can tell an empty request from a run where everything failed.
func zeroContentError(req Request) string {
	var attempted []string
	if n := len(req.WebURLs); n > 0 {
		attempted = append(attempted, fmt.Sprintf("web (%d)", n))
	}
	if n := len(req.RSSURLs); n > 0 {
		attempted = append(attempted, fmt.Sprintf("rss (%d)", n))
	}
	if n := len(req.VideoRefs); n > 0 {
		attempted = append(attempted, fmt.Sprintf("video (%d)", n))
	}
	if n := len(req.SocialRefs); n > 0 {
		attempted = append(attempted, fmt.Sprintf("social (%d)", n))
	}
	if len(attempted) == 0 {
		return "no content sources specified"
	}
	return "no usable content was fetched from the attempted sources: " + strings.Join(attempted, ", ")
}

// DefaultRequest returns a request with the documented defaults applied:
// a fresh fetch, the default style, and a dated title.
func DefaultRequest() Request {
	return Request{
		MaxItemsPerFeed: 5,
		Title:           "Content Digest - " + time.Now().Format("January 2, 2006"),
		Style:           models.DefaultStyle,
		ForceFresh:      true,
	}
}

var (
	_ WebFetcher = (*fetch.WebFetcher)(nil)
	_ RSSFetcher = (*fetch.RSSFetcher)(nil)
	_ RefFetcher = (*fetch.VideoFetcher)(nil)
	_ RefFetcher = (*fetch.SocialFetcher)(nil)
)
