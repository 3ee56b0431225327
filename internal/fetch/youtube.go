package fetch

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
	"github.com/dkaraca/briefly/internal/retry"
)

// VideoMeta holds what the platform's data API reports about one video.
type VideoMeta struct {
	Title        string
	Description  string
	ChannelTitle string
	ViewCount    int64
	LikeCount    int64
	PublishedAt  *time.Time
	Tags         []string
}

// MetadataAPI is the platform data API surface the video fetcher needs.
type MetadataAPI interface {
	VideoMetadata(ctx context.Context, videoID string) (VideoMeta, error)
	LatestVideos(ctx context.Context, channelURL string, max int) ([]string, error)
}

// TranscriptAPI extracts a plain-text transcript for a video.
type TranscriptAPI interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// ErrNoTranscript reports that a video has no extractable transcript.
// Retrying cannot fix it.
var ErrNoTranscript = errors.New("transcript not available")

var (
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/v/([^&\n?#]+)`),
		regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
	}
	bareVideoID     = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelPatterns = []*regexp.Regexp{
		regexp.MustCompile(`youtube\.com/@[\w-]+`),
		regexp.MustCompile(`youtube\.com/c/[\w-]+`),
		regexp.MustCompile(`youtube\.com/channel/[\w-]+`),
		regexp.MustCompile(`youtube\.com/user/[\w-]+`),
	}
)

// ExtractVideoID pulls the 11-character video ID out of the common URL
// shapes, or accepts a bare ID.
func ExtractVideoID(ref string) string {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	if bareVideoID.MatchString(ref) {
		return ref
	}
	return ""
}

// IsChannel reports whether the reference points at a channel rather than
// a single video.
func IsChannel(ref string) bool {
	for _, p := range channelPatterns {
		if p.MatchString(ref) {
			return true
		}
	}
	return false
}

// VideoFetcher turns video and channel references into articles. Channel
// references are resolved to their latest uploads first; transcripts are
// fetched with bounded retries, and a failed transcript still yields a
// usable article synthesized from metadata.
type VideoFetcher struct {
	meta        MetadataAPI
	transcripts TranscriptAPI
	retryCfg    retry.Config
	perChannel  int
}

// NewVideoFetcher builds a fetcher over the given API clients.
func NewVideoFetcher(meta MetadataAPI, transcripts TranscriptAPI) *VideoFetcher {
	return &VideoFetcher{
		meta:        meta,
		transcripts: transcripts,
		retryCfg:    retry.Config{MaxRetries: 2, BaseDelay: time.Second},
		perChannel:  3,
	}
}

// Fetch processes a mixed list of video and channel references. Channels
// that fail to resolve contribute zero items; they never abort the run.
func (f *VideoFetcher) Fetch(ctx context.Context, refs []string) []models.Article {
	var videoRefs []string
	for _, ref := range refs {
		if IsChannel(ref) {
			urls, err := f.meta.LatestVideos(ctx, ref, f.perChannel)
			if err != nil {
				logger.Warn().Err(err).Str("channel", ref).Msg("Channel resolution failed")
				continue
			}
			logger.Info().Str("channel", ref).Int("videos", len(urls)).Msg("Resolved channel")
			videoRefs = append(videoRefs, urls...)
		} else {
			videoRefs = append(videoRefs, ref)
		}
	}

	var articles []models.Article
	for _, ref := range videoRefs {
		videoID := ExtractVideoID(ref)
		if videoID == "" {
			logger.Warn().Str("ref", ref).Msg("Skipping unrecognized video reference")
			continue
		}
		articles = append(articles, f.fetchVideo(ctx, ref, videoID))
	}
	return articles
}

func (f *VideoFetcher) fetchVideo(ctx context.Context, ref, videoID string) models.Article {
	url := "https://www.youtube.com/watch?v=" + videoID

	meta, err := f.meta.VideoMetadata(ctx, videoID)
	if err != nil {
		logger.Warn().Err(err).Str("video", videoID).Msg("Metadata lookup failed")
		meta = VideoMeta{Title: "YouTube Video " + videoID, ChannelTitle: "Unknown Channel"}
	}

	art := models.Article{
		URL:         url,
		Title:       meta.Title,
		Kind:        models.SourceVideo,
		FetchedAt:   time.Now(),
		PublishedAt: meta.PublishedAt,
		Fresh:       true,
		Channel:     meta.ChannelTitle,
		Views:       meta.ViewCount,
		Likes:       meta.LikeCount,
		Tags:        meta.Tags,
	}

	var transcript string
	err = retry.WithBackoff(ctx, f.retryCfg, func(ctx context.Context) error {
		text, terr := f.transcripts.Transcript(ctx, videoID)
		if terr != nil {
			if errors.Is(terr, ErrNoTranscript) {
				return retry.Permanent(terr)
			}
			return terr
		}
		transcript = text
		return nil
	})

	if err != nil {
		logger.Warn().Err(err).Str("video", videoID).Msg("Transcript extraction failed, using metadata fallback")
		art.Body = videoFallbackBody(url, meta)
		art.Fallback = true
	} else {
		art.Body = transcript
	}
	art.CountWords()
	return art
}

// videoFallbackBody synthesizes article content from metadata when the
// transcript cannot be extracted.
func videoFallbackBody(url string, meta VideoMeta) string {
	desc := meta.Description
	if len(desc) > 800 {
		desc = desc[:800] + "..."
	}
	topics := "Topics will be available when transcript is accessible"
	if len(meta.Tags) > 0 {
		tags := meta.Tags
		if len(tags) > 10 {
			tags = tags[:10]
		}
		topics = strings.Join(tags, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", meta.Title)
	fmt.Fprintf(&b, "**Channel**: %s\n", meta.ChannelTitle)
	fmt.Fprintf(&b, "**Views**: %d views\n", meta.ViewCount)
	fmt.Fprintf(&b, "**Likes**: %d likes\n", meta.LikeCount)
	fmt.Fprintf(&b, "**Video URL**: %s\n\n", url)
	fmt.Fprintf(&b, "## Description\n%s\n\n", desc)
	fmt.Fprintf(&b, "## Key Topics\n%s\n\n", topics)
	fmt.Fprintf(&b, "## Note\nThe transcript for this video could not be extracted, so this entry is based on the video's metadata from the %s channel.", meta.ChannelTitle)
	return b.String()
}

// --- Data API v3 client ---

const youtubeAPIBase = "https://www.googleapis.com/youtube/v3"

// YouTubeDataAPI implements MetadataAPI against the YouTube Data API v3.
type YouTubeDataAPI struct {
	client *resty.Client
	apiKey string
}

func NewYouTubeDataAPI(apiKey string, timeout time.Duration) *YouTubeDataAPI {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YouTubeDataAPI{
		client: resty.New().SetBaseURL(youtubeAPIBase).SetTimeout(timeout),
		apiKey: apiKey,
	}
}

// SetBaseURL points the client at a different API host. Used in tests.
func (a *YouTubeDataAPI) SetBaseURL(u string) { a.client.SetBaseURL(u) }

type ytVideoListResponse struct {
	Items []struct {
		Snippet struct {
			Title        string   `json:"title"`
			Description  string   `json:"description"`
			ChannelTitle string   `json:"channelTitle"`
			PublishedAt  string   `json:"publishedAt"`
			Tags         []string `json:"tags"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
			LikeCount string `json:"likeCount"`
		} `json:"statistics"`
	} `json:"items"`
}

func (a *YouTubeDataAPI) VideoMetadata(ctx context.Context, videoID string) (VideoMeta, error) {
	if a.apiKey == "" {
		return VideoMeta{}, errors.New("youtube data api key not configured")
	}

	var out ytVideoListResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part": "snippet,statistics",
			"id":   videoID,
			"key":  a.apiKey,
		}).
		SetResult(&out).
		Get("/videos")
	if err != nil {
		return VideoMeta{}, fmt.Errorf("video metadata request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return VideoMeta{}, fmt.Errorf("video metadata request: status %d", resp.StatusCode())
	}
	if len(out.Items) == 0 {
		return VideoMeta{}, fmt.Errorf("no metadata found for video %s", videoID)
	}

	item := out.Items[0]
	meta := VideoMeta{
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		Tags:         item.Snippet.Tags,
	}
	meta.ViewCount, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	meta.LikeCount, _ = strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		meta.PublishedAt = &t
	}
	return meta, nil
}

func (a *YouTubeDataAPI) LatestVideos(ctx context.Context, channelURL string, max int) ([]string, error) {
	if a.apiKey == "" {
		return nil, errors.New("youtube data api key not configured")
	}

	channelID, err := a.resolveChannelID(ctx, channelURL)
	if err != nil {
		return nil, err
	}

	var channels struct {
		Items []struct {
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part": "contentDetails",
			"id":   channelID,
			"key":  a.apiKey,
		}).
		SetResult(&channels).
		Get("/channels")
	if err != nil {
		return nil, fmt.Errorf("channel lookup: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel not found: %s", channelID)
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	var playlist struct {
		Items []struct {
			Snippet struct {
				ResourceID struct {
					VideoID string `json:"videoId"`
				} `json:"resourceId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	resp, err = a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"playlistId": uploads,
			"maxResults": strconv.Itoa(max),
			"key":        a.apiKey,
		}).
		SetResult(&playlist).
		Get("/playlistItems")
	if err != nil {
		return nil, fmt.Errorf("playlist lookup: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("playlist lookup: status %d", resp.StatusCode())
	}

	urls := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		urls = append(urls, "https://www.youtube.com/watch?v="+item.Snippet.ResourceID.VideoID)
	}
	return urls, nil
}

// resolveChannelID maps the channel URL shapes to a channel ID. The
// /channel/ form carries the ID directly; handles and legacy usernames go
// through a search lookup.
func (a *YouTubeDataAPI) resolveChannelID(ctx context.Context, channelURL string) (string, error) {
	if i := strings.Index(channelURL, "/channel/"); i >= 0 {
		id := channelURL[i+len("/channel/"):]
		id = strings.SplitN(id, "/", 2)[0]
		id = strings.SplitN(id, "?", 2)[0]
		return id, nil
	}

	var name string
	for _, marker := range []string{"/@", "/c/", "/user/"} {
		if i := strings.Index(channelURL, marker); i >= 0 {
			name = channelURL[i+len(marker):]
			name = strings.SplitN(name, "/", 2)[0]
			name = strings.SplitN(name, "?", 2)[0]
			break
		}
	}
	if name == "" {
		return "", fmt.Errorf("unrecognized channel URL: %s", channelURL)
	}

	var search struct {
		Items []struct {
			Snippet struct {
				ChannelID string `json:"channelId"`
			} `json:"snippet"`
		} `json:"items"`
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":       "snippet",
			"q":          name,
			"type":       "channel",
			"maxResults": "1",
			"key":        a.apiKey,
		}).
		SetResult(&search).
		Get("/search")
	if err != nil {
		return "", fmt.Errorf("channel search: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || len(search.Items) == 0 {
		return "", fmt.Errorf("no channel found for %q", name)
	}
	return search.Items[0].Snippet.ChannelID, nil
}

// --- timed-text transcript client ---

// TimedTextAPI fetches transcripts from the public timedtext endpoint.
type TimedTextAPI struct {
	client *resty.Client
}

func NewTimedTextAPI(timeout time.Duration) *TimedTextAPI {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TimedTextAPI{
		client: resty.New().
			SetBaseURL("https://www.youtube.com").
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
	}
}

// SetBaseURL points the client at a different host. Used in tests.
func (t *TimedTextAPI) SetBaseURL(u string) { t.client.SetBaseURL(u) }

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (t *TimedTextAPI) Transcript(ctx context.Context, videoID string) (string, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"v": videoID, "lang": "en"}).
		Get("/api/timedtext")
	if err != nil {
		return "", fmt.Errorf("timedtext request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", ErrNoTranscript
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("timedtext request: status %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		// The endpoint returns 200 with an empty body for captionless videos.
		return "", ErrNoTranscript
	}

	var doc timedText
	if err := xml.Unmarshal(resp.Body(), &doc); err != nil {
		return "", fmt.Errorf("timedtext parse: %w", err)
	}
	if len(doc.Texts) == 0 {
		return "", ErrNoTranscript
	}

	parts := make([]string, 0, len(doc.Texts))
	for _, line := range doc.Texts {
		if s := strings.TrimSpace(html.UnescapeString(line.Value)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}
