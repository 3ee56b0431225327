package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dkaraca/briefly/internal/models"
	"github.com/dkaraca/briefly/internal/retry"
)

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		ref  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/not-youtube", ""},
		{"short", ""},
	}
	for _, tc := range cases {
		if got := ExtractVideoID(tc.ref); got != tc.want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}

func TestIsChannel(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"https://www.youtube.com/@somecreator", true},
		{"https://www.youtube.com/c/SomeChannel", true},
		{"https://www.youtube.com/channel/UCabc123", true},
		{"https://www.youtube.com/user/legacyname", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", false},
	}
	for _, tc := range cases {
		if got := IsChannel(tc.ref); got != tc.want {
			t.Errorf("IsChannel(%q) = %v, want %v", tc.ref, got, tc.want)
		}
	}
}

type fakeMetadataAPI struct {
	meta       map[string]VideoMeta
	channels   map[string][]string
	channelErr error
}

func (f *fakeMetadataAPI) VideoMetadata(ctx context.Context, videoID string) (VideoMeta, error) {
	if m, ok := f.meta[videoID]; ok {
		return m, nil
	}
	return VideoMeta{}, errors.New("no metadata")
}

func (f *fakeMetadataAPI) LatestVideos(ctx context.Context, channelURL string, max int) ([]string, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return f.channels[channelURL], nil
}

type fakeTranscriptAPI struct {
	transcripts map[string]string
	err         error
	calls       int
}

func (f *fakeTranscriptAPI) Transcript(ctx context.Context, videoID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if text, ok := f.transcripts[videoID]; ok {
		return text, nil
	}
	return "", ErrNoTranscript
}

func fastVideoFetcher(meta MetadataAPI, transcripts TranscriptAPI) *VideoFetcher {
	f := NewVideoFetcher(meta, transcripts)
	f.retryCfg = retry.Config{MaxRetries: 2, BaseDelay: time.Millisecond}
	return f
}

func TestVideoFetchWithTranscript(t *testing.T) {
	pub := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	meta := &fakeMetadataAPI{meta: map[string]VideoMeta{
		"dQw4w9WgXcQ": {Title: "A Great Talk", ChannelTitle: "TalksChannel", ViewCount: 1200, LikeCount: 80, PublishedAt: &pub},
	}}
	tr := &fakeTranscriptAPI{transcripts: map[string]string{
		"dQw4w9WgXcQ": "welcome to the talk about distributed systems",
	}}

	f := fastVideoFetcher(meta, tr)
	articles := f.Fetch(context.Background(), []string{"https://youtu.be/dQw4w9WgXcQ"})

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	art := articles[0]
	if art.Kind != models.SourceVideo {
		t.Errorf("got kind %q, want video", art.Kind)
	}
	if art.Title != "A Great Talk" {
		t.Errorf("got title %q", art.Title)
	}
	if art.Body != "welcome to the talk about distributed systems" {
		t.Errorf("got body %q", art.Body)
	}
	if art.Fallback {
		t.Error("transcript success must not be flagged as fallback")
	}
	if art.Channel != "TalksChannel" || art.Views != 1200 {
		t.Errorf("metadata not attached: %+v", art)
	}
	if art.PublishedAt == nil || !art.PublishedAt.Equal(pub) {
		t.Errorf("publish time not attached: %v", art.PublishedAt)
	}
}

func TestVideoFetchFallsBackToMetadata(t *testing.T) {
	meta := &fakeMetadataAPI{meta: map[string]VideoMeta{
		"dQw4w9WgXcQ": {
			Title:        "No Captions Here",
			Description:  "A video without captions.",
			ChannelTitle: "SilentChannel",
			Tags:         []string{"go", "testing"},
		},
	}}
	tr := &fakeTranscriptAPI{}

	f := fastVideoFetcher(meta, tr)
	articles := f.Fetch(context.Background(), []string{"dQw4w9WgXcQ"})

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	art := articles[0]
	if !art.Fallback {
		t.Error("metadata-synthesized body must be flagged as fallback")
	}
	if art.FetchError != "" {
		t.Error("fallback article must still be usable, not an error placeholder")
	}
	for _, want := range []string{"No Captions Here", "SilentChannel", "go, testing", "A video without captions."} {
		if !strings.Contains(art.Body, want) {
			t.Errorf("fallback body missing %q", want)
		}
	}
	// ErrNoTranscript is permanent: no retries.
	if tr.calls != 1 {
		t.Errorf("transcript API called %d times, want 1", tr.calls)
	}
}

func TestVideoFetchRetriesTransientTranscriptErrors(t *testing.T) {
	meta := &fakeMetadataAPI{meta: map[string]VideoMeta{"dQw4w9WgXcQ": {Title: "Flaky"}}}
	tr := &fakeTranscriptAPI{err: errors.New("connection reset")}

	f := fastVideoFetcher(meta, tr)
	articles := f.Fetch(context.Background(), []string{"dQw4w9WgXcQ"})

	if tr.calls != 3 {
		t.Errorf("transcript API called %d times, want 3", tr.calls)
	}
	if len(articles) != 1 || !articles[0].Fallback {
		t.Error("exhausted retries should still yield a fallback article")
	}
}

func TestVideoFetchResolvesChannels(t *testing.T) {
	meta := &fakeMetadataAPI{
		meta: map[string]VideoMeta{
			"aaaaaaaaaaa": {Title: "First"},
			"bbbbbbbbbbb": {Title: "Second"},
		},
		channels: map[string][]string{
			"https://www.youtube.com/@creator": {
				"https://www.youtube.com/watch?v=aaaaaaaaaaa",
				"https://www.youtube.com/watch?v=bbbbbbbbbbb",
			},
		},
	}
	tr := &fakeTranscriptAPI{transcripts: map[string]string{
		"aaaaaaaaaaa": "first transcript",
		"bbbbbbbbbbb": "second transcript",
	}}

	f := fastVideoFetcher(meta, tr)
	articles := f.Fetch(context.Background(), []string{"https://www.youtube.com/@creator"})

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "First" || articles[1].Title != "Second" {
		t.Errorf("channel videos out of order: %q, %q", articles[0].Title, articles[1].Title)
	}
}

func TestVideoFetchChannelFailureDoesNotBlockOthers(t *testing.T) {
	meta := &fakeMetadataAPI{
		meta:       map[string]VideoMeta{"dQw4w9WgXcQ": {Title: "Standalone"}},
		channelErr: errors.New("api key not configured"),
	}
	tr := &fakeTranscriptAPI{transcripts: map[string]string{"dQw4w9WgXcQ": "text"}}

	f := fastVideoFetcher(meta, tr)
	articles := f.Fetch(context.Background(), []string{
		"https://www.youtube.com/@broken",
		"https://youtu.be/dQw4w9WgXcQ",
	})

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if articles[0].Title != "Standalone" {
		t.Errorf("got %q, want the standalone video", articles[0].Title)
	}
}

func TestVideoFetchSkipsUnrecognizedRefs(t *testing.T) {
	f := fastVideoFetcher(&fakeMetadataAPI{}, &fakeTranscriptAPI{})
	articles := f.Fetch(context.Background(), []string{"https://example.com/nothing"})
	if len(articles) != 0 {
		t.Errorf("got %d articles for an unrecognized ref, want 0", len(articles))
	}
}
