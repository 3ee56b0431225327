package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dkaraca/briefly/internal/cache"
	"github.com/dkaraca/briefly/internal/digest"
	"github.com/dkaraca/briefly/internal/fetch"
	"github.com/dkaraca/briefly/internal/models"
	"github.com/dkaraca/briefly/internal/summarize"
)

// failingLLM always errors, forcing every summary and composition onto
// the local fallback paths.
type failingLLM struct{}

func (failingLLM) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	return "", &summarize.APIError{Kind: summarize.ErrTransient, Message: "backend down"}
}

type recordingMailer struct {
	sent     bool
	content  string
	subject  string
	to       []string
	response models.EmailResponse
}

func (m *recordingMailer) SendDigest(ctx context.Context, content, subject string, recipients []string) models.EmailResponse {
	m.sent = true
	m.content = content
	m.subject = subject
	m.to = recipients
	return m.response
}

type emptyRefFetcher struct{}

func (emptyRefFetcher) Fetch(ctx context.Context, refs []string) []models.Article { return nil }

func newTestPipeline(t *testing.T, mailer Mailer) *Pipeline {
	t.Helper()
	store := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	web := fetch.NewWebFetcher(cache.New(store, 30*time.Minute), 5*time.Second)
	rss := fetch.NewRSSFetcher(web, 5)

	llm := failingLLM{}
	return New(
		web,
		rss,
		emptyRefFetcher{},
		emptyRefFetcher{},
		summarize.New(llm, 0.3, 600),
		digest.NewAssembler(llm, true),
		mailer,
	)
}

func loremPage() string {
	words := strings.Repeat("lorem ipsum dolor sit amet consectetur adipiscing elit sed do ", 20)
	return "<html><head><title>Lorem Article</title></head><body><article>" + words + "</article></body></html>"
}

func TestRunEndToEndWithFailingLLM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loremPage()))
	}))
	defer srv.Close()

	mailer := &recordingMailer{}
	p := newTestPipeline(t, mailer)

	req := DefaultRequest()
	req.WebURLs = []string{srv.URL}
	req.Title = "Test Digest"

	result := p.Run(context.Background(), req)

	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if len(result.Articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(result.Articles))
	}
	if !result.Articles[0].SummaryFallback {
		t.Error("with a dead LLM the summary must be flagged as fallback")
	}
	if !strings.Contains(result.DigestContent, "Lorem Article") {
		t.Error("digest should contain the article title")
	}
	attribution := "*Source: [Lorem Article](" + srv.URL + ")*"
	if n := strings.Count(result.DigestContent, attribution); n != 1 {
		t.Errorf("got %d Source lines for the article, want exactly 1:\n%s", n, result.DigestContent)
	}
	if mailer.sent {
		t.Error("no recipients were given, mail must not be sent")
	}
	if result.EmailResponse == nil || !result.EmailResponse.Skipped() {
		t.Errorf("got email response %+v, want skip marker", result.EmailResponse)
	}
}

func TestRunZeroContentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := newTestPipeline(t, &recordingMailer{})

	req := DefaultRequest()
	req.WebURLs = []string{srv.URL, srv.URL + "/other"}

	result := p.Run(context.Background(), req)

	if result.Success {
		t.Fatal("all-failing fetches must yield success=false")
	}
	if !strings.Contains(result.Error, "web (2)") {
		t.Errorf("error should enumerate attempted categories: %q", result.Error)
	}
	if result.DigestContent != "" {
		t.Error("failed run must not produce a digest")
	}
}

func TestRunEmptyRequestFails(t *testing.T) {
	p := newTestPipeline(t, &recordingMailer{})
	result := p.Run(context.Background(), DefaultRequest())

	if result.Success {
		t.Fatal("empty request must fail")
	}
	if !strings.Contains(result.Error, "no content sources") {
		t.Errorf("got error %q", result.Error)
	}
}

func TestRunDeliveryFailureDoesNotFlipSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loremPage()))
	}))
	defer srv.Close()

	mailer := &recordingMailer{response: models.EmailResponse{Error: "provider rejected the message"}}
	p := newTestPipeline(t, mailer)

	req := DefaultRequest()
	req.WebURLs = []string{srv.URL}
	req.Recipients = []string{"reader@example.com"}
	req.Title = "Delivery Test"

	result := p.Run(context.Background(), req)

	if !result.Success {
		t.Fatal("delivery failure must not fail the run")
	}
	if !mailer.sent {
		t.Fatal("mailer was not invoked despite recipients")
	}
	if mailer.subject != "Delivery Test" {
		t.Errorf("got subject %q", mailer.subject)
	}
	if result.EmailResponse == nil || result.EmailResponse.Error == "" {
		t.Error("delivery failure must be recorded in the result")
	}
}

func TestRunSendsWhenRecipientsPresent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loremPage()))
	}))
	defer srv.Close()

	mailer := &recordingMailer{response: models.EmailResponse{ID: "msg-1"}}
	p := newTestPipeline(t, mailer)

	req := DefaultRequest()
	req.WebURLs = []string{srv.URL}
	req.Recipients = []string{"a@example.com", "b@example.com"}

	result := p.Run(context.Background(), req)

	if !result.Success || !result.EmailResponse.Delivered() {
		t.Fatalf("got %+v", result)
	}
	if len(mailer.to) != 2 {
		t.Errorf("got recipients %v", mailer.to)
	}
	if mailer.content != result.DigestContent {
		t.Error("mailer must receive the assembled digest")
	}
}

type fakeVideoFetcher struct {
	articles []models.Article
}

func (f fakeVideoFetcher) Fetch(ctx context.Context, refs []string) []models.Article {
	return f.articles
}

func TestRunMergesAllSourceKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(loremPage()))
	}))
	defer srv.Close()

	store := cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json"))
	web := fetch.NewWebFetcher(cache.New(store, 30*time.Minute), 5*time.Second)
	llm := failingLLM{}

	video := fakeVideoFetcher{articles: []models.Article{{
		URL:       "https://www.youtube.com/watch?v=abc12345678",
		Title:     "A Video",
		Body:      strings.Repeat("transcript ", 30),
		Kind:      models.SourceVideo,
		FetchedAt: time.Now(),
	}}}

	p := New(web, fetch.NewRSSFetcher(web, 5), video, emptyRefFetcher{},
		summarize.New(llm, 0.3, 600), digest.NewAssembler(llm, true), &recordingMailer{})

	req := DefaultRequest()
	req.WebURLs = []string{srv.URL}
	req.VideoRefs = []string{"https://www.youtube.com/watch?v=abc12345678"}

	result := p.Run(context.Background(), req)
	if !result.Success {
		t.Fatalf("run failed: %s", result.Error)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(result.Articles))
	}
}
