package digest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dkaraca/briefly/internal/models"
)

type stubClient struct {
	response string
	err      error
	system   string
	user     string
}

func (s *stubClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int) (string, error) {
	s.system = systemPrompt
	s.user = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func sampleItems() []models.SummarizedArticle {
	return []models.SummarizedArticle{
		{
			Article: models.Article{URL: "https://example.com/a", Title: "Alpha", Kind: models.SourceWeb},
			Summary: "Summary of alpha.",
		},
		{
			Article: models.Article{URL: "https://example.com/b", Title: "Beta", Kind: models.SourceWeb},
			Summary: "Summary of beta.",
		},
	}
}

func TestAssembleLocalTemplate(t *testing.T) {
	a := NewAssembler(nil, false)
	got := a.Assemble(context.Background(), sampleItems(), "Weekly Digest", models.DefaultStyle)

	for _, want := range []string{
		"# Weekly Digest",
		"### Alpha",
		"Summary of alpha.",
		"*Source: [Alpha](https://example.com/a)*",
		"### Beta",
		"*Source: [Beta](https://example.com/b)*",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("digest missing %q:\n%s", want, got)
		}
	}
}

func TestAssembleEmptyItems(t *testing.T) {
	a := NewAssembler(nil, false)
	got := a.Assemble(context.Background(), nil, "Empty", models.DefaultStyle)
	if !strings.Contains(got, "No articles to process") {
		t.Errorf("got %q", got)
	}
}

func TestAssembleDefaultTitle(t *testing.T) {
	a := NewAssembler(nil, false)
	got := a.Assemble(context.Background(), sampleItems(), "", models.DefaultStyle)
	if !strings.Contains(got, "# Content Digest") {
		t.Errorf("default title not applied:\n%s", got)
	}
}

func TestAssembleLLMPath(t *testing.T) {
	client := &stubClient{response: "Hello readers!\n\n### Alpha\n\nComposed prose.\n\n*Source: [Alpha](https://example.com/a)*\n\nBye!"}
	a := NewAssembler(client, true)

	got := a.Assemble(context.Background(), sampleItems(), "Weekly Digest", models.StyleProfile{Kind: models.StyleCasual})

	if !strings.Contains(got, "Composed prose.") {
		t.Errorf("LLM composition not used:\n%s", got)
	}
	if !strings.Contains(client.user, "CASUAL") {
		t.Errorf("style instruction missing from prompt:\n%s", client.user)
	}
	if !strings.Contains(client.user, "https://example.com/b") {
		t.Error("prompt should enumerate all articles")
	}
}

func TestAssembleLLMFailureFallsBackLocally(t *testing.T) {
	client := &stubClient{err: errors.New("quota exceeded")}
	a := NewAssembler(client, true)

	got := a.Assemble(context.Background(), sampleItems(), "Weekly Digest", models.DefaultStyle)

	if got == "" {
		t.Fatal("assembly must never return empty output for non-empty items")
	}
	if !strings.Contains(got, "### Alpha") || !strings.Contains(got, "### Beta") {
		t.Errorf("local fallback missing sections:\n%s", got)
	}
}

func TestAssembleStripsUnwantedPrefixes(t *testing.T) {
	client := &stubClient{response: "### Alpha\n\nSummary: the actual text.\n\n*Source: [Alpha](https://example.com/a)*"}
	a := NewAssembler(client, true)

	got := a.Assemble(context.Background(), sampleItems(), "D", models.DefaultStyle)
	if strings.Contains(got, "Summary: ") {
		t.Errorf("unwanted prefix survived:\n%s", got)
	}
	if !strings.Contains(got, "the actual text.") {
		t.Errorf("prefix stripping damaged content:\n%s", got)
	}
}

func TestAssembleNormalizesDuplicatedAttribution(t *testing.T) {
	client := &stubClient{response: `### Alpha

Prose about alpha.

*Source: [Alpha](https://example.com/a)*
*Source: [Alpha](https://example.com/a)*
*Source: [Alpha](https://example.com/a)*`}
	a := NewAssembler(client, true)

	got := a.Assemble(context.Background(), sampleItems(), "D", models.DefaultStyle)
	if n := strings.Count(got, "*Source: [Alpha](https://example.com/a)*"); n != 1 {
		t.Errorf("got %d attribution lines after assembly, want 1:\n%s", n, got)
	}
}

func TestResolveStyle(t *testing.T) {
	cases := []struct {
		in   StyleInput
		want models.StyleKind
	}{
		{StyleInput{Name: "professional"}, models.StyleProfessional},
		{StyleInput{Name: "Casual"}, models.StyleCasual},
		{StyleInput{Name: "technical"}, models.StyleTechnical},
		{StyleInput{Name: "my-trained-style", DominantTone: "witty"}, models.StyleCustom},
		{StyleInput{Name: "custom", Hints: []string{"dry", "concise"}}, models.StyleCustom},
		{StyleInput{}, models.StyleProfessional},
	}
	for _, tc := range cases {
		if got := ResolveStyle(tc.in); got.Kind != tc.want {
			t.Errorf("ResolveStyle(%+v).Kind = %s, want %s", tc.in, got.Kind, tc.want)
		}
	}
}

func TestResolveStyleCollectsHints(t *testing.T) {
	got := ResolveStyle(StyleInput{
		Name:            "trained",
		DominantTone:    "enthusiastic",
		Characteristics: []string{"short sentences", "frequent questions"},
	})
	if len(got.ToneHints) != 3 || got.ToneHints[0] != "enthusiastic" {
		t.Errorf("got hints %v", got.ToneHints)
	}
}
