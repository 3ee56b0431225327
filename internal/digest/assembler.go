package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkaraca/briefly/internal/logger"
	"github.com/dkaraca/briefly/internal/models"
	"github.com/dkaraca/briefly/internal/summarize"
)

// unwantedPrefixes are meta-commentary fragments the LLM sometimes
// prepends to article sections despite instructions.
var unwantedPrefixes = []string{
	"Technical analysis reveals: ",
	"Summary: ",
	"Strategic analysis indicates: ",
	"Check this out: ",
}

// Assembler renders the final digest document. When an LLM client is
// configured it composes connective prose in the requested style; the
// deterministic local template is always available and never fails.
type Assembler struct {
	client      summarize.Client
	useLLM      bool
	temperature float64
	maxTokens   int
	now         func() time.Time
}

// NewAssembler builds an assembler. A nil client or useLLM=false makes
// every assembly take the local template path.
func NewAssembler(client summarize.Client, useLLM bool) *Assembler {
	return &Assembler{
		client:      client,
		useLLM:      useLLM && client != nil,
		temperature: 0.35,
		maxTokens:   3000,
		now:         time.Now,
	}
}

// Assemble renders the digest for the given summarized items. The result
// is non-empty whenever at least one item is supplied.
func (a *Assembler) Assemble(ctx context.Context, items []models.SummarizedArticle, title string, profile models.StyleProfile) string {
	if title == "" {
		title = "Content Digest"
	}
	if len(items) == 0 {
		return fmt.Sprintf("# %s\n\nNo articles to process.", title)
	}

	var content string
	if a.useLLM {
		composed, err := a.compose(ctx, items, title, profile)
		if err != nil {
			logger.Warn().Err(err).Msg("LLM digest composition failed, using local template")
			content = a.localDigest(items, title, profile)
		} else {
			content = a.wrap(composed, title)
		}
	} else {
		content = a.localDigest(items, title, profile)
	}

	return NormalizeAttribution(content)
}

func (a *Assembler) compose(ctx context.Context, items []models.SummarizedArticle, title string, profile models.StyleProfile) (string, error) {
	tpl := styleFor(profile)

	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "### Article %d: %s\nURL: %s\n\n%s\n\n", i+1, item.Title, item.URL, item.Summary)
	}

	system := `You are a newsletter editor creating engaging email newsletters.
Formatting rules:
1. Start with a short greeting, present each article with a substantive summary, end with a warm closing.
2. Do not add prefixes like "Summary:" or "Technical analysis reveals:" to article sections.
3. Use markdown headings (###) for article titles.
4. End each article section with a single source line of the form *Source: [Title](URL)*.
5. Apply the requested writing style consistently throughout.`

	user := fmt.Sprintf(`%s

Newsletter Title: %s
Date: %s

Articles to include:
%s

Create a complete newsletter following the style and format requirements.`,
		tpl.instruction, title, a.now().Format("January 2, 2006"), sb.String())

	out, err := a.client.Complete(ctx, system, user, a.temperature, a.maxTokens)
	if err != nil {
		return "", err
	}

	for _, prefix := range unwantedPrefixes {
		out = strings.ReplaceAll(out, prefix, "")
	}
	return out, nil
}

// localDigest is the deterministic fallback: fixed header, per-item
// sections in the style's voice, fixed footer.
func (a *Assembler) localDigest(items []models.SummarizedArticle, title string, profile models.StyleProfile) string {
	tpl := styleFor(profile)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", tpl.greeting)
	for _, item := range items {
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n*Source: [%s](%s)*\n\n", item.Title, item.Summary, item.Title, item.URL)
	}
	sb.WriteString(tpl.closing)

	return a.wrap(sb.String(), title)
}

func (a *Assembler) wrap(body, title string) string {
	return fmt.Sprintf(`# %s

*Generated on %s*

---

%s

---

*Thank you for reading! Stay tuned for more updates.*
`, title, a.now().Format("2006-01-02 at 15:04:05"), strings.TrimSpace(body))
}
