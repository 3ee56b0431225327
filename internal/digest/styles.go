package digest

import (
	"strings"

	"github.com/dkaraca/briefly/internal/models"
)

// StyleInput is the loosely-shaped style selection arriving at the API
// boundary. It resolves once into a models.StyleProfile; nothing past the
// boundary inspects the raw fields again.
type StyleInput struct {
	Name            string   `json:"name"`
	DominantTone    string   `json:"dominant_tone,omitempty"`
	Characteristics []string `json:"characteristics,omitempty"`
	Hints           []string `json:"hints,omitempty"`
}

// ResolveStyle maps an API-level style selection onto a profile. Unknown
// names with tone hints become custom profiles; unknown names without
// hints fall back to the default.
func ResolveStyle(in StyleInput) models.StyleProfile {
	switch models.StyleKind(strings.ToLower(in.Name)) {
	case models.StyleProfessional:
		return models.StyleProfile{Kind: models.StyleProfessional}
	case models.StyleCasual:
		return models.StyleProfile{Kind: models.StyleCasual}
	case models.StyleTechnical:
		return models.StyleProfile{Kind: models.StyleTechnical}
	}

	// Trained profiles carry a dominant tone plus characteristics; both
	// collapse into custom tone hints.
	hints := in.Hints
	if in.DominantTone != "" {
		hints = append([]string{in.DominantTone}, hints...)
	}
	hints = append(hints, in.Characteristics...)
	if len(hints) > 0 {
		return models.StyleProfile{Kind: models.StyleCustom, ToneHints: hints}
	}
	return models.DefaultStyle
}

// styleTemplate holds the per-kind prose used for both LLM prompting and
// the deterministic local fallback.
type styleTemplate struct {
	instruction string
	greeting    string
	closing     string
}

var styleTemplates = map[models.StyleKind]styleTemplate{
	models.StyleProfessional: {
		instruction: `Write in a PROFESSIONAL, FORMAL, and BUSINESS-FOCUSED style:
- Use formal language and a structured approach
- Focus on data-driven insights and business impact
- Maintain professional terminology
- Keep it objective and authoritative`,
		greeting: "Welcome to this edition. Here are the key developments worth your attention.",
		closing:  "Thank you for reading. We will keep you informed of further developments.",
	},
	models.StyleCasual: {
		instruction: `Write in a CASUAL, FRIENDLY, and ENGAGING style:
- Use conversational language with personal touches
- Use contractions (don't, can't, it's, you're)
- Keep it approachable and community-focused
- Write as if talking to a friend`,
		greeting: "Hey there! We've rounded up some stories you'll want to check out.",
		closing:  "That's all for now. Thanks for hanging out with us!",
	},
	models.StyleTechnical: {
		instruction: `Write in a TECHNICAL, DETAILED, and EDUCATIONAL style:
- Use formal technical terminology and concepts
- Provide detailed explanations and analysis
- Include technical details, methodologies, and specifications
- Focus on educational content and comprehensive coverage`,
		greeting: "This edition covers recent technical developments with detailed analysis.",
		closing:  "Refer to the linked sources for full implementation details.",
	},
}

// styleFor returns the template for a profile, synthesizing one from tone
// hints for custom profiles.
func styleFor(profile models.StyleProfile) styleTemplate {
	if tpl, ok := styleTemplates[profile.Kind]; ok {
		return tpl
	}

	tpl := styleTemplates[models.StyleProfessional]
	if len(profile.ToneHints) > 0 {
		tpl.instruction = "Write in a style matching these tone characteristics: " + strings.Join(profile.ToneHints, ", ") + "."
	}
	return tpl
}

// StyleNames lists the predefined style names exposed through the API.
func StyleNames() []string {
	return []string{
		string(models.StyleProfessional),
		string(models.StyleCasual),
		string(models.StyleTechnical),
	}
}
