package models

// StyleKind selects the tone template applied during digest assembly.
type StyleKind string

const (
	StyleProfessional StyleKind = "professional"
	StyleCasual       StyleKind = "casual"
	StyleTechnical    StyleKind = "technical"
	StyleCustom       StyleKind = "custom"
)

// StyleProfile is the writing-style configuration consumed by the digest
// assembler. It is resolved once at the API boundary; the pipeline treats it
// as opaque input and does not validate it further.
type StyleProfile struct {
	Kind      StyleKind `json:"kind"`
	ToneHints []string  `json:"tone_hints,omitempty"`
}

// DefaultStyle is applied when the caller specifies nothing.
var DefaultStyle = StyleProfile{Kind: StyleProfessional}
