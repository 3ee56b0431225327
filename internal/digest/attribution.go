package digest

import (
	"regexp"
	"strings"
)

var (
	attributionLine = regexp.MustCompile(`^\*Source:\s*\[[^\]]+\]\(([^)]+)\)(?:\s*-\s*[^*]+)?\*\s*$`)
	sectionHeading  = regexp.MustCompile(`^#{1,6}\s`)
)

// NormalizeAttribution removes duplicated source-attribution lines from a
// rendered digest. LLM-composed text tends to repeat the attribution line
// verbatim when instructed to always cite sources, so the assembler runs
// this after composition. Two passes:
//
//  1. Within each section (delimited by markdown headings), attribution
//     lines are grouped by URL and only the first occurrence per URL kept.
//  2. Across the whole document, any run of consecutive identical
//     attribution lines collapses to a single line.
//
// The result is stable: normalizing twice equals normalizing once.
func NormalizeAttribution(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	// Pass 1: per-section dedup by URL.
	seen := make(map[string]bool)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if sectionHeading.MatchString(line) {
			seen = make(map[string]bool)
			out = append(out, line)
			continue
		}
		if m := attributionLine.FindStringSubmatch(line); m != nil {
			url := m[1]
			if seen[url] {
				continue
			}
			seen[url] = true
		}
		out = append(out, line)
	}

	// Pass 2: collapse consecutive identical attribution lines. Blank
	// lines between repeats do not break the run.
	final := make([]string, 0, len(out))
	var lastAttribution string
	pendingBlanks := 0
	for _, line := range out {
		if strings.TrimSpace(line) == "" {
			pendingBlanks++
			continue
		}
		if attributionLine.MatchString(line) && line == lastAttribution {
			pendingBlanks = 0
			continue
		}
		for ; pendingBlanks > 0; pendingBlanks-- {
			final = append(final, "")
		}
		final = append(final, line)
		if attributionLine.MatchString(line) {
			lastAttribution = line
		} else {
			lastAttribution = ""
		}
	}
	for ; pendingBlanks > 0; pendingBlanks-- {
		final = append(final, "")
	}

	return strings.Join(final, "\n")
}
