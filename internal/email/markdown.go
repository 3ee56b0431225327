package email

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	mdHeading3 = regexp.MustCompile(`(?m)^### (.+)$`)
	mdHeading2 = regexp.MustCompile(`(?m)^## (.+)$`)
	mdHeading1 = regexp.MustCompile(`(?m)^# (.+)$`)
	mdBold     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mdSource   = regexp.MustCompile(`(?m)^\*(Source:.*)\*\s*$`)
	mdItalic   = regexp.MustCompile(`\*([^*\n]+)\*`)
	mdRule     = regexp.MustCompile(`(?m)^---+\s*$`)
	mdListItem = regexp.MustCompile(`(?m)^[-*] (.+)$`)
)

const emailStyle = `body{font-family:'Segoe UI',Tahoma,Geneva,Verdana,sans-serif;line-height:1.6;color:#333;max-width:800px;margin:0 auto;padding:20px;background-color:#f8f9fa}
.newsletter-container{background-color:white;padding:30px;border-radius:8px;box-shadow:0 2px 10px rgba(0,0,0,0.1)}
h1{color:#2c3e50;border-bottom:3px solid #3498db;padding-bottom:10px;margin-bottom:20px}
h2{color:#34495e;margin-top:30px;margin-bottom:15px;font-size:1.4em}
h3{color:#2c3e50;margin-top:25px;margin-bottom:10px;font-size:1.2em}
p{margin-bottom:15px}
a{color:#3498db;text-decoration:none}
.source-link{font-style:italic;color:#7f8c8d;font-size:0.9em}
ul{margin:15px 0;padding-left:25px}
li{margin-bottom:8px}
hr{border:none;border-top:1px solid #ecf0f1;margin:25px 0}`

// MarkdownToHTML converts the digest's markdown subset into a styled HTML
// email body. It covers what the assembler emits: headings, bold, italic,
// links, list items, horizontal rules, and source lines.
func MarkdownToHTML(markdown string) string {
	body := html.EscapeString(markdown)

	body = mdHeading3.ReplaceAllString(body, "<h3>$1</h3>")
	body = mdHeading2.ReplaceAllString(body, "<h2>$1</h2>")
	body = mdHeading1.ReplaceAllString(body, "<h1>$1</h1>")
	body = mdRule.ReplaceAllString(body, "<hr>")
	body = mdBold.ReplaceAllString(body, "<strong>$1</strong>")
	body = mdSource.ReplaceAllString(body, `<p class="source-link">$1</p>`)
	body = mdItalic.ReplaceAllString(body, "<em>$1</em>")
	body = mdLink.ReplaceAllString(body, `<a href="$2">$1</a>`)
	body = mdListItem.ReplaceAllString(body, "<li>$1</li>")

	// Paragraphs from blank-line-separated blocks that are not already
	// block elements.
	var out strings.Builder
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		switch {
		case strings.HasPrefix(block, "<h"), strings.HasPrefix(block, "<hr"), strings.HasPrefix(block, "<p"):
			out.WriteString(block)
		case strings.HasPrefix(block, "<li>"):
			out.WriteString("<ul>" + strings.ReplaceAll(block, "\n", "") + "</ul>")
		default:
			out.WriteString("<p>" + strings.ReplaceAll(block, "\n", "<br>") + "</p>")
		}
		out.WriteString("\n")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Newsletter</title>
<style>%s</style>
</head>
<body>
<div class="newsletter-container">
%s</div>
</body>
</html>`, emailStyle, out.String())
}
