package summarize

import (
	"fmt"

	"github.com/dkaraca/briefly/internal/models"
)

// Input caps keep prompts inside the model's context budget.
const (
	generalBodyCap = 3000
	videoBodyCap   = 4000
)

func buildPrompt(art models.Article) string {
	if art.Kind == models.SourceVideo {
		return videoPrompt(art)
	}
	return generalPrompt(art)
}

func generalPrompt(art models.Article) string {
	body := art.Body
	if len(body) > generalBodyCap {
		body = body[:generalBodyCap]
	}
	return fmt.Sprintf(`Please summarize the following article in a clear, comprehensive manner.
Focus on the main points and key insights. Provide enough detail to be informative.

Title: %s
URL: %s

Content:
%s

Please provide a well-structured summary with:
1. Main topic/key points
2. Important details
3. Key takeaways`, art.Title, art.URL, body)
}

func videoPrompt(art models.Article) string {
	body := art.Body
	if len(body) > videoBodyCap {
		body = body[:videoBodyCap]
	}
	return fmt.Sprintf(`Please create a comprehensive summary of this video transcript.
The summary should be informative and detailed, helping readers understand the key concepts, findings, and insights discussed in the video.

Title: %s
URL: %s

Video Transcript:
%s

Please provide a detailed summary that includes:
1. **Main Topic**: What is this video about?
2. **Key Concepts**: What are the main concepts, techniques, or technologies discussed?
3. **Important Findings**: What discoveries, results, or insights are presented?
4. **Technical Details**: What specific technical information or methodologies are explained?
5. **Implications**: What does this mean for the field or future research?
6. **Key Takeaways**: What are the most important points viewers should remember?

Make the summary informative and engaging, providing enough detail for readers to understand the video's content without watching it. Aim for 200-300 words.`, art.Title, art.URL, body)
}
