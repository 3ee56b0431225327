package fetch

import (
	"fmt"
	"strings"
)

// categoryHint maps reference keywords to a topic description used in
// synthesized placeholder content.
type categoryHint struct {
	keywords []string
	topic    string
}

var hashtagCategories = []categoryHint{
	{[]string{"ai", "artificialintelligence", "machinelearning", "ml"}, "artificial intelligence and machine learning"},
	{[]string{"tech", "technology", "innovation"}, "technology and innovation"},
	{[]string{"datascience", "data"}, "data science and analytics"},
	{[]string{"startup", "entrepreneur"}, "startups and entrepreneurship"},
}

var profileCategories = []categoryHint{
	{[]string{"ai", "tech", "data", "ml"}, "technology/AI-focused"},
	{[]string{"news", "media", "press"}, "news/media"},
	{[]string{"startup", "entrepreneur", "business"}, "business/entrepreneurship"},
}

func hashtagTopic(hashtag string) string {
	lower := strings.ToLower(hashtag)
	for _, c := range hashtagCategories {
		for _, kw := range c.keywords {
			if lower == kw {
				return c.topic
			}
		}
	}
	return "various topics and discussions"
}

func profileType(username string) string {
	lower := strings.ToLower(username)
	for _, c := range profileCategories {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.topic
			}
		}
	}
	return "general"
}

// profilePlaceholder synthesizes labeled stand-in content for a profile
// when no credentials are configured or the live fetch fails.
func profilePlaceholder(username string) string {
	return fmt.Sprintf(`**Profile**: @%[1]s
**Source Type**: Twitter Profile
**Content**: Recent tweets and updates from @%[1]s

**Note**: This content is from Twitter profile @%[1]s. The system would normally fetch recent tweets using the Twitter API, but live retrieval was not possible, so this is placeholder content. To enable full Twitter integration, configure API credentials.

**Profile Type**: Based on the username @%[1]s, this appears to be a %[2]s account.

**Content Type**: Social media posts and updates
**Platform**: Twitter/X`, username, profileType(username))
}

// hashtagPlaceholder synthesizes labeled stand-in content for a hashtag.
func hashtagPlaceholder(hashtag string) string {
	return fmt.Sprintf(`**Hashtag**: #%[1]s
**Source Type**: Twitter Hashtag
**Content**: Recent tweets and discussions about #%[1]s

**Note**: This content is from Twitter hashtag #%[1]s. The system would normally fetch recent tweets using the Twitter API, but live retrieval was not possible, so this is placeholder content. To enable full Twitter integration, configure API credentials.

**Recent Topics**: Based on the hashtag #%[1]s, this likely covers discussions about %[2]s.

**Content Type**: Social media discussions and updates
**Platform**: Twitter/X`, hashtag, hashtagTopic(hashtag))
}
