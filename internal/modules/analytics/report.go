package analytics

import (
	"fmt"
	"strings"
)

// DefaultSnippetLength bounds post text in rendered reports.
const DefaultSnippetLength = 240

const windowFormat = "2006-01-02 15:04"

// Render produces the textual analytics report. Section order and line
// format are part of the contract and asserted literally in tests:
// window line, totals line, per-channel ranking, per-tag ranking,
// matched posts in posted order.
func Render(r *Result, snippetLen int) string {
	if snippetLen <= 0 {
		snippetLen = DefaultSnippetLength
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analytics window: %s UTC -> %s UTC\n",
		r.From.UTC().Format(windowFormat), r.To.UTC().Format(windowFormat))
	fmt.Fprintf(&b, "Total hits: %d | Channels with hits: %d | Tags matched: %d\n",
		r.TotalHits, r.ChannelsWithHits, r.TagsMatched)

	if len(r.PerChannel) > 0 {
		b.WriteString("\nPer channel:\n")
		for _, stat := range r.PerChannel {
			fmt.Fprintf(&b, "- %s: %d posts, reach=%d\n", stat.Name, stat.Count, stat.Reach)
		}
	}

	if len(r.PerTag) > 0 {
		b.WriteString("\nPer tag:\n")
		for _, stat := range r.PerTag {
			fmt.Fprintf(&b, "- %s: %d posts, reach=%d\n", stat.Tag, stat.Count, stat.Reach)
		}
	}

	if len(r.Posts) == 0 {
		b.WriteString("\nNo posts matched the current tag list in this window.\n")
		return b.String()
	}

	b.WriteString("\nMatched posts:\n")
	for _, post := range r.Posts {
		fmt.Fprintf(&b, "- %s [%s] tags=%s (views=%d) -> %s\n  %s\n",
			post.ChannelName,
			post.Message.PostedAt.UTC().Format("2006-01-02"),
			strings.Join(post.Tags, ", "),
			post.Message.Views,
			post.Link,
			Snippet(post.Message.Text, snippetLen),
		)
	}
	return b.String()
}

// Snippet flattens newlines and truncates text to maxLen runes.
func Snippet(text string, maxLen int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= maxLen {
		return flat
	}
	return strings.TrimRight(string(runes[:maxLen]), " ") + "..."
}
