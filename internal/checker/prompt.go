package checker

import (
	"strconv"
	"strings"
)

// maxPromptBodyChars bounds how much body text is sent to the backend.
const maxPromptBodyChars = 12000

const issueFormat = `Return ONLY a JSON array. Each element must be an object with the keys
"description" (short explanation), "type" (%TYPE%), "severity" (one of Critical, High, Medium, Low)
and "impact" (one of High, Medium, Low). Return [] when there is nothing to report.`

// DefaultBatchPrompt asks for every category in one call.
var DefaultBatchPrompt = `Review the following content before publication.
Look for SEO problems, accessibility problems (WCAG), typos and spelling mistakes,
broken or suspicious links and general content quality problems.

Title: {title}
URL: {url}
Content type: {content_type}
Word count: {word_count}

Other published content (id: title) that internal links may point to:
{available_nodes}

Content:
{body}

` + strings.ReplaceAll(issueFormat, "%TYPE%", "one of SEO, Accessibility, Typos, Links, Content")

// DefaultPrompts are the per-checker templates used when none is configured.
var DefaultPrompts = map[string]string{
	"seo": `Review the SEO of this content: title length and clarity, headings, keyword use,
meta information and readability.

Title: {title}
URL: {url}
Content type: {content_type}
Word count: {word_count}

Content:
{body}

` + strings.ReplaceAll(issueFormat, "%TYPE%", `"SEO"`),

	"accessibility": `Review this content for accessibility problems following WCAG 2.1:
heading order, link text, images without alternative text, color-only cues, tables.

Title: {title}

Content:
{body}

` + strings.ReplaceAll(issueFormat, "%TYPE%", `"Accessibility"`),

	"typos": `Find typos, spelling and grammar mistakes in this content. Quote the wrong word in the description.

Title: {title}

Content:
{body}

` + strings.ReplaceAll(issueFormat, "%TYPE%", `"Typos"`),

	"references": `Find broken or suspicious links in this content. Internal links should point to one of
the known content items listed below.

Known content (id: title):
{available_nodes}

Content:
{body}

` + strings.ReplaceAll(issueFormat, "%TYPE%", `"Broken link"`),
}

// BuildPrompt fills the {title}, {body}, {url}, {content_type},
// {word_count} and {available_nodes} placeholders of template. Unknown
// placeholders are left untouched.
func BuildPrompt(template string, in *Input) string {
	body := in.Content.Body
	if r := []rune(body); len(r) > maxPromptBodyChars {
		body = string(r[:maxPromptBodyChars])
	}
	return strings.NewReplacer(
		"{title}", in.Content.Title,
		"{body}", body,
		"{url}", in.Content.URL,
		"{content_type}", contentType(in),
		"{word_count}", strconv.Itoa(in.WordCount),
		"{available_nodes}", formatNodes(in),
	).Replace(template)
}

func contentType(in *Input) string {
	if in.Content.ContentType == "" {
		return "unspecified"
	}
	return in.Content.ContentType
}

func formatNodes(in *Input) string {
	if len(in.KnownNodes) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for i, n := range in.KnownNodes {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(n.ID)
		sb.WriteString(": ")
		sb.WriteString(n.Title)
		if n.URL != "" {
			sb.WriteString(" (")
			sb.WriteString(n.URL)
			sb.WriteByte(')')
		}
	}
	return sb.String()
}
