// Package richtext is the server side of the article body editor: the
// command set the toolbar offers, the sanitizer that admits exactly the markup
// those commands produce, and helpers for listing and validating content.
package richtext

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Command is one formatting action of the editor toolbar
type Command struct {
	Name  string // editor command identifier
	Label string
	Tag   string // element the command produces
	Attr  string // attribute value, e.g. the heading level or alignment
}

// Commands is the toolbar in display order
var Commands = []Command{
	{Name: "bold", Label: "B", Tag: "strong"},
	{Name: "italic", Label: "I", Tag: "em"},
	{Name: "strike", Label: "S", Tag: "s"},
	{Name: "link", Label: "Link", Tag: "a"},
	{Name: "heading", Label: "H1", Tag: "h1", Attr: "1"},
	{Name: "heading", Label: "H2", Tag: "h2", Attr: "2"},
	{Name: "heading", Label: "H3", Tag: "h3", Attr: "3"},
	{Name: "bulletList", Label: "• List", Tag: "ul"},
	{Name: "orderedList", Label: "1. List", Tag: "ol"},
	{Name: "align", Label: "Left", Tag: "p", Attr: "left"},
	{Name: "align", Label: "Center", Tag: "p", Attr: "center"},
	{Name: "align", Label: "Right", Tag: "p", Attr: "right"},
	{Name: "align", Label: "Justify", Tag: "p", Attr: "justify"},
}

// Alignments accepted on headings and paragraphs
var Alignments = []string{"left", "center", "right", "justify"}

// DefaultPlaceholder is shown in an empty editor
const DefaultPlaceholder = "Start writing..."

// Editor is the view model of one editor instance. Content is the current
// HTML, Name is the form field the client script mirrors it into.
type Editor struct {
	Name        string
	Content     string
	Placeholder string
}

// NewEditor builds an editor for field name with sanitized initial content
func NewEditor(name, content string) Editor {
	return Editor{Name: name, Content: Sanitize(content), Placeholder: DefaultPlaceholder}
}

var (
	policy    = newPolicy()
	tagRegex  = regexp.MustCompile(`<[^>]*>`)
	emptyDocs = regexp.MustCompile(`^(?:<(?:p|div)>(?:\s|&nbsp;|<br\s*/?>)*</(?:p|div)>\s*)*$`)
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	// div and strike are what contenteditable emits for line breaks and strikethrough
	p.AllowElements("p", "div", "br", "strong", "b", "em", "i", "s", "strike", "h1", "h2", "h3", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowStyles("text-align").MatchingEnum(Alignments...).OnElements("p", "div", "h1", "h2", "h3", "li")
	return p
}

// Sanitize strips everything the editor cannot produce
func Sanitize(input string) string {
	return strings.TrimSpace(policy.Sanitize(input))
}

// IsEmpty reports whether input holds no text, including the empty
// documents the editor emits such as "<p></p>"
func IsEmpty(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || emptyDocs.MatchString(trimmed) {
		return true
	}
	return PlainText(trimmed) == ""
}

// PlainText removes tags, unescapes entities and normalizes whitespace
func PlainText(input string) string {
	cleaned := tagRegex.ReplaceAllString(input, " ")
	cleaned = html.UnescapeString(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

// Excerpt returns at most max runes of the plain text, with an ellipsis when cut
func Excerpt(input string, max int) string {
	text := PlainText(input)
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return strings.TrimSpace(string(runes[:max-3])) + "..."
}
