// Package render turns the HTML fragments WordPress returns into text that
// reads well in a terminal.
package render

import (
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Text strips markup from an HTML fragment and collapses whitespace.
func Text(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(html.UnescapeString(fragment)), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Markdown converts post content to markdown, resolving relative links
// against baseURL. Conversion failures fall back to Text.
func Markdown(fragment, baseURL string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	converted, err := md.NewConverter("", true, &md.Options{
		GetAbsoluteURL: absoluteURL(baseURL),
	}).ConvertString(fragment)
	if err != nil || strings.TrimSpace(converted) == "" {
		return Text(fragment)
	}
	return strings.TrimSpace(converted)
}

// absoluteURL resolves link targets against base. Unparseable values are
// returned unchanged.
func absoluteURL(base string) func(*goquery.Selection, string, string) string {
	b, err := url.Parse(base)
	return func(_ *goquery.Selection, raw, _ string) string {
		if err != nil || base == "" {
			return raw
		}
		u, perr := url.Parse(raw)
		if perr != nil || u.Scheme == "data" {
			return raw
		}
		return b.ResolveReference(u).String()
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}
