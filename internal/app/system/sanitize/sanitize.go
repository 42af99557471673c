// internal/app/system/sanitize/sanitize.go

// Package sanitize strips unsafe markup from rich-text fields before they
// are persisted. Recipes, detox plans, and course descriptions accept HTML
// from the admin editor; everything else is treated as plain text.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richText = buildRichTextPolicy()

func buildRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("u", "s", "sub", "sup", "mark", "hr")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
	p.AllowAttrs("style").OnElements("table", "th", "td")
	return p
}

// RichText sanitizes an HTML fragment, preserving the formatting the admin
// editor produces (headings, lists, tables, links, images) and removing
// scripts, event handlers, and unknown elements.
func RichText(s string) string {
	if s == "" {
		return ""
	}
	return richText.Sanitize(s)
}

// PlainText strips all markup, leaving text content only. Used for fields
// that must never carry HTML, such as names and comments.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(s))
}
