// Package render turns assistant answers into display text and HTML.
package render

import (
	"bytes"
	"html"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML inside answers is dropped by goldmark's default (unsafe off).
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

type spacingRule struct {
	pattern *regexp.Regexp
	replace string
}

// Insert a space where Han characters meet Latin letters or digits, keeping
// punctuation attached to the side it belongs to. Order matters.
var spacingRules = []spacingRule{
	{regexp.MustCompile(`([\p{Han}])([-/]+)([A-Za-z0-9])`), "$1 $2 $3"},
	{regexp.MustCompile(`([A-Za-z0-9])([-/]+)([\p{Han}])`), "$1 $2 $3"},
	{regexp.MustCompile(`([\p{Han}])([\(\[\{'"]+)([A-Za-z0-9])`), "$1 $2$3"},
	{regexp.MustCompile(`([A-Za-z0-9])([\(\[\{'"]+)([\p{Han}])`), "$1 $2$3"},
	{regexp.MustCompile(`([\p{Han}])([,.;:!?\)\]\}]+)([A-Za-z0-9])`), "$1$2 $3"},
	{regexp.MustCompile(`([A-Za-z0-9])([,.;:!?\)\]\}]+)([\p{Han}])`), "$1$2 $3"},
	{regexp.MustCompile(`([\p{Han}])([A-Za-z0-9])`), "$1 $2"},
	{regexp.MustCompile(`([A-Za-z0-9])([\p{Han}])`), "$1 $2"},
}

// Text normalises spacing between CJK and Latin runs.
func Text(content string) string {
	if content == "" {
		return content
	}
	for _, rule := range spacingRules {
		content = rule.pattern.ReplaceAllString(content, rule.replace)
	}
	return content
}

// Markdown renders content as HTML.
func Markdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Answer renders an assistant answer for rich display. It never fails: when
// Markdown conversion errors, the escaped text is returned in a paragraph.
func Answer(content string) string {
	content = Text(content)
	out, err := Markdown(content)
	if err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return out
}
