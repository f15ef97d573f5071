// ABOUTME: HTML utilities for turning feed and page markup into plain text
// ABOUTME: Strips tags with a bluemonday strict policy and decodes entities

package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func stripPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
		policy.AddSpaceWhenStrippingTag(true)
	})
	return policy
}

// StripHTML removes all markup (dropping script and style bodies), decodes
// entities and collapses whitespace.
func StripHTML(markup string) string {
	if markup == "" {
		return ""
	}
	text := stripPolicy().Sanitize(markup)
	return CollapseWhitespace(DecodeEntities(text))
}

// DecodeEntities decodes named and numeric HTML entities
func DecodeEntities(text string) string {
	return strings.ReplaceAll(xhtml.UnescapeString(text), "\u00a0", " ")
}

// CollapseWhitespace trims and replaces every whitespace run with a single space
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// LooksLikeHTML reports whether s appears to contain markup
func LooksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}
