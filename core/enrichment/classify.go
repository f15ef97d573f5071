// ABOUTME: Deep-summary content classification and prompt-size truncation helpers
// ABOUTME: Full papers get the long budget and the section-by-section template

package enrichment

import (
	"strings"
	"unicode/utf8"
)

// ContentKind distinguishes full paper texts from abstract-like metadata
type ContentKind string

const (
	KindFullPaper ContentKind = "full_paper"
	KindAbstract  ContentKind = "abstract"
)

var sectionMarkers = []string{"introduction", "methodology", "results", "conclusion", "references"}

// DeepPlan is the prompt shape chosen for a piece of full content
type DeepPlan struct {
	Kind      ContentKind
	Budget    int
	MaxTokens int
}

// Classify picks the full-paper plan for long texts that carry at least one section heading
func Classify(content string) DeepPlan {
	if utf8.RuneCountInString(content) > fullPaperMinChars {
		lower := strings.ToLower(content)
		for _, marker := range sectionMarkers {
			if strings.Contains(lower, marker) {
				return DeepPlan{Kind: KindFullPaper, Budget: fullPaperBudget, MaxTokens: fullPaperMaxTokens}
			}
		}
	}
	return DeepPlan{Kind: KindAbstract, Budget: abstractBudget, MaxTokens: abstractMaxTokens}
}

// truncate cuts text to roughly maxTokens tokens and marks the cut with "..."
func truncate(text string, maxTokens int) string {
	maxChars := maxTokens * charsPerToken
	if len(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + "..."
}

// snippet returns the first n characters of s
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// splitKeywords parses a comma-separated model answer, dropping blanks
func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
