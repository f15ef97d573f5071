// ABOUTME: Ranked HTML text strategies: content containers, paragraphs, then the page body
// ABOUTME: Host-specific selectors extend the generic list for publishers with unusual markup

package extract

import (
	"bytes"
	"net/url"
	"strings"
	"unicode/utf8"

	htmlutil "aiml-digests/pkg/utils/html"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	// minStrategyChars is the length a container or paragraph set must exceed to be used
	minStrategyChars = 200

	// bodyTrimChars is the body length above which only the middle half is kept
	bodyTrimChars = 10000
)

const noiseSelector = "script, style, nav, header, footer, aside, iframe, noscript"

var genericSelectors = []string{
	"article", ".article", ".post", ".content", "main", "#content", "#main",
	".post-content", ".entry-content", ".article-content", ".post-body",
	`[itemprop="articleBody"]`, ".blog-post", ".blog-content",
}

// hostSelectors are appended to the generic list; the first matching host wins
var hostSelectors = []struct {
	host      string
	selectors []string
}{
	{"machinelearningmastery.com", []string{".entry", ".post-content", ".entry-content"}},
	{"openai.com", []string{".post-content", ".research-paper"}},
	{"ai.googleblog.com", []string{".post-body", ".post"}},
	{"arxiv.org", []string{"#abs", ".abstract"}},
}

// selectorsFor returns the ordered selector list for a page host
func selectorsFor(host string) []string {
	selectors := append([]string(nil), genericSelectors...)
	for _, hs := range hostSelectors {
		if strings.Contains(host, hs.host) {
			selectors = append(selectors, hs.selectors...)
			break
		}
	}
	return selectors
}

// rankedText applies the strategies in order and returns the first usable text
func rankedText(page []byte, host string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}
	doc.Find(noiseSelector).Remove()

	for _, selector := range selectorsFor(host) {
		if text := largestMatch(doc, selector); charLen(text) > minStrategyChars {
			return text, nil
		}
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if text := htmlutil.CollapseWhitespace(strings.Join(parts, " ")); charLen(text) > minStrategyChars {
		return text, nil
	}

	return middleHalf(htmlutil.CollapseWhitespace(doc.Find("body").Text())), nil
}

func largestMatch(doc *goquery.Document, selector string) string {
	best := ""
	bestLen := 0
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		text := htmlutil.CollapseWhitespace(s.Text())
		if n := charLen(text); n > bestLen {
			best, bestLen = text, n
		}
	})
	return best
}

// middleHalf drops the first and last quarter of very long body text
func middleHalf(text string) string {
	n := charLen(text)
	if n <= bodyTrimChars {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[n/4 : 3*n/4]))
}

// readableText runs the readability algorithm over the page
func readableText(page []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		return "", err
	}
	return htmlutil.CollapseWhitespace(article.TextContent), nil
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
