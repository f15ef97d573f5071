// ABOUTME: ArXiv identifier detection for article links and feed GUIDs
// ABOUTME: Recognizes new-style and old-style IDs and drops version suffixes

package arxiv

import (
	"regexp"
	"strings"
)

var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)arxiv\.org/abs/([0-9]{4}\.[0-9]{4,5}v?[0-9]*)`),
	regexp.MustCompile(`(?i)arxiv\.org/abs/([a-z-]+/[0-9]{7}v?[0-9]*)`),
	regexp.MustCompile(`(?i)arxiv\.org/pdf/([0-9]{4}\.[0-9]{4,5})`),
	regexp.MustCompile(`(?i)arxiv\.org/pdf/([a-z-]+/[0-9]{7})`),
	regexp.MustCompile(`(?i)oai:arxiv\.org:([0-9]{4}\.[0-9]{4,5}v?[0-9]*)`),
	regexp.MustCompile(`(?i)oai:arxiv\.org:([a-z-]+/[0-9]{7}v?[0-9]*)`),
}

var versionSuffix = regexp.MustCompile(`(?i)v[0-9]+$`)

// ExtractID returns the version-less ArXiv ID found in s
func ExtractID(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, re := range idPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return versionSuffix.ReplaceAllString(m[1], ""), true
		}
	}
	return "", false
}

// IDFromArticle checks the link first, then the GUID
func IDFromArticle(link, guid string) (string, bool) {
	if id, ok := ExtractID(link); ok {
		return id, true
	}
	return ExtractID(guid)
}

// IsCandidateURL reports whether s points at arxiv.org at all
func IsCandidateURL(s string) bool {
	return strings.Contains(strings.ToLower(s), "arxiv.org")
}
