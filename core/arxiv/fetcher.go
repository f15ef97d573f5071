// ABOUTME: Fetches ArXiv paper text, preferring the HTML rendering over API metadata
// ABOUTME: The HTML result is rejected when too short; the API fallback returns the abstract

package arxiv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	coreerrors "aiml-digests/core/errors"
	"aiml-digests/core/interfaces"
	htmlutil "aiml-digests/pkg/utils/html"
	"aiml-digests/pkg/utils/useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/atom"
)

const (
	// DefaultTimeout bounds each ArXiv request
	DefaultTimeout = 30 * time.Second

	htmlBaseURL = "https://arxiv.org/html/"
	absBaseURL  = "https://arxiv.org/abs/"
	apiBaseURL  = "http://export.arxiv.org/api/query"

	// minHTMLChars is the composed HTML text length below which the API is used instead
	minHTMLChars = 500

	// minParagraphChars drops captions, footnote markers and similar fragments
	minParagraphChars = 20

	htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Source names where a full text came from
type Source string

const (
	SourceHTML Source = "html"
	SourceAPI  Source = "api"
)

var (
	// ErrHTMLUnavailable means the paper has no HTML rendering (404)
	ErrHTMLUnavailable = errors.New("arxiv html rendering not available")

	// ErrNoEntry means the API returned no entry for the ID
	ErrNoEntry = errors.New("arxiv api returned no entry")
)

// Fetcher retrieves paper text from arxiv.org
type Fetcher struct {
	deps    interfaces.Dependencies
	timeout time.Duration
	apiURL  string
	htmlURL string
}

// NewFetcher creates a fetcher; a zero timeout uses DefaultTimeout
func NewFetcher(deps interfaces.Dependencies, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		deps:    deps,
		timeout: timeout,
		apiURL:  apiBaseURL,
		htmlURL: htmlBaseURL,
	}
}

// FetchFullText tries the HTML rendering and falls back to the API
func (f *Fetcher) FetchFullText(ctx context.Context, id string) (string, Source, error) {
	content, err := f.FetchHTML(ctx, id)
	if err == nil {
		return content, SourceHTML, nil
	}
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}

	f.logInfo("HTML not available, falling back to API", map[string]interface{}{
		"arxiv_id": id,
		"reason":   err.Error(),
	})

	content, err = f.FetchAPI(ctx, id)
	if err != nil {
		return "", "", err
	}
	return content, SourceAPI, nil
}

// FetchHTML downloads and flattens the HTML rendering of a paper
func (f *Fetcher) FetchHTML(ctx context.Context, id string) (string, error) {
	body, err := f.get(ctx, f.htmlURL+id, map[string]string{
		"User-Agent": useragent.Browsers[0],
		"Accept":     htmlAccept,
	})
	if err != nil {
		if coreerrors.StatusCode(err) == 404 {
			return "", ErrHTMLUnavailable
		}
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse arxiv html: %w", err)
	}
	return composeHTMLText(doc, id)
}

func composeHTMLText(doc *goquery.Document, id string) (string, error) {
	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return "", &coreerrors.ContentQualityError{Source: "arxiv html", Length: 0, Min: minHTMLChars}
	}

	root.Find("nav, header, footer, aside, script, style").Remove()

	var parts []string
	title := root.Find("h1").First()
	if title.Length() == 0 {
		title = doc.Find("title").First()
	}
	if t := htmlutil.CollapseWhitespace(title.Text()); t != "" {
		parts = append(parts, "Title: "+t)
	}

	parts = append(parts,
		"ArXiv ID: "+id,
		"ArXiv URL: "+absBaseURL+id,
		"HTML URL: "+htmlBaseURL+id,
	)

	var paragraphs []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if utf8.RuneCountInString(text) > minParagraphChars {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		parts = append(parts, "\nFull Text:\n"+strings.Join(paragraphs, "\n\n"))
	}

	content := strings.Join(parts, "\n")
	if n := utf8.RuneCountInString(content); n < minHTMLChars {
		return "", &coreerrors.ContentQualityError{Source: "arxiv html", Length: n, Min: minHTMLChars}
	}
	return content, nil
}

// FetchAPI builds a metadata-only text block from the ArXiv Atom API
func (f *Fetcher) FetchAPI(ctx context.Context, id string) (string, error) {
	query := url.Values{}
	query.Set("id_list", id)
	query.Set("max_results", "1")

	body, err := f.get(ctx, f.apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}

	parsed, err := (&atom.Parser{}).Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse arxiv api response: %w", err)
	}
	if len(parsed.Entries) == 0 {
		return "", ErrNoEntry
	}
	return composeAPIText(parsed.Entries[0], id), nil
}

func composeAPIText(entry *atom.Entry, id string) string {
	var parts []string

	if title := htmlutil.CollapseWhitespace(entry.Title); title != "" {
		parts = append(parts, "Title: "+title)
	}

	var authors []string
	for _, a := range entry.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			authors = append(authors, strings.TrimSpace(a.Name))
		}
	}
	if len(authors) > 0 {
		parts = append(parts, "Authors: "+strings.Join(authors, ", "))
	}

	parts = append(parts,
		"ArXiv ID: "+id,
		"ArXiv URL: "+absBaseURL+id,
	)

	if summary := strings.TrimSpace(entry.Summary); summary != "" {
		parts = append(parts, "\nAbstract:\n"+summary)
	}

	return strings.Join(parts, "\n")
}

func (f *Fetcher) get(ctx context.Context, target string, headers map[string]string) ([]byte, error) {
	if f.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.deps.HTTPClient.Get(reqCtx, target, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, &coreerrors.ExternalAPIError{
			API:        "arxiv",
			StatusCode: resp.StatusCode(),
			Message:    "unexpected status for " + target,
		}
	}

	return io.ReadAll(resp.Body())
}

func (f *Fetcher) logInfo(msg string, fields map[string]interface{}) {
	if f.deps.Logger != nil {
		f.deps.Logger.Info(msg, fields)
	}
}
