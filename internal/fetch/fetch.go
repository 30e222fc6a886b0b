// Package fetch provides the web-fetch capability used by the research and
// ingestion paths: plain HTTP retrieval plus HTML-to-text reduction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; JobTailor/1.0)"

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL      string
	Message  string
	NotFound bool
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL and reduces it to text.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:      urlStr,
			Message:  fmt.Sprintf("HTTP status %d", resp.StatusCode),
			NotFound: resp.StatusCode == http.StatusNotFound,
		}
	}

	text, err := ExtractMainText(result.HTML, DefaultTextSelectors())
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to extract text", Cause: err}
	}
	result.Text = text

	return result, nil
}

// ExtractMainText parses HTML and returns the main body text. Noise elements
// are stripped first; if no content selector matches, the body is used.
func ExtractMainText(html string, contentSelectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}
	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// DefaultTextSelectors returns standard selectors for general web content.
func DefaultTextSelectors() []string {
	return []string{
		"main",
		"article",
		".content",
		"#content",
		".main-content",
	}
}

// CompanyPageSelectors returns selectors for company pages (about, values, culture).
func CompanyPageSelectors() []string {
	return []string{
		"main",
		"article",
		".about-content",
		".values-content",
		".culture-content",
		".content",
		"#content",
	}
}

// cleanWhitespace trims each line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
