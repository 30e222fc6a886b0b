// Package fetch - browser.go provides headless browser rendering for SPA
// career pages that return no content over plain HTTP.
package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider an HTTP
// fetch successful. Shorter content indicates a JavaScript-rendered page.
const MinContentLength = 500

// ShouldUseBrowser reports whether the extracted text is too short and the
// page should be re-fetched through a headless browser.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered
// HTML. Requires Chrome/Chromium on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to fill the page.
		chromedp.Sleep(3*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	return html, nil
}
