package repository

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"airtrail-sync/internal/domain/entity"
	"airtrail-sync/internal/domain/repository"
	"airtrail-sync/pkg/logger"
)

// ChromedpRenderer fetches pages through a headless browser. Each call
// runs in its own browser context with a bounded settle wait, so the
// session is torn down on every exit path and never leaks across
// records.
type ChromedpRenderer struct {
	logger  logger.Logger
	timeout time.Duration
	settle  time.Duration
}

// NewChromedpRenderer creates a new headless-browser page renderer
func NewChromedpRenderer(timeout, settle time.Duration, logger logger.Logger) repository.PageRenderer {
	return &ChromedpRenderer{
		logger:  logger,
		timeout: timeout,
		settle:  settle,
	}
}

// RenderPage navigates to the URL, waits for dynamic content to settle
// and returns the rendered markup.
func (r *ChromedpRenderer) RenderPage(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	started := time.Now()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", &entity.TransportError{Op: "render page", Err: err}
	}

	r.logger.Info("Rendered page",
		"url", url,
		"bytes", len(html),
		"elapsed", time.Since(started).String())

	return html, nil
}
