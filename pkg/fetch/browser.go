package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/xobust/hitta-ram/pkg/models"
)

// Rendered fetches pages through a headless browser. Bot challenges that
// block plain HTTP clients usually pass once the page is actually rendered.
type Rendered struct {
	Timeout time.Duration
}

func NewRendered() *Rendered {
	return &Rendered{Timeout: 45 * time.Second}
}

func (f *Rendered) Get(pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	fetchCtx, cancelFetch := context.WithTimeout(ctx, f.Timeout)
	defer cancelFetch()

	var html string
	err := chromedp.Run(fetchCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady(`body`, chromedp.ByQuery),
		chromedp.OuterHTML(`html`, &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: chromedp: %v", models.ErrFetchFailed, err)
	}
	return html, nil
}

// Fallback tries Primary first and falls back to Secondary when the
// primary fetch fails.
type Fallback struct {
	Primary   Fetcher
	Secondary Fetcher
}

func (f *Fallback) Get(pageURL string) (string, error) {
	body, err := f.Primary.Get(pageURL)
	if err == nil {
		return body, nil
	}
	if f.Secondary == nil {
		return "", err
	}
	log.Printf("static fetch of %s failed (%v), retrying rendered", pageURL, err)
	return f.Secondary.Get(pageURL)
}
