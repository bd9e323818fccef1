package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome. Needed for member-priced
// views: those load their variant table client-side after login, so plain
// HTTP sees a different page.
type BrowserFetcher struct {
	// Wait is how long to let the page settle after navigation before the
	// DOM is read.
	Wait time.Duration

	// UserDataDir points Chrome at a profile that already holds the member
	// session cookies. Empty means a throwaway profile.
	UserDataDir string
}

func NewBrowser(wait time.Duration, userDataDir string) *BrowserFetcher {
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return &BrowserFetcher{Wait: wait, UserDataDir: userDataDir}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("lang", "ja-JP"),
		chromedp.UserAgent(userAgent),
	)
	if f.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(f.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var markup string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(f.Wait),
		chromedp.OuterHTML("html", &markup),
	)
	if err != nil {
		return "", err
	}

	if LooksLikeLoginPage(markup) {
		return "", &ErrLoginPage{URL: url}
	}
	return markup, nil
}
