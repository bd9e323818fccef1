// Package fetch holds the page-fetching collaborators. The sync core only
// ever consumes markup strings, so everything here stays swappable: plain
// HTTP for pages that render server-side, a headless browser for the
// member-priced views that need a real session.
package fetch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

// ErrLoginPage reports that the fetched markup is a login/auth page instead
// of a product page, meaning the session is gone.
type ErrLoginPage struct {
	URL string
}

func (e *ErrLoginPage) Error() string {
	return fmt.Sprintf("%s returned a login page; session expired", e.URL)
}

// Fetcher produces raw markup for a product URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher fetches pages over plain HTTP with retries.
type HTTPFetcher struct {
	client *retryablehttp.Client
}

// NewHTTP builds a fetcher with a per-request timeout. The source site is
// Japanese; Accept-Language matters for the variant labels.
func NewHTTP(timeout time.Duration) *HTTPFetcher {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	return &HTTPFetcher{client: rc}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "ja-JP,ja")
	req.Header.Set("Cache-Control", "no-transform")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	markup := string(body)

	if LooksLikeLoginPage(markup) {
		return "", &ErrLoginPage{URL: url}
	}
	return markup, nil
}

// LooksLikeLoginPage sniffs the markup title for the source site's login
// screen. The site redirects expired sessions there with a 200, so status
// codes don't help.
func LooksLikeLoginPage(markup string) bool {
	title, ok := htmlTitle(markup)
	if !ok {
		return false
	}
	title = strings.ToLower(title)
	return strings.Contains(title, "ログイン") || strings.Contains(title, "login")
}

func htmlTitle(markup string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}

func traverse(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result, ok := traverse(c); ok {
			return result, ok
		}
	}
	return "", false
}
