package fetch

import (
	"fmt"

	"github.com/gocolly/colly/v2"
	"github.com/xobust/hitta-ram/pkg/models"
)

const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptLanguage = "sv-SE,sv;q=0.9,en;q=0.8"
)

// Fetcher retrieves a page body by URL.
type Fetcher interface {
	Get(pageURL string) (string, error)
}

// Client fetches pages over plain HTTP with a browser-like request
// signature. The upstream site degrades responses for requests without
// a real User-Agent/Accept pair.
type Client struct {
	Collector *colly.Collector
}

// New creates a Client. With no domains every host is allowed, which the
// tests rely on.
func New(domains ...string) *Client {
	c := colly.NewCollector(
		colly.AllowedDomains(domains...),
		colly.UserAgent(UserAgent),
		// clones share the visited-URL store; repeat lookups of the
		// same page must not fail as "already visited"
		colly.AllowURLRevisit(),
	)
	return &Client{Collector: c}
}

func (c *Client) Get(pageURL string) (string, error) {
	col := c.Collector.Clone()
	col.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHTML)
		r.Headers.Set("Accept-Language", acceptLanguage)
	})

	var body []byte
	col.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	if err := col.Visit(pageURL); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrFetchFailed, err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: empty body from %s", models.ErrFetchFailed, pageURL)
	}
	return string(body), nil
}
