// Package prisjakt turns prisjakt.nu search-results and product pages
// into normalized offer lists. Extraction runs as an ordered fallback
// chain; any failure anywhere collapses to an empty result, never an
// error to the caller.
package prisjakt

import (
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xobust/hitta-ram/pkg/cache"
	"github.com/xobust/hitta-ram/pkg/logger"
	"github.com/xobust/hitta-ram/pkg/models"
)

const (
	Source    = "PRISJAKT"
	HostBrand = "Prisjakt"
	Currency  = "SEK"
	BaseURL   = "https://www.prisjakt.nu"
)

// Fetcher retrieves a page body by URL.
type Fetcher interface {
	Get(pageURL string) (string, error)
}

type Scraper struct {
	Fetcher Fetcher
	Cache   *cache.Cache // nil disables caching
	BaseURL string
}

func NewScraper(fetcher Fetcher, offerCache *cache.Cache) *Scraper {
	return &Scraper{
		Fetcher: fetcher,
		Cache:   offerCache,
		BaseURL: BaseURL,
	}
}

type strategy struct {
	name    string
	extract func(*goquery.Document) []models.Offer
}

// Strategies run in priority order; the first stage whose store-filtered
// output is non-empty wins.
var searchStrategies = []strategy{
	{"primary-card", extractPrimaryCard},
	{"structured-data", extractStructuredData},
	{"anchor-listing", extractAnchorListings},
}

var productStrategies = []strategy{
	{"structured-data", extractStructuredData},
	{"store-offers", extractStoreOffers},
}

// ScrapeSearch fetches the search results for query and extracts offers.
// An empty slice means nothing was found or the fetch failed.
func (s *Scraper) ScrapeSearch(query string) []models.Offer {
	fingerprint := cache.Fingerprint("search", query)
	if cached, ok := s.cached(fingerprint); ok {
		return cached
	}

	doc, ok := s.fetchDocument(s.BaseURL + "/search?search=" + url.QueryEscape(query))
	if !ok {
		return []models.Offer{}
	}

	offers := s.runStrategies(searchStrategies, doc)
	if len(offers) == 0 {
		// A listing with zero extractable hits often still links the
		// product itself; follow the first detail link.
		if href, found := doc.Find(`a[href*="produkt.php"]`).First().Attr("href"); found {
			return s.ScrapeProduct(s.resolve(href))
		}
		return []models.Offer{}
	}

	s.store(fingerprint, offers)
	return offers
}

// ScrapeProduct fetches a product detail page and extracts its offers.
// Accepts a full URL or a bare identifier; non-digit characters of a bare
// identifier are stripped to build the canonical product URL.
func (s *Scraper) ScrapeProduct(urlOrID string) []models.Offer {
	productURL := urlOrID
	if !strings.Contains(urlOrID, "://") {
		id := digitsOnly(urlOrID)
		if id == "" {
			return []models.Offer{}
		}
		productURL = s.BaseURL + "/produkt.php?p=" + id
	}

	fingerprint := cache.Fingerprint("product", productURL)
	if cached, ok := s.cached(fingerprint); ok {
		return cached
	}

	doc, ok := s.fetchDocument(productURL)
	if !ok {
		return []models.Offer{}
	}

	offers := s.runStrategies(productStrategies, doc)
	if len(offers) == 0 {
		// Best-effort single offer from the heading; exempt from the
		// store filter since it deliberately carries the host brand.
		offers = s.resolveOffers(validOnly(extractHeading(doc)))
	}
	if len(offers) == 0 {
		return []models.Offer{}
	}

	s.store(fingerprint, offers)
	return offers
}

func (s *Scraper) runStrategies(strategies []strategy, doc *goquery.Document) []models.Offer {
	for _, st := range strategies {
		offers := Dedupe(FilterStore(validOnly(st.extract(doc))))
		if len(offers) > 0 {
			log.Printf("[%s] %s extractor produced %d offers", Source, st.name, len(offers))
			return s.resolveOffers(offers)
		}
	}
	return nil
}

func (s *Scraper) fetchDocument(pageURL string) (*goquery.Document, bool) {
	body, err := s.Fetcher.Get(pageURL)
	if err != nil {
		log.Printf("[%s] fetch %s: %v", Source, pageURL, err)
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		log.Printf("[%s] parse %s: %v", Source, pageURL, err)
		return nil, false
	}
	return doc, true
}

func (s *Scraper) cached(fingerprint string) ([]models.Offer, bool) {
	if s.Cache == nil {
		return nil, false
	}
	offers, ok := s.Cache.Get(fingerprint)
	if ok {
		logger.Dedup("[%s] cache hit for %s", Source, fingerprint)
	}
	return offers, ok
}

func (s *Scraper) store(fingerprint string, offers []models.Offer) {
	if s.Cache != nil {
		s.Cache.Set(fingerprint, offers)
	}
}

// resolve turns a possibly relative href into an absolute URL.
func (s *Scraper) resolve(href string) string {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (s *Scraper) resolveOffers(offers []models.Offer) []models.Offer {
	for i := range offers {
		if offers[i].StoreURL != "" {
			offers[i].StoreURL = s.resolve(offers[i].StoreURL)
		}
		if offers[i].ImageURL != "" {
			offers[i].ImageURL = s.resolve(offers[i].ImageURL)
		}
	}
	return offers
}

func validOnly(offers []models.Offer) []models.Offer {
	var out []models.Offer
	for _, o := range offers {
		if o.Valid() {
			out = append(out, o)
		}
	}
	return out
}

func digitsOnly(raw string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
}
