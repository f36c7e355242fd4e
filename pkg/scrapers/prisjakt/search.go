package prisjakt

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xobust/hitta-ram/pkg/models"
)

// Listing pages contain many irrelevant anchors; the naive scan keeps at
// most this many hits.
const maxAnchorListings = 10

var anchorPriceRe = regexp.MustCompile(`(\d[\d\s\x{00a0}\x{202f}]*(?:[.,]\d+)?)\s*kr`)

// extractPrimaryCard pulls the single highlighted best-offer card from a
// search-results page. An absent card means "try the next strategy",
// never an error. A card price is by construction a currently buyable
// lowest price, so the offer is in stock.
func extractPrimaryCard(doc *goquery.Document) []models.Offer {
	link := doc.Find(`a.search-hit__link[href*="produkt.php"]`).First()
	if link.Length() == 0 {
		return nil
	}
	card := link.Closest(".search-hit")
	if card.Length() == 0 {
		card = link.Parent()
	}

	name := cleanText(link.Text())
	price, ok := ParsePrice(card.Find(".search-hit__price").First().Text())
	if name == "" || !ok {
		return nil
	}

	store := storeLabel(card.Find(".search-hit__store").First().Text())
	if IsNoiseStore(store) {
		return nil
	}

	href, _ := link.Attr("href")
	return []models.Offer{{
		ID:           name + " :: " + store,
		Name:         name,
		Price:        price,
		Currency:     Currency,
		Store:        store,
		StoreURL:     href,
		Availability: models.InStock,
	}}
}

// extractAnchorListings is the last-resort scan over every anchor block,
// keeping entries that carry both a heading-style title and a
// price-with-unit pattern.
func extractAnchorListings(doc *goquery.Document) []models.Offer {
	var out []models.Offer
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		name := cleanText(sel.Find("h2, h3").First().Text())
		if name == "" {
			return
		}
		m := anchorPriceRe.FindStringSubmatch(sel.Text())
		if m == nil {
			return
		}
		price, ok := ParsePrice(m[1])
		if !ok {
			return
		}

		// Listing hits aggregate several retailers; keep an explicit
		// store label only when the block carries one.
		store := storeLabel(sel.Find(`[class*="store"]`).First().Text())
		if store == "" || IsNoiseStore(store) {
			store = "flera butiker"
		}

		href, _ := sel.Attr("href")
		out = append(out, models.Offer{
			ID:           name + " :: " + store,
			Name:         name,
			Price:        price,
			Currency:     Currency,
			Store:        store,
			StoreURL:     href,
			Availability: models.InStock,
		})
	})

	out = Dedupe(out)
	if len(out) > maxAnchorListings {
		out = out[:maxAnchorListings]
	}
	return out
}

// storeLabel strips the "hos <store>" prefix used by search cards.
func storeLabel(raw string) string {
	s := cleanText(raw)
	s = strings.TrimPrefix(s, "hos ")
	return strings.TrimSpace(s)
}
