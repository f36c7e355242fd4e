package prisjakt

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xobust/hitta-ram/pkg/models"
)

const pageOutOfStockText = "ingen butik har varan i lager"

// extractStoreOffers parses the per-store "go to shop" rows of a product
// detail page. Availability comes from stock icon classes, except when
// the page carries its "no store has stock" marker, which overrides every
// row. Each store keeps only its lowest-priced row.
func extractStoreOffers(doc *goquery.Document) []models.Offer {
	name := cleanText(doc.Find("h1").First().Text())
	if name == "" {
		return nil
	}

	var out []models.Offer
	doc.Find("a.store-offer").Each(func(_ int, sel *goquery.Selection) {
		store := cleanText(sel.Find(".store-offer__store").First().Text())
		if store == "" {
			alt, _ := sel.Find("img").First().Attr("alt")
			store = cleanText(alt)
		}
		if store == "" || isNoiseOfferLabel(store) {
			return
		}

		priceAttr, _ := sel.Attr("data-price")
		price, ok := ParsePrice(priceAttr)
		if !ok {
			return
		}

		avail := models.NotAvailable
		switch {
		case sel.Find(`[class*="in-stock"]`).Length() > 0:
			avail = models.InStock
		case sel.Find(`[class*="incoming"]`).Length() > 0:
			avail = models.Incoming
		}

		href, _ := sel.Attr("href")
		out = append(out, models.Offer{
			ID:           name + " :: " + firstNonEmpty(href, store),
			Name:         name,
			Price:        price,
			Currency:     Currency,
			Store:        store,
			StoreURL:     href,
			Availability: avail,
		})
	})

	if pageOutOfStock(doc) {
		for i := range out {
			out[i].Availability = models.NotAvailable
		}
	}

	return lowestPerStore(out)
}

func pageOutOfStock(doc *goquery.Document) bool {
	if doc.Find(".stock-status--none").Length() > 0 {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Find("body").Text()), pageOutOfStockText)
}

// lowestPerStore deduplicates by store name (case-insensitive), keeping
// the lowest price per store and first-seen order.
func lowestPerStore(offers []models.Offer) []models.Offer {
	index := make(map[string]int, len(offers))
	var out []models.Offer
	for _, o := range offers {
		key := strings.ToLower(o.Store)
		if i, ok := index[key]; ok {
			if o.Price < out[i].Price {
				out[i] = o
			}
			continue
		}
		index[key] = len(out)
		out = append(out, o)
	}
	return out
}

// extractHeading builds a single best-effort offer from the page heading
// and the first visible price. The host brand stands in as the store; the
// page represents the site's lowest price, not a specific retailer.
func extractHeading(doc *goquery.Document) []models.Offer {
	name := cleanText(doc.Find("h1").First().Text())
	if name == "" {
		return nil
	}
	m := anchorPriceRe.FindStringSubmatch(doc.Find("body").Text())
	if m == nil {
		return nil
	}
	price, ok := ParsePrice(m[1])
	if !ok {
		return nil
	}
	return []models.Offer{{
		ID:           name + " :: " + HostBrand,
		Name:         name,
		Price:        price,
		Currency:     Currency,
		Store:        HostBrand,
		Availability: models.InStock,
	}}
}
