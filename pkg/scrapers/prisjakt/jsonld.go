package prisjakt

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xobust/hitta-ram/pkg/models"
)

// extractStructuredData pulls offers out of the page's JSON-LD blocks.
// Each block is parsed independently so one malformed script never costs
// the others, and the object graph is walked recursively because product
// nodes can sit anywhere inside @graph wrappers or nested lists.
func extractStructuredData(doc *goquery.Document) []models.Offer {
	var offers []models.Offer
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(sel.Text()), &payload); err != nil {
			return // malformed block, skip
		}
		walkProducts(payload, func(node map[string]any) {
			offers = append(offers, productOffers(node)...)
		})
	})
	return offers
}

func walkProducts(v any, visit func(map[string]any)) {
	switch t := v.(type) {
	case map[string]any:
		if isProductNode(t) {
			visit(t)
		}
		for _, child := range t {
			walkProducts(child, visit)
		}
	case []any:
		for _, child := range t {
			walkProducts(child, visit)
		}
	}
}

func isProductNode(node map[string]any) bool {
	if name, _ := node["name"].(string); strings.TrimSpace(name) == "" {
		return false
	}
	switch t := node["@type"].(type) {
	case string:
		return strings.Contains(t, "Product")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.Contains(s, "Product") {
				return true
			}
		}
	}
	return false
}

func productOffers(node map[string]any) []models.Offer {
	name, _ := node["name"].(string)
	name = cleanText(name)

	productKey := firstNonEmpty(
		stringField(node, "sku"),
		stringField(node, "url"),
		name,
	)

	var image string
	switch img := node["image"].(type) {
	case string:
		image = img
	case []any:
		if len(img) > 0 {
			image, _ = img[0].(string)
		}
	}

	var entries []any
	switch o := node["offers"].(type) {
	case map[string]any:
		entries = []any{o}
	case []any:
		entries = o
	}

	var out []models.Offer
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		price, ok := jsonPrice(entry["price"])
		if !ok {
			if ps, found := entry["priceSpecification"].(map[string]any); found {
				price, ok = jsonPrice(ps["price"])
			}
		}
		if !ok {
			continue
		}

		offerURL := stringField(entry, "url")
		store := sellerName(entry)
		if store == "" {
			store = hostOf(offerURL)
		}
		if store == "" {
			continue
		}

		currency := stringField(entry, "priceCurrency")
		if currency == "" {
			currency = Currency
		}

		out = append(out, models.Offer{
			ID:           productKey + " :: " + firstNonEmpty(offerURL, store),
			Name:         name,
			Price:        price,
			Currency:     currency,
			Store:        store,
			StoreURL:     offerURL,
			Availability: ToAvailability(stringField(entry, "availability")),
			ImageURL:     image,
		})
	}
	return out
}

func sellerName(entry map[string]any) string {
	if s, ok := entry["seller"].(map[string]any); ok {
		return cleanText(stringField(s, "name"))
	}
	return ""
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func jsonPrice(v any) (float64, bool) {
	switch p := v.(type) {
	case float64:
		if p > 0 {
			return p, true
		}
	case string:
		return ParsePrice(p)
	}
	return 0, false
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
