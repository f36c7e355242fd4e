package prisjakt

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/xobust/hitta-ram/pkg/models"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestStructuredDataGraphWalk(t *testing.T) {
	html := `
<html><head>
<script type="application/ld+json">{ this is not json</script>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "BreadcrumbList", "name": "crumbs"},
    {
      "@type": "Product",
      "name": "Corsair Vengeance DDR5 7000MHz 48GB",
      "sku": "CMH48GX5M2B7000C36",
      "image": ["https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"],
      "offers": [
        {
          "@type": "Offer",
          "price": "7 990,00",
          "priceCurrency": "SEK",
          "availability": "https://schema.org/InStock",
          "url": "https://www.proshop.se/ram/123",
          "seller": {"@type": "Organization", "name": "Proshop"}
        },
        {
          "@type": "Offer",
          "price": 8190.0,
          "availability": "https://schema.org/PreOrder",
          "url": "https://www.inet.se/produkt/456"
        },
        {
          "@type": "Offer",
          "price": 0,
          "seller": {"name": "Gratisbutiken"}
        }
      ]
    }
  ]
}
</script>
</head><body></body></html>`

	offers := extractStructuredData(parseDoc(t, html))
	if len(offers) != 2 {
		t.Fatalf("got %d offers, want 2: %+v", len(offers), offers)
	}

	first := offers[0]
	if first.ID != "CMH48GX5M2B7000C36 :: https://www.proshop.se/ram/123" {
		t.Errorf("ID = %q", first.ID)
	}
	if first.Price != 7990 {
		t.Errorf("Price = %v, want 7990", first.Price)
	}
	if first.Store != "Proshop" || first.Currency != "SEK" {
		t.Errorf("Store/Currency = %q/%q", first.Store, first.Currency)
	}
	if first.Availability != models.InStock {
		t.Errorf("Availability = %q", first.Availability)
	}
	if first.ImageURL != "https://cdn.example.com/a.jpg" {
		t.Errorf("ImageURL = %q, want first list element", first.ImageURL)
	}

	second := offers[1]
	if second.Store != "inet.se" {
		t.Errorf("seller-less offer should take its URL host as store, got %q", second.Store)
	}
	if second.Availability != models.Incoming {
		t.Errorf("Availability = %q, want incoming", second.Availability)
	}
	if second.Currency != Currency {
		t.Errorf("Currency = %q, want default %q", second.Currency, Currency)
	}
}

func TestStructuredDataSingleOfferObject(t *testing.T) {
	html := `
<script type="application/ld+json">
{
  "@type": ["Thing", "Product"],
  "name": "Kingston Fury Beast 32GB",
  "url": "https://www.prisjakt.nu/produkt.php?p=111",
  "offers": {"price": "1299", "seller": {"name": "Webhallen"}, "availability": "i lager"}
}
</script>`

	offers := extractStructuredData(parseDoc(t, html))
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.ID != "https://www.prisjakt.nu/produkt.php?p=111 :: Webhallen" {
		t.Errorf("ID = %q", o.ID)
	}
	if o.Price != 1299 || o.Store != "Webhallen" || o.Availability != models.InStock {
		t.Errorf("offer = %+v", o)
	}
}

func TestStructuredDataIgnoresNonProductNodes(t *testing.T) {
	html := `
<script type="application/ld+json">
{"@type": "WebSite", "name": "Prisjakt", "offers": {"price": 1}}
</script>`
	if offers := extractStructuredData(parseDoc(t, html)); len(offers) != 0 {
		t.Errorf("got %d offers from non-product graph", len(offers))
	}
}
