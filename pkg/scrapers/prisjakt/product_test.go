package prisjakt

import (
	"strings"
	"testing"

	"github.com/xobust/hitta-ram/pkg/models"
)

const productPageHTML = `
<html><body>
<h1>Corsair Vengeance RGB DDR5 7000MHz 48GB</h1>
<div class="product-offers">
  <a class="store-offer" href="/go/1" data-price="7290.00">
    <span class="store-offer__store">Proshop</span>
    <i class="stock-icon stock-icon--in-stock"></i>
  </a>
  <a class="store-offer" href="/go/2" data-price="7490.00">
    <img alt="Inet" src="inet.png">
    <i class="stock-icon stock-icon--incoming"></i>
  </a>
  <a class="store-offer" href="/go/3" data-price="7590.00">
    <span class="store-offer__store">Webhallen</span>
  </a>
  <a class="store-offer" href="/go/4" data-price="7190.00">
    <span class="store-offer__store">Visa 12 fler</span>
  </a>
  <a class="store-offer" href="/go/5" data-price="7890.00">
    <span class="store-offer__store">Prisjakt</span>
  </a>
  <a class="store-offer" href="/go/6">
    <span class="store-offer__store">Komplett</span>
  </a>
</div>
</body></html>`

func TestStoreOfferExtraction(t *testing.T) {
	offers := extractStoreOffers(parseDoc(t, productPageHTML))
	if len(offers) != 3 {
		t.Fatalf("got %d offers, want 3 (noise labels and missing price skipped): %+v", len(offers), offers)
	}

	byStore := map[string]models.Offer{}
	for _, o := range offers {
		byStore[o.Store] = o
		if o.Name != "Corsair Vengeance RGB DDR5 7000MHz 48GB" {
			t.Errorf("Name = %q", o.Name)
		}
	}

	if byStore["Proshop"].Availability != models.InStock {
		t.Errorf("Proshop availability = %q", byStore["Proshop"].Availability)
	}
	if byStore["Inet"].Availability != models.Incoming {
		t.Errorf("Inet availability = %q (alt-attribute store label)", byStore["Inet"].Availability)
	}
	if byStore["Webhallen"].Availability != models.NotAvailable {
		t.Errorf("iconless offer availability = %q, want not_available", byStore["Webhallen"].Availability)
	}
	if byStore["Proshop"].Price != 7290 {
		t.Errorf("Proshop price = %v", byStore["Proshop"].Price)
	}
}

func TestStoreOfferLowestPricePerStore(t *testing.T) {
	html := `
<h1>Kingston Fury Beast 32GB</h1>
<a class="store-offer" href="/go/1" data-price="1299.00"><span class="store-offer__store">Inet</span><i class="stock-icon--in-stock"></i></a>
<a class="store-offer" href="/go/2" data-price="1199.00"><span class="store-offer__store">INET</span><i class="stock-icon--in-stock"></i></a>`

	offers := extractStoreOffers(parseDoc(t, html))
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1 per store", len(offers))
	}
	if offers[0].Price != 1199 {
		t.Errorf("Price = %v, want the lower 1199", offers[0].Price)
	}
}

func TestPageWideOutOfStockOverridesIcons(t *testing.T) {
	html := strings.Replace(productPageHTML, "</body>",
		`<div class="stock-status stock-status--none">Ingen butik har varan i lager</div></body>`, 1)

	offers := extractStoreOffers(parseDoc(t, html))
	if len(offers) == 0 {
		t.Fatal("expected offers")
	}
	for _, o := range offers {
		if o.Availability != models.NotAvailable {
			t.Errorf("%s availability = %q, want not_available under page-wide marker", o.Store, o.Availability)
		}
	}
}

func TestHeadingFallback(t *testing.T) {
	html := `<h1>Crucial Ballistix 16GB</h1><p>Lägsta pris just nu: 899 kr</p>`
	offers := extractHeading(parseDoc(t, html))
	if len(offers) != 1 {
		t.Fatalf("got %d offers, want 1", len(offers))
	}
	o := offers[0]
	if o.Store != HostBrand || o.Availability != models.InStock || o.Price != 899 {
		t.Errorf("offer = %+v", o)
	}
}

func TestHeadingFallbackNeedsNameAndPrice(t *testing.T) {
	if offers := extractHeading(parseDoc(t, `<p>7 290 kr</p>`)); offers != nil {
		t.Errorf("no heading should mean no offer, got %+v", offers)
	}
	if offers := extractHeading(parseDoc(t, `<h1>Namn</h1><p>slut</p>`)); offers != nil {
		t.Errorf("no price should mean no offer, got %+v", offers)
	}
}
