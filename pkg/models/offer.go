package models

import (
	"errors"
	"math"
)

// Availability is the canonical stock status of an offer. Raw source
// strings are never passed through; they are mapped onto this enum.
type Availability string

const (
	InStock      Availability = "in_stock"
	Incoming     Availability = "incoming"
	NotAvailable Availability = "not_available"
)

var (
	ErrFetchFailed = errors.New("fetch failed")
	ErrNoOffers    = errors.New("no offers found")
)

// Offer is one retailer's priced, availability-tagged listing for a product.
type Offer struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	Store        string       `json:"store"`
	StoreURL     string       `json:"store_url"`
	Availability Availability `json:"availability"`
	ImageURL     string       `json:"image_url,omitempty"`
}

// Valid reports whether the offer satisfies the minimum contract:
// a positive finite price and non-empty name and store.
func (o Offer) Valid() bool {
	if o.Name == "" || o.Store == "" {
		return false
	}
	return o.Price > 0 && !math.IsInf(o.Price, 0) && !math.IsNaN(o.Price)
}
