package prisjakt

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xobust/hitta-ram/pkg/models"
)

// Labels that look like a store but are really site chrome. Lowercase.
var noiseStores = map[string]bool{
	"prisjakt":    true,
	"prisjakt.nu": true,
	"butik":       true,
	"store":       true,
	"annons":      true,
	"ad":          true,
	"kr":          true,
}

// Words that mark an offer label as navigation or rating text rather
// than a retailer name. Lowercase.
var noiseLabelWords = []string{
	"betyg", "recension", "omdöme", "rating", "review",
	"meny", "logga in", "till toppen",
}

var viewMoreRe = regexp.MustCompile(`(?i)^(visa|view)\s+\d+\s+(fler|more)$`)

// IsNoiseStore reports whether a search-card store label is a generic
// site token rather than a real retailer.
func IsNoiseStore(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	return l == "" || noiseStores[l]
}

func isNoiseOfferLabel(label string) bool {
	if IsNoiseStore(label) {
		return true
	}
	l := strings.ToLower(strings.TrimSpace(label))
	for _, w := range noiseLabelWords {
		if strings.Contains(l, w) {
			return true
		}
	}
	return viewMoreRe.MatchString(l)
}

// ToAvailability maps a raw availability string onto the canonical enum.
// Every input maps to exactly one value; unknown or empty input means
// not available. Canonical values map to themselves.
func ToAvailability(raw string) models.Availability {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case s == "":
		return models.NotAvailable
	case containsAny(s,
		"not_available", "not available", "unavailable",
		"outofstock", "out of stock", "out_of_stock",
		"soldout", "sold out", "slutsåld", "utgått", "discontinued"):
		return models.NotAvailable
	case containsAny(s,
		"incoming", "preorder", "pre-order", "pre order",
		"backorder", "back-order", "presale", "kommande", "förhandsboka"):
		return models.Incoming
	case containsAny(s,
		"instock", "in_stock", "in stock", "in-stock",
		"i lager", "available", "limitedavailability"):
		return models.InStock
	default:
		return models.NotAvailable
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// FilterStore drops offers whose store is the host site itself. Those
// entries are navigation artifacts, not retailers.
func FilterStore(offers []models.Offer) []models.Offer {
	var kept []models.Offer
	for _, o := range offers {
		store := strings.TrimSpace(o.Store)
		if strings.EqualFold(store, HostBrand) || strings.EqualFold(store, HostBrand+".nu") {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

// Dedupe removes duplicate offers by name|store|storeURL. The first
// occurrence wins, so offers from earlier, more reliable extraction
// stages are never overwritten by later duplicates.
func Dedupe(offers []models.Offer) []models.Offer {
	seen := make(map[string]bool, len(offers))
	var out []models.Offer
	for _, o := range offers {
		key := strings.ToLower(o.Name + "|" + o.Store + "|" + o.StoreURL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, o)
	}
	return out
}

// ParsePrice parses a marked-up price into a positive finite float.
// Handles "7 290 kr", "7 290,50", "1.234,56", "7290.50" and non-breaking
// spaces. A single dot followed by exactly three digits is read as a
// thousands separator.
func ParsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), ",.")
	if s == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			i := strings.LastIndex(s, ",")
			s = strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 || len(s)-lastDot-1 == 3 {
			s = strings.ReplaceAll(s[:lastDot], ".", "") + thousandsTail(s, lastDot)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func thousandsTail(s string, lastDot int) string {
	tail := s[lastDot+1:]
	if len(tail) == 3 {
		return tail
	}
	return "." + tail
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
