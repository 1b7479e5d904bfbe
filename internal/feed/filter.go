// Package feed fetches health and fitness headlines and picks out the ones
// that read like deals.
package feed

import "strings"

// MaxDeals bounds how many deal items are returned per request.
const MaxDeals = 10

// DefaultSource labels items whose feed entry has no source.
const DefaultSource = "Health news"

// Item is a headline linking out to an article or offer.
type Item struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// DealKeywords are matched as plain substrings of the lower-cased title, so
// "off" also hits "office". That looseness is accepted.
var DealKeywords = []string{
	"discount",
	"deal",
	"save",
	"off",
	"%",
	"membership",
	"sale",
	"promo",
	"offer",
	"coupon",
	"price",
	"grocery",
	"supermarket",
	"subscription",
	"gym",
	"fitness",
}

// LooksLikeDeal reports whether title contains any deal keyword.
func LooksLikeDeal(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range DealKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// FilterDeals keeps the deal-like items in feed order, stopping once
// MaxDeals have been collected.
func FilterDeals(items []Item) []Item {
	deals := make([]Item, 0, min(len(items), MaxDeals))
	for _, it := range items {
		if len(deals) == MaxDeals {
			break
		}
		if LooksLikeDeal(it.Title) {
			deals = append(deals, it)
		}
	}
	return deals
}
