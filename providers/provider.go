package providers

import (
	"context"
	"strings"
	"time"

	"pricescout/models"
)

// Provider is a single external product-search source plus its extraction
// mechanism. Search returns source-ordered canonical records; resources
// opened during the call (browser, subprocess, HTTP) are released before it
// returns on every path.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, take int) ([]models.Product, error)
}

// rawItem is the untyped field tuple every extraction mechanism produces
// before normalization.
type rawItem struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	Price         string `json:"price"`
	CurrencyHint  string `json:"price_currency"`
	OriginalPrice string `json:"original_price"`
	Condition     string `json:"condition"`
	Location      string `json:"location"`
	Shipping      string `json:"shipping"`
	Image         string `json:"image"`
}

// mapMeta carries the per-provider constants mapRawItems stamps onto every
// record.
type mapMeta struct {
	Source          string
	SourceLabel     string
	ScrapeMethod    string
	SelectorVersion string
	DefaultCurrency string
	FreeShipWord    string
	LinkPrefix      string
	Query           string
}

// mapRawItems normalizes raw tuples into canonical records. Items missing
// title or link are dropped, links are made absolute, prices run through
// the money normalizer, and provenance is stamped. Output keeps source
// order and is truncated to take.
func mapRawItems(items []rawItem, take int, meta mapMeta) []models.Product {
	now := time.Now().UTC()
	out := make([]models.Product, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		link := absoluteLink(strings.TrimSpace(it.Link), meta.LinkPrefix)
		if title == "" || link == "" {
			continue
		}
		price := ParseMoney(it.Price, it.CurrencyHint, meta.DefaultCurrency)
		original := ParseMoney(it.OriginalPrice, it.CurrencyHint, meta.DefaultCurrency)

		p := models.Product{
			ID:          link,
			Title:       title,
			Link:        link,
			SearchQuery: meta.Query,
			Condition:   strings.TrimSpace(it.Condition),
			Offer: models.Offer{
				Price:           price,
				OriginalPrice:   original,
				DiscountPercent: DiscountPercent(original, price),
			},
			Shipping: models.Shipping{
				Free:    freeShipping(it.Shipping, meta.FreeShipWord),
				Promise: strings.TrimSpace(it.Shipping),
			},
			Seller: models.Seller{
				Location: strings.TrimSpace(it.Location),
			},
			Media: models.Media{
				Thumbnail: strings.TrimSpace(it.Image),
			},
			Source:          meta.Source,
			SourceLabel:     meta.SourceLabel,
			ScrapeMethod:    meta.ScrapeMethod,
			SelectorVersion: meta.SelectorVersion,
			FetchedAt:       now,
		}
		if p.Media.Thumbnail != "" {
			p.Media.Images = []string{p.Media.Thumbnail}
		}
		if it.Price != "" && price == nil {
			p.Warnings = append(p.Warnings, "unparseable price: "+strings.TrimSpace(it.Price))
		}
		out = append(out, p)
		if len(out) >= take {
			break
		}
	}
	return out
}

// absoluteLink resolves relative and protocol-relative links against the
// source host.
func absoluteLink(link, prefix string) string {
	switch {
	case link == "":
		return ""
	case strings.HasPrefix(link, "//"):
		return "https:" + link
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link
	case prefix != "" && strings.HasPrefix(link, "/"):
		return prefix + link
	}
	return link
}

func freeShipping(shippingText, keyword string) bool {
	if shippingText == "" {
		return false
	}
	text := strings.ToLower(shippingText)
	if keyword != "" && strings.Contains(text, keyword) {
		return true
	}
	return strings.Contains(text, "free")
}

// ClampTake normalizes the requested result count. Values outside [1,100]
// fall back to the default of 20.
func ClampTake(take int) int {
	if take < 1 || take > 100 {
		return 20
	}
	return take
}
