package providers

import (
	"context"
	"strings"
	"time"

	"pricescout/models"
)

// localSamples is a tiny static catalog used for demos and smoke tests
// when no external source is reachable.
var localSamples = []struct {
	title    string
	link     string
	price    float64
	currency string
	original float64
	image    string
}{
	{"Notebook 14 8GB RAM 256GB SSD", "https://example.com/products/notebook-14", 499999, "ARS", 579999, "https://example.com/img/notebook-14.jpg"},
	{"Auriculares Bluetooth Inalambricos", "https://example.com/products/auriculares-bt", 35999, "ARS", 0, "https://example.com/img/auriculares-bt.jpg"},
	{"Smart TV 50 4K UHD", "https://example.com/products/smart-tv-50", 689999, "ARS", 749999, "https://example.com/img/smart-tv-50.jpg"},
	{"Teclado Mecanico RGB", "https://example.com/products/teclado-mecanico", 54999, "ARS", 0, "https://example.com/img/teclado-mecanico.jpg"},
	{"Mouse Gamer 16000 DPI", "https://example.com/products/mouse-gamer", 28999, "ARS", 31999, "https://example.com/img/mouse-gamer.jpg"},
}

// Local serves the static sample catalog. Unlike the scraping providers it
// tolerates a blank query and simply returns everything.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (p *Local) Name() string { return "local" }

func (p *Local) Search(_ context.Context, query string, take int) ([]models.Product, error) {
	take = ClampTake(take)
	query = strings.TrimSpace(query)
	needle := strings.ToLower(query)
	now := time.Now().UTC()

	out := make([]models.Product, 0, len(localSamples))
	for _, s := range localSamples {
		if needle != "" && !strings.Contains(strings.ToLower(s.title), needle) {
			continue
		}
		var original *models.Money
		if s.original > 0 {
			original = &models.Money{Currency: s.currency, Amount: s.original}
		}
		price := &models.Money{Currency: s.currency, Amount: s.price}
		out = append(out, models.Product{
			ID:          s.link,
			Title:       s.title,
			Link:        s.link,
			SearchQuery: query,
			Offer: models.Offer{
				Price:           price,
				OriginalPrice:   original,
				DiscountPercent: DiscountPercent(original, price),
			},
			Media: models.Media{
				Thumbnail: s.image,
				Images:    []string{s.image},
			},
			Source:       "local",
			SourceLabel:  "Local Catalog",
			ScrapeMethod: "static",
			FetchedAt:    now,
		})
		if len(out) >= take {
			break
		}
	}
	return out, nil
}
