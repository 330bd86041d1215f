package providers

import "testing"

func TestMapRawItemsDropsIncomplete(t *testing.T) {
	raw := []rawItem{
		{Title: "Complete", Link: "https://x.test/item/1", Price: "1.234"},
		{Title: "", Link: "https://x.test/item/2"},
		{Title: "No link"},
		{Title: "Also complete", Link: "/item/3"},
	}
	out := mapRawItems(raw, 20, mapMeta{
		Source:          "test",
		DefaultCurrency: "ARS",
		LinkPrefix:      "https://x.test",
		Query:           "q",
	})
	if len(out) != 2 {
		t.Fatalf("got %d products, want 2", len(out))
	}
	if out[1].Link != "https://x.test/item/3" {
		t.Errorf("relative link not resolved: %q", out[1].Link)
	}
	if out[0].Offer.Price == nil || out[0].Offer.Price.Amount != 1234 {
		t.Errorf("price not normalized: %+v", out[0].Offer.Price)
	}
}

func TestMapRawItemsTruncates(t *testing.T) {
	raw := make([]rawItem, 30)
	for i := range raw {
		raw[i] = rawItem{Title: "t", Link: "https://x.test/item"}
	}
	out := mapRawItems(raw, 5, mapMeta{Source: "test", Query: "q"})
	if len(out) != 5 {
		t.Errorf("got %d products, want 5", len(out))
	}
}

func TestMapRawItemsDiscountAndShipping(t *testing.T) {
	raw := []rawItem{{
		Title:         "Oferta",
		Link:          "https://x.test/item/9",
		Price:         "80",
		OriginalPrice: "100",
		Shipping:      "Envío gratis",
	}}
	out := mapRawItems(raw, 20, mapMeta{
		Source:          "test",
		DefaultCurrency: "ARS",
		FreeShipWord:    "gratis",
		Query:           "q",
	})
	if len(out) != 1 {
		t.Fatalf("got %d products", len(out))
	}
	p := out[0]
	if p.Offer.DiscountPercent == nil || *p.Offer.DiscountPercent != 20 {
		t.Errorf("discount = %v, want 20", p.Offer.DiscountPercent)
	}
	if !p.Shipping.Free {
		t.Error("free shipping not inferred")
	}
}

func TestAbsoluteLink(t *testing.T) {
	cases := []struct {
		link, prefix, want string
	}{
		{"https://a.test/x", "https://b.test", "https://a.test/x"},
		{"//a.test/x", "https://b.test", "https://a.test/x"},
		{"/x", "https://b.test", "https://b.test/x"},
		{"", "https://b.test", ""},
	}
	for _, c := range cases {
		if got := absoluteLink(c.link, c.prefix); got != c.want {
			t.Errorf("absoluteLink(%q, %q) = %q, want %q", c.link, c.prefix, got, c.want)
		}
	}
}

func TestClampTake(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 20}, {-5, 20}, {500, 20}, {1, 1}, {100, 100}, {20, 20},
	}
	for _, c := range cases {
		if got := ClampTake(c.in); got != c.want {
			t.Errorf("ClampTake(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
