package models

import "time"

// Money is a normalized monetary amount. Amount is the plain decimal value
// ("1.234,56" parses to 1234.56); Currency is an upper-cased ISO-ish code.
type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Offer groups the pricing facts of one product listing.
type Offer struct {
	Price           *Money   `json:"price,omitempty"`
	OriginalPrice   *Money   `json:"original_price,omitempty"`
	DiscountPercent *int     `json:"discount_percent,omitempty"`
	UnitPrice       string   `json:"unit_price,omitempty"`
	Installments    string   `json:"installments,omitempty"`
	PaymentBadges   []string `json:"payment_badges,omitempty"`
}

// Shipping carries delivery information inferred from the listing.
type Shipping struct {
	Free    bool   `json:"free"`
	Promise string `json:"promise,omitempty"`
}

// Seller identifies the merchant behind a listing. Scraped sources rarely
// expose it, so every field is optional.
type Seller struct {
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
	Rating   string `json:"rating,omitempty"`
}

// Media holds the listing's imagery.
type Media struct {
	Thumbnail string   `json:"thumbnail,omitempty"`
	Images    []string `json:"images,omitempty"`
	Videos    []string `json:"videos,omitempty"`
}

// Product is the canonical record every provider maps into. Title and Link
// are mandatory; a raw item missing either never becomes a Product.
type Product struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Link         string            `json:"link"`
	CategoryPath []string          `json:"category_path,omitempty"`
	SearchQuery  string            `json:"search_query"`
	Position     int               `json:"position,omitempty"`
	Condition    string            `json:"condition,omitempty"`
	Availability string            `json:"availability,omitempty"`
	SoldQuantity string            `json:"sold_quantity,omitempty"`
	Offer        Offer             `json:"offer"`
	Shipping     Shipping          `json:"shipping"`
	Seller       Seller            `json:"seller"`
	Media        Media             `json:"media"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`

	// Provenance.
	Source          string    `json:"source"`
	SourceLabel     string    `json:"source_label"`
	ScrapeMethod    string    `json:"scrape_method"`
	SelectorVersion string    `json:"selector_version,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// SearchLog is one row in the search audit table.
type SearchLog struct {
	ID         int64     `json:"id"`
	Provider   string    `json:"provider"`
	Query      string    `json:"query"`
	Take       int       `json:"take"`
	ResultN    int       `json:"result_count"`
	CacheHit   bool      `json:"cache_hit"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// APIError carries a machine-readable code plus a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the uniform envelope for every JSON endpoint.
type APIResponse struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *APIError   `json:"error,omitempty"`
}

// OKResponse wraps data in a success envelope.
func OKResponse(data interface{}) APIResponse {
	return APIResponse{OK: true, Data: data}
}

// ErrorResponse builds a failure envelope.
func ErrorResponse(code, message string) APIResponse {
	return APIResponse{OK: false, Error: &APIError{Code: code, Message: message}}
}
