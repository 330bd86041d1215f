// Package search orchestrates the external product providers behind one
// query interface: selector resolution, fan-out, merging, and caching.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"pricescout/cache"
	"pricescout/config"
	"pricescout/models"
	"pricescout/providers"
)

// ErrProviderNotSupported is returned for an unknown provider selector,
// before any provider is invoked.
var ErrProviderNotSupported = errors.New("provider not supported")

// QueryRequiredError is returned when a scraping selector is invoked
// without a query. Only the local catalog tolerates a blank query.
type QueryRequiredError struct {
	Selector string
}

func (e *QueryRequiredError) Error() string {
	return fmt.Sprintf("provider %q requires a non-blank query", e.Selector)
}

// AllFailedError is returned only when every invoked provider failed.
type AllFailedError struct {
	Errs []error
}

func (e *AllFailedError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "all providers failed: " + strings.Join(msgs, "; ")
}

// Providers holds one provider per reachable selector. All fields are
// expected to be non-nil; disabled providers short-circuit internally.
type Providers struct {
	Local        providers.Provider
	MercadoLibre providers.Provider // browser mechanism
	ScrapingBee  providers.Provider
	ScrapeGraph  providers.Provider
	Amazon       providers.Provider
	AliExpress   providers.Provider
}

type invocation struct {
	selector string
	provider providers.Provider
}

// Aggregator resolves a provider selector, fans out to the selected
// providers, and merges their results into one positioned list.
type Aggregator struct {
	providers   Providers
	store       cache.Store
	cacheOpts   config.CacheOptions
	meliBrowser bool // bare "mercadolibre" resolves to the browser mechanism
}

func New(store cache.Store, cacheOpts config.CacheOptions, meliBrowser bool, p Providers) *Aggregator {
	return &Aggregator{
		providers:   p,
		store:       store,
		cacheOpts:   cacheOpts,
		meliBrowser: meliBrowser,
	}
}

// Search runs one aggregation request. The returned bool reports whether
// the response was served from cache.
func (a *Aggregator) Search(ctx context.Context, query, selector string, take int) ([]models.Product, bool, error) {
	take = providers.ClampTake(take)
	query = strings.TrimSpace(query)
	normalized := strings.ToLower(query)

	resolved, invocations, err := a.resolve(selector, query)
	if err != nil {
		return nil, false, err
	}

	cacheable := a.store != nil && a.cacheOpts.Enabled && normalized != ""
	key := fmt.Sprintf("ext-products:%s:%s:%d", resolved, normalized, take)
	if cacheable {
		if products, ok := a.cacheGet(ctx, key); ok {
			return products, true, nil
		}
	}

	results := make([][]models.Product, len(invocations))
	errs := make([]error, len(invocations))
	var wg sync.WaitGroup
	for i, inv := range invocations {
		wg.Add(1)
		go func(i int, inv invocation) {
			defer wg.Done()
			// A provider bringing the whole request down with a panic would
			// defeat the isolation between sources.
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("provider %s panicked: %v", inv.selector, r)
				}
			}()
			items, err := inv.provider.Search(ctx, query, take)
			if err != nil {
				errs[i] = fmt.Errorf("provider %s: %w", inv.selector, err)
				return
			}
			results[i] = items
		}(i, inv)
	}
	wg.Wait()

	var merged []models.Product
	var failures []error
	for i := range invocations {
		if errs[i] != nil {
			log.Printf("search: %v", errs[i])
			failures = append(failures, errs[i])
			continue
		}
		merged = append(merged, results[i]...)
	}
	if len(invocations) > 0 && len(failures) == len(invocations) {
		return nil, false, &AllFailedError{Errs: failures}
	}

	products := postProcess(merged, normalized, query, take)

	if cacheable {
		a.cacheSet(ctx, key, products)
	}
	return products, false, nil
}

// resolve maps the request selector to the providers to invoke. The
// returned string is the fully resolved selector used as the cache key
// component, so the two mechanisms behind a bare source selector never
// share a cache entry.
func (a *Aggregator) resolve(selector, query string) (string, []invocation, error) {
	selector = strings.ToLower(strings.TrimSpace(selector))
	if selector == "" {
		selector = "all"
	}

	meliSelector := "mercadolibre-browser"
	meliProvider := a.providers.MercadoLibre
	if !a.meliBrowser {
		meliSelector = "mercadolibre-scrapingbee"
		meliProvider = a.providers.ScrapingBee
	}

	switch selector {
	case "all":
		if query == "" {
			// Without a query only the local catalog has anything to say.
			return "all", []invocation{{"local", a.providers.Local}}, nil
		}
		return "all", []invocation{
			{"local", a.providers.Local},
			{meliSelector, meliProvider},
			{"amazon-browser", a.providers.Amazon},
			{"aliexpress-browser", a.providers.AliExpress},
		}, nil
	case "local":
		return "local", []invocation{{"local", a.providers.Local}}, nil
	case "mercadolibre", "mercadolibre-browser", "mercadolibre-scrapingbee",
		"mercadolibre-scrapegraph", "amazon", "amazon-browser",
		"aliexpress", "aliexpress-browser":
		if query == "" {
			return "", nil, &QueryRequiredError{Selector: selector}
		}
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrProviderNotSupported, selector)
	}

	switch selector {
	case "mercadolibre":
		return meliSelector, []invocation{{meliSelector, meliProvider}}, nil
	case "mercadolibre-browser":
		return selector, []invocation{{selector, a.providers.MercadoLibre}}, nil
	case "mercadolibre-scrapingbee":
		return selector, []invocation{{selector, a.providers.ScrapingBee}}, nil
	case "mercadolibre-scrapegraph":
		return selector, []invocation{{selector, a.providers.ScrapeGraph}}, nil
	case "amazon", "amazon-browser":
		return "amazon-browser", []invocation{{"amazon-browser", a.providers.Amazon}}, nil
	case "aliexpress", "aliexpress-browser":
		return "aliexpress-browser", []invocation{{"aliexpress-browser", a.providers.AliExpress}}, nil
	}
	// Unreachable, the first switch already validated the selector.
	return "", nil, fmt.Errorf("%w: %q", ErrProviderNotSupported, selector)
}

// postProcess applies the title filter, truncates, assigns positions, and
// restamps the search query on every record.
func postProcess(items []models.Product, normalized, query string, take int) []models.Product {
	out := make([]models.Product, 0, len(items))
	for _, item := range items {
		if normalized != "" && !strings.Contains(strings.ToLower(item.Title), normalized) {
			continue
		}
		item.Position = len(out) + 1
		item.SearchQuery = query
		out = append(out, item)
		if len(out) >= take {
			break
		}
	}
	return out
}

func (a *Aggregator) cacheGet(ctx context.Context, key string) ([]models.Product, bool) {
	value, ok, err := a.store.GetString(ctx, key)
	if err != nil {
		log.Printf("search: cache read failed for %s: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal([]byte(value), &products); err != nil {
		log.Printf("search: discarding corrupt cache entry %s: %v", key, err)
		return nil, false
	}
	return products, true
}

func (a *Aggregator) cacheSet(ctx context.Context, key string, products []models.Product) {
	value, err := json.Marshal(products)
	if err != nil {
		log.Printf("search: cache marshal failed for %s: %v", key, err)
		return
	}
	if err := a.store.SetString(ctx, key, string(value), a.cacheOpts.TTL); err != nil {
		log.Printf("search: cache write failed for %s: %v", key, err)
	}
}
