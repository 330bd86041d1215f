package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"pricescout/search"
)

// CacheWarmer periodically re-runs a configured set of popular queries
// through the aggregator so their cache entries never go cold.
type CacheWarmer struct {
	cron       *cron.Cron
	aggregator *search.Aggregator
	queries    []string
	interval   time.Duration
}

func NewCacheWarmer(aggregator *search.Aggregator, queries []string, interval time.Duration) *CacheWarmer {
	return &CacheWarmer{
		cron:       cron.New(),
		aggregator: aggregator,
		queries:    queries,
		interval:   interval,
	}
}

// Start schedules the warming job. No-op when no warm queries are
// configured.
func (cw *CacheWarmer) Start() error {
	if len(cw.queries) == 0 {
		log.Println("Cache warmer disabled: no warm queries configured")
		return nil
	}

	spec := fmt.Sprintf("@every %s", cw.interval)
	if _, err := cw.cron.AddFunc(spec, cw.warmAll); err != nil {
		return fmt.Errorf("failed to schedule cache warmer: %v", err)
	}

	cw.cron.Start()
	log.Printf("Cache warmer started: %d queries %s", len(cw.queries), spec)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (cw *CacheWarmer) Stop() {
	if cw.cron != nil {
		<-cw.cron.Stop().Done()
	}
}

func (cw *CacheWarmer) warmAll() {
	log.Printf("Warming cache for %d queries", len(cw.queries))
	for _, query := range cw.queries {
		cw.warm(query)
	}
}

func (cw *CacheWarmer) warm(query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	products, cacheHit, err := cw.aggregator.Search(ctx, query, "all", 20)
	if err != nil {
		log.Printf("Cache warm failed for %q: %v", query, err)
		return
	}
	if cacheHit {
		log.Printf("Cache warm skipped for %q: entry still fresh", query)
		return
	}
	log.Printf("Cache warmed for %q: %d products", query, len(products))
}
