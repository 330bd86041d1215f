package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"pricescout/cache"
	"pricescout/config"
	"pricescout/database"
	"pricescout/handlers"
	"pricescout/middleware"
	"pricescout/providers"
	"pricescout/repository"
	"pricescout/scheduler"
	"pricescout/search"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Search audit log is optional, the service runs without a database.
	if cfg.DatabaseURL != "" {
		if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.CloseDatabase()
		if err := database.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, search audit log disabled")
	}

	store := newCacheStore(cfg)

	aggregator := search.New(store, cfg.Cache, cfg.MercadoLibre.Enabled, search.Providers{
		Local:        providers.NewLocal(),
		MercadoLibre: providers.NewMercadoLibre(cfg.MercadoLibre),
		ScrapingBee:  providers.NewScrapingBee(cfg.ScrapingBee),
		ScrapeGraph:  providers.NewScrapeGraph(cfg.ScrapeGraph),
		Amazon:       providers.NewAmazon(cfg.Amazon),
		AliExpress:   providers.NewAliExpress(cfg.AliExpress),
	})

	warmer := scheduler.NewCacheWarmer(aggregator, cfg.WarmQueries, cfg.WarmInterval)
	if err := warmer.Start(); err != nil {
		log.Fatalf("Failed to start cache warmer: %v", err)
	}
	defer warmer.Stop()

	h := handlers.NewHandlers(aggregator, repository.NewSearchLogRepository())

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/external-products/search", h.SearchExternalProducts).Methods("GET")
	apiV1.HandleFunc("/external-products/searches", h.RecentSearches).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("Server starting on %s:%s", cfg.Host, cfg.Port)
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /api/v1/external-products/search - Aggregated product search")
	log.Printf("   GET  /api/v1/external-products/searches - Recent search log")

	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

// newCacheStore picks Redis when an address is configured, otherwise the
// in-process store.
func newCacheStore(cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, using in-memory result cache")
		return cache.NewMemory()
	}
	store, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Printf("Redis unavailable (%v), falling back to in-memory cache", err)
		return cache.NewMemory()
	}
	log.Printf("Using Redis result cache at %s", cfg.RedisAddr)
	return store
}
