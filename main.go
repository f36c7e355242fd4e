package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"

	"github.com/xobust/hitta-ram/pkg/api"
	"github.com/xobust/hitta-ram/pkg/cache"
	"github.com/xobust/hitta-ram/pkg/fetch"
	"github.com/xobust/hitta-ram/pkg/logger"
	"github.com/xobust/hitta-ram/pkg/models"
	"github.com/xobust/hitta-ram/pkg/scrapers/prisjakt"
)

var (
	scrapeSemaphore = make(chan struct{}, 3)
	offerCache      *cache.Cache
	scraper         *prisjakt.Scraper
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}

	dbPath := os.Getenv("CACHE_DB_PATH")
	if dbPath == "" {
		dbPath = "./cache.db"
	}

	ttlMinutes := 60
	if val := os.Getenv("CACHE_TTL_MINUTES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			ttlMinutes = parsed
		}
	}

	maxEntries := 512
	if val := os.Getenv("CACHE_MAX_ENTRIES"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			maxEntries = parsed
		}
	}

	var err error
	offerCache, err = cache.New(dbPath, time.Duration(ttlMinutes)*time.Minute, maxEntries)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer offerCache.Close()
	defer logger.Flush()

	log.Printf("Cache initialized at %s with TTL %d minutes, cap %d entries", dbPath, ttlMinutes, maxEntries)

	var fetcher prisjakt.Fetcher = fetch.New("www.prisjakt.nu", "prisjakt.nu")
	if os.Getenv("BROWSER_FALLBACK") == "1" {
		fetcher = &fetch.Fallback{Primary: fetcher, Secondary: fetch.NewRendered()}
		log.Print("Rendered-browser fetch fallback enabled")
	}
	scraper = prisjakt.NewScraper(fetcher, offerCache)

	http.HandleFunc("/", rootHandler)

	ip := GetOutboundIP()
	if ip != nil {
		fmt.Printf("Local Network URL: http://%s:%s\n", ip.String(), port)
	} else {
		fmt.Println("Could not determine local IP address.")
	}
	fmt.Printf("Access URL: http://localhost:%s\n", port)
	fmt.Printf("API Docs: http://localhost:%s/\n", port)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           nil,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/search":
		searchHandler(w, r)
	case strings.HasPrefix(r.URL.Path, "/products/"):
		productHandler(w, r)
	case r.URL.Path == "/":
		docsHandler(w, r)
	default:
		api.WriteNotFound(w, "No such endpoint. See / for API docs.", r.URL.Path)
	}
}

func docsHandler(w http.ResponseWriter, r *http.Request) {
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("hitta-ram Price API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func GetOutboundIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		addrs, _ := net.InterfaceAddrs()
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return ipnet.IP
				}
			}
		}
		return nil
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP
}

// CleanModuleQuery strips trailing vendor version suffixes (" ver 5.53.13")
// from a module identifier and collapses whitespace. The upstream search
// is sensitive to exact query text, so this runs before every scrape.
func CleanModuleQuery(q string) string {
	q = versionSuffixRe.ReplaceAllString(strings.TrimSpace(q), "")
	return strings.Join(strings.Fields(q), " ")
}

var versionSuffixRe = regexp.MustCompile(`(?i)\s+ver\.?\s*[0-9][0-9.]*$`)

func searchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteBadRequest(w, "Method not allowed. Use GET.", r.URL.Path)
		return
	}

	query := CleanModuleQuery(r.URL.Query().Get("q"))
	if query == "" {
		api.WriteBadRequest(w, "Missing or empty q parameter. Expected /search?q={module name}.", r.URL.Path)
		return
	}

	// Acquire semaphore to prevent hammering the upstream
	scrapeSemaphore <- struct{}{}
	offers := scraper.ScrapeSearch(query)
	<-scrapeSemaphore

	writeOffers(w, offers)
}

func productHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/products/")

	if rest == "batch" {
		if r.Method != http.MethodPost {
			api.WriteBadRequest(w, "Method not allowed for batch endpoint. Use POST.", r.URL.Path)
			return
		}
		handleBatchProducts(w, r)
		return
	}

	if r.Method != http.MethodGet {
		api.WriteBadRequest(w, "Method not allowed. Use GET for single product.", r.URL.Path)
		return
	}

	target := rest
	if u := r.URL.Query().Get("url"); u != "" {
		target = u
	}
	if target == "" || strings.Contains(rest, "/") {
		api.WriteBadRequest(w, "Invalid path. Expected /products/{id} or /products/batch.", r.URL.Path)
		return
	}

	scrapeSemaphore <- struct{}{}
	offers := scraper.ScrapeProduct(target)
	<-scrapeSemaphore

	writeOffers(w, offers)
}

// handleBatchProducts enriches a list of RAM modules in place, one
// sequential scrape per item. Bad items are annotated, never fatal.
func handleBatchProducts(w http.ResponseWriter, r *http.Request) {
	var batch []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body. Expected array of objects.", r.URL.Path)
		return
	}
	defer r.Body.Close()

	for _, item := range batch {
		skuVal, ok := item["sku"]
		if !ok {
			item["error"] = "missing sku field"
			continue
		}

		var sku string
		switch v := skuVal.(type) {
		case string:
			sku = v
		case float64:
			sku = fmt.Sprintf("%.0f", v)
		default:
			item["error"] = "invalid sku format"
			continue
		}

		query := CleanModuleQuery(sku)
		if query == "" {
			item["error"] = "empty sku"
			continue
		}

		scrapeSemaphore <- struct{}{}
		offers := scraper.ScrapeSearch(query)
		<-scrapeSemaphore

		if offers == nil {
			offers = []models.Offer{}
		}
		item["offers"] = offers
	}

	api.WriteJSON(w, batch)
}

func writeOffers(w http.ResponseWriter, offers []models.Offer) {
	if offers == nil {
		offers = []models.Offer{}
	}
	api.WriteJSON(w, offers)
}
