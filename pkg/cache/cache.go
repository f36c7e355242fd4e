package cache

import (
	"database/sql"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/xobust/hitta-ram/pkg/models"

	_ "modernc.org/sqlite"
)

// Cache is a sqlite-backed offer cache keyed by query fingerprint.
// Entries expire on read after the TTL and the table is capped at
// maxEntries rows, evicting oldest-first on write.
type Cache struct {
	db         *sql.DB
	ttl        time.Duration
	maxEntries int
}

func New(dbPath string, ttl time.Duration, maxEntries int) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS offers (
			fingerprint TEXT NOT NULL PRIMARY KEY,
			data TEXT NOT NULL,
			scraped_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl, maxEntries: maxEntries}, nil
}

// Fingerprint builds the cache key for one scrape invocation.
func Fingerprint(kind, query string) string {
	return kind + "::" + strings.ToLower(strings.TrimSpace(query))
}

func (c *Cache) Get(fingerprint string) ([]models.Offer, bool) {
	var data string
	var scrapedAt time.Time

	err := c.db.QueryRow(
		`SELECT data, scraped_at FROM offers WHERE fingerprint = ?`,
		fingerprint,
	).Scan(&data, &scrapedAt)

	if err != nil {
		return nil, false
	}

	if time.Since(scrapedAt) >= c.ttl {
		return nil, false
	}

	var offers []models.Offer
	if err := json.Unmarshal([]byte(data), &offers); err != nil {
		log.Printf("Cache: failed to unmarshal %s: %v", fingerprint, err)
		return nil, false
	}

	return offers, true
}

func (c *Cache) Set(fingerprint string, offers []models.Offer) {
	c.setAt(fingerprint, offers, time.Now())
}

func (c *Cache) setAt(fingerprint string, offers []models.Offer, at time.Time) {
	data, err := json.Marshal(offers)
	if err != nil {
		log.Printf("Cache: failed to marshal %s: %v", fingerprint, err)
		return
	}

	_, err = c.db.Exec(
		`INSERT INTO offers (fingerprint, data, scraped_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint)
		 DO UPDATE SET data = excluded.data, scraped_at = excluded.scraped_at`,
		fingerprint, string(data), at,
	)
	if err != nil {
		log.Printf("Cache: failed to store %s: %v", fingerprint, err)
		return
	}

	if c.maxEntries > 0 {
		_, err = c.db.Exec(
			`DELETE FROM offers WHERE fingerprint NOT IN (
				SELECT fingerprint FROM offers
				ORDER BY scraped_at DESC, fingerprint
				LIMIT ?
			)`,
			c.maxEntries,
		)
		if err != nil {
			log.Printf("Cache: failed to evict: %v", err)
		}
	}
}

func (c *Cache) Close() error {
	return c.db.Close()
}
