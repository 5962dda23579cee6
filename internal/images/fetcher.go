package images

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/catalog"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

const defaultSearchBaseURL = "https://www.bing.com/images/search"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Fetcher finds product images through Bing image search and stores a local
// copy plus the source URL on the product record.
type Fetcher struct {
	db         *storage.DB
	cfg        config.Config
	httpClient *http.Client
	limiter    *catalog.RateLimiter

	// Overridable for tests.
	SearchBaseURL string
}

type FetchStats struct {
	Scanned    int
	Downloaded int
	Skipped    int
}

func NewFetcher(db *storage.DB, cfg config.Config) *Fetcher {
	return &Fetcher{
		db:            db,
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		limiter:       catalog.NewRateLimiter(cfg.ImageRateLimit),
		SearchBaseURL: defaultSearchBaseURL,
	}
}

// FetchForProducts walks products that have no image yet, searches for each
// and keeps the first candidate that downloads cleanly.
func (f *Fetcher) FetchForProducts(limit int) (FetchStats, error) {
	stats := FetchStats{}

	products, err := f.db.ListProductsWithoutImage(limit)
	if err != nil {
		return stats, err
	}

	if err := os.MkdirAll(f.cfg.ImagesDir, 0o755); err != nil {
		return stats, err
	}

	for _, product := range products {
		stats.Scanned++

		query := buildQuery(product.Name, product.Brand)
		candidates, err := f.SearchImages(query, f.cfg.ImageSearchTop)
		if err != nil {
			fmt.Printf("image search %q error: %v\n", query, err)
			stats.Skipped++
			continue
		}

		saved := ""
		for _, candidate := range candidates {
			localPath := filepath.Join(f.cfg.ImagesDir, fmt.Sprintf("product_%d%s", product.ID, extFromURL(candidate)))
			if err := f.Download(candidate, localPath); err != nil {
				continue
			}
			saved = candidate
			break
		}

		if saved == "" {
			stats.Skipped++
			continue
		}
		if err := f.db.SetProductImage(product.ID, saved); err != nil {
			return stats, err
		}
		stats.Downloaded++
		fmt.Printf("image saved productId=%d url=%s\n", product.ID, saved)
	}

	return stats, nil
}

// SearchImages scrapes the image search result page. Each result anchor
// carries a JSON blob whose murl field is the full-size image URL.
func (f *Fetcher) SearchImages(query string, top int) ([]string, error) {
	f.limiter.WaitTurn()

	searchURL := f.SearchBaseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequest(http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var urls []string
	seen := map[string]struct{}{}
	doc.Find("a.iusc").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		meta, ok := sel.Attr("m")
		if !ok {
			return true
		}
		var payload struct {
			MURL string `json:"murl"`
		}
		if err := json.Unmarshal([]byte(meta), &payload); err != nil {
			return true
		}
		candidate := strings.TrimSpace(payload.MURL)
		if candidate == "" || !strings.HasPrefix(candidate, "http") {
			return true
		}
		if _, dup := seen[candidate]; dup {
			return true
		}
		seen[candidate] = struct{}{}
		urls = append(urls, candidate)
		return len(urls) < top
	})

	return urls, nil
}

// Download fetches the image and rejects non-image responses and thumbnails
// below the configured size floor.
func (f *Fetcher) Download(imageURL, localPath string) error {
	f.limiter.WaitTurn()

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("not an image: %s", contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return err
	}
	if len(raw) < f.cfg.ImageMinBytes {
		return fmt.Errorf("image too small: %d bytes", len(raw))
	}

	return os.WriteFile(localPath, raw, 0o644)
}

func buildQuery(name string, brand *string) string {
	query := util.NormalizeText(name)
	if brand != nil && *brand != "" && !strings.Contains(query, util.NormalizeText(*brand)) {
		query = util.NormalizeText(*brand) + " " + query
	}
	return strings.ToLower(query) + " product"
}

func extFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ".jpg"
	}
	ext := strings.ToLower(filepath.Ext(parsed.Path))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	default:
		return ".jpg"
	}
}
