package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath        string
	RawReceiptDir string
	InboxDir      string
	OutputDir     string
	ImagesDir     string

	DukaaonAPIBaseURL string
	DukaaonAPIToken   string
	DukaaonRateLimit  int
	DukaaonTimeoutMs  int
	IncrementalHours  int

	DuplicateOKThreshold     float64
	DuplicateReviewThreshold float64
	DuplicateGapThreshold    float64
	TotalTolerance           float64

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	WatcherProvider     string
	WatcherLabel        string
	WatcherIntervalSec  int
	WatcherDebounceMs   int
	WatcherFetchMax     int
	WatcherProcessBatch int
	WatcherAutoExport   bool

	ImageSearchTop int
	ImageMinBytes  int
	ImageRateLimit int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:        getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		RawReceiptDir: getEnv("RECEIPT_RAW_DIR", filepath.Join(cwd, "data", "raw")),
		InboxDir:      getEnv("RECEIPT_INBOX_DIR", filepath.Join(cwd, "data", "inbox")),
		OutputDir:     getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		ImagesDir:     getEnv("IMAGES_DIR", filepath.Join(cwd, "data", "images")),

		DukaaonAPIBaseURL: getEnv("DUKAAON_API_BASE_URL", "https://api.dukaaon.in/api/v1"),
		DukaaonAPIToken:   getEnv("DUKAAON_API_TOKEN", ""),
		DukaaonRateLimit:  getEnvInt("DUKAAON_RATE_LIMIT_RPS", 5),
		DukaaonTimeoutMs:  getEnvInt("DUKAAON_TIMEOUT_MS", 30000),
		IncrementalHours:  getEnvInt("DUKAAON_INCREMENTAL_HOURS", 24),

		DuplicateOKThreshold:     getEnvFloat("DUPLICATE_OK_THRESHOLD", 0.90),
		DuplicateReviewThreshold: getEnvFloat("DUPLICATE_REVIEW_THRESHOLD", 0.72),
		DuplicateGapThreshold:    getEnvFloat("DUPLICATE_GAP_THRESHOLD", 0.08),
		TotalTolerance:           getEnvFloat("TOTAL_TOLERANCE", 0.5),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		WatcherProvider:     getEnv("WATCHER_MAIL_PROVIDER", ""),
		WatcherLabel:        getEnv("WATCHER_MAIL_LABEL", "INBOX"),
		WatcherIntervalSec:  getEnvInt("WATCHER_INTERVAL_SEC", 60),
		WatcherDebounceMs:   getEnvInt("WATCHER_DEBOUNCE_MS", 750),
		WatcherFetchMax:     getEnvInt("WATCHER_FETCH_MAX", 20),
		WatcherProcessBatch: getEnvInt("WATCHER_PROCESS_BATCH", 20),
		WatcherAutoExport:   getEnvBool("WATCHER_AUTO_EXPORT", true),

		ImageSearchTop: getEnvInt("IMAGE_SEARCH_TOP", 5),
		ImageMinBytes:  getEnvInt("IMAGE_MIN_BYTES", 4096),
		ImageRateLimit: getEnvInt("IMAGE_RATE_LIMIT_RPS", 2),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
