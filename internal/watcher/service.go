package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors"
	gmailconnector "github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors/gmail"
	imapconnector "github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors/imap"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/pipeline"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

var supportedExts = map[string]struct{}{
	".csv": {}, ".xlsx": {}, ".xls": {}, ".pdf": {}, ".html": {}, ".htm": {}, ".eml": {},
}

// Service watches the receipt inbox directory and, when a mail provider is
// configured, polls the receipts mailbox on an interval.
type Service struct {
	db  *storage.DB
	cfg config.Config

	mu         sync.Mutex
	debouncers map[string]*util.Debouncer
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, debouncers: map[string]*util.Debouncer{}}
}

func (s *Service) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.InboxDir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(s.cfg.InboxDir); err != nil {
		return err
	}

	// Files dropped before startup produce no events.
	s.scanInbox()

	ticker := time.NewTicker(time.Duration(s.cfg.WatcherIntervalSec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				s.scheduleIngest(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("watcher error: %v\n", err)
		case <-ticker.C:
			if err := s.runMailCycle(); err != nil {
				fmt.Printf("mail cycle error: %v\n", err)
			}
			if s.cfg.WatcherAutoExport {
				if err := s.exportProcessed(); err != nil {
					fmt.Printf("auto export error: %v\n", err)
				}
			}
		}
	}
}

func (s *Service) scanInbox() {
	entries, err := os.ReadDir(s.cfg.InboxDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		s.scheduleIngest(filepath.Join(s.cfg.InboxDir, entry.Name()))
	}
}

// scheduleIngest debounces per path so a file still being copied settles
// before it is read.
func (s *Service) scheduleIngest(path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return
	}
	if _, ok := supportedExts[strings.ToLower(filepath.Ext(path))]; !ok {
		return
	}

	s.mu.Lock()
	deb, ok := s.debouncers[path]
	if !ok {
		deb = util.NewDebouncer(time.Duration(s.cfg.WatcherDebounceMs) * time.Millisecond)
		s.debouncers[path] = deb
	}
	s.mu.Unlock()

	deb.Debounce(func() {
		s.mu.Lock()
		delete(s.debouncers, path)
		s.mu.Unlock()

		if err := s.ingestFile(path); err != nil {
			fmt.Printf("ingest %s error: %v\n", base, err)
		}
	})
}

func (s *Service) ingestFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	hashBytes := sha256.Sum256(raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.cfg.RawReceiptDir, 0o755); err != nil {
		return err
	}
	rawPath := filepath.Join(s.cfg.RawReceiptDir, hash+strings.ToLower(filepath.Ext(path)))
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
			return err
		}
	}

	receivedAt := time.Now().UTC().Format(time.RFC3339)
	rcpt, err := s.db.UpsertReceipt("file", hash, filepath.Base(path), "", receivedAt, hash, rawPath, "fetched")
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	result, err := processor.ProcessReceipt(rcpt)
	if err != nil {
		return err
	}

	// The inbox copy is done with; the hashed copy under the raw dir stays.
	_ = os.Remove(path)

	fmt.Printf("ingested %s receiptId=%d lines=%d\n", filepath.Base(path), result.ReceiptID, result.Processed)
	return nil
}

func (s *Service) runMailCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.WatcherProvider))
	if provider == "" {
		return nil
	}

	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawReceiptDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.WatcherLabel, s.cfg.WatcherFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedReceipts, _, err := processor.ProcessPending(s.cfg.WatcherProcessBatch, provider)
	if err != nil {
		return err
	}

	fmt.Printf("mail cycle done provider=%s fetched=%d stored=%d processed=%d\n", provider, fetchResult.Fetched, fetchResult.Stored, processedReceipts)
	return nil
}

func (s *Service) exportProcessed() error {
	receipts, err := s.db.ListReceiptsByStatus("processed", 200)
	if err != nil {
		return err
	}

	for _, rcpt := range receipts {
		rows, err := s.db.GetExportRows(rcpt.ID)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s.xlsx", rcpt.ID, sanitizeSourceRef(rcpt.SourceRef))
		outputPath := filepath.Join(s.cfg.OutputDir, "watcher", filename)
		if err := pipeline.ExportRowsToXLSX(rows, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateReceiptStatus(rcpt.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported watcher provider: %s", provider)
	}
}

func sanitizeSourceRef(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
