package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
)

// MailStoreService files raw messages on disk under their content hash and
// registers them as receipts awaiting processing.
type MailStoreService struct {
	db            *storage.DB
	rawReceiptDir string
}

func NewMailStoreService(db *storage.DB, rawReceiptDir string) *MailStoreService {
	return &MailStoreService{db: db, rawReceiptDir: rawReceiptDir}
}

func (s *MailStoreService) Store(msg internal.FetchedMailMessage) (internal.ReceiptRow, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawReceiptDir, 0o755); err != nil {
		return internal.ReceiptRow{}, err
	}

	rawPath := filepath.Join(s.rawReceiptDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.ReceiptRow{}, err
		}
	}

	return s.db.UpsertReceipt(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
}
