package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  id INTEGER PRIMARY KEY,
  remoteUid TEXT,
  name TEXT NOT NULL,
  brand TEXT,
  category TEXT,
  barcode TEXT,
  sku TEXT,
  mrp REAL,
  sellingPrice REAL,
  unit TEXT,
  imageUrl TEXT,
  updatedAt TEXT,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
CREATE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);
CREATE INDEX IF NOT EXISTS idx_products_remoteUid ON products(remoteUid);

CREATE TABLE IF NOT EXISTS receipts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  sourceRef TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, sourceRef)
);

CREATE TABLE IF NOT EXISTS line_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  receiptId INTEGER NOT NULL,
  lineNo INTEGER NOT NULL,
  source TEXT NOT NULL,
  rawLine TEXT NOT NULL,
  itemName TEXT,
  qty REAL,
  netAmount REAL,
  mrp REAL,
  grossAmount REAL,
  amount REAL,
  unitPrice REAL,
  priceError TEXT,
  dupStatus TEXT NOT NULL,
  dupConfidence REAL NOT NULL,
  dupReason TEXT NOT NULL,
  productId INTEGER,
  productRemoteUid TEXT,
  candidatesJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(receiptId, lineNo, source, rawLine),
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS mapping_decisions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  receiptId INTEGER NOT NULL,
  tableNo INTEGER NOT NULL,
  position INTEGER NOT NULL,
  headerText TEXT NOT NULL,
  assignedField TEXT NOT NULL,
  confidence REAL NOT NULL,
  reason TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  receiptId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(receiptId) REFERENCES receipts(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertProducts(products []internal.ProductRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (
  id, remoteUid, name, brand, category, barcode, sku,
  mrp, sellingPrice, unit, imageUrl, updatedAt, raw_json, lastSeenAt
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  remoteUid=excluded.remoteUid,
  name=excluded.name,
  brand=excluded.brand,
  category=excluded.category,
  barcode=excluded.barcode,
  sku=excluded.sku,
  mrp=excluded.mrp,
  sellingPrice=excluded.sellingPrice,
  unit=excluded.unit,
  imageUrl=excluded.imageUrl,
  updatedAt=excluded.updatedAt,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.Exec(
			p.ID, p.RemoteUID, p.Name, p.Brand, p.Category, p.Barcode, p.SKU,
			p.MRP, p.SellingPrice, p.Unit, p.ImageURL, p.UpdatedAt, p.RawJSON,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListProducts() ([]internal.ProductRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, remoteUid, name, brand, category, barcode, sku,
       mrp, sellingPrice, unit, imageUrl, updatedAt, raw_json
FROM products`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductRecord
	for rows.Next() {
		var p internal.ProductRecord
		if err := rows.Scan(
			&p.ID, &p.RemoteUID, &p.Name, &p.Brand, &p.Category, &p.Barcode, &p.SKU,
			&p.MRP, &p.SellingPrice, &p.Unit, &p.ImageURL, &p.UpdatedAt, &p.RawJSON,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (d *DB) ListProductsWithoutImage(limit int) ([]internal.ProductRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, remoteUid, name, brand, category, barcode, sku,
       mrp, sellingPrice, unit, imageUrl, updatedAt, raw_json
FROM products
WHERE imageUrl IS NULL OR imageUrl = ''
ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProductRecord
	for rows.Next() {
		var p internal.ProductRecord
		if err := rows.Scan(
			&p.ID, &p.RemoteUID, &p.Name, &p.Brand, &p.Category, &p.Barcode, &p.SKU,
			&p.MRP, &p.SellingPrice, &p.Unit, &p.ImageURL, &p.UpdatedAt, &p.RawJSON,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (d *DB) SetProductImage(productID int, imageURL string) error {
	_, err := d.conn.Exec(`UPDATE products SET imageUrl = ?, lastSeenAt = CURRENT_TIMESTAMP WHERE id = ?`, imageURL, productID)
	return err
}

func (d *DB) UpsertReceipt(provider, sourceRef, subject, sender, receivedAt, hash, rawRef, status string) (internal.ReceiptRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO receipts (provider, sourceRef, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, sourceRef) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, sourceRef, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.ReceiptRow{}, err
	}

	row, err := d.GetReceiptBySourceRef(provider, sourceRef)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, errors.New("failed to upsert receipt")
	}
	return *row, nil
}

func (d *DB) GetReceiptBySourceRef(provider, sourceRef string) (*internal.ReceiptRow, error) {
	var row internal.ReceiptRow
	err := d.conn.QueryRow(`
SELECT id, provider, sourceRef, subject, sender, receivedAt, hash, status, rawRef
FROM receipts WHERE provider = ? AND sourceRef = ?
`, provider, sourceRef).Scan(
		&row.ID, &row.Provider, &row.SourceRef, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetReceiptByID(id int) (*internal.ReceiptRow, error) {
	var row internal.ReceiptRow
	err := d.conn.QueryRow(`
SELECT id, provider, sourceRef, subject, sender, receivedAt, hash, status, rawRef
FROM receipts WHERE id = ?
`, id).Scan(
		&row.ID, &row.Provider, &row.SourceRef, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListReceiptsByStatus(status string, limit int) ([]internal.ReceiptRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, sourceRef, subject, sender, receivedAt, hash, status, rawRef
FROM receipts WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ReceiptRow
	for rows.Next() {
		var row internal.ReceiptRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.SourceRef, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateReceiptStatus(receiptID int, status string) error {
	_, err := d.conn.Exec(`UPDATE receipts SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, receiptID)
	return err
}

// ClearReceiptProcessing drops line items and decisions so a receipt can be
// reprocessed from scratch.
func (d *DB) ClearReceiptProcessing(receiptID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM line_items WHERE receiptId = ?`, receiptID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM mapping_decisions WHERE receiptId = ?`, receiptID); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *DB) InsertLineItem(receiptID int, source internal.ReceiptSource, item receipt.LineItem, dup internal.DuplicateResult) (int64, error) {
	candidatesJSON, _ := json.Marshal(dup.Candidates)
	var priceError *string
	if item.PriceError != "" {
		priceError = util.StringPtr(string(item.PriceError))
	}
	var productID *int
	var productRemoteUID *string
	if dup.Product != nil {
		productID = dup.Product.ID
		productRemoteUID = dup.Product.RemoteUID
	}

	result, err := d.conn.Exec(`
INSERT INTO line_items (
  receiptId, lineNo, source, rawLine, itemName, qty,
  netAmount, mrp, grossAmount, amount, unitPrice, priceError,
  dupStatus, dupConfidence, dupReason, productId, productRemoteUid, candidatesJson
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, receiptID, item.LineNo, string(source), item.RawLine, item.Name, item.Qty,
		item.NetAmount, item.MRP, item.GrossAmount, item.Amount, item.UnitPrice, priceError,
		string(dup.Status), dup.Confidence, string(dup.Reason), productID, productRemoteUID, string(candidatesJSON))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertMappingDecisions(receiptID, tableNo int, decisions []receipt.MappingDecision) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO mapping_decisions (receiptId, tableNo, position, headerText, assignedField, confidence, reason)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, dec := range decisions {
		if _, err := stmt.Exec(receiptID, tableNo, i, dec.HeaderText, string(dec.AssignedField), dec.Confidence, dec.Reason); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListMappingDecisions(receiptID int) ([]receipt.MappingDecision, error) {
	rows, err := d.conn.Query(`
SELECT headerText, assignedField, confidence, reason
FROM mapping_decisions WHERE receiptId = ? ORDER BY tableNo ASC, position ASC
`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []receipt.MappingDecision
	for rows.Next() {
		var dec receipt.MappingDecision
		var field string
		if err := rows.Scan(&dec.HeaderText, &field, &dec.Confidence, &dec.Reason); err != nil {
			return nil, err
		}
		dec.AssignedField = receipt.StandardField(field)
		out = append(out, dec)
	}
	return out, rows.Err()
}

func (d *DB) InsertRun(traceID string, receiptID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, receiptId, timingsJson, countsJson) VALUES (?, ?, ?, ?)`, traceID, receiptID, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) GetLatestRunCounts(receiptID int) (map[string]int, error) {
	var countsJSON string
	err := d.conn.QueryRow(`SELECT countsJson FROM runs WHERE receiptId = ? ORDER BY id DESC LIMIT 1`, receiptID).Scan(&countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	if err := json.Unmarshal([]byte(countsJSON), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) GetExportRows(receiptID int) ([]internal.LineExportRow, error) {
	rows, err := d.conn.Query(`
SELECT
  li.lineNo,
  li.source,
  li.rawLine,
  li.itemName,
  li.qty,
  li.netAmount,
  li.mrp,
  li.grossAmount,
  li.unitPrice,
  li.priceError,
  li.dupStatus,
  li.dupConfidence,
  li.dupReason,
  p.id,
  p.remoteUid,
  p.name,
  p.barcode,
  li.candidatesJson
FROM line_items li
LEFT JOIN products p ON p.id = li.productId
WHERE li.receiptId = ?
ORDER BY
  CASE li.dupStatus WHEN 'DUPLICATE' THEN 1 WHEN 'REVIEW' THEN 2 ELSE 3 END,
  li.lineNo ASC
`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.LineExportRow
	for rows.Next() {
		var row internal.LineExportRow
		var candidatesJSON string
		if err := rows.Scan(
			&row.LineNo,
			&row.Source,
			&row.RawLine,
			&row.ItemName,
			&row.Qty,
			&row.NetAmount,
			&row.MRP,
			&row.GrossAmount,
			&row.UnitPrice,
			&row.PriceError,
			&row.DupStatus,
			&row.DupConfidence,
			&row.DupReason,
			&row.ProductID,
			&row.ProductRemoteUID,
			&row.ProductName,
			&row.ProductBarcode,
			&candidatesJSON,
		); err != nil {
			return nil, err
		}

		var candidates []internal.DuplicateCandidate
		_ = json.Unmarshal([]byte(candidatesJSON), &candidates)
		if len(candidates) > 1 {
			row.Candidate2Name = util.StringPtr(candidates[1].Name)
			row.Candidate2Score = util.FloatPtr(candidates[1].Score)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

func (d *DB) MustReceiptBySourceRef(provider, sourceRef string) (internal.ReceiptRow, error) {
	row, err := d.GetReceiptBySourceRef(provider, sourceRef)
	if err != nil {
		return internal.ReceiptRow{}, err
	}
	if row == nil {
		return internal.ReceiptRow{}, fmt.Errorf("receipt not found: provider=%s sourceRef=%s", provider, sourceRef)
	}
	return *row, nil
}
