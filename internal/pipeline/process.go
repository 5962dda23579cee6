package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	ReceiptID int
	Processed int
}

func (s *ProcessingService) ProcessBySourceRef(provider, sourceRef string) (ProcessResult, error) {
	rcpt, err := s.db.MustReceiptBySourceRef(provider, sourceRef)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessReceipt(rcpt)
}

func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListReceiptsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedReceipts := 0
	processedLines := 0
	for _, rcpt := range pending {
		if provider != "" && rcpt.Provider != provider {
			continue
		}
		res, err := s.ProcessReceipt(rcpt)
		if err != nil {
			return processedReceipts, processedLines, err
		}
		processedReceipts++
		processedLines += res.Processed
	}
	return processedReceipts, processedLines, nil
}

func (s *ProcessingService) ProcessReceipt(rcpt internal.ReceiptRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(rcpt.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	var tables []TableData
	if strings.EqualFold(filepath.Ext(rcpt.RawRef), ".eml") {
		var subject, text, html string
		var attachmentNames []string
		tables, subject, text, html, attachmentNames, err = ExtractTablesFromEmailRaw(raw)
		if err != nil {
			return ProcessResult{}, err
		}

		detect := DetectReceipt(firstNonEmpty(subject, rcpt.Subject), text, html, attachmentNames)
		if !detect.IsReceipt {
			if err := s.db.ClearReceiptProcessing(rcpt.ID); err != nil {
				return ProcessResult{}, err
			}
			_ = s.db.UpdateReceiptStatus(rcpt.ID, "skipped")
			_ = s.db.InsertRun(uuid.NewString(), rcpt.ID, map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())}, map[string]int{"tables": 0, "lines": 0})
			return ProcessResult{ReceiptID: rcpt.ID, Processed: 0}, nil
		}
	} else {
		tables, err = ExtractTablesFromFile(rcpt.RawRef, raw)
		if err != nil {
			return ProcessResult{}, err
		}
	}

	if err := s.db.ClearReceiptProcessing(rcpt.ID); err != nil {
		return ProcessResult{}, err
	}

	products, err := s.db.ListProducts()
	if err != nil {
		return ProcessResult{}, err
	}
	matcher := NewMatcher(s.cfg, products)

	lineNo := 0
	mappedTables := 0
	dupCount, reviewCount, newCount, priceErrCount := 0, 0, 0, 0
	totalsChecked, totalsMismatched := 0, 0
	for tableNo, table := range tables {
		headerIdx, mapResult := FindHeaderRow(table.Grid)
		if err := s.db.InsertMappingDecisions(rcpt.ID, tableNo, mapResult.Decisions); err != nil {
			return ProcessResult{}, err
		}
		if headerIdx < 0 {
			continue
		}
		mappedTables++

		dataRows := table.Grid[headerIdx+1:]
		items := receipt.ParseRows(mapResult, dataRows)

		printedTotal := receipt.PrintedTotal(mapResult, dataRows)
		totalCheck := receipt.ReconcileTotal(items, printedTotal, s.cfg.TotalTolerance)
		if totalCheck.Checked {
			totalsChecked++
			if !totalCheck.Matches {
				totalsMismatched++
				fmt.Printf("receipt %d table %d total mismatch: computed=%s printed=%v delta=%s\n",
					rcpt.ID, tableNo, totalCheck.ComputedTotal.String(), *printedTotal, totalCheck.Delta.String())
			}
		}

		for _, item := range items {
			lineNo++
			item.LineNo = lineNo
			dup := matcher.Check(item)
			if _, err := s.db.InsertLineItem(rcpt.ID, table.Source, item, dup); err != nil {
				return ProcessResult{}, err
			}

			if item.PriceError != "" {
				priceErrCount++
			}
			switch dup.Status {
			case internal.DuplicateFound:
				dupCount++
			case internal.DuplicateReview:
				reviewCount++
			case internal.DuplicateNone:
				newCount++
			}
		}
	}

	status := "processed"
	if mappedTables == 0 {
		status = "unmapped"
	}
	if err := s.db.UpdateReceiptStatus(rcpt.ID, status); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(uuid.NewString(), rcpt.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"tables": len(tables), "mapped": mappedTables, "lines": lineNo, "duplicate": dupCount, "review": reviewCount, "new": newCount, "priceErrors": priceErrCount, "totalsChecked": totalsChecked, "totalsMismatched": totalsMismatched})

	return ProcessResult{ReceiptID: rcpt.ID, Processed: lineNo}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
