package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/catalog"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors"
	gmailconnector "github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors/gmail"
	imapconnector "github.com/nithinv16/dukaaon-admin-console-sub005/internal/connectors/imap"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/images"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/pipeline"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/receipt"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/storage"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/util"
	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:initial-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.InitialSync(context.Background())
		must(err)
		fmt.Printf("initial sync complete: %d products\n", count)
	case "catalog:incremental-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.IncrementalSync(context.Background())
		must(err)
		fmt.Printf("incremental sync complete products=%d\n", count)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawReceiptDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "receipt:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap|file")
		sourceRef := fs.String("sourceRef", "", "specific receipt source ref")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*sourceRef) != "" {
			res, err := processor.ProcessBySourceRef(*provider, *sourceRef)
			must(err)
			fmt.Printf("processed receipt id=%d lines=%d\n", res.ReceiptID, res.Processed)
			return
		}
		processedReceipts, processedLines, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending receipts=%d lines=%d\n", processedReceipts, processedLines)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		receiptID := fs.Int("receiptId", 0, "internal receipt id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *receiptID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--receiptId and --out are required"))
		}
		rows, err := db.GetExportRows(*receiptID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows for receiptId=%d", *receiptID))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "images:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 50, "max products to scan")
		_ = fs.Parse(os.Args[2:])
		fetcher := images.NewFetcher(db, cfg)
		stats, err := fetcher.FetchForProducts(*limit)
		must(err)
		fmt.Printf("images done scanned=%d downloaded=%d skipped=%d\n", stats.Scanned, stats.Downloaded, stats.Skipped)
	case "watch":
		svc := watcher.NewService(db, cfg)
		must(svc.Run(context.Background()))
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "csv|xlsx|pdf|html|eml")
		output := fs.String("output", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *inType == "" || *output == "" {
			must(fmt.Errorf("--input --type --output are required"))
		}

		tables, err := pipeline.ExtractTablesFromInput(*inType, *input)
		must(err)
		products, err := db.ListProducts()
		must(err)
		matcher := pipeline.NewMatcher(cfg, products)

		exportRows := []internal.LineExportRow{}
		lineNo := 0
		for _, table := range tables {
			headerIdx, mapResult := pipeline.FindHeaderRow(table.Grid)
			if headerIdx < 0 {
				continue
			}
			for _, item := range receipt.ParseRows(mapResult, table.Grid[headerIdx+1:]) {
				lineNo++
				dup := matcher.Check(item)
				exportRows = append(exportRows, toExportRow(lineNo, string(table.Source), item, dup))
			}
		}
		if len(exportRows) == 0 {
			must(fmt.Errorf("no mapped line items in %s", *input))
		}
		must(pipeline.ExportRowsToXLSX(exportRows, *output))
		fmt.Printf("run done rows=%d output=%s\n", len(exportRows), *output)
	default:
		usage()
		os.Exit(1)
	}
}

func toExportRow(lineNo int, source string, item receipt.LineItem, dup internal.DuplicateResult) internal.LineExportRow {
	row := internal.LineExportRow{
		LineNo:        lineNo,
		Source:        source,
		RawLine:       item.RawLine,
		Qty:           item.Qty,
		NetAmount:     item.NetAmount,
		MRP:           item.MRP,
		GrossAmount:   item.GrossAmount,
		UnitPrice:     item.UnitPrice,
		DupStatus:     string(dup.Status),
		DupConfidence: dup.Confidence,
		DupReason:     string(dup.Reason),
	}
	if item.Name != "" {
		row.ItemName = util.StringPtr(item.Name)
	}
	if item.PriceError != "" {
		row.PriceError = util.StringPtr(string(item.PriceError))
	}
	if dup.Product != nil {
		row.ProductID = dup.Product.ID
		row.ProductRemoteUID = dup.Product.RemoteUID
		row.ProductName = dup.Product.Name
		row.ProductBarcode = dup.Product.Barcode
	}
	if len(dup.Candidates) > 1 {
		row.Candidate2Name = util.StringPtr(dup.Candidates[1].Name)
		row.Candidate2Score = util.FloatPtr(dup.Candidates[1].Score)
	}
	return row
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func usage() {
	fmt.Println("usage: dukaaon <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:initial-sync")
	fmt.Println("  catalog:incremental-sync")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  receipt:process --provider=gmail|imap|file [--sourceRef=...] [--batch=20]")
	fmt.Println("  export:xlsx --receiptId=1 --out=./out/result.xlsx")
	fmt.Println("  images:fetch --limit=50")
	fmt.Println("  watch")
	fmt.Println("  run --input=... --type=csv|xlsx|pdf|html|eml --output=...xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
