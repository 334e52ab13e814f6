package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"despensa/internal"
	"despensa/internal/canon"
	"despensa/internal/config"
	"despensa/internal/connectors"
	gmailconnector "despensa/internal/connectors/gmail"
	imapconnector "despensa/internal/connectors/imap"
	"despensa/internal/listener"
	"despensa/internal/logger"
	"despensa/internal/pipeline"
	"despensa/internal/rates"
	"despensa/internal/storage"
	"despensa/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger.Init(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	resolver, err := newResolver(cfg)
	must(err)

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		trigger := fs.String("trigger", "manual", "what started this run")
		_ = fs.Parse(os.Args[2:])
		svc := pipeline.NewETLService(cfg, resolver, db)
		res, err := svc.Run(*trigger)
		must(err)
		fmt.Printf("run %s done prices=%d recipes=%d in %dms\n",
			res.RunID, len(res.Warehouse.Prices), len(res.Warehouse.Recipes), res.DurationMs)
	case "extract":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		srcType := fs.String("type", "", "layout|grid|recipes")
		path := fs.String("path", "", "source document path")
		_ = fs.Parse(os.Args[2:])
		if *srcType == "" || *path == "" {
			must(fmt.Errorf("--type and --path are required"))
		}
		res, err := pipeline.ExtractFromSource(resolver, *srcType, *path)
		must(err)
		blob, err := json.MarshalIndent(res, "", "    ")
		must(err)
		fmt.Println(string(blob))
	case "resolve":
		raw := strings.Join(os.Args[2:], " ")
		if strings.TrimSpace(raw) == "" {
			must(fmt.Errorf("usage: despensa resolve <raw product name>"))
		}
		key, ok := resolver.Resolve(raw)
		if !ok {
			fmt.Println("no match")
			os.Exit(1)
		}
		fmt.Println(key)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max runs")
		_ = fs.Parse(os.Args[2:])
		runs, err := db.ListRuns(*limit)
		must(err)
		for _, r := range runs {
			fmt.Printf("%s  %s  %5dms  prices=%d recipes=%d trigger=%s\n",
				r.RunID, r.StartedAt, r.DurationMs, r.PriceCount, r.RecipeCount, r.Trigger)
		}
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", cfg.MailListenerProvider, "gmail|imap")
		label := fs.String("label", cfg.MailListenerLabel, "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.Int("id", 0, "specific ledger document id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		intake := pipeline.NewIntakeService(db, cfg)
		filed := 0
		if *id != 0 {
			doc, err := db.MustDocumentByID(*id)
			must(err)
			res, err := intake.ProcessDocument(doc)
			must(err)
			filed = res.Filed
			fmt.Printf("document %d filed %d attachments\n", doc.ID, res.Filed)
		} else {
			docs, n, err := intake.ProcessPending(*batch)
			must(err)
			filed = n
			fmt.Printf("intake done documents=%d filed=%d\n", docs, n)
		}
		if filed > 0 {
			svc := pipeline.NewETLService(cfg, resolver, db)
			res, err := svc.Run("mail")
			must(err)
			must(markFiledProcessed(db))
			fmt.Printf("run %s done prices=%d recipes=%d\n",
				res.RunID, len(res.Warehouse.Prices), len(res.Warehouse.Recipes))
		}
	case "mail:listen":
		s := listener.NewService(db, cfg, resolver)
		must(s.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "warehouse.xlsx"), "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		wh, err := warehouse.Load(cfg.WarehousePath)
		must(err)
		must(pipeline.ExportWarehouseXLSX(wh, *out))
		fmt.Printf("exported %d prices and %d recipes to %s\n", len(wh.Prices), len(wh.Recipes), *out)
	case "rates:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		date := fs.String("date", time.Now().Format("2006-01-02"), "quote day YYYY-MM-DD")
		_ = fs.Parse(os.Args[2:])
		svc := rates.NewService(db, cfg)
		rate, err := svc.USDToARS(context.Background(), *date)
		must(err)
		fmt.Printf("usd quote %s: %.2f ars\n", *date, rate)
	default:
		usage()
		os.Exit(1)
	}
}

func markFiledProcessed(db *storage.DB) error {
	pending, err := db.ListDocumentsByStatus(string(internal.StatusFiled), 200)
	if err != nil {
		return err
	}
	for _, doc := range pending {
		if err := db.UpdateDocumentStatus(doc.ID, string(internal.StatusProcessed), ""); err != nil {
			return err
		}
	}
	return nil
}

func newResolver(cfg config.Config) (*canon.Resolver, error) {
	if strings.TrimSpace(cfg.CanonTablePath) == "" {
		return canon.NewResolver(nil), nil
	}
	table, err := canon.LoadTable(cfg.CanonTablePath)
	if err != nil {
		return nil, err
	}
	return canon.NewResolver(table), nil
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
	fmt.Println("usage: despensa <command>")
	fmt.Println("commands:")
	fmt.Println("  run [--trigger=manual]")
	fmt.Println("  extract --type=layout|grid|recipes --path=...")
	fmt.Println("  resolve <raw product name>")
	fmt.Println("  runs:list [--limit=20]")
	fmt.Println("  mail:fetch [--provider=gmail|imap] [--label=INBOX] [--max=50]")
	fmt.Println("  mail:process [--id=1] [--batch=20]")
	fmt.Println("  mail:listen")
	fmt.Println("  export:xlsx [--out=./out/warehouse.xlsx]")
	fmt.Println("  rates:sync [--date=YYYY-MM-DD]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
