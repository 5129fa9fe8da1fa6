// cmd/tools/export-submissions/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/export"
	"mobility-portal/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: configs/config.yaml lookup)")
		workbook   = flag.String("workbook", "", "roster workbook (default: export.workbook_path)")
		sheet      = flag.String("sheet", "", "sheet name (default: export.sheet)")
		out        = flag.String("out", "", "write to this file instead of updating the workbook in place")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall timeout")
	)
	flag.Parse()

	if err := run(*configPath, *workbook, *sheet, *out, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, workbook, sheet, out string, timeout time.Duration) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if workbook == "" {
		workbook = cfg.Export.WorkbookPath
	}
	if sheet == "" {
		sheet = cfg.Export.Sheet
	}

	log := logger.NewStructured(cfg.Logging.Level, "console", "export-submissions")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	backend, err := store.Open(ctx, cfg.Database, nil, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	exporter := export.NewExporter(sheet, export.ColumnsFromConfig(cfg.Export), log)
	report, err := exporter.Run(ctx, backend.Store, workbook, out)
	if err != nil {
		return err
	}

	for _, r := range report.Rows {
		if r.Row == 0 {
			fmt.Printf("%-50s missing\n", r.Email)
			continue
		}
		fmt.Printf("%-50s row %d\n", r.Email, r.Row)
	}
	fmt.Printf("%d updated, %d missing\n", report.Updated, report.Missing)
	return nil
}
