// Command seed imports products from an Excel workbook through the
// standard upsert path. Usage: seed <workbook.xlsx>
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/database"
	"github.com/jonesrussell/adscout/internal/importer"
	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seed <workbook.xlsx>")
	}
	path := os.Args[1]

	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close() }()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	runID := "seed-" + uuid.New().String()[:8]
	imp := importer.New(repository.NewProductRepository(db.DB(), log), log)

	result, err := imp.Import(context.Background(), f, runID)
	if err != nil {
		return fmt.Errorf("import workbook: %w", err)
	}

	fmt.Printf("Imported %d products (run %s)\n", result.Imported, runID)
	for _, rowErr := range result.Errors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Error)
	}
	return nil
}
