// Package importer stages products from an Excel workbook through the
// same upsert path the discovery pipeline uses. Handy for loading demo
// data for the dashboard.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/normalize"
)

// SheetName is the worksheet products are read from.
const SheetName = "Products"

// Column indices for the products worksheet (0-based).
const (
	colTitle        = 0 // Column A
	colURL          = 1 // Column B
	colMerchant     = 2 // Column C
	colPrice        = 3 // Column D
	colTags         = 4 // Column E
	colImageURL     = 5 // Column F
	colAffiliateURL = 6 // Column G

	headerRowIndex = 1 // Excel rows are 1-based, header is row 1
)

// ProductRow represents a parsed row from the workbook.
type ProductRow struct {
	Row          int // Excel row number (for error reporting)
	Title        string
	URL          string
	Merchant     string
	Price        string
	Tags         string
	ImageURL     string
	AffiliateURL string
}

// ImportError represents a validation or persistence error for a
// specific row.
type ImportError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarizes an import.
type Result struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ValidateRow validates a single row and returns an error message or
// empty string.
func ValidateRow(row ProductRow) string {
	if strings.TrimSpace(row.Title) == "" {
		return "title is required"
	}
	if strings.TrimSpace(row.URL) == "" {
		return "url is required"
	}
	if !strings.HasPrefix(row.URL, "http://") && !strings.HasPrefix(row.URL, "https://") {
		return "url must start with http:// or https://"
	}
	return ""
}

// Store is the persistence surface the importer feeds.
type Store interface {
	Upsert(ctx context.Context, runID string, item models.DiscoveredItem) (*models.Product, error)
}

// Importer reads product rows from an Excel workbook and upserts them.
type Importer struct {
	store  Store
	logger logger.Logger
}

func New(store Store, log logger.Logger) *Importer {
	return &Importer{store: store, logger: log}
}

// Import reads the Products sheet from r and upserts each valid row
// under runID. Row-level problems are collected, not fatal.
func (i *Importer) Import(ctx context.Context, r io.Reader, runID string) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", SheetName, err)
	}

	result := &Result{}
	for idx, cells := range rows {
		rowNum := idx + 1
		if rowNum == headerRowIndex {
			continue
		}

		row := parseRow(rowNum, cells)
		if isEmptyRow(row) {
			continue
		}

		if msg := ValidateRow(row); msg != "" {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: msg})
			continue
		}

		if _, err := i.store.Upsert(ctx, runID, rowToItem(row)); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	i.logger.Info("Workbook import finished",
		logger.String("run_id", runID),
		logger.Int("imported", result.Imported),
		logger.Int("errors", len(result.Errors)))

	return result, nil
}

func parseRow(rowNum int, cells []string) ProductRow {
	row := ProductRow{Row: rowNum}

	get := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}

	row.Title = get(colTitle)
	row.URL = get(colURL)
	row.Merchant = get(colMerchant)
	row.Price = get(colPrice)
	row.Tags = get(colTags)
	row.ImageURL = get(colImageURL)
	row.AffiliateURL = get(colAffiliateURL)

	return row
}

func isEmptyRow(row ProductRow) bool {
	return row.Title == "" && row.URL == "" && row.Merchant == "" &&
		row.Price == "" && row.Tags == ""
}

func rowToItem(row ProductRow) models.DiscoveredItem {
	merchant := row.Merchant
	if merchant == "" {
		merchant = "Amazon"
	}

	return models.DiscoveredItem{
		Title:        row.Title,
		URL:          row.URL,
		Merchant:     merchant,
		ImageURL:     row.ImageURL,
		PriceCents:   normalize.PriceCents(row.Price),
		AffiliateURL: row.AffiliateURL,
		TagSeeds:     strings.Split(row.Tags, ","),
	}
}
