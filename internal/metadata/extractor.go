package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/adscout/internal/httpx"
	"github.com/jonesrussell/adscout/internal/logger"
)

const (
	// defaultHTTPTimeout is the default timeout for HTTP requests
	defaultHTTPTimeout = 30 * time.Second
)

// PageMetadata holds OpenGraph values pulled from a product page.
type PageMetadata struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Extractor fetches a product page and pulls OpenGraph metadata from it.
// The pipeline uses it to backfill missing titles and images on
// discovered items.
type Extractor struct {
	logger logger.Logger
	client *http.Client
}

// NewExtractor creates a new metadata extractor
func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log,
		client: httpx.NewClient(&httpx.ClientConfig{
			Timeout: defaultHTTPTimeout,
		}),
	}
}

// Extract fetches pageURL and returns its OpenGraph title and image.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*PageMetadata, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent to avoid bot blocking
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; AdScout/1.0)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	meta := &PageMetadata{
		Title:    extractTitle(doc, parsedURL),
		ImageURL: extractImage(doc),
	}

	e.logger.Debug("Metadata extraction complete",
		logger.String("url", pageURL),
		logger.String("title", meta.Title),
	)

	return meta, nil
}

// extractTitle picks a page title in priority order.
func extractTitle(doc *goquery.Document, parsedURL *url.URL) string {
	// Try OG title first
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists && ogTitle != "" {
		return strings.TrimSpace(ogTitle)
	}

	// Try title tag
	if title := doc.Find("title").First().Text(); strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}

	// Fall back to domain name
	return parsedURL.Host
}

// extractImage picks a representative image, preferring OpenGraph.
func extractImage(doc *goquery.Document) string {
	if ogImage, exists := doc.Find("meta[property='og:image']").Attr("content"); exists && ogImage != "" {
		return strings.TrimSpace(ogImage)
	}

	if link, exists := doc.Find("link[rel='image_src']").Attr("href"); exists && link != "" {
		return strings.TrimSpace(link)
	}

	return ""
}
