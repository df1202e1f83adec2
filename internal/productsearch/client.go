package productsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/logger"
)

const (
	searchPath   = "/paapi5/searchitems"
	searchTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"

	// maxResults caps how many items a single search returns.
	maxResults = 10
)

// Item is one normalized product search result.
type Item struct {
	ID         string
	Title      string
	URL        string
	ImageURL   string
	PriceCents *int64
	Features   []string
}

// Result is the outcome of a search. Failures degrade to an empty item
// list rather than erroring; Reason explains a degraded result.
type Result struct {
	Items    []Item
	Degraded bool
	Reason   string
}

// Client searches the Amazon Product Advertising API for products
// matching a keyword. When credentials are not configured it serves a
// built-in demo result set instead of calling out.
type Client struct {
	httpClient *http.Client
	signer     *Signer
	logger     logger.Logger

	endpoint   string
	partnerTag string
	demoMode   bool
}

func NewClient(cfg config.ProductSearchConfig, log logger.Logger) *Client {
	demoMode := cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.PartnerTag == ""
	if demoMode {
		log.Warn("Product search credentials missing, using demo result set")
	}

	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		signer:     NewSigner(cfg.AccessKey, cfg.SecretKey, cfg.Region),
		logger:     log,
		endpoint:   "https://" + cfg.Host,
		partnerTag: cfg.PartnerTag,
		demoMode:   demoMode,
	}
}

type searchRequest struct {
	Keywords    string   `json:"Keywords"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
	Resources   []string `json:"Resources"`
}

type searchResponse struct {
	SearchResult struct {
		Items []struct {
			ASIN          string `json:"ASIN"`
			DetailPageURL string `json:"DetailPageURL"`
			Images        struct {
				Primary struct {
					Large struct {
						URL string `json:"URL"`
					} `json:"Large"`
				} `json:"Primary"`
			} `json:"Images"`
			ItemInfo struct {
				Title struct {
					DisplayValue string `json:"DisplayValue"`
				} `json:"Title"`
				Features struct {
					DisplayValues []string `json:"DisplayValues"`
				} `json:"Features"`
			} `json:"ItemInfo"`
			Offers struct {
				Listings []struct {
					Price struct {
						Amount   *float64 `json:"Amount"`
						Currency string   `json:"Currency"`
					} `json:"Price"`
				} `json:"Listings"`
			} `json:"Offers"`
		} `json:"Items"`
	} `json:"SearchResult"`
}

// Search looks up products for keyword. Items missing an ID, title, or
// URL are dropped; any transport or decode failure yields an empty,
// degraded result.
func (c *Client) Search(ctx context.Context, keyword string) Result {
	if c.demoMode {
		return demoResult(keyword)
	}

	items, err := c.search(ctx, keyword)
	if err != nil {
		c.logger.Warn("Product search failed",
			logger.String("keyword", keyword),
			logger.Error(err))
		return Result{Degraded: true, Reason: err.Error()}
	}

	c.logger.Info("Product search completed",
		logger.String("keyword", keyword),
		logger.Int("items", len(items)))

	return Result{Items: items}
}

func (c *Client) search(ctx context.Context, keyword string) ([]Item, error) {
	payload, err := json.Marshal(searchRequest{
		Keywords:    keyword,
		ItemCount:   maxResults,
		PartnerTag:  c.partnerTag,
		PartnerType: "Associates",
		Marketplace: "www.amazon.com",
		Resources: []string{
			"Images.Primary.Large",
			"ItemInfo.Title",
			"ItemInfo.Features",
			"Offers.Listings.Price",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", searchTarget)
	c.signer.Sign(req, payload)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]Item, 0, len(decoded.SearchResult.Items))
	for _, raw := range decoded.SearchResult.Items {
		if raw.ASIN == "" || raw.ItemInfo.Title.DisplayValue == "" || raw.DetailPageURL == "" {
			continue
		}

		item := Item{
			ID:       raw.ASIN,
			Title:    raw.ItemInfo.Title.DisplayValue,
			URL:      raw.DetailPageURL,
			ImageURL: raw.Images.Primary.Large.URL,
			Features: raw.ItemInfo.Features.DisplayValues,
		}

		// Price is kept only when both amount and currency are present.
		if len(raw.Offers.Listings) > 0 {
			price := raw.Offers.Listings[0].Price
			if price.Amount != nil && price.Currency != "" {
				cents := int64(math.Round(*price.Amount * 100))
				item.PriceCents = &cents
			}
		}

		items = append(items, item)
		if len(items) >= maxResults {
			break
		}
	}

	return items, nil
}
