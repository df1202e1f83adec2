// Package pipeline drives a discovery run: plan the campaign, collect
// product candidates per idea, and persist the results with an
// append-only run log the dashboard polls.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonesrussell/adscout/internal/browserbot"
	"github.com/jonesrussell/adscout/internal/events"
	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/metadata"
	"github.com/jonesrussell/adscout/internal/metrics"
	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/normalize"
	"github.com/jonesrussell/adscout/internal/planner"
	"github.com/jonesrussell/adscout/internal/productsearch"
)

// maxLoggedActions caps how many browser action lines one idea writes
// to the run log.
const maxLoggedActions = 10

const merchantAmazon = "Amazon"

// PlannerClient produces campaign plans and search ideas.
type PlannerClient interface {
	BuildPlan(ctx context.Context, brief string) planner.PlanResult
	BrainstormIdeas(ctx context.Context, brief string) planner.IdeasResult
}

// BrowserCollector captures product candidates from a live browser
// session.
type BrowserCollector interface {
	Collect(ctx context.Context, idea, brief string) (*browserbot.CaptureResult, error)
}

// SearchCollector looks up product candidates via the product search
// API.
type SearchCollector interface {
	Search(ctx context.Context, keyword string) productsearch.Result
}

// ProductStore persists discovered items.
type ProductStore interface {
	Upsert(ctx context.Context, runID string, item models.DiscoveredItem) (*models.Product, error)
}

// RunLogStore appends run log entries.
type RunLogStore interface {
	Append(ctx context.Context, entry *models.RunLog) error
}

// MetadataExtractor backfills page metadata for items missing an image.
type MetadataExtractor interface {
	Extract(ctx context.Context, pageURL string) (*metadata.PageMetadata, error)
}

// Runner executes discovery runs. All collaborators are injected;
// extractor, metrics, and publisher may be nil.
type Runner struct {
	planner   PlannerClient
	browser   BrowserCollector
	search    SearchCollector
	products  ProductStore
	runLogs   RunLogStore
	extractor MetadataExtractor
	metrics   *metrics.Metrics
	publisher *events.Publisher
	logger    logger.Logger
}

type Options struct {
	Planner   PlannerClient
	Browser   BrowserCollector
	Search    SearchCollector
	Products  ProductStore
	RunLogs   RunLogStore
	Extractor MetadataExtractor
	Metrics   *metrics.Metrics
	Publisher *events.Publisher
	Logger    logger.Logger
}

func NewRunner(opts Options) *Runner {
	return &Runner{
		planner:   opts.Planner,
		browser:   opts.Browser,
		search:    opts.Search,
		products:  opts.Products,
		runLogs:   opts.RunLogs,
		extractor: opts.Extractor,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		logger:    opts.Logger,
	}
}

// Run executes one discovery run for brief. It never returns an error:
// every failure is written to the run log and the run always finishes
// with a completion entry.
func (r *Runner) Run(ctx context.Context, runID, brief string) {
	start := time.Now()

	if r.metrics != nil {
		r.metrics.RunsStarted.Inc()
	}
	r.publisher.PublishAsync(events.RunEvent{EventType: events.RunStarted, RunID: runID})

	r.appendLog(ctx, runID, models.AgentSystem, models.LevelInfo, models.EventSummary,
		"Run started.", map[string]string{"brief": brief})

	plan := r.buildPlan(ctx, runID, brief)
	ideas := r.collectIdeas(ctx, runID, brief, plan)

	added := 0
	for _, idea := range ideas {
		if r.metrics != nil {
			r.metrics.IdeasProcessed.Inc()
		}
		added += r.runIdea(ctx, runID, brief, idea)
	}

	if added > 0 {
		r.appendLog(ctx, runID, models.AgentSystem, models.LevelInfo, models.EventSummary,
			fmt.Sprintf("Run completed. Added %d items.", added), nil)
	} else {
		r.appendLog(ctx, runID, models.AgentSystem, models.LevelWarn, models.EventSummary,
			"Run completed without new products.", nil)
	}

	if r.metrics != nil {
		r.metrics.RecordRunCompleted(added, time.Since(start))
	}
	r.publisher.PublishAsync(events.RunEvent{
		EventType: events.RunCompleted,
		RunID:     runID,
		Payload:   events.RunCompletedPayload{ProductCount: added, IdeaCount: len(ideas)},
	})

	r.logger.Info("Discovery run finished",
		logger.String("run_id", runID),
		logger.Int("products", added),
		logger.Duration("duration", time.Since(start)))
}

func (r *Runner) buildPlan(ctx context.Context, runID, brief string) planner.Plan {
	result := r.planner.BuildPlan(ctx, brief)
	if r.metrics != nil {
		r.metrics.RecordCollectorCall("planner", result.Degraded)
	}

	if result.Degraded {
		r.appendLog(ctx, runID, models.AgentPlanner, models.LevelWarn, models.EventError,
			"Planner degraded to default plan: "+result.Reason, nil)
	}

	r.appendLog(ctx, runID, models.AgentPlanner, models.LevelInfo, models.EventPlan,
		"Campaign plan ready: "+result.Plan.Niche, result.Plan)

	return result.Plan
}

// collectIdeas prefers the plan's search queries and falls back to
// brainstormed phrases.
func (r *Runner) collectIdeas(ctx context.Context, runID, brief string, plan planner.Plan) []string {
	if len(plan.SearchQueries) > 0 {
		return plan.SearchQueries
	}

	result := r.planner.BrainstormIdeas(ctx, brief)
	if result.Degraded {
		r.appendLog(ctx, runID, models.AgentPlanner, models.LevelWarn, models.EventError,
			"Idea brainstorm degraded to defaults: "+result.Reason, nil)
	}
	if len(result.Ideas) == 0 {
		return planner.DefaultIdeas()
	}
	return result.Ideas
}

// runIdea collects and persists products for one idea. The API path
// runs only when the browser path yielded nothing.
func (r *Runner) runIdea(ctx context.Context, runID, brief, idea string) int {
	r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelInfo, models.EventAction,
		fmt.Sprintf("Hunting products for %q", idea), nil)

	items := r.collectFromBrowser(ctx, runID, brief, idea)
	if len(items) == 0 {
		items = r.collectFromSearch(ctx, runID, idea)
	}

	added := 0
	for _, item := range items {
		if r.persistItem(ctx, runID, item) {
			added++
		}
	}
	return added
}

func (r *Runner) collectFromBrowser(ctx context.Context, runID, brief, idea string) []models.DiscoveredItem {
	capture, err := r.browser.Collect(ctx, idea, brief)
	if r.metrics != nil {
		r.metrics.RecordCollectorCall("browser", err != nil)
	}
	if err != nil {
		r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelWarn, models.EventError,
			fmt.Sprintf("Browser collection unavailable for %q: %v", idea, err), nil)
		return nil
	}

	for i, action := range capture.Actions {
		if i >= maxLoggedActions {
			break
		}
		r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelInfo, models.EventAction, action, nil)
	}
	if capture.Summary != "" {
		r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelInfo, models.EventSummary,
			capture.Summary, nil)
	}
	if capture.Error != "" {
		r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelWarn, models.EventError,
			capture.Error, nil)
	}

	items := make([]models.DiscoveredItem, 0, len(capture.Products))
	for _, p := range capture.Products {
		if p.Title == "" || p.ProductURL == "" {
			continue
		}
		items = append(items, models.DiscoveredItem{
			Title:        p.Title,
			URL:          p.ProductURL,
			Merchant:     merchantAmazon,
			ImageURL:     p.ImageURL,
			PriceCents:   normalize.PriceCents(p.PriceText),
			AffiliateURL: p.AffiliateURL,
			TagSeeds:     append([]string{idea}, p.Highlights...),
		})
	}
	return items
}

func (r *Runner) collectFromSearch(ctx context.Context, runID, idea string) []models.DiscoveredItem {
	result := r.search.Search(ctx, idea)
	if r.metrics != nil {
		r.metrics.RecordCollectorCall("search", result.Degraded)
	}
	if result.Degraded {
		r.appendLog(ctx, runID, models.AgentDealHunter, models.LevelWarn, models.EventError,
			fmt.Sprintf("Product search degraded for %q: %s", idea, result.Reason), nil)
	}

	items := make([]models.DiscoveredItem, 0, len(result.Items))
	for _, found := range result.Items {
		items = append(items, models.DiscoveredItem{
			Title:      found.Title,
			URL:        found.URL,
			Merchant:   merchantAmazon,
			ImageURL:   found.ImageURL,
			PriceCents: found.PriceCents,
			TagSeeds:   append([]string{idea}, found.Features...),
		})
	}
	return items
}

func (r *Runner) persistItem(ctx context.Context, runID string, item models.DiscoveredItem) bool {
	if item.ImageURL == "" && r.extractor != nil {
		// Best effort; a missing image never blocks persistence.
		if meta, err := r.extractor.Extract(ctx, item.URL); err == nil && meta.ImageURL != "" {
			item.ImageURL = meta.ImageURL
		}
	}

	product, err := r.products.Upsert(ctx, runID, item)
	if err != nil {
		r.appendLog(ctx, runID, models.AgentLinkBuilder, models.LevelError, models.EventError,
			fmt.Sprintf("Failed to save %q: %v", item.Title, err), nil)
		return false
	}

	if r.metrics != nil {
		r.metrics.RecordPersist(product.CreatedAt.Equal(product.UpdatedAt))
	}
	r.publisher.PublishAsync(events.RunEvent{
		EventType: events.ProductAdded,
		RunID:     runID,
		Payload: events.ProductAddedPayload{
			ProductID: product.ID,
			Title:     product.Title,
			Merchant:  product.Merchant,
		},
	})

	r.appendLog(ctx, runID, models.AgentLinkBuilder, models.LevelInfo, models.EventItem,
		fmt.Sprintf("Added %q from %s", product.Title, product.Merchant),
		map[string]string{"product_id": product.ID, "url": product.URL})

	return true
}

// appendLog writes one run log entry. Append failures are logged and
// swallowed so a broken log store never aborts a run.
func (r *Runner) appendLog(
	ctx context.Context,
	runID, agent, level string,
	eventType models.EventType,
	message string,
	payload any,
) {
	entry := &models.RunLog{
		RunID:     runID,
		Agent:     agent,
		Level:     level,
		EventType: eventType,
		Message:   message,
	}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			entry.Payload = raw
		}
	}

	if err := r.runLogs.Append(ctx, entry); err != nil {
		r.logger.Error("Failed to append run log entry",
			logger.String("run_id", runID),
			logger.String("message", message),
			logger.Error(err))
	}
}
