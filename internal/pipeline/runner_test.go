package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/adscout/internal/browserbot"
	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/planner"
	"github.com/jonesrussell/adscout/internal/productsearch"
	"github.com/jonesrussell/adscout/internal/testhelpers"
)

type fakePlanner struct {
	plan  planner.PlanResult
	ideas planner.IdeasResult
}

func (f *fakePlanner) BuildPlan(context.Context, string) planner.PlanResult { return f.plan }

func (f *fakePlanner) BrainstormIdeas(context.Context, string) planner.IdeasResult { return f.ideas }

type fakeBrowser struct {
	results map[string]*browserbot.CaptureResult
	err     error
	calls   []string
}

func (f *fakeBrowser) Collect(_ context.Context, idea, _ string) (*browserbot.CaptureResult, error) {
	f.calls = append(f.calls, idea)
	if f.err != nil {
		return nil, f.err
	}
	if result, ok := f.results[idea]; ok {
		return result, nil
	}
	return &browserbot.CaptureResult{Status: browserbot.StatusNoProducts}, nil
}

type fakeSearch struct {
	results map[string]productsearch.Result
	calls   []string
}

func (f *fakeSearch) Search(_ context.Context, keyword string) productsearch.Result {
	f.calls = append(f.calls, keyword)
	return f.results[keyword]
}

type fakeStore struct {
	saved []models.DiscoveredItem
	err   error
}

func (f *fakeStore) Upsert(_ context.Context, _ string, item models.DiscoveredItem) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, item)

	now := time.Now().UTC()
	return &models.Product{
		ID:        fmt.Sprintf("prod-%d", len(f.saved)),
		Title:     item.Title,
		URL:       item.URL,
		Merchant:  item.Merchant,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type fakeLogStore struct {
	entries []models.RunLog
}

func (f *fakeLogStore) Append(_ context.Context, entry *models.RunLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLogStore) last() models.RunLog {
	return f.entries[len(f.entries)-1]
}

func planWithQueries(queries ...string) planner.PlanResult {
	return planner.PlanResult{Plan: planner.Plan{
		Niche:         "test niche",
		SearchQueries: queries,
	}}
}

func newTestRunner(opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = testhelpers.NewTestLogger()
	}
	return NewRunner(opts)
}

func browserProducts(products ...browserbot.Product) *browserbot.CaptureResult {
	return &browserbot.CaptureResult{
		Status:   browserbot.StatusCompleted,
		Products: products,
	}
}

func TestRunAlwaysEndsWithCompletionEntry(t *testing.T) {
	logs := &fakeLogStore{}
	runner := newTestRunner(Options{
		Planner: &fakePlanner{plan: planWithQueries("anything")},
		Browser: &fakeBrowser{err: errors.New("connection refused")},
		Search:  &fakeSearch{},
		Products: &fakeStore{
			err: errors.New("db down"),
		},
		RunLogs: logs,
	})

	runner.Run(context.Background(), "run-1", "some brief")

	final := logs.last()
	assert.Equal(t, models.AgentSystem, final.Agent)
	assert.Equal(t, models.LevelWarn, final.Level)
	assert.Equal(t, "Run completed without new products.", final.Message)
}

func TestSearchPathRunsOnlyWhenBrowserYieldsNothing(t *testing.T) {
	browser := &fakeBrowser{results: map[string]*browserbot.CaptureResult{
		"espresso makers": browserProducts(browserbot.Product{
			Title:      "Portable Espresso Maker",
			ProductURL: "https://www.amazon.com/dp/B0ESP",
		}),
		// "camping kettles" intentionally absent: browser finds nothing.
	}}
	search := &fakeSearch{results: map[string]productsearch.Result{
		"camping kettles": {Items: []productsearch.Item{{
			ID:    "B0KET",
			Title: "Camping Kettle",
			URL:   "https://www.amazon.com/dp/B0KET",
		}}},
	}}
	store := &fakeStore{}

	runner := newTestRunner(Options{
		Planner:  &fakePlanner{plan: planWithQueries("espresso makers", "camping kettles")},
		Browser:  browser,
		Search:   search,
		Products: store,
		RunLogs:  &fakeLogStore{},
	})

	runner.Run(context.Background(), "run-1", "coffee on the go")

	assert.Equal(t, []string{"espresso makers", "camping kettles"}, browser.calls)
	assert.Equal(t, []string{"camping kettles"}, search.calls)
	require.Len(t, store.saved, 2)
}

func TestRunCountsPersistedItems(t *testing.T) {
	logs := &fakeLogStore{}
	runner := newTestRunner(Options{
		Planner: &fakePlanner{plan: planWithQueries("desk accessories")},
		Browser: &fakeBrowser{results: map[string]*browserbot.CaptureResult{
			"desk accessories": browserProducts(
				browserbot.Product{Title: "Desk Shelf", ProductURL: "https://www.amazon.com/dp/B01", PriceText: "$19.99"},
				browserbot.Product{Title: "Monitor Arm", ProductURL: "https://www.amazon.com/dp/B02"},
				browserbot.Product{Title: "Missing URL"},
			),
		}},
		Search:   &fakeSearch{},
		Products: &fakeStore{},
		RunLogs:  logs,
	})

	runner.Run(context.Background(), "run-1", "home office upgrades")

	assert.Equal(t, "Run completed. Added 2 items.", logs.last().Message)
	assert.Equal(t, models.LevelInfo, logs.last().Level)
}

func TestBrowserPriceTextIsNormalized(t *testing.T) {
	store := &fakeStore{}
	runner := newTestRunner(Options{
		Planner: &fakePlanner{plan: planWithQueries("coffee gear")},
		Browser: &fakeBrowser{results: map[string]*browserbot.CaptureResult{
			"coffee gear": browserProducts(
				browserbot.Product{Title: "Press", ProductURL: "https://www.amazon.com/dp/B01", PriceText: "$39.95"},
				browserbot.Product{Title: "Scoop", ProductURL: "https://www.amazon.com/dp/B02", PriceText: "Free"},
			),
		}},
		Search:   &fakeSearch{},
		Products: store,
		RunLogs:  &fakeLogStore{},
	})

	runner.Run(context.Background(), "run-1", "coffee gear")

	require.Len(t, store.saved, 2)
	require.NotNil(t, store.saved[0].PriceCents)
	assert.Equal(t, int64(3995), *store.saved[0].PriceCents)
	assert.Nil(t, store.saved[1].PriceCents)
}

func TestBrowserActionsAreLoggedCapped(t *testing.T) {
	actions := make([]string, 15)
	for i := range actions {
		actions[i] = fmt.Sprintf("step %d", i)
	}

	logs := &fakeLogStore{}
	runner := newTestRunner(Options{
		Planner: &fakePlanner{plan: planWithQueries("one idea")},
		Browser: &fakeBrowser{results: map[string]*browserbot.CaptureResult{
			"one idea": {Status: browserbot.StatusNoProducts, Actions: actions},
		}},
		Search:   &fakeSearch{},
		Products: &fakeStore{},
		RunLogs:  logs,
	})

	runner.Run(context.Background(), "run-1", "brief")

	logged := 0
	for _, entry := range logs.entries {
		if entry.EventType == models.EventAction && entry.Agent == models.AgentDealHunter &&
			len(entry.Message) > 4 && entry.Message[:4] == "step" {
			logged++
		}
	}
	assert.Equal(t, maxLoggedActions, logged)
}

func TestUpsertFailureIsLoggedAndSkipped(t *testing.T) {
	logs := &fakeLogStore{}
	runner := newTestRunner(Options{
		Planner: &fakePlanner{plan: planWithQueries("gadgets")},
		Browser: &fakeBrowser{results: map[string]*browserbot.CaptureResult{
			"gadgets": browserProducts(browserbot.Product{
				Title:      "Widget",
				ProductURL: "https://www.amazon.com/dp/B0W",
			}),
		}},
		Search:   &fakeSearch{},
		Products: &fakeStore{err: errors.New("insert failed")},
		RunLogs:  logs,
	})

	runner.Run(context.Background(), "run-1", "brief")

	var errorLogged bool
	for _, entry := range logs.entries {
		if entry.EventType == models.EventError && entry.Level == models.LevelError {
			errorLogged = true
		}
	}
	assert.True(t, errorLogged)
	assert.Equal(t, "Run completed without new products.", logs.last().Message)
}

// Full offline path: no language model credential, browser unreachable,
// no product search credentials. The demo result set still yields one
// persisted product.
func TestOfflineRunFallsBackToDemoResults(t *testing.T) {
	logs := &fakeLogStore{}
	store := &fakeStore{}

	runner := newTestRunner(Options{
		Planner:  planner.New(config.PlannerConfig{}, testhelpers.NewTestLogger()),
		Browser:  &fakeBrowser{err: errors.New("dial tcp 127.0.0.1:8900: connection refused")},
		Search:   productsearch.NewClient(config.ProductSearchConfig{Host: "webservices.amazon.com", Region: "us-east-1"}, testhelpers.NewTestLogger()),
		Products: store,
		RunLogs:  logs,
	})

	runner.Run(context.Background(), "run-1", "Find portable coffee makers under $50")

	require.Len(t, store.saved, 1)
	assert.Equal(t, "AeroPress Go Portable Travel Coffee Press Kit", store.saved[0].Title)
	assert.Equal(t, "Amazon", store.saved[0].Merchant)
	require.NotNil(t, store.saved[0].PriceCents)
	assert.Equal(t, int64(3995), *store.saved[0].PriceCents)

	assert.Equal(t, "Run completed. Added 1 items.", logs.last().Message)
}
