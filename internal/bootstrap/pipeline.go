package bootstrap

import (
	"github.com/jonesrussell/adscout/internal/browserbot"
	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/database"
	"github.com/jonesrussell/adscout/internal/events"
	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/metadata"
	"github.com/jonesrussell/adscout/internal/metrics"
	"github.com/jonesrussell/adscout/internal/pipeline"
	"github.com/jonesrussell/adscout/internal/planner"
	"github.com/jonesrussell/adscout/internal/productsearch"
	"github.com/jonesrussell/adscout/internal/repository"
)

// PipelineDeps exposes the repositories, metrics, and collaborator
// clients the HTTP layer shares with the pipeline.
type PipelineDeps struct {
	Products *repository.ProductRepository
	RunLogs  *repository.RunLogRepository
	Metrics  *metrics.Metrics
	Browser  *browserbot.Client
}

// SetupPipeline assembles the discovery run pipeline and its
// collaborator clients.
func SetupPipeline(
	cfg *config.Config,
	db *database.DB,
	publisher *events.Publisher,
	log logger.Logger,
) (*pipeline.Runner, PipelineDeps) {
	deps := PipelineDeps{
		Products: repository.NewProductRepository(db.DB(), log),
		RunLogs:  repository.NewRunLogRepository(db.DB(), log),
		Metrics:  metrics.New(),
		Browser:  browserbot.NewClient(cfg.Browserbot, log),
	}

	runner := pipeline.NewRunner(pipeline.Options{
		Planner:   planner.New(cfg.Planner, log),
		Browser:   deps.Browser,
		Search:    productsearch.NewClient(cfg.ProductSearch, log),
		Products:  deps.Products,
		RunLogs:   deps.RunLogs,
		Extractor: metadata.NewExtractor(log),
		Metrics:   deps.Metrics,
		Publisher: publisher,
		Logger:    log,
	})

	return runner, deps
}
