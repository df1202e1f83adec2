package bootstrap

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/adscout/internal/api"
	"github.com/jonesrussell/adscout/internal/config"
	"github.com/jonesrussell/adscout/internal/database"
	"github.com/jonesrussell/adscout/internal/handlers"
	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/pipeline"
	"github.com/jonesrussell/adscout/internal/server"
)

const collaboratorHealthTimeout = 5 * time.Second

// SetupHTTPServer creates and configures the HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	db *database.DB,
	runner *pipeline.Runner,
	deps PipelineDeps,
	log logger.Logger,
) *server.Server {
	srvCfg := server.NewConfig("adscout", cfg.Server.Port)
	srvCfg.Debug = cfg.Debug
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	srvCfg.ServiceVersion = version
	if len(cfg.Server.CORSOrigins) > 0 {
		srvCfg.CORS.AllowedOrigins = cfg.Server.CORSOrigins
	}

	campaigns := handlers.NewCampaignHandler(runner, deps.Products, deps.RunLogs, log)

	return server.New(srvCfg, log, func(router *gin.Engine) {
		api.RegisterRoutes(router, api.Dependencies{
			Campaigns: campaigns,
			Metrics:   deps.Metrics,
			HealthChecks: map[string]server.HealthChecker{
				"database":   server.DatabaseHealthChecker(db.Ping),
				"browserbot": server.CollaboratorHealthChecker(deps.Browser.Healthy, collaboratorHealthTimeout),
			},
			ServiceName:    "adscout",
			ServiceVersion: version,
		})
	})
}
