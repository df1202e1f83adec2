// Package api wires the HTTP routes onto the shared server scaffolding.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/adscout/internal/handlers"
	"github.com/jonesrussell/adscout/internal/metrics"
	"github.com/jonesrussell/adscout/internal/server"
)

// Dependencies holds everything the route table needs.
type Dependencies struct {
	Campaigns      *handlers.CampaignHandler
	Metrics        *metrics.Metrics
	HealthChecks   map[string]server.HealthChecker
	ServiceName    string
	ServiceVersion string
}

// RegisterRoutes configures all routes on the router.
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	server.RegisterHealthRoutes(router, deps.ServiceName, deps.ServiceVersion, deps.HealthChecks)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.POST("/campaigns", deps.Campaigns.Create)
	v1.GET("/products", deps.Campaigns.ListProducts)
	v1.GET("/logs", deps.Campaigns.ListLogs)
}
