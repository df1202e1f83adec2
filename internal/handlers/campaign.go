package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/repository"
)

// Runner starts a discovery run. Satisfied by pipeline.Runner.
type Runner interface {
	Run(ctx context.Context, runID, brief string)
}

type CampaignHandler struct {
	runner   Runner
	products *repository.ProductRepository
	runLogs  *repository.RunLogRepository
	logger   logger.Logger
}

func NewCampaignHandler(
	runner Runner,
	products *repository.ProductRepository,
	runLogs *repository.RunLogRepository,
	log logger.Logger,
) *CampaignHandler {
	return &CampaignHandler{
		runner:   runner,
		products: products,
		runLogs:  runLogs,
		logger:   log,
	}
}

type createCampaignRequest struct {
	Brief string `json:"brief"`
}

// Create queues a discovery run for the submitted brief and returns
// immediately; the dashboard follows progress via the logs endpoint.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req createCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Invalid request body",
			logger.String("error", err.Error()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	brief := strings.TrimSpace(req.Brief)
	if brief == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Brief is required"})
		return
	}

	runID := uuid.New().String()

	// The run outlives the request; it carries its own context.
	go h.runner.Run(context.Background(), runID, brief)

	h.logger.Info("Campaign run queued",
		logger.String("run_id", runID),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"run_id": runID,
		"status": "queued",
	})
}

// ListProducts returns recently discovered products, most recent first.
func (h *CampaignHandler) ListProducts(c *gin.Context) {
	filter := repository.ListFilter{
		RunID: c.Query("run_id"),
		Limit: queryInt(c, "limit"),
	}

	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products",
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// ListLogs returns recent run log rows, most recent first.
func (h *CampaignHandler) ListLogs(c *gin.Context) {
	filter := repository.LogFilter{
		RunID: c.Query("run_id"),
		Limit: queryInt(c, "limit"),
	}

	logs, err := h.runLogs.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list run logs",
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list run logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// queryInt parses an optional integer query param; invalid values fall
// back to zero so the repository applies its defaults.
func queryInt(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
