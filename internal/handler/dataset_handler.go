package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable/internal/dto"
	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/internal/service"
	"github.com/noah-isme/sma-timetable/pkg/response"
)

type datasetManager interface {
	Summary(ctx context.Context) (*dto.DatasetSummaryResponse, error)
	Seed(ctx context.Context) (*dto.SeedResponse, error)
	Reload(ctx context.Context) error
	Validation(ctx context.Context) (*models.ValidationReport, error)
}

// DatasetHandler exposes dataset inspection and lifecycle endpoints.
type DatasetHandler struct {
	service datasetManager
}

// NewDatasetHandler constructs the handler.
func NewDatasetHandler(svc *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: svc}
}

// Summary godoc
// @Summary Dataset summary
// @Description Table counts, grid shape and seed state of the loaded dataset.
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset/summary [get]
func (h *DatasetHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Seed godoc
// @Summary Seed missing dataset files
// @Description Writes the bundled sample rows for every missing CSV file, never overwriting existing ones, then reloads.
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset/seed [post]
func (h *DatasetHandler) Seed(c *gin.Context) {
	seeded, err := h.service.Seed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seeded, nil)
}

// Reload godoc
// @Summary Reload the dataset from disk
// @Description Re-reads every CSV file. The previous dataset stays active if the reload fails.
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset/reload [post]
func (h *DatasetHandler) Reload(c *gin.Context) {
	if err := h.service.Reload(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Validation godoc
// @Summary Validate the loaded dataset
// @Description Cross-table checks: referential integrity, duplicates, capacity and demand. Findings are reported, not raised.
// @Tags Dataset
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dataset/validation [get]
func (h *DatasetHandler) Validation(c *gin.Context) {
	report, err := h.service.Validation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
