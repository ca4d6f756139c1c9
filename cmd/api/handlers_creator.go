package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipzone/clipzone/internal/middleware"
	"github.com/clipzone/clipzone/internal/reporting"
)

type setCPMRequest struct {
	CPM float64 `json:"cpm" binding:"required"`
}

// Creator dashboard endpoint aggregates the creator's summary, the top
// clippers leaderboard and the full clip list in one response.
func (api *API) creatorDashboard(c *gin.Context) {
	creatorID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	summary, err := api.reporter.CreatorSummary(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	topClippers, err := api.reporter.TopClippers(c.Request.Context(), creatorID, reporting.DefaultTopClippersLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	clips, err := api.reporter.ClipsForCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":      summary,
		"top_clippers": topClippers,
		"clips":        clips,
	})
}

// Set CPM endpoint. The new rate applies to future moderations only.
func (api *API) setCPM(c *gin.Context) {
	creatorID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req setCPMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cpm, err := api.engine.SetCPM(c.Request.Context(), creatorID, req.CPM)
	if err != nil {
		respondError(c, err)
		return
	}

	api.invalidateSummaries(c, creatorID)

	c.JSON(http.StatusOK, gin.H{"cpm": cpm})
}
