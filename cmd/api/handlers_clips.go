package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clipzone/clipzone/internal/metrics"
	"github.com/clipzone/clipzone/internal/middleware"
)

type submitClipRequest struct {
	CreatorID string `json:"creator_id" binding:"required"`
	Title     string `json:"title" binding:"required"`
	MediaRef  string `json:"media_ref"`
	Views     int64  `json:"views"`
}

type moderateClipRequest struct {
	Status string `json:"status" binding:"required"`
	Views  *int64 `json:"views"`
}

// Submit clip endpoint. Accepts a JSON body referencing already-hosted
// media, or a multipart form with a media file that is uploaded first.
func (api *API) submitClip(c *gin.Context) {
	clipperID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		api.submitClipMultipart(c, clipperID)
		return
	}

	var req submitClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clip, err := api.engine.SubmitClip(c.Request.Context(), clipperID, req.CreatorID, req.Title, req.MediaRef, req.Views)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clip)
}

func (api *API) submitClipMultipart(c *gin.Context, clipperID string) {
	if api.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media uploads are not available"})
		return
	}

	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No media file provided"})
		return
	}

	creatorID := c.PostForm("creator_id")
	title := c.PostForm("title")

	var views int64
	if v := c.PostForm("views"); v != "" {
		views, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "views must be an integer"})
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read media file"})
		return
	}
	defer src.Close()

	objectName := fmt.Sprintf("clips/%s/%s", uuid.New().String(), filepath.Base(file.Filename))
	if err := api.storage.UploadClip(c.Request.Context(), objectName, src, file.Size, file.Filename); err != nil {
		api.logger.ErrorWithErr("Failed to upload clip media", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to upload media"})
		return
	}

	metrics.MediaUploadsTotal.Inc()
	metrics.MediaUploadSizeBytes.Observe(float64(file.Size))

	clip, err := api.engine.SubmitClip(c.Request.Context(), clipperID, creatorID, title, objectName, views)
	if err != nil {
		// The clip record never existed, so the uploaded object is orphaned.
		if delErr := api.storage.Delete(c.Request.Context(), objectName); delErr != nil {
			api.logger.ErrorWithErr("Failed to remove orphaned media", delErr)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, clip)
}

// List creators endpoint for the clipper submission flow
func (api *API) listCreators(c *gin.Context) {
	creators, err := api.accounts.ListCreators(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"creators": creators})
}

// Clipper dashboard endpoint
func (api *API) clipperDashboard(c *gin.Context) {
	clipperID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	summary, err := api.reporter.ClipperSummary(c.Request.Context(), clipperID)
	if err != nil {
		respondError(c, err)
		return
	}

	clips, err := api.reporter.ClipsForClipper(c.Request.Context(), clipperID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"clips":   clips,
	})
}

// Creator clips endpoint lists clips submitted for the creator
func (api *API) creatorClips(c *gin.Context) {
	creatorID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	clips, err := api.reporter.ClipsForCreator(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"clips": clips})
}

// Clip playback endpoint returns a presigned URL for the clip media
func (api *API) clipPlayback(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	clip, err := api.clips.GetClip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if clip.CreatorID != accountID && clip.ClipperID != accountID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	if api.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Media playback is not available"})
		return
	}

	url, err := api.storage.PlaybackURL(c.Request.Context(), clip.MediaRef)
	if err != nil {
		api.logger.ErrorWithErr("Failed to presign playback URL", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to generate playback URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Moderate clip endpoint. Only the clip's creator may change its status;
// approving a pending or rejected clip credits the clipper once.
func (api *API) moderateClip(c *gin.Context) {
	creatorID, ok := middleware.GetAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req moderateClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clip, err := api.engine.Moderate(c.Request.Context(), c.Param("id"), creatorID, req.Status, req.Views)
	if err != nil {
		respondError(c, err)
		return
	}

	api.invalidateSummaries(c, clip.CreatorID, clip.ClipperID)

	c.JSON(http.StatusOK, clip)
}

// invalidateSummaries drops cached dashboard rollups after a mutation
func (api *API) invalidateSummaries(c *gin.Context, accountIDs ...string) {
	if api.cache == nil {
		return
	}
	for _, id := range accountIDs {
		if err := api.cache.InvalidateAccount(c.Request.Context(), id); err != nil {
			api.logger.WithAccountID(id).ErrorWithErr("Failed to invalidate cached summaries", err)
		}
	}
}
