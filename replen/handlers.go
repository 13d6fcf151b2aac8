package replen

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ClaudioSBezerra/JC-CP01-sub001/models"
	"github.com/ClaudioSBezerra/JC-CP01-sub001/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatusHandler reports one company's cadence settings and when it last ran.
func StatusHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId := strings.TrimSpace(c.Query("company"))
		if companyId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "company is required"})
			return
		}
		ctx := c.Request.Context()

		settings, err := models.GetReplenishmentSettings(ctx, s.DB(), companyId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "company not configured"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		last, err := models.LastSuccessfulFetch(ctx, s.DB(), companyId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := CompanyStatusResponse{
			CompanyId:           settings.CompanyId,
			Enabled:             settings.IsEnabled(),
			SyncIntervalMinutes: settings.SyncIntervalMinutes,
			ActiveBranches:      settings.ActiveBranches(),
			UseMockGateway:      settings.WantsMockGateway(),
			LastSuccessFetchAt:  formatTime(last),
		}
		if last != nil {
			next := last.Add(settings.SyncInterval())
			resp.NextDueAt = formatTime(&next)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// RunNowHandler is the operator trigger: it queues one out-of-band cycle for
// a company and returns immediately. The cycle runs in its own goroutine
// against the shared store, concurrent with the scheduled loop by design.
func RunNowHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RunNowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		companyId := strings.TrimSpace(req.CompanyId)
		if companyId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "companyId is required"})
			return
		}

		// Settings existence is verified inline so the operator gets a 404
		// instead of a silent no-op.
		if _, err := models.GetReplenishmentSettings(c.Request.Context(), s.DB(), companyId); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "company not configured"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		go func() {
			ctx := utils.SetCorrelationIdInContext(context.Background(), cid)
			ctx = utils.SetCompanyIdInContext(ctx, companyId)
			if err := s.RunCompanyNow(ctx, companyId); err != nil {
				s.logWriteFailure(ctx, "RunNowHandler", err)
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "companyId": companyId})
	}
}

// UpdateSettingsHandler upserts one company's cadence settings and drops the
// cached copy so the next tick sees the change.
func UpdateSettingsHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		companyId := strings.TrimSpace(req.CompanyId)
		if companyId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "companyId is required"})
			return
		}
		if req.SyncIntervalMinutes < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "syncIntervalMinutes must be at least 1"})
			return
		}

		enabled := true
		if req.Enabled != nil {
			enabled = *req.Enabled
		}
		useMock := false
		if req.UseMockGateway != nil {
			useMock = *req.UseMockGateway
		}
		if !useMock && strings.TrimSpace(req.ApiUrl) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "apiUrl is required unless useMockGateway is set"})
			return
		}

		settings := &models.ReplenishmentSettings{
			CompanyId:           companyId,
			Enabled:             &enabled,
			SyncIntervalMinutes: req.SyncIntervalMinutes,
			ActiveBranchesJSON:  models.EncodeBranches(req.ActiveBranches),
			UseMockGateway:      &useMock,
			ApiUrl:              strings.TrimSpace(req.ApiUrl),
			ApiKey:              strings.TrimSpace(req.ApiKey),
		}
		if err := models.SaveReplenishmentSettings(c.Request.Context(), s.DB(), settings); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "saved", "companyId": companyId})
	}
}

// WavesHandler lists recent waves for a company, newest first.
func WavesHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId := strings.TrimSpace(c.Query("company"))
		if companyId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "company is required"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		q := s.DB().WithContext(c.Request.Context()).
			Where("company_id = ?", companyId)
		if branch := strings.TrimSpace(c.Query("branch")); branch != "" {
			q = q.Where("branch = ?", branch)
		}

		var waves []models.ReplenishmentWave
		if err := q.Order("generated_at DESC").Limit(limit).Find(&waves).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]WaveSummaryResponse, 0, len(waves))
		for i := range waves {
			items = append(items, waveSummary(&waves[i]))
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func WaveDetailHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wave id"})
			return
		}

		var wave models.ReplenishmentWave
		err = s.DB().WithContext(c.Request.Context()).
			Preload("Tasks", func(db *gorm.DB) *gorm.DB {
				return db.Order("sequence ASC")
			}).
			Where("id = ?", id).
			Take(&wave).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "wave not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		resp := WaveDetailResponse{WaveSummaryResponse: waveSummary(&wave)}
		for _, t := range wave.Tasks {
			resp.Tasks = append(resp.Tasks, WaveTaskResponse{
				Sequence:       t.Sequence,
				LocationCode:   t.LocationCode,
				ProductCode:    t.ProductCode,
				Description:    t.Description,
				CurrentQty:     t.CurrentQty.String(),
				MinQty:         t.MinQty.String(),
				QtyToReplenish: t.QtyToReplenish.String(),
				AbcClass:       t.AbcClass,
				Priority:       t.Priority,
				Status:         t.Status,
			})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// FragmentationHandler returns the recent score series for a branch.
func FragmentationHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId := strings.TrimSpace(c.Query("company"))
		branch := strings.TrimSpace(c.Query("branch"))
		if companyId == "" || branch == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "company and branch are required"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		samples, err := models.ListRecentSamples(c.Request.Context(), s.DB(), companyId, branch, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		items := make([]FragmentationSampleResponse, 0, len(samples))
		for _, sample := range samples {
			items = append(items, FragmentationSampleResponse{
				Score:           sample.Score,
				BelowMinCount:   sample.BelowMinCount,
				ActiveLocations: sample.ActiveLocations,
				TakenAt:         sample.TakenAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

func SyncLogHandler(s *Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyId := strings.TrimSpace(c.Query("company"))
		if companyId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "company is required"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		entries, err := models.ListRecentSyncLog(c.Request.Context(), s.DB(), companyId, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		items := make([]SyncLogEntryResponse, 0, len(entries))
		for _, e := range entries {
			items = append(items, SyncLogEntryResponse{
				ID:          e.ID,
				Branch:      e.Branch,
				Action:      e.Action,
				Status:      e.Status,
				RecordCount: e.RecordCount,
				ErrorText:   e.ErrorText,
				DurationMs:  e.DurationMs,
				TriggeredBy: e.TriggeredBy,
				FinishedAt:  e.FinishedAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
