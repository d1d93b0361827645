package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/events"
	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/ArowuTest/promo-lottery/internal/roster"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LotteryHandler exposes the drawing engine over HTTP.
type LotteryHandler struct {
	engine *lottery.Engine
	hub    *events.Hub
}

// NewLotteryHandler creates a LotteryHandler. hub may be nil when no screens connect.
func NewLotteryHandler(engine *lottery.Engine, hub *events.Hub) *LotteryHandler {
	return &LotteryHandler{engine: engine, hub: hub}
}

// RegisterRoutes mounts the stage routes on api.
func (h *LotteryHandler) RegisterRoutes(api *gin.RouterGroup) {
	staff := RequireAuth()
	admin := RequireAuth(models.RoleSuperAdmin, models.RoleAdmin)
	reports := RequireAuth(models.RoleSuperAdmin, models.RoleAdmin, models.RoleWinnerReports)

	lot := api.Group("/lottery")
	{
		lot.GET("/state", h.State)
		lot.POST("/tier", staff, h.SelectTier)
		lot.POST("/start", staff, h.Start)
		lot.POST("/stop", staff, h.Stop)
		lot.POST("/close", staff, h.Close)
		lot.POST("/abort", staff, h.Abort)
		lot.POST("/undo", admin, h.Undo)
		lot.POST("/reset", admin, h.Reset)
	}

	api.GET("/tiers", h.ListTiers)
	api.PUT("/tiers", admin, h.ConfigureTiers)

	api.GET("/candidates", h.ListCandidates)
	api.POST("/candidates/import", staff, h.ImportCandidates)
	api.PATCH("/candidates/:id", staff, h.UpdateCandidate)

	api.GET("/gifts", h.ListGifts)
	api.POST("/gifts/import", staff, h.ImportGifts)

	api.GET("/winners", h.ListWinners)
	api.GET("/winners/export", reports, h.ExportWinners)

	hist := api.Group("/history")
	{
		hist.GET("", h.ListHistory)
		hist.GET("/stats", h.HistoryStats)
		hist.DELETE("/:id", admin, h.DeleteHistory)
		hist.DELETE("", admin, h.ClearHistory)
	}

	api.GET("/multi-round", h.MultiRoundStatus)
	api.POST("/multi-round", staff, h.StartMultiRound)
	api.DELETE("/multi-round", staff, h.CancelMultiRound)

	if h.hub != nil {
		api.GET("/events", h.hub.Serve)
	}
}

// errorStatus maps engine errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, lottery.ErrDrawInProgress),
		errors.Is(err, lottery.ErrQuotaExhausted),
		errors.Is(err, lottery.ErrNotReady),
		errors.Is(err, lottery.ErrEmptyPool),
		errors.Is(err, lottery.ErrInsufficientQuota),
		errors.Is(err, lottery.ErrNothingToUndo),
		errors.Is(err, lottery.ErrNoBackup):
		return http.StatusConflict
	case errors.Is(err, lottery.ErrAllWeightsZero):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lottery.ErrUnknownTier),
		errors.Is(err, lottery.ErrNoTierSelected),
		errors.Is(err, lottery.ErrInvalidRoundCount),
		errors.Is(err, lottery.ErrInvalidTiers):
		return http.StatusBadRequest
	case errors.Is(err, lottery.ErrHistoryNotFound),
		errors.Is(err, lottery.ErrCandidateNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("handlers: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

type tierRequest struct {
	TierKey string `json:"tierKey"`
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return false
	}
	return true
}

// State handles GET /api/v1/lottery/state
func (h *LotteryHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}

// SelectTier handles POST /api/v1/lottery/tier
func (h *LotteryHandler) SelectTier(c *gin.Context) {
	var req tierRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TierKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tierKey is required"})
		return
	}
	if err := h.engine.SelectTier(req.TierKey); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Status())
}

// Start handles POST /api/v1/lottery/start
func (h *LotteryHandler) Start(c *gin.Context) {
	var req tierRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := h.engine.Start(req.TierKey); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.engine.Status())
}

// Stop handles POST /api/v1/lottery/stop
func (h *LotteryHandler) Stop(c *gin.Context) {
	res, err := h.engine.Stop()
	if errors.Is(err, lottery.ErrInvalidWinnerIndex) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": res})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Close handles POST /api/v1/lottery/close
func (h *LotteryHandler) Close(c *gin.Context) {
	if err := h.engine.Close(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Status())
}

// Abort handles POST /api/v1/lottery/abort
func (h *LotteryHandler) Abort(c *gin.Context) {
	if err := h.engine.Abort(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Status())
}

// Undo handles POST /api/v1/lottery/undo
func (h *LotteryHandler) Undo(c *gin.Context) {
	entry, err := h.engine.Undo()
	if err != nil {
		respondError(c, err)
		return
	}
	logger.Infof("handlers: %s undid %s draw of %q", operator(c), entry.TierKey, entry.Winner.NameLocal)
	c.JSON(http.StatusOK, gin.H{
		"message": "Undid " + entry.TierLabel + ": " + entry.Winner.NameLocal,
		"entry":   entry,
	})
}

// Reset handles POST /api/v1/lottery/reset
func (h *LotteryHandler) Reset(c *gin.Context) {
	if err := h.engine.Reset(); err != nil {
		respondError(c, err)
		return
	}
	logger.Infof("handlers: %s reset the stage", operator(c))
	c.JSON(http.StatusOK, h.engine.Status())
}

// ListTiers handles GET /api/v1/tiers
func (h *LotteryHandler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status().Tiers)
}

// ConfigureTiers handles PUT /api/v1/tiers
func (h *LotteryHandler) ConfigureTiers(c *gin.Context) {
	var tiers []models.Tier
	if err := c.ShouldBindJSON(&tiers); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if err := h.engine.ConfigureTiers(tiers); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Status().Tiers)
}

// ListCandidates handles GET /api/v1/candidates
func (h *LotteryHandler) ListCandidates(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Candidates())
}

// ImportCandidates handles POST /api/v1/candidates/import. It accepts either
// an xlsx upload in the "file" field or a JSON array of candidates.
func (h *LotteryHandler) ImportCandidates(c *gin.Context) {
	var list []models.Candidate
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read upload: " + err.Error()})
			return
		}
		defer f.Close()
		if list, err = roster.ParseCandidates(f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if err := c.ShouldBindJSON(&list); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if len(list) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No candidates in payload"})
		return
	}
	if err := h.engine.LoadCandidates(list); err != nil {
		respondError(c, err)
		return
	}
	logger.Infof("handlers: imported %d candidates", len(list))
	c.JSON(http.StatusOK, gin.H{"imported": len(list)})
}

type candidateUpdate struct {
	Weights map[string]float64 `json:"awardWeights"`
	Locked  *bool              `json:"locked"`
}

// UpdateCandidate handles PATCH /api/v1/candidates/:id
func (h *LotteryHandler) UpdateCandidate(c *gin.Context) {
	id := c.Param("id")
	var req candidateUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	locked := false
	if req.Locked != nil {
		locked = *req.Locked
	} else {
		for _, cand := range h.engine.Candidates() {
			if cand.ID == id {
				locked = cand.Locked
				break
			}
		}
	}
	if err := h.engine.UpdateCandidate(id, req.Weights, locked); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

// ListGifts handles GET /api/v1/gifts
func (h *LotteryHandler) ListGifts(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Gifts())
}

// ImportGifts handles POST /api/v1/gifts/import with an xlsx upload or a JSON array.
func (h *LotteryHandler) ImportGifts(c *gin.Context) {
	var gifts []models.Gift
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot read upload: " + err.Error()})
			return
		}
		defer f.Close()
		if gifts, err = roster.ParseGifts(f); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if err := c.ShouldBindJSON(&gifts); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if err := h.engine.SetGifts(gifts); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.engine.Gifts())
}

// ListWinners handles GET /api/v1/winners
func (h *LotteryHandler) ListWinners(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Winners())
}

// ExportWinners handles GET /api/v1/winners/export
func (h *LotteryHandler) ExportWinners(c *gin.Context) {
	winners := h.engine.Winners()
	found := false
	for _, list := range winners {
		if len(list) > 0 {
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No winners to export yet"})
		return
	}
	raw, err := roster.ExportWinners(h.engine.Tiers(), winners)
	if err != nil {
		respondError(c, err)
		return
	}
	name := "winners-" + time.Now().Format("20060102-1504") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, raw)
}

// ListHistory handles GET /api/v1/history?limit=N
func (h *LotteryHandler) ListHistory(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.engine.History(limit))
}

// HistoryStats handles GET /api/v1/history/stats
func (h *LotteryHandler) HistoryStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.HistoryStats())
}

// DeleteHistory handles DELETE /api/v1/history/:id
func (h *LotteryHandler) DeleteHistory(c *gin.Context) {
	if err := h.engine.DeleteHistory(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// ClearHistory handles DELETE /api/v1/history
func (h *LotteryHandler) ClearHistory(c *gin.Context) {
	h.engine.ClearHistory()
	logger.Infof("handlers: %s cleared the draw history", operator(c))
	c.JSON(http.StatusOK, gin.H{"message": "Cleared"})
}

type multiRoundRequest struct {
	TierKey  string `json:"tierKey"`
	Rounds   int    `json:"rounds" binding:"required"`
	AutoStop bool   `json:"autoStop"`
}

// MultiRoundStatus handles GET /api/v1/multi-round
func (h *LotteryHandler) MultiRoundStatus(c *gin.Context) {
	s, ok := h.engine.Rounds().Session()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No multi-round session"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// StartMultiRound handles POST /api/v1/multi-round
func (h *LotteryHandler) StartMultiRound(c *gin.Context) {
	var req multiRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	if err := h.engine.Rounds().Start(req.TierKey, req.Rounds, req.AutoStop); err != nil {
		respondError(c, err)
		return
	}
	s, _ := h.engine.Rounds().Session()
	c.JSON(http.StatusAccepted, s)
}

// CancelMultiRound handles DELETE /api/v1/multi-round
func (h *LotteryHandler) CancelMultiRound(c *gin.Context) {
	if !h.engine.Rounds().Cancel() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active multi-round session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cancelled"})
}
