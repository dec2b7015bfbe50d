package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-newspulse/internal/model"
	"go-newspulse/internal/service"
)

const requestIDHeader = "X-Request-ID"

type Handler struct {
	news         *service.NewsService
	translator   *service.Translator
	translations *service.TranslationCache
	status       *service.StatusService
	scheduler    interface {
		GetNextRefreshTime() time.Time
		GetNextSweepTime() time.Time
	}
}

func NewHandler(news *service.NewsService, translator *service.Translator, translations *service.TranslationCache, status *service.StatusService) *Handler {
	return &Handler{
		news:         news,
		translator:   translator,
		translations: translations,
		status:       status,
	}
}

// SetScheduler exposes the next job times on /api/status.
func (h *Handler) SetScheduler(scheduler interface {
	GetNextRefreshTime() time.Time
	GetNextSweepTime() time.Time
}) {
	h.scheduler = scheduler
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(RequestID(), RequestLogger())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Articles
		api.GET("/articles", h.ListArticles)
		api.POST("/articles/search", h.SearchArticles)
		api.GET("/articles/trending", h.TrendingArticles)
		api.POST("/articles/refresh", h.RefreshArticles)

		// Personalization
		api.GET("/location", h.GetLocation)

		// Translation
		api.POST("/translate", h.Translate)
		api.GET("/translations/stats", h.TranslationStats)
		api.POST("/translations/sweep", h.SweepTranslations)

		// Sources and status
		api.GET("/sources", h.ListSources)
		api.GET("/status", h.GetStatus)
	}
}

// RequestID reuses an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"))
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ===== Articles =====

func (h *Handler) ListArticles(c *gin.Context) {
	var req model.NewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := c.ShouldBindQuery(&req.Criteria); err != nil {
		writeBindError(c, err)
		return
	}
	normalizeCriteria(&req.Criteria)
	req.IP = c.ClientIP()

	h.serveNews(c, req)
}

func (h *Handler) SearchArticles(c *gin.Context) {
	var req model.NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	normalizeCriteria(&req.Criteria)
	req.IP = c.ClientIP()

	h.serveNews(c, req)
}

func (h *Handler) serveNews(c *gin.Context, req model.NewsRequest) {
	page, err := h.news.GetNews(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) TrendingArticles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	articles := h.news.Trending(c.Request.Context(), limit)
	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": len(articles)})
}

func (h *Handler) RefreshArticles(c *gin.Context) {
	articles := h.news.Refresh(c.Request.Context())
	_, failures := h.news.LastRefresh()
	c.JSON(http.StatusOK, gin.H{"articles": len(articles), "failed_sources": failures})
}

// ===== Personalization =====

func (h *Handler) GetLocation(c *gin.Context) {
	ip := c.Query("ip")
	if ip == "" {
		ip = c.ClientIP()
	}
	loc := h.news.ResolveLocation(c.Request.Context(), ip, c.Query("tz"))
	c.JSON(http.StatusOK, loc)
}

// ===== Translation =====

type translateRequest struct {
	Text string `json:"text" binding:"required"`
	From string `json:"from"`
	To   string `json:"to" binding:"required"`
}

func (h *Handler) Translate(c *gin.Context) {
	if h.translator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "translation is not configured"})
		return
	}
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	rec, err := h.translator.Translate(c.Request.Context(), req.Text, req.From, req.To)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) TranslationStats(c *gin.Context) {
	stats, err := h.translations.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) SweepTranslations(c *gin.Context) {
	n, err := h.translations.Sweep(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// ===== Sources and status =====

func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, h.news.Sources())
}

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.status.GetSystemStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	if h.scheduler != nil {
		status.NextRefreshTime = h.scheduler.GetNextRefreshTime()
		status.NextSweepTime = h.scheduler.GetNextSweepTime()
	}

	c.JSON(http.StatusOK, status)
}

// ===== Helpers =====

func writeError(c *gin.Context, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Error(),
			"field": verr.Field,
			"value": verr.Value,
			"valid": verr.Valid,
		})
		return
	}
	slog.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}

// normalizeCriteria splits comma separated list values such as ?categories=a,b.
func normalizeCriteria(c *model.FilterCriteria) {
	c.Categories = splitList(c.Categories)
	c.Keywords = splitList(c.Keywords)
	c.ExcludeKeywords = splitList(c.ExcludeKeywords)
	c.Languages = splitList(c.Languages)
	c.Sources = splitList(c.Sources)
	c.ExcludeSources = splitList(c.ExcludeSources)
	c.Regions = splitList(c.Regions)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
