package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"restaurant-analytics-service/internal/model"
	"restaurant-analytics-service/internal/service"
)

type Handler struct {
	analytics   *service.AnalyticsService
	regenerator *service.Regenerator
	log         zerolog.Logger
}

func NewHandler(analytics *service.AnalyticsService, regenerator *service.Regenerator, log zerolog.Logger) *Handler {
	return &Handler{analytics: analytics, regenerator: regenerator, log: log}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware, adminMiddleware gin.HandlerFunc) {
	protected := r.Group("/analytics")
	protected.Use(authMiddleware)

	protected.GET("/products/top", h.getTopProducts)
	protected.GET("/revenue", h.getRevenueAnalytics)
	protected.GET("/categories", h.getCategorySales)
	protected.GET("/employees", h.getEmployeePerformance)
	protected.GET("/summaries", h.listSummaries)

	admin := protected.Group("")
	admin.Use(adminMiddleware)
	admin.POST("/summaries/regenerate", h.regenerateSummary)
}

func (h *Handler) getTopProducts(c *gin.Context) {
	periodType, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	limit := model.TopProductsLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.analytics.GetTopProducts(c.Request.Context(), periodType, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(entries))
}

func (h *Handler) getRevenueAnalytics(c *gin.Context) {
	periodType, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	revenue, err := h.analytics.GetRevenueAnalytics(c.Request.Context(), periodType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(revenue))
}

func (h *Handler) getCategorySales(c *gin.Context) {
	periodType, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	sales, err := h.analytics.GetCategorySales(c.Request.Context(), periodType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(sales))
}

func (h *Handler) getEmployeePerformance(c *gin.Context) {
	periodType, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	perf, err := h.analytics.GetEmployeePerformance(c.Request.Context(), periodType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(perf))
}

// listSummaries serves either a date-range listing (from/to) or a
// per-period-type listing (period).
func (h *Handler) listSummaries(c *gin.Context) {
	if raw := strings.TrimSpace(c.Query("period")); raw != "" {
		periodType, err := model.ParsePeriodType(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		rows, err := h.analytics.ListSummariesByType(c.Request.Context(), periodType)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse(rows))
		return
	}

	from, ok := h.parseDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.parseDate(c, "to")
	if !ok {
		return
	}

	rows, err := h.analytics.ListSummaries(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rows))
}

// regenerateSummary is the manual rollup trigger. An explicit date rebuilds
// that date's period; otherwise the current one.
func (h *Handler) regenerateSummary(c *gin.Context) {
	periodType, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	ref := time.Now()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid date, expected YYYY-MM-DD"))
			return
		}
		ref = parsed
	}

	row, err := h.regenerator.Regenerate(c.Request.Context(), periodType, ref)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(row))
}

func (h *Handler) parsePeriod(c *gin.Context) (model.PeriodType, bool) {
	raw := c.Query("period")
	if strings.TrimSpace(raw) == "" {
		raw = "daily"
	}
	periodType, err := model.ParsePeriodType(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return "", false
	}
	return periodType, true
}

func (h *Handler) parseDate(c *gin.Context, name string) (time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		c.JSON(http.StatusBadRequest, errorResponse(name+" is required"))
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name+", expected YYYY-MM-DD"))
		return time.Time{}, false
	}
	return parsed, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var genErr *service.GenerationError
	switch {
	case errors.Is(err, service.ErrResourceExhausted):
		c.JSON(http.StatusServiceUnavailable, errorResponse("analytics temporarily unavailable"))
	case errors.Is(err, service.ErrGenerationTimeout):
		c.JSON(http.StatusGatewayTimeout, errorResponse("summary generation timed out"))
	case errors.Is(err, service.ErrSummaryNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.As(err, &genErr), errors.Is(err, service.ErrFallbackExhausted):
		h.log.Error().Err(err).Msg("analytics request failed")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{"data": data}
}

func errorResponse(message string) gin.H {
	return gin.H{"error": message}
}
