package report

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/walkin-api/internal/handler"
	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/report"
	reportsvc "github.com/jwalitptl/walkin-api/internal/service/report"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
)

// StatsQuery holds the statistics page filters.
type StatsQuery struct {
	Department string `form:"department"`
	Month      string `form:"month" binding:"omitempty,month"`
	Year       string `form:"year" binding:"omitempty,numeric"`
}

type StatsResponse struct {
	Filter model.ReportFilter     `json:"filter"`
	Rows   []model.AggregationRow `json:"rows"`
}

type Handler struct {
	service reportsvc.ReportService
}

func NewHandler(service reportsvc.ReportService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/stats", h.Stats)
		reports.GET("/stats/export", h.ExportStats)
		reports.DELETE("/stats", h.DeleteFiltered)
	}
}

func (h *Handler) RegisterPageRoutes(r *gin.RouterGroup) {
	r.GET("/reports/stats/print", h.PrintStats)
}

func (h *Handler) filter(c *gin.Context) (model.ReportFilter, bool) {
	var q StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid report filter", err))
		return model.ReportFilter{}, false
	}
	f, err := report.ParseReportFilter(q.Department, q.Month, q.Year)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest(err.Error(), err))
		return model.ReportFilter{}, false
	}
	return f, true
}

func (h *Handler) stats(c *gin.Context) (model.ReportFilter, []model.AggregationRow, bool) {
	f, ok := h.filter(c)
	if !ok {
		return f, nil, false
	}
	rows, err := h.service.Stats(c.Request.Context(), handler.Session(c), f)
	if err != nil {
		handler.RespondError(c, err)
		return f, nil, false
	}
	return f, rows, true
}

func (h *Handler) Stats(c *gin.Context) {
	f, rows, ok := h.stats(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(StatsResponse{Filter: f, Rows: rows}))
}

func (h *Handler) ExportStats(c *gin.Context) {
	f, rows, ok := h.stats(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, report.StatsTable(rows)); err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return
	}
	handler.Attachment(c, report.StatsFilename(f))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) PrintStats(c *gin.Context) {
	_, rows, ok := h.stats(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, report.PrintTemplateName, report.StatsTable(rows))
}

func (h *Handler) DeleteFiltered(c *gin.Context) {
	f, ok := h.filter(c)
	if !ok {
		return
	}
	n, err := h.service.DeleteFiltered(c.Request.Context(), handler.Session(c), f)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": n, "filter": f}))
}
