package handler

import (
	"bytes"
	"net/http"

	"pettycash/internal/middleware"
	"pettycash/internal/model"
	"pettycash/internal/report"
	"pettycash/internal/service"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	mimeCSV = "text/csv; charset=utf-8"
	mimePDF = "application/pdf"
	mimePNG = "image/png"
)

type StatisticsHandler struct {
	requestService service.RequestService
}

func NewStatisticsHandler(requestService service.RequestService) *StatisticsHandler {
	return &StatisticsHandler{requestService: requestService}
}

// RegisterRoutes expects a group that already runs middleware.Authenticate.
func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	analytics := router.Group("/analytics", middleware.RequireCapability(model.CapViewAnalytics))
	{
		analytics.GET("", h.GetAnalytics)
		analytics.GET("/chart", h.GetChart)
	}
	router.GET("/requests/export", middleware.RequireCapability(model.CapExportRequests), h.ExportDisbursed)
}

// @Summary      Get disbursement analytics
// @Description  Disbursed totals per category and per day, bounded by creation date
// @Tags         analytics
// @Produce      json
// @Param        start_date query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param        end_date   query string false "End date (YYYY-MM-DD inclusive, or RFC3339)"
// @Success      200 {object} response.Response{data=service.AnalyticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      500 {object} response.Response "Internal server error"
// @Security     BearerAuth
// @Router       /api/analytics [get]
func (h *StatisticsHandler) GetAnalytics(c *gin.Context) {
	var rng service.DateRangeInput
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	data, err := h.requestService.GetAnalyticsData(c.Request.Context(), middleware.GetSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, data))
}

// @Summary      Render an analytics chart
// @Description  PNG bar chart per category (kind=category) or line chart per day (kind=date)
// @Tags         analytics
// @Produce      png
// @Param        kind       query string false "category (default) or date"
// @Param        start_date query string false "Start date"
// @Param        end_date   query string false "End date"
// @Success      200 {file} binary
// @Failure      400 {object} response.Response
// @Security     BearerAuth
// @Router       /api/analytics/chart [get]
func (h *StatisticsHandler) GetChart(c *gin.Context) {
	kind := c.DefaultQuery("kind", "category")
	if kind != "category" && kind != "date" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "kind must be category or date"))
		return
	}

	var rng service.DateRangeInput
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	data, err := h.requestService.GetAnalyticsData(c.Request.Context(), middleware.GetSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if kind == "date" {
		points := make([]report.Point, 0, len(data.ByDate))
		for _, d := range data.ByDate {
			points = append(points, report.Point{Label: d.Date, Value: d.Amount})
		}
		err = report.TrendChart(&buf, "Disbursed per day", points)
	} else {
		points := make([]report.Point, 0, len(data.ByCategory))
		for _, cat := range data.ByCategory {
			points = append(points, report.Point{Label: cat.Name, Value: cat.Value})
		}
		err = report.CategoryChart(&buf, "Disbursed per category", points)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to render chart"))
		return
	}

	c.Data(http.StatusOK, mimePNG, buf.Bytes())
}

// @Summary      Export disbursed requests
// @Description  Disbursed requests with requester and manager names, as JSON, CSV or PDF
// @Tags         analytics
// @Produce      json,plain,application/pdf
// @Param        format     query string false "json (default), csv or pdf"
// @Param        start_date query string false "Start date"
// @Param        end_date   query string false "End date"
// @Success      200 {object} response.Response{data=[]service.RequestResponse}
// @Failure      400 {object} response.Response
// @Failure      403 {object} response.Response
// @Security     BearerAuth
// @Router       /api/requests/export [get]
func (h *StatisticsHandler) ExportDisbursed(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" && format != "pdf" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "format must be json, csv or pdf"))
		return
	}

	var rng service.DateRangeInput
	if err := c.ShouldBindQuery(&rng); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	reqs, err := h.requestService.GetDisbursedRequestsForExport(c.Request.Context(), middleware.GetSession(c), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, response.Success(http.StatusOK, reqs))
		return
	}

	rows := exportRows(reqs)
	var buf bytes.Buffer
	contentType := mimeCSV
	if format == "pdf" {
		contentType = mimePDF
		err = report.WritePDF(&buf, "Disbursed petty-cash requests", rows)
	} else {
		err = report.WriteCSV(&buf, rows)
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to render export"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(rng.StartDate, rng.EndDate, format)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func exportRows(reqs []service.RequestResponse) []report.Row {
	rows := make([]report.Row, 0, len(reqs))
	for _, r := range reqs {
		row := report.Row{
			ID:        r.ID,
			CreatedAt: r.CreatedAt,
			Category:  r.Category,
			Purpose:   r.Purpose,
			Amount:    r.Amount,
		}
		if r.Requester != nil {
			row.Requester = r.Requester.FullName
		}
		if r.Manager != nil {
			row.Manager = r.Manager.FullName
		}
		if r.ReceiptURL != nil {
			row.ReceiptURL = *r.ReceiptURL
		}
		rows = append(rows, row)
	}
	return rows
}
