package handler

import (
	"net/http"

	"pettycash/internal/middleware"
	"pettycash/internal/model"
	"pettycash/internal/service"
	"pettycash/pkg/pagination"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-trail")
	group.Use(middleware.RequireCapability(model.CapViewAuditTrail))
	{
		group.GET("", h.GetAuditTrail)
	}
}

// GetAuditTrail retrieves approval and rejection decisions, newest first
// @Summary      Get audit trail
// @Description  Paginated list of review decisions with the reviewer's name
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20, max 100)"
// @Success      200    {object}  response.Response{data=pagination.Page}
// @Failure      403    {object}  response.Response
// @Router       /api/audit-trail [get]
func (h *AuditHandler) GetAuditTrail(c *gin.Context) {
	params := pagination.Parse(c)

	entries, total, err := h.auditService.List(c.Request.Context(), middleware.GetSession(c), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(entries, total, params)))
}
