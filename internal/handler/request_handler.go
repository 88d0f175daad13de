package handler

import (
	"encoding/json"
	"net/http"

	"pettycash/internal/middleware"
	"pettycash/internal/model"
	"pettycash/internal/service"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type RequestHandler struct {
	requestService service.RequestService
	auditService   service.AuditService
	idempotency    gin.HandlerFunc
}

// NewRequestHandler wires the request lifecycle endpoints. idempotency may be nil.
func NewRequestHandler(requestService service.RequestService, auditService service.AuditService, idempotency gin.HandlerFunc) *RequestHandler {
	RegisterValidators()
	if idempotency == nil {
		idempotency = func(c *gin.Context) { c.Next() }
	}
	return &RequestHandler{requestService: requestService, auditService: auditService, idempotency: idempotency}
}

// RegisterRoutes expects a group that already runs middleware.Authenticate.
func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/requests")
	{
		requests.POST("", middleware.RequireCapability(model.CapSubmitRequest), h.idempotency, h.CreateRequest)
		requests.GET("/mine", middleware.RequireCapability(model.CapViewOwnRequests), h.GetMyRequests)
		requests.GET("/pending", middleware.RequireCapability(model.CapReviewRequests), h.GetPendingRequests)
		requests.GET("/:id", h.GetRequest)
		requests.PATCH("/:id/status", h.UpdateRequestStatus)
		requests.GET("/:id/audit", middleware.RequireCapability(model.CapViewAuditTrail), h.GetRequestAudit)
	}
}

type createRequestPayload struct {
	Amount        json.Number `json:"amount" form:"amount"`
	Purpose       string      `json:"purpose" form:"purpose"`
	Category      string      `json:"category" form:"category" binding:"omitempty,category"`
	ReceiptPrefix string      `json:"-" form:"receipt_prefix"`
}

// CreateRequest handles POST /api/requests
// @Summary      Submit a petty-cash request
// @Description  Accepts JSON, or multipart/form-data with an optional "receipt" file uploaded before the request is stored
// @Tags         requests
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Replay protection key"
// @Param        amount           formData  number  true   "Amount in FCFA"
// @Param        purpose          formData  string  true   "Purpose"
// @Param        category         formData  string  true   "Category"
// @Param        receipt          formData  file    false  "Receipt"
// @Success      201  {object}  response.Response{data=service.RequestResponse}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req createRequestPayload
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	in := service.CreateRequestInput{
		Amount:   req.Amount.String(),
		Purpose:  req.Purpose,
		Category: req.Category,
	}

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if fh, err := c.FormFile("receipt"); err == nil {
			file, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read receipt file"))
				return
			}
			defer file.Close()
			in.Receipt = &service.ReceiptUpload{
				Prefix:      req.ReceiptPrefix,
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        file,
			}
		}
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), middleware.GetSession(c), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// UpdateRequestStatus handles PATCH /api/requests/:id/status
// @Summary      Approve, reject or disburse a request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Request ID"
// @Param        payload  body      service.UpdateStatusInput  true  "Transition"
// @Success      200      {object}  response.Response{data=service.RequestResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/status [patch]
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	var req service.UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	updated, err := h.requestService.UpdateRequestStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// GetRequest handles GET /api/requests/:id
// @Summary      Get a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequest(c *gin.Context) {
	req, err := h.requestService.GetRequest(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// GetMyRequests handles GET /api/requests/mine
// @Summary      List the caller's requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RequestResponse}
// @Router       /api/requests/mine [get]
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	reqs, err := h.requestService.GetMyRequests(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reqs))
}

// GetPendingRequests handles GET /api/requests/pending
// @Summary      List requests awaiting review
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RequestResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/requests/pending [get]
func (h *RequestHandler) GetPendingRequests(c *gin.Context) {
	reqs, err := h.requestService.GetPendingRequests(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reqs))
}

// GetRequestAudit handles GET /api/requests/:id/audit
// @Summary      Audit trail of one request
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]service.AuditEntryResponse}
// @Failure      403  {object}  response.Response
// @Router       /api/requests/{id}/audit [get]
func (h *RequestHandler) GetRequestAudit(c *gin.Context) {
	entries, err := h.auditService.ListForRequest(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
