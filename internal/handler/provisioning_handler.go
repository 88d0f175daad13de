package handler

import (
	"net/http"

	"pettycash/internal/apperr"
	"pettycash/internal/middleware"
	"pettycash/internal/service"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProvisioningHandler serves POST /create-user. Its responses are bare JSON
// objects ({error} or the created user), not the standard envelope.
type ProvisioningHandler struct {
	provisioningService service.ProvisioningService
	idempotency         gin.HandlerFunc
	log                 *zap.Logger
}

// NewProvisioningHandler wires the provisioning endpoint. idempotency may be nil.
func NewProvisioningHandler(provisioningService service.ProvisioningService, idempotency gin.HandlerFunc, log *zap.Logger) *ProvisioningHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProvisioningHandler{provisioningService: provisioningService, idempotency: idempotency, log: log}
}

func (h *ProvisioningHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Only admin callers reach the idempotency store, so auth failures are never replayed.
	handlers := []gin.HandlerFunc{h.recoverJSON, h.authorizeCaller}
	if h.idempotency != nil {
		handlers = append(handlers, h.idempotency)
	}
	handlers = append(handlers, h.CreateUser)
	router.POST("/create-user", handlers...)
}

// CreateUser provisions an identity and its profile
// @Summary      Create a user
// @Description  Admin only. Creates a confirmed identity, assigns the next employee id and writes the profile.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateUserRequest  true  "New user"
// @Success      200      {object}  service.CreateUserResponse
// @Failure      400      {object}  response.ErrorBody
// @Failure      401      {object}  response.ErrorBody
// @Failure      403      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /create-user [post]
func (h *ProvisioningHandler) CreateUser(c *gin.Context) {
	caller := middleware.GetSession(c)

	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Bare("Invalid request payload"))
		return
	}

	created, err := h.provisioningService.CreateUser(c.Request.Context(), caller, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// authorizeCaller checks the Authorization header before the body is read.
func (h *ProvisioningHandler) authorizeCaller(c *gin.Context) {
	caller, err := h.provisioningService.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	c.Set(middleware.ContextSession, caller)
	c.Set(middleware.ContextUserID, caller.UserID.String())
	c.Set(middleware.ContextUserRole, caller.Role)
	c.Next()
}

func (h *ProvisioningHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), response.Bare(apperr.PublicMessage(err)))
}

// recoverJSON turns a panic in the provisioning chain into the endpoint's error shape.
func (h *ProvisioningHandler) recoverJSON(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic while provisioning user", zap.Any("panic", r))
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Bare("Internal server error"))
		}
	}()
	c.Next()
}
