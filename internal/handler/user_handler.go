package handler

import (
	"net/http"
	"time"

	"pettycash/internal/middleware"
	"pettycash/internal/model"
	"pettycash/internal/service"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService         service.UserService
	provisioningService service.ProvisioningService
	secureCookies       bool
}

// NewUserHandler sets up the routing dependencies for session and profile endpoints
func NewUserHandler(userService service.UserService, provisioningService service.ProvisioningService, secureCookies bool) *UserHandler {
	return &UserHandler{
		userService:         userService,
		provisioningService: provisioningService,
		secureCookies:       secureCookies,
	}
}

// RegisterPublicRoutes binds the endpoints that need no session
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

// RegisterRoutes binds the endpoints to a group that already runs middleware.Authenticate
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.GetMe)
	router.GET("/users/next-employee-id", middleware.RequireCapability(model.CapProvisionUsers), h.GetNextEmployeeID)
}

// Login handles POST /auth/login to authenticate and return an access token
// @Summary      Login user
// @Description  Authenticates a user by email and password against the local identity store
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=identity.Token}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	token, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.AccessToken, time.Duration(token.ExpiresIn)*time.Second, h.secureCookies)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Logout handles POST /auth/logout to clear the auth cookie
func (h *UserHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe handles GET /api/me
// @Summary      Get current user
// @Description  Profile and capabilities of the authenticated caller
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.ProfileResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// GetNextEmployeeID handles GET /api/users/next-employee-id
// @Summary      Preview the next employee id
// @Description  Advisory only. The id is reserved when the user is created.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=object}
// @Failure      403      {object}  response.Response
// @Router       /api/users/next-employee-id [get]
func (h *UserHandler) GetNextEmployeeID(c *gin.Context) {
	next := h.provisioningService.GetNextEmployeeID(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"employee_id": next}))
}
