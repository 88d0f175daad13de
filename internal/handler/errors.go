package handler

import (
	"pettycash/internal/apperr"
	"pettycash/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError writes err in the standard envelope with the status of its kind.
// The full error is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := apperr.HTTPStatus(err)
	c.JSON(status, response.Error(status, apperr.PublicMessage(err)))
}
