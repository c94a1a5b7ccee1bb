package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pokemon-tcg/internal/catalog"
	"github.com/pokemon-tcg/internal/service"
	"github.com/pokemon-tcg/pkg/response"
)

const msgLoginRequired = "Please login to access this page."

// respondError maps service and catalog errors onto HTTP responses
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(c, validationErr.Message)
	case errors.Is(err, service.ErrUsernameTaken):
		response.Conflict(c, "Username already taken.")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, "Invalid credentials.")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, msgLoginRequired)
	case errors.Is(err, catalog.ErrCardNotFound):
		response.NotFound(c, "Card not found.")
	case errors.Is(err, catalog.ErrUpstream):
		_ = c.Error(err)
		response.BadGateway(c, "The card catalog is unavailable, please try again later.")
	default:
		_ = c.Error(err)
		response.InternalError(c, "Something went wrong.")
	}
}
