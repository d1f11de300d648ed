package handler

import (
	"errors"
	"net/http"

	"travelapproval/internal/apperror"
	"travelapproval/internal/logger"
	"travelapproval/internal/middleware"
	"travelapproval/internal/validation"
	"travelapproval/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// respondError maps service errors onto the response envelope. Anything that
// is not an AppError is logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.StatusCode, response.Error(appErr.StatusCode, appErr.Message))
		return
	}

	logger.Get().WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal Server Error"))
}

// respondBindError reports a request body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	message := "Invalid request payload"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		message = validation.Describe(verrs)
	}
	c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, message))
}

func currentUser(c *gin.Context) (uuid.UUID, string, bool) {
	id, role, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
	}
	return id, role, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
