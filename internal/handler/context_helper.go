package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

// bindOptionalJSON decodes the request body into dest when one is present.
// Solve endpoints default every field, so an empty body is a valid request.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request == nil || c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload")
	}
	return nil
}
