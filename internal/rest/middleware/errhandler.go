package middleware

import (
	"github.com/gin-gonic/gin"
	ierr "github.com/seatbill/seatbill/internal/errors"
)

// ErrorHandler converts errors attached to the gin context into the
// standard response envelope. Handlers call c.Error(err) and return; the
// HTTP status comes from the sentinel the error is marked with.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
	}
}
