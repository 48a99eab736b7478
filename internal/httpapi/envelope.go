package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every JSON response carries status, data, message, and success. Successful
// responses always travel as HTTP 200 with the logical status mirrored in
// the body; failures use the real status code in both places.

func respond(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"data":    data,
		"message": message,
		"success": true,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  status,
		"data":    nil,
		"message": message,
		"success": false,
	})
}

// accessDeniedMessage matches the authorization gate's wording so clients
// see one string for every authorization failure.
const accessDeniedMessage = "You do not have access to this resource"
