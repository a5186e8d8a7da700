package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/photo-normalizer/internal/models"
)

// RequireMultipart rejects requests that are not multipart/form-data uploads.
// Image type checks happen in the handlers once the payload is sniffed.
func RequireMultipart() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		contentType := ctx.GetHeader("Content-Type")

		if !strings.HasPrefix(strings.ToLower(contentType), "multipart/form-data") {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.APIResponse{
				Success: false,
				Error:   "Expected multipart/form-data upload",
			})
			return
		}

		ctx.Next()
	}
}
