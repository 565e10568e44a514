package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// a user record is a handful of short strings
const DefaultMaxBodyBytes int64 = 16 << 10

func MaxBodyBytes(max int64) gin.HandlerFunc {
	if max <= 0 {
		max = DefaultMaxBodyBytes
	}

	return func(ctx *gin.Context) {
		if ctx.Request.Body != nil {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		}

		ctx.Next()
	}
}
