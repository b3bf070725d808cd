package middlewares

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// OriginAllowed reports whether a request carrying the given Origin header may
// proceed. Requests without an Origin and same-origin requests always pass.
func OriginAllowed(origin, host string, allowed []string) bool {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return true
	}

	for _, a := range allowed {
		if strings.EqualFold(a, origin) {
			return true
		}
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}

	return host != "" && strings.EqualFold(u.Host, host)
}

func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := append([]string(nil), allowedOrigins...)

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")

		if !OriginAllowed(origin, ctx.Request.Host, allowed) {
			AbortWithError(ctx, http.StatusForbidden, "origin_not_allowed", "Origin not allowed.", nil)
			return
		}

		if origin != "" {
			ctx.Header("Vary", "Origin")
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			ctx.Header("Access-Control-Allow-Headers", "Authorization,Content-Type,X-Request-Id")
			ctx.Header("Access-Control-Max-Age", "600")
		}

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
