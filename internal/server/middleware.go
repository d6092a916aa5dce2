package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-settlement/services/settlement/helpers"
	"auction-settlement/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const cronKeyHeader = "X-Cron-Key"

var (
	errCronSecretMissing = errors.New("cron secret not configured")
	errCronKeyInvalid    = errors.New("invalid or missing cron key")
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"status":    c.Writer.Status(),
		"client_ip": c.ClientIP(),
		"latency":   time.Since(start).String(),
	})
}

// CronAuthMiddleware gates administrative triggers behind a shared secret.
// The key is read from the X-Cron-Key header, the cron_key query parameter,
// the cron_key JSON body field or an Authorization bearer value. A bearer
// value may also be a signed token accepted by ParseCronToken.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			utils.AbortWithError(c, http.StatusInternalServerError, errCronSecretMissing, "server misconfiguration")
			utils.Error("CronAuthMiddleware: cron secret not configured", map[string]any{"path": c.Request.URL.Path})
			return
		}

		if keyMatches(secret, c.GetHeader(cronKeyHeader)) ||
			keyMatches(secret, c.Query("cron_key")) ||
			keyMatches(secret, bodyKey(c)) {
			c.Next()
			return
		}

		if bearer := bearerToken(c); bearer != "" {
			if keyMatches(secret, bearer) {
				c.Next()
				return
			}
			if _, err := ParseCronToken(bearer, secret); err == nil {
				c.Next()
				return
			}
		}

		utils.AbortWithError(c, http.StatusUnauthorized, errCronKeyInvalid, "unauthorized")
		utils.Warn("CronAuthMiddleware: rejected trigger", map[string]any{
			"path":      c.Request.URL.Path,
			"client_ip": c.ClientIP(),
		})
	}
}

func keyMatches(secret, candidate string) bool {
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// bodyKey reads cron_key from a JSON body, keeping the body readable for handlers
func bodyKey(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.ContentLength == 0 || c.ContentType() != binding.MIMEJSON {
		return ""
	}
	var req helpers.CronKeyRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		return ""
	}
	return req.CronKey
}
