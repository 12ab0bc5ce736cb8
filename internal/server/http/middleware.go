package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const roleKey = "archives.role"

// adminRole extracts the caller role from a bearer admin JWT. A missing or
// invalid token leaves the caller without a role; services reject it.
func (s *Server) adminRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := auth.RoleNone
		if tok, ok := bearerToken(c.GetHeader("Authorization")); ok {
			r, err := auth.ParseRoleWithMaxLifetime(tok, s.secretKey, s.maxAdminTTL)
			if err != nil {
				s.logger.Debug(c.Request.Context(), "admin token rejected", "error", err)
			} else {
				role = r
			}
		}
		c.Set(roleKey, role)
		c.Next()
	}
}

func roleFrom(c *gin.Context) auth.Role {
	if v, ok := c.Get(roleKey); ok {
		if r, ok := v.(auth.Role); ok {
			return r
		}
	}
	return auth.RoleNone
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

// admitUpload rejects bad origins and credentials before the body limit or
// multipart parsing see the request.
func (s *Server) admitUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds := credentials(c)
		if err := s.files.Admit(c.Request.Context(), creds, c.GetHeader(common.OriginHeaderName)); err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// limitBody caps the request body at max bytes.
func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 {
			if c.Request.ContentLength > max {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// corsFor applies the CORS handler only to requests from allowed origins.
// Other origins get no CORS headers, and the request itself is left to the
// service layer.
func corsFor(allowed func(string) bool, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader(common.OriginHeaderName)
		if origin != "" && allowed(origin) {
			handler(c)
			return
		}
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"app", c.GetHeader(common.AppNameHeaderName),
		)
	}
}
