package http

import (
	"net/http"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes(opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.accessLog())

	if len(opts.AllowedOrigins) > 0 {
		policy := services.NewOriginPolicy(opts.AllowedOrigins)
		engine.Use(corsFor(policy.Allows, cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{common.OriginHeaderName, "Content-Type", "Authorization",
				common.AppNameHeaderName, common.AppTokenHeaderName},
			MaxAge: 12 * time.Hour,
		})))
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	admin := engine.Group("/", s.adminRole())
	{
		admin.POST("/register-app", s.handleRegisterApp)
		admin.POST("/revoke-token", s.handleRevokeToken)
		admin.PATCH("/toggle-app", s.handleToggleApp)
		admin.GET("/apps", s.handleListApps)
		admin.GET("/admin/files", s.handleAdminListFiles)
	}

	engine.POST("/upload", s.admitUpload(), limitBody(opts.MaxUploadBytes), s.handleUpload)
	engine.DELETE("/files/:id", s.handleDeleteFile)
	engine.GET("/files", s.handleListFiles)

	if opts.ServeMedia && opts.MediaRoot != "" {
		engine.StaticFS("/media", visibleFS{gin.Dir(opts.MediaRoot, false)})
	}

	return engine
}
