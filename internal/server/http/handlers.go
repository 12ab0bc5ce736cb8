package http

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/Antoney20/archives/internal/common"
	"github.com/Antoney20/archives/internal/server/models"
	"github.com/Antoney20/archives/internal/server/repositories/files"
	"github.com/Antoney20/archives/internal/server/services"
	"github.com/gin-gonic/gin"
)

const uploadField = "file"

type appNameRequest struct {
	Name string `json:"name"`
}

type appSummary struct {
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) bindName(c *gin.Context) (string, bool) {
	var req appNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return "", false
	}
	return req.Name, true
}

func (s *Server) handleRegisterApp(c *gin.Context) {
	name, ok := s.bindName(c)
	if !ok {
		return
	}
	app, token, err := s.apps.Register(c.Request.Context(), roleFrom(c), name)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"app": app.Name, "token": token})
}

func (s *Server) handleRevokeToken(c *gin.Context) {
	name, ok := s.bindName(c)
	if !ok {
		return
	}
	app, token, err := s.apps.RegenerateToken(c.Request.Context(), roleFrom(c), name)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"app": app.Name, "token": token})
}

func (s *Server) handleToggleApp(c *gin.Context) {
	name, ok := s.bindName(c)
	if !ok {
		return
	}
	app, err := s.apps.Toggle(c.Request.Context(), roleFrom(c), name)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"app": app.Name, "is_active": app.IsActive})
}

func (s *Server) handleListApps(c *gin.Context) {
	list, err := s.apps.List(c.Request.Context(), roleFrom(c))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	out := make([]appSummary, 0, len(list))
	for _, a := range list {
		out = append(out, appSummary{Name: a.Name, IsActive: a.IsActive, CreatedAt: a.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "apps": out})
}

func (s *Server) handleAdminListFiles(c *gin.Context) {
	filter := files.Filter{
		AppName:  c.Query("app"),
		Category: models.Category(c.Query("category")),
		Search:   c.Query("q"),
	}
	if v := c.Query("deleted"); v != "" {
		deleted, err := strconv.ParseBool(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "deleted must be a boolean"})
			return
		}
		filter.Deleted = &deleted
	}

	res, err := s.files.AdminList(c.Request.Context(), roleFrom(c), filter)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func credentials(c *gin.Context) services.Credentials {
	return services.Credentials{
		AppName: c.GetHeader(common.AppNameHeaderName),
		Token:   c.GetHeader(common.AppTokenHeaderName),
	}
}

func (s *Server) handleUpload(c *gin.Context) {
	req := services.UploadRequest{
		Credentials: credentials(c),
		Origin:      c.GetHeader(common.OriginHeaderName),
	}

	part, err := filePart(c.Request)
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.abortWithError(c, err)
			return
		}
		s.logger.Debug(c.Request.Context(), "no file part", "error", err)
	}
	if part != nil {
		defer part.Close()
		req.Body = part
		req.Filename = part.FileName()
		req.ContentType = part.Header.Get("Content-Type")
		req.DeclaredSize = declaredSize(part)
	}

	desc, err := s.files.Upload(c.Request.Context(), req)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, desc)
}

// declaredSize reads the part's own Content-Length header, 0 when absent or
// malformed.
func declaredSize(part *multipart.Part) int64 {
	n, err := strconv.ParseInt(part.Header.Get("Content-Length"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// filePart streams the multipart body up to the upload field, so the payload
// is copied to disk without buffering the whole request.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, http.ErrMissingFile
			}
			return nil, err
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	res, err := s.files.Delete(c.Request.Context(), services.DeleteRequest{
		Credentials: credentials(c),
		Origin:      c.GetHeader(common.OriginHeaderName),
		FileID:      c.Param("id"),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleListFiles(c *gin.Context) {
	res, err := s.files.List(c.Request.Context(), services.ListRequest{
		Credentials: credentials(c),
		Category:    c.Query("category"),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
