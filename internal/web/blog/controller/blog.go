// Package controller exposes the blog over http.
package controller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/notion-blog/internal/web/blog/dto"
	"github.com/Laisky/notion-blog/internal/web/blog/model"
	"github.com/Laisky/notion-blog/internal/web/blog/service"
	"github.com/Laisky/notion-blog/library/log"
)

const (
	cacheControlNoStore  = "no-store, no-cache, must-revalidate, proxy-revalidate"
	cacheControlPrivate  = "no-store"
	cacheControlComments = "public, s-maxage=300, stale-while-revalidate=600"
)

// Blog serves the blog routes.
type Blog struct {
	service *service.Blog
}

// New creates the blog controller.
func New(svc *service.Blog) *Blog {
	return &Blog{service: svc}
}

// Register mounts every blog route on r.
func (c *Blog) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/posts", c.ListPosts)
	api.GET("/posts/:slug", c.GetPost)
	api.GET("/tags", c.ListTags)
	api.GET("/categories", c.ListCategories)
	api.GET("/comments", c.ListComments)
	api.POST("/comments", c.PostComment)
	api.GET("/likes", c.GetLikes)
	api.POST("/likes", c.ToggleLike)

	r.GET("/sitemap.xml", c.Sitemap)
	r.GET("/feed.xml", c.RSS)
}

// readCacheControl is the shared cache policy of content reads.
func readCacheControl(ttl time.Duration) string {
	sec := int(ttl / time.Second)
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate=%d", sec, max(60, sec/2))
}

func (c *Blog) setReadCache(ctx *gin.Context) {
	ctx.Header("Cache-Control", readCacheControl(c.service.PostCache().TTL()))
}

// abortWithError maps err to its status and writes the error payload.
func abortWithError(ctx *gin.Context, err error) {
	var logger logSDK.Logger = log.Logger.Named("blog_ctl")
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger
	}

	var status int
	msg := err.Error()
	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, model.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		msg = "store unavailable"
	default:
		status = http.StatusInternalServerError
		msg = "internal error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("handle request", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("reject request", zap.Int("status", status), zap.Error(err))
	}

	ctx.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}

// splitList splits a comma separated query value, dropping empty items
// and duplicates while keeping order.
func splitList(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for item := range strings.SplitSeq(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}

	return out
}
