// Package web gin server
package web

import (
	"net/http"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/notion-blog/internal/web/blog/controller"
	"github.com/Laisky/notion-blog/library/config"
	"github.com/Laisky/notion-blog/library/log"
)

// NewServer builds the gin engine serving the blog routes.
func NewServer(settings config.Settings, blog *controller.Blog) (*gin.Engine, error) {
	server := gin.New()
	if err := server.SetTrustedProxies(settings.Web.TrustedProxies); err != nil {
		return nil, errors.Wrap(err, "set trusted proxies")
	}

	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(log.Logger.Level().String()),
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		allowCORS(settings.Web.CORSHosts),
	)

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	blog.Register(server)

	return server, nil
}

// RunServer serves server on addr until it fails.
func RunServer(addr string, server *gin.Engine) {
	if err := gmw.EnableMetric(server); err != nil {
		log.Logger.Panic("enable metric server", zap.Error(err))
	}

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

// allowCORS admits origins whose host is one of hosts or a subdomain of one.
func allowCORS(hosts []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.Trim(strings.ToLower(strings.TrimSpace(h)), "."); h != "" {
			allowed = append(allowed, h)
		}
	}

	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		allowedOrigin := ""
		if origin != "" && originAllowed(origin, allowed) {
			allowedOrigin = origin
		}

		if allowedOrigin != "" {
			ctx.Header("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With")
			ctx.Header("Access-Control-Max-Age", "86400") // 24 hours
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}

func originAllowed(origin string, hosts []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}

	return false
}
