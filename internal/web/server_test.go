package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/notion-blog/internal/library/notion"
	"github.com/Laisky/notion-blog/internal/web/blog/controller"
	"github.com/Laisky/notion-blog/internal/web/blog/dao"
	"github.com/Laisky/notion-blog/internal/web/blog/service"
	"github.com/Laisky/notion-blog/library/config"
)

var (
	ginModeOnce sync.Once
)

func setupGinTestMode() {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})
}

type emptyNotion struct{}

func (emptyNotion) FetchPageTree(context.Context, string) (*notion.RecordMap, error) {
	return new(notion.RecordMap), nil
}

func TestAllowCORS(t *testing.T) {
	setupGinTestMode()
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedCORS   bool
	}{
		{
			name:           "No origin header - should pass through",
			method:         "GET",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid subdomain origin - GET request",
			method:         "GET",
			origin:         "https://www.example.com",
			expectedStatus: http.StatusOK,
			expectedCORS:   true,
		},
		{
			name:           "Valid main domain origin - POST request",
			method:         "POST",
			origin:         "https://example.com",
			expectedStatus: http.StatusOK,
			expectedCORS:   true,
		},
		{
			name:           "Valid origin - OPTIONS preflight",
			method:         "OPTIONS",
			origin:         "https://blog.example.com",
			expectedStatus: http.StatusNoContent,
			expectedCORS:   true,
		},
		{
			name:           "Invalid origin - OPTIONS preflight",
			method:         "OPTIONS",
			origin:         "https://evil.com",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Invalid origin - GET request",
			method:         "GET",
			origin:         "https://evil.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Suffix attack",
			method:         "GET",
			origin:         "https://example.com.evil.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not a subdomain",
			method:         "GET",
			origin:         "https://notexample.com",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Case insensitive domain matching",
			method:         "GET",
			origin:         "https://Blog.EXAMPLE.com",
			expectedStatus: http.StatusOK,
			expectedCORS:   true,
		},
		{
			name:           "Second configured host",
			method:         "GET",
			origin:         "http://localhost:3000",
			expectedStatus: http.StatusOK,
			expectedCORS:   true,
		},
		{
			name:           "Malformed origin",
			method:         "GET",
			origin:         "not-a-valid-url",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(allowCORS([]string{" Example.com ", "localhost", ""}))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "Status code mismatch")
			if tt.expectedCORS {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
				assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
				assert.Equal(t, "Origin", w.Header().Get("Vary"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	setupGinTestMode()

	settings := config.Settings{
		Site:   config.Site{Link: "https://blog.example.com"},
		Notion: config.Notion{PageID: "root"},
		Web:    config.Web{CORSHosts: []string{"example.com"}},
	}.Normalize()
	svc := service.New(nil, dao.New(nil, nil, false), emptyNotion{}, settings)

	server, err := NewServer(settings, controller.New(svc))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hello, world", w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Origin", "https://www.example.com")
	server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "https://www.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, w.Body.String(), `"items":[]`)

	settings.Web.TrustedProxies = []string{"not an ip"}
	_, err = NewServer(settings, controller.New(svc))
	require.Error(t, err)
}
