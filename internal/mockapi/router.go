package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/notekeeper/internal/logger"
)

// Options tunes the mock server.
type Options struct {
	// Latency delays every response, to exercise interleaving in the client.
	Latency time.Duration

	// Token, when set, is required as a Bearer token.
	Token string

	// AllowOrigins lists CORS origins. Empty allows all.
	AllowOrigins []string

	// BareMutations makes mutation endpoints answer with null data instead
	// of the updated entity, like older backend versions.
	BareMutations bool
}

type handler struct {
	backend *Backend
	opts    Options
}

// NewRouter builds a gin engine serving the backend under /api/v1.
func NewRouter(backend *Backend, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(opts.AllowOrigins))
	router.Use(requestLogger())
	if opts.Latency > 0 {
		router.Use(func(c *gin.Context) {
			time.Sleep(opts.Latency)
			c.Next()
		})
	}
	if opts.Token != "" {
		router.Use(bearerAuth(opts.Token))
	}

	h := &handler{backend: backend, opts: opts}
	group := router.Group("/api/v1")
	registerNoteRoutes(group, h)
	registerNotebookRoutes(group, h)
	registerTagRoutes(group, h)
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowWildcard = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	return cors.New(corsConfig)
}

// requestLogger tags each request with an id and logs it at debug.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		ctx := logger.NewRequestIDContext(c.Request.Context(), c.GetHeader("X-Request-ID"))
		c.Request = c.Request.WithContext(ctx)
		if id, ok := logger.GetRequestID(ctx); ok {
			c.Header("X-Request-ID", id)
		}

		c.Next()

		logger.Log(ctx).Debug(ctx, "mock request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(started)),
		)
	}
}

func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || got != token {
			fail(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}
		c.Next()
	}
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

// respondEntity answers a mutation, honoring BareMutations.
func (h *handler) respondEntity(c *gin.Context, status int, data interface{}) {
	if h.opts.BareMutations {
		respond(c, status, nil)
		return
	}
	respond(c, status, data)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"data": nil, "error": msg})
}

// failErr maps backend errors to HTTP statuses.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNoteNotFound), errors.Is(err, ErrNotebookNotFound), errors.Is(err, ErrTagNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNameRequired):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
