// Package api is the HTTP boundary of the search service: route setup,
// query binding and error rendering.
package api

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/newscope/searcher/internal/config"
	"github.com/newscope/searcher/internal/search"
)

// NewRouter builds the HTTP router serving the read-side search API.
func NewRouter(svc *search.Service, cfg config.CORSConfig, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
	}))

	h := &handlers{svc: svc, log: log}

	v1 := router.Group("/api/v1/search")
	v1.GET("/articles", h.searchArticles)
	v1.GET("/topics", h.searchTopics)
	v1.GET("/topic-batches", h.searchTopicBatches)
	v1.GET("/categories", h.searchCategories)

	return router
}

// requestLogger logs one line per request.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
