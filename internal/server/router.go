package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter assembles the gin engine: middleware first, then the
// route tree. Read routes are open; everything that mutates state sits
// behind the admin token.
func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()

	// Raw product URLs arrive percent-encoded inside the :id segment.
	// Matching on the raw path keeps encoded slashes inside the
	// parameter instead of splitting the route.
	router.UseRawPath = true

	router.Use(requestID())
	router.Use(requestLogger(s.logger))
	router.Use(metricsMiddleware())
	router.Use(gin.Recovery())

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/items", s.listItems)
		api.GET("/items/:id", s.getItem)
		api.GET("/items/:id/prices", s.priceHistory)
		api.GET("/hosts", s.listHosts)

		admin := api.Group("", adminAuth(s.cfg.AdminToken))
		admin.POST("/items", s.trackItem)
		admin.DELETE("/items/:id", s.deleteItem)
		admin.POST("/checks", s.runChecks)
	}

	return router
}
