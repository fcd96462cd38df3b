package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/taleframe/taleframe-backend/internal/handlers"
)

type RouterConfig struct {
	PipelineHandler *handlers.PipelineHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
	}))

	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/enque", cfg.PipelineHandler.Enqueue)

	return router
}
