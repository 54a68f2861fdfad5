package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HemantSudarshan/restock-agent/internal/api/handlers"
	"github.com/HemantSudarshan/restock-agent/internal/api/middleware"
	"github.com/HemantSudarshan/restock-agent/internal/repository"
	"github.com/HemantSudarshan/restock-agent/internal/service"
)

func NewRouter(decisions *service.DecisionService, orders repository.OrderRepository, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	decisionHandler := handlers.NewDecisionHandler(decisions, orders)
	inventoryGroup := apiGroup.Group("/inventory")
	{
		inventoryGroup.POST("/trigger", decisionHandler.Trigger)
		inventoryGroup.POST("/batch", decisionHandler.TriggerBatch)
		inventoryGroup.GET("/:product_id/preview", decisionHandler.Preview)
	}

	orderGroup := apiGroup.Group("/orders")
	{
		orderGroup.GET("", decisionHandler.ListOrders)
		orderGroup.GET("/:order_number", decisionHandler.GetOrder)
		orderGroup.PUT("/:order_number/status", decisionHandler.UpdateOrderStatus)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
