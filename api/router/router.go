package router

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"deces-backend/api/handler"
	"deces-backend/vars"
)

const requestIDHeader = "X-Request-ID"

// RequestID 透传或生成请求 ID，并记录耗时
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		log.Printf(">>> [API] %s %s %s %d %v", id, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

func RegisterRoutes(r *gin.Engine, h *handler.PersonHandler) {
	r.Use(RequestID())

	api := r.Group(vars.API_PREFIX)
	{
		api.GET("/healthcheck", h.Healthcheck)
		api.POST("/score", h.Score)
		api.POST("/records", h.Records)

		search := api.Group("/search")
		{
			search.GET("", h.SearchGet)
			search.POST("", h.SearchPost)
			search.POST("/csv", h.SearchCSV)
			search.GET("/:format/:id", h.Result)
			search.DELETE("/:format/:id", h.Cancel)
		}
	}
}
