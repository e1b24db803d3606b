package proxy

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NethermindEth/art-proxy/pkg/proxy/art"
)

const (
	requestIdHeader = "X-Request-Id"
	requestIdKey    = "requestId"
)

var endpoints = []string{
	"GET /",
	"GET /styles",
	"POST /api/generate",
	"GET /health",
}

type rootResponse struct {
	Message   string   `json:"message"`
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

type styleInfo struct {
	Description   string `json:"description"`
	ExamplePrompt string `json:"example_prompt"`
}

func (p *Proxy) generateRouter() (*gin.Engine, error) {
	corsConfig := p.corsConfig()
	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors config: %w", err)
	}

	router := gin.New()
	router.Use(
		requestIdMiddleware(),
		gin.Logger(),
		gin.CustomRecovery(recoverWithDetail),
		cors.New(corsConfig),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, rootResponse{
			Message:   Name,
			Name:      Name,
			Version:   Version,
			Endpoints: endpoints,
		})
	})

	router.GET("/styles", func(c *gin.Context) {
		styles := make(map[string]styleInfo, len(art.Styles))
		for _, style := range art.Styles {
			entry, ok := p.styles.Entry(style)
			if !ok {
				continue
			}
			styles[string(style)] = styleInfo{
				Description:   entry.Description,
				ExamplePrompt: entry.ExamplePrompt,
			}
		}

		c.JSON(http.StatusOK, styles)
	})

	router.POST("/api/generate", p.handleGenerate)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, p.Health(c.Request.Context()))
	})

	return router, nil
}

func (p *Proxy) GetRouter() *gin.Engine {
	return p.apiRouter
}

func (p *Proxy) handleGenerate(c *gin.Context) {
	var req art.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		p.abortWithError(c, &art.ValidationError{
			Problems: []string{fmt.Sprintf("invalid request body: %v", err)},
		})
		return
	}

	start := time.Now()

	resp, err := p.Generate(c.Request.Context(), req)
	if err != nil {
		p.abortWithError(c, err)
		return
	}

	slog.Info("image generated",
		"requestId", c.GetString(requestIdKey),
		"model", resp.Metadata.Model,
		"style", resp.Metadata.Style,
		"dimensions", resp.Metadata.Dimensions,
		"duration", time.Since(start),
	)

	c.JSON(http.StatusOK, resp)
}

func (p *Proxy) abortWithError(c *gin.Context, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("failed to generate image", "requestId", c.GetString(requestIdKey), "status", status, "error", err)
	} else {
		slog.Info("rejected generate request", "requestId", c.GetString(requestIdKey), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// corsConfig allows every origin, echoing it back so credentials keep
// working, unless explicit origins are configured.
func (p *Proxy) corsConfig() cors.Config {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{requestIdHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(p.corsAllowOrigins) > 0 {
		config.AllowOrigins = p.corsAllowOrigins
	} else {
		config.AllowOriginFunc = func(string) bool { return true }
	}

	return config
}

func requestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(requestIdHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}
		c.Writer.Header().Set(requestIdHeader, requestId)
		c.Set(requestIdKey, requestId)
		c.Next()
	}
}

func recoverWithDetail(c *gin.Context, recovered any) {
	slog.Error("recovered from panic", "requestId", c.GetString(requestIdKey), "error", recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{
		Detail: fmt.Sprintf("internal server error: %v", recovered),
	})
}
