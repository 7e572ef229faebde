package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kumpulhq/kumpul-server/internal/auth"
	"github.com/kumpulhq/kumpul-server/internal/config"
	"github.com/kumpulhq/kumpul-server/internal/core"
	"github.com/kumpulhq/kumpul-server/internal/media"
	"github.com/kumpulhq/kumpul-server/internal/store"
)

// NewServer builds the HTTP server: REST API, health check, and the
// WebSocket relay endpoint.
func NewServer(hub *core.Hub, st store.Store, authService *auth.Service, engine media.Engine, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, st, authService, engine, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter assembles the gin engine. Split from NewServer so tests can
// mount it on httptest.Server.
func NewRouter(hub *core.Hub, st store.Store, authService *auth.Service, engine media.Engine, cfg config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, st, logger)
	roomHandlers := NewRoomHandlers(st, engine, logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			if err := st.Ping(c.Request.Context()); err != nil {
				logger.Error().Err(err).Msg("health check failed")
				c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
			c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", apiHandlers.Register)
			authGroup.POST("/login", apiHandlers.Login)
			authGroup.POST("/refresh", apiHandlers.Refresh)
			authGroup.POST("/logout", apiHandlers.Logout)
			authGroup.GET("/me", AuthMiddleware(authService, logger), apiHandlers.Me)
		}

		rooms := api.Group("/rooms", AuthMiddleware(authService, logger))
		{
			rooms.POST("", roomHandlers.CreateRoom)
			rooms.GET("", roomHandlers.ListRooms)
			rooms.GET("/:id", roomHandlers.GetRoom)
			rooms.DELETE("/:id", roomHandlers.DeleteRoom)
		}
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg.WSRateLimit, logger)))

	return router
}
