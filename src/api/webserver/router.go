package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/factguard/factguard/src/api/config"
)

// Stores groups the persistence interfaces the handlers depend on; the
// GORM-backed implementation lives in src/api/data.
type Stores struct {
	Users   UserStore
	History HistoryStore
}

func New(cfg config.Config, stores Stores, pipeline Pipeline) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, stores, pipeline)
	return g
}

func attachRoutes(r *gin.Engine, cfg config.Config, stores Stores, pipeline Pipeline) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	authH := NewAuth(stores.Users, []byte(cfg.JWTSecret))
	verifyH := NewVerify(pipeline, stores.History, cfg.UploadDir, cfg.MaxUploadBytes)

	// A verification run fans out into several metered provider calls, so
	// keep the per-user submit rate low.
	submitLimiter := NewRateLimiter(10, time.Hour)

	api := r.Group("/api")
	{
		api.POST("/auth/register", authH.Register)
		api.POST("/auth/login", authH.Login)

		secured := api.Group("/verify")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/file", RateLimitMiddleware(submitLimiter), verifyH.File)
		secured.GET("/history", verifyH.History)
	}
}
