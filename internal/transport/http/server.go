package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ailawyer/internal/bootstrap"
	"ailawyer/internal/transport/http/handler"
	"ailawyer/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	gin.SetMode(app.Config.App.GinMode)
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	lawyerHandler := handler.NewLawyerHandler(app.Chat)
	validatorHandler := handler.NewValidatorHandler(app.Validator)
	generatorHandler := handler.NewGeneratorHandler(app.Generator)
	historyHandler := handler.NewHistoryHandler(app.History)
	adminHandler := handler.NewAdminHandler(app.Admin)

	api := router.Group("/api")
	api.GET("/lawyer/modes", lawyerHandler.Modes)
	api.GET("/generator/categories", generatorHandler.Categories)
	api.GET("/generator/templates/:category", generatorHandler.Templates)

	user := api.Group("")
	user.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	lawyer := user.Group("/lawyer")
	lawyer.POST("/chat", lawyerHandler.Chat)
	lawyer.GET("/sessions", lawyerHandler.ListSessions)
	lawyer.GET("/sessions/:id", lawyerHandler.GetSession)
	lawyer.DELETE("/sessions/:id", lawyerHandler.DeleteSession)

	validator := user.Group("/validator")
	validator.POST("/analyze", validatorHandler.Analyze)
	validator.POST("/analyze/stream", validatorHandler.AnalyzeStream)
	validator.GET("/history", validatorHandler.History)
	validator.GET("/:id", validatorHandler.Get)

	generator := user.Group("/generator")
	generator.POST("/generate", generatorHandler.Generate)
	generator.GET("/history", generatorHandler.History)
	generator.GET("/contract/:id", generatorHandler.Get)

	user.GET("/history", historyHandler.List)
	user.DELETE("/history/:type/:id", historyHandler.Delete)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminBasicAuth(app.Config.Admin.Username, app.Config.Admin.Password))
	admin.POST("/documents/upload", adminHandler.Upload)
	admin.GET("/documents", adminHandler.Documents)
	admin.GET("/stats", adminHandler.Stats)
	admin.DELETE("/documents/:source", adminHandler.Delete)

	return router, nil
}
