package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"surgical-scheduling-backend/internal/config"
	"surgical-scheduling-backend/internal/database"
	"surgical-scheduling-backend/internal/dispatch"
	"surgical-scheduling-backend/internal/handler"
	"surgical-scheduling-backend/internal/middleware"
	"surgical-scheduling-backend/internal/monitor"
	"surgical-scheduling-backend/internal/notifier"
	"surgical-scheduling-backend/internal/planner"
	"surgical-scheduling-backend/internal/repository"
	"surgical-scheduling-backend/internal/scheduler"
	"surgical-scheduling-backend/internal/service"
	"surgical-scheduling-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()
	log.Println("Configuration loaded successfully")

	// 2. Initialize JWT utilities with config
	utils.InitJWT(cfg.JWT.AccessSecret, cfg.JWT.AccessTokenExpiry)

	// 3. Initialize database connection
	db := database.Connect(cfg)

	// 4. Initialize the store and seed the fixed room pool
	caseStore := repository.NewCaseStore(db)
	if err := caseStore.EnsureRooms(); err != nil {
		log.Fatalf("Failed to seed operating rooms: %v", err)
	}
	userRepo := repository.NewUserRepo(db)

	// 5. Initialize services
	authService := service.NewAuthService(userRepo)
	if err := authService.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		log.Printf("Warning: Failed to ensure admin account exists: %v", err)
	}

	recorder := notifier.NewRecorder(caseStore)

	var generator planner.Generator
	if cfg.Planner.OpenAIAPIKey != "" {
		generator = planner.NewOpenAIGenerator(cfg.Planner.OpenAIAPIKey, cfg.Planner.OpenAIModel)
		log.Println("Plan generator: OpenAI with deterministic fallback")
	} else {
		generator = planner.NewDeterministicGenerator()
		log.Println("Plan generator: deterministic (no OPENAI_API_KEY configured)")
	}

	planService := planner.NewService(caseStore, generator, recorder)
	engine := scheduler.NewEngine(caseStore, recorder, cfg.Scheduling.GraceWindow)
	mon := monitor.NewMonitor(caseStore)

	// 6. Build the message router and register every component
	router := dispatch.NewRouter()
	planService.Register(router)
	engine.Register(router)
	recorder.Register(router)
	mon.Register(router)

	// 7. Setup Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// 8. Setup Gin router
	r := gin.Default()
	r.Use(middleware.CORS(cfg))

	// 9. Register handlers
	authHandler := handler.NewAuthHandler(authService)
	caseHandler := handler.NewCaseHandler(router, engine, caseStore)
	monitorHandler := handler.NewMonitorHandler(router, engine, recorder, mon)

	// 10. Define routes
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "surgical-scheduling-backend",
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	cases := r.Group("/cases")
	{
		cases.POST("", caseHandler.CreateCase)
		cases.GET("", caseHandler.ListCases)
		cases.GET("/:id", caseHandler.GetCase)
		cases.POST("/:id/schedule", caseHandler.ScheduleCase)

		// Test/admin only
		cases.DELETE("/:id", middleware.AuthMiddleware(), middleware.RequireAdmin(), caseHandler.DeleteCase)
	}

	r.GET("/snapshot", monitorHandler.GetSnapshot)
	r.GET("/events", monitorHandler.ListEvents)
	r.GET("/rooms", monitorHandler.GetRooms)

	// 11. Setup graceful shutdown
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	log.Println("Server exited")
}
