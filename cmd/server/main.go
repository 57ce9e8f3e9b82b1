package main

import (
	"log"
	"net/http"
	"os"

	"grumini-backend/internal/auth"
	"grumini-backend/internal/config"
	"grumini-backend/internal/database"
	"grumini-backend/internal/gemini"
	"grumini-backend/internal/handlers"
	"grumini-backend/internal/ledger"
	"grumini-backend/internal/middleware"
	"grumini-backend/internal/supabase"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const sessionMaxAge = 3 * 60 * 60 // 3 hours, matching the cookie expiry the SPA expects

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	for _, dir := range []string{cfg.DataDir, cfg.GeneratedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Migrations need a direct PostgreSQL connection; request-time user
	// queries go through PostgREST and work without it.
	if cfg.DatabaseURL != "" {
		migrator, err := database.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Failed to initialize migrator: %v", err)
		} else {
			if err := migrator.Run(); err != nil {
				log.Printf("Warning: Migration failed: %v", err)
			} else {
				log.Println("Migrations completed successfully")
			}
			migrator.Close()
		}
	} else {
		log.Println("Warning: DATABASE_URL not set. Migrations will be skipped.")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase client: %v", err)
	}

	geminiClient := gemini.NewClient(cfg.GeminiAPIBaseURL, cfg.GeminiAPIKey)
	googleOAuth := auth.NewGoogleOAuth(cfg, cfg.ServerBaseURL()+"/auth/google/callback")

	projectStore := ledger.NewProjectStore(cfg.DataDir)
	exportStore := ledger.NewExportStore(cfg.DataDir)
	historyStore := ledger.NewHistoryStore(cfg.DataDir)

	authHandler := handlers.NewAuthHandler(supabaseClient, googleOAuth, cfg.ClientURL)
	projectsHandler := handlers.NewProjectsHandler(projectStore, cfg.GeneratedDir)
	remixHandler := handlers.NewRemixHandler(geminiClient, projectStore, cfg.GeneratedDir)
	chatHandler := handlers.NewChatHandler(geminiClient, projectStore, cfg.GeneratedDir)
	templatesHandler := handlers.NewTemplatesHandler(geminiClient, projectStore, exportStore, historyStore, cfg.GeneratedDir)
	exportsHandler := handlers.NewExportsHandler(exportStore)
	historyHandler := handlers.NewHistoryHandler(historyStore)
	generateHandler := handlers.NewGenerateHandler(geminiClient, projectStore, historyStore, cfg.GeneratedDir)

	router := gin.Default()
	router.MaxMultipartMemory = 32 << 20

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	sameSite := http.SameSiteLaxMode
	if cfg.IsProduction() {
		// Cross-site cookie for the separately hosted SPA.
		sameSite = http.SameSiteNoneMode
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: sameSite,
	})
	router.Use(sessions.Sessions("grumini_session", store))

	// Generated assets are served straight from disk.
	router.Static("/generated", cfg.GeneratedDir)

	router.GET("/health", handlers.HealthHandler)
	router.GET("/", authHandler.Root)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/user", authHandler.CurrentUser)
		authRoutes.GET("/google", authHandler.GoogleLogin)
		authRoutes.GET("/google/callback", authHandler.GoogleCallback)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/projects", projectsHandler.ListProjects)
		api.DELETE("/projects/:id", projectsHandler.DeleteProject)
		api.POST("/projects/:id/rate", projectsHandler.RateProject)

		api.POST("/remix", remixHandler.Remix)
		api.POST("/chat/analyze", chatHandler.Analyze)
		api.POST("/template/generate", templatesHandler.Generate)
		api.POST("/generate-image", generateHandler.GenerateImage)

		api.GET("/history", historyHandler.ListHistory)
		api.POST("/history", historyHandler.AddHistory)

		api.GET("/exports", exportsHandler.ListExports)
		api.DELETE("/exports/:id", exportsHandler.DeleteExport)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
