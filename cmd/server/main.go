package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hawaesanda/BotFTM-master/internal/api"
	"github.com/hawaesanda/BotFTM-master/internal/bot"
	"github.com/hawaesanda/BotFTM-master/internal/db"
	"github.com/hawaesanda/BotFTM-master/internal/ingest"
	"github.com/hawaesanda/BotFTM-master/internal/logging"
	"github.com/hawaesanda/BotFTM-master/internal/master"
	"github.com/hawaesanda/BotFTM-master/internal/registry"
	"github.com/hawaesanda/BotFTM-master/internal/wizard"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	log.SetOutput(os.Stdout)

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	database, err := db.NewDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.Close()

	masterData, err := loadMaster()
	if err != nil {
		log.Fatalf("Master data load failed: %v", err)
	}

	registryPath := os.Getenv("ALLOWED_USERS_FILE")
	if registryPath == "" {
		registryPath = "allowed_users.json"
	}
	reg := registry.New(registry.NewFileStore(registryPath))

	repo := db.NewInventoryRepository(database)
	pipeline := ingest.NewPipeline(repo, masterData)
	engine := wizard.NewEngine(repo, masterData, reg, pipeline)

	b, err := bot.New(token, reg, engine)
	if err != nil {
		log.Fatalf("Bot initialization failed: %v", err)
	}

	router := setupRouter(api.NewHandler(database, reg))
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("Starting ops server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start ops server: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		cancel()
	}()

	if err := b.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot stopped: %v", err)
	}
}

// loadMaster loads the embedded reference data, or an external override
// when MASTER_FILE is set.
func loadMaster() (*master.Master, error) {
	if path := os.Getenv("MASTER_FILE"); path != "" {
		return master.LoadFile(path)
	}
	return master.Load()
}

func setupRouter(handler *api.Handler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(api.CORSMiddleware())

	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		admin := v1.Group("/admin")
		admin.Use(api.AuthMiddleware(), api.AdminMiddleware())
		{
			admin.GET("/users", handler.ListUsers)
		}
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "botftm",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}
