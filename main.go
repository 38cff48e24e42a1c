package main

import (
	"Sweatmate/config"
	_ "Sweatmate/config/swagger"
	workout_constants "Sweatmate/constants/workout"
	"Sweatmate/middleware"
	"Sweatmate/routes"
	"Sweatmate/services/broadcast"
	"Sweatmate/services/identity"
	"Sweatmate/services/invitations"
	"Sweatmate/services/lobby"
	"Sweatmate/services/redis"
	"Sweatmate/services/socket_io"
	"Sweatmate/services/timer"
	sessionsync "Sweatmate/sync"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	socketio_types "Sweatmate/services/socket_io/types"
)

// @title Sweatmate API
// @version 1.0
// @description Gin-Gonic server for the "Sweatmate" group workout API
// @host sweatmate.ddns.net:8080
// @BasePath /
// @paths
func main() {
	godotenv.Load()
	// Setup DB conn
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	// Heal any Redis/PostgreSQL disagreement left over from a crash before
	// the tick loop picks up the active set
	syncManager := sessionsync.NewSyncManager(redisClient, gormDB)
	if err := syncManager.SyncAllSessions(); err != nil {
		log.Printf("Warning: session reconciliation failed: %v", err)
	}

	cfg := workout_constants.LoadTimerConfig()

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	// Socket.io server first: the broadcaster fans out through its rooms
	sioServer := &socket_io.MySocketServer{}
	sioServer.Start(r, gormDB)

	resolver := identity.NewDBResolver(gormDB)
	publisher := broadcast.NewSocketBroadcaster((*socketio_types.SocketServer)(sioServer), redisClient)

	registry := lobby.NewRegistry(gormDB, redisClient, publisher, resolver, cfg)
	tracker := invitations.NewTracker(gormDB, registry, publisher, resolver, cfg)
	engine := timer.NewEngine(redisClient, publisher, registry, cfg)

	// Countdown loop runs for the lifetime of the process
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	// Stop ticking before connections are torn down
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		cancel()
		os.Exit(0)
	}()

	routes.SetupRoutes(r, gormDB, registry, tracker, engine)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" && os.Getenv("USE_HTTPS") == "true" {
		port = "443"
	} else if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		//SSL certification configuration for HTTPS
		certFile := "/etc/letsencrypt/live/sweatmate.ddns.net/fullchain.pem"
		keyFile := "/etc/letsencrypt/live/sweatmate.ddns.net/privkey.pem"

		// Start server
		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
	log.Printf("Server started on port %s", port)
}
