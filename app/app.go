package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"serp-radar/api"
	"serp-radar/cache"
	"serp-radar/config"
	"serp-radar/database"
	"serp-radar/database/groups"
	"serp-radar/database/keywords"
	"serp-radar/database/metrics"
	"serp-radar/database/snapshots"
	"serp-radar/realtime"
	ws "serp-radar/websocket"
)

// App represents the main application
type App struct {
	config *config.Config

	db    *database.Database
	rawDB *database.DB
	redis *cache.RedisClient

	keywordRepo *keywords.Repository
	metricsRepo *metrics.Repository
	groupRepo   *groups.Repository
	snapRepo    *snapshots.Repository

	broker    *realtime.Broker
	hub       *ws.Hub
	refresher *RankingRefresher
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{config: cfg}
}

// Start starts the application
func (a *App) Start() error {
	// 1. Database connections: GORM for the catalog repositories, a raw
	// connection for the aggregation queries.
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := a.db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	rawDB, err := database.NewConnection(database.Config{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		return fmt.Errorf("raw database connection failed: %w", err)
	}
	a.rawDB = rawDB

	// 2. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Snapshot caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 3. Repositories
	a.keywordRepo = keywords.NewRepository(a.db.DB())
	a.metricsRepo = metrics.NewRepository(a.rawDB.GetConn())
	a.groupRepo = groups.NewRepository(a.db.DB())
	a.snapRepo = snapshots.NewRepository(a.db.DB())

	// 4. Realtime delivery
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	a.hub = ws.NewHub()
	go a.hub.Run()

	// 5. Ranking refresh loop
	log.Println("🚀 Starting ranking refresher...")
	a.refresher = NewRankingRefresher(
		a.keywordRepo, a.metricsRepo, a.groupRepo, a.snapRepo,
		a.redis, a.broker, a.hub, a.config,
	)
	go a.refresher.Start()

	// 6. API Server
	apiServer := api.NewServer(api.Deps{
		Keywords:  a.keywordRepo,
		Metrics:   a.metricsRepo,
		Groups:    a.groupRepo,
		Snapshots: a.snapRepo,
		Redis:     a.redis,
		Broker:    a.broker,
		Hub:       a.hub,
	})
	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// 7. Wait for interrupt and perform graceful shutdown
	return a.gracefulShutdown()
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown() error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	shutdownComplete := make(chan struct{})
	go func() {
		if a.refresher != nil {
			fmt.Println("📊 Stopping ranking refresher...")
			a.refresher.Stop()
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}
		if a.rawDB != nil {
			if err := a.rawDB.Close(); err != nil {
				log.Printf("Error closing raw database connection: %v", err)
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-time.After(10 * time.Second):
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}
