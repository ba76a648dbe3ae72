package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehub-core-api/internal/cache"
	"warehub-core-api/internal/config"
	"warehub-core-api/internal/handler"
	"warehub-core-api/internal/repository"
	"warehub-core-api/internal/router"
	"warehub-core-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting WareHub Core API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Open the warehouse store (products, boxes, pallets, events)
	store, err := repository.Open(cfg.Warehouse.Path)
	if err != nil {
		log.Fatalf("Failed to open warehouse store: %v", err)
	}
	defer store.Close()
	log.Printf("Warehouse store opened at %s", cfg.Warehouse.Path)

	// Initialize slot registry based on config
	var slotRepo repository.SlotRepository
	switch cfg.SlotDB.Type {
	case "mysql":
		mysqlDB, err := sql.Open("mysql", cfg.SlotDB.DSN())
		if err == nil {
			mysqlDB.SetMaxOpenConns(10)
			mysqlDB.SetMaxIdleConns(5)
			mysqlDB.SetConnMaxLifetime(5 * time.Minute)
			err = mysqlDB.Ping()
		}
		if err != nil {
			log.Printf("Warning: MySQL slot registry unavailable, falling back to SQLite: %v", err)
			if mysqlDB != nil {
				mysqlDB.Close()
			}
			slotRepo = repository.NewSQLiteSlotRepository(store)
		} else {
			mysqlSlots, err := repository.NewMySQLSlotRepository(mysqlDB)
			if err != nil {
				log.Fatalf("Failed to initialize MySQL slot registry: %v", err)
			}
			slotRepo = mysqlSlots
			log.Println("MySQL slot registry initialized")
		}
	default: // sqlite
		slotRepo = repository.NewSQLiteSlotRepository(store)
		log.Println("SQLite slot registry initialized")
	}
	defer slotRepo.Close()

	// Initialize stock status cache based on config
	var stockCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, falling back to memory: %v", err)
			stockCache = cache.NewMemoryCache()
		} else {
			stockCache = redisCache
			log.Println("Redis cache initialized")
		}
	default: // memory
		stockCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}
	defer stockCache.Close()

	// Initialize repositories
	catalogRepo := repository.NewSQLiteCatalogRepository(store)
	boxRepo := repository.NewSQLiteBoxRepository(store)
	palletRepo := repository.NewSQLitePalletRepository(store)
	eventRepo := repository.NewSQLiteEventRepository(store)
	stockRepo := repository.NewSQLiteStockRepository(store)

	// Initialize services
	warehouseService := service.NewWarehouseService(
		catalogRepo, boxRepo, palletRepo, eventRepo, stockCache, cfg.Cache.TTL)
	engine := service.NewAllocationEngine(stockRepo, slotRepo)
	dispatcher := service.NewDispatcher(
		eventRepo, catalogRepo, palletRepo, engine, warehouseService,
		service.DispatcherConfig{DrainInterval: cfg.Dispatcher.DrainInterval})

	dispatcher.Start()
	log.Printf("Event dispatcher started (interval %s)", cfg.Dispatcher.DrainInterval)

	// Initialize handlers
	healthHandler := handler.New(store, cfg.App.Version)
	catalogHandler := handler.NewCatalogHandler(warehouseService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService, engine)
	eventHandler := handler.NewEventHandler(warehouseService, dispatcher)
	adminHandler := handler.NewAdminHandler(warehouseService, slotRepo)

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		CatalogHandler:   catalogHandler,
		WarehouseHandler: warehouseHandler,
		EventHandler:     eventHandler,
		AdminHandler:     adminHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the dispatcher first so no drain is mid-flight during close
	dispatcher.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
