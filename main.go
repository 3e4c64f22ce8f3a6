package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"coplay/internal/catalog"
	"coplay/internal/config"
	"coplay/internal/database/db_client"
	"coplay/internal/http/http_server"
	"coplay/internal/redis/redis_client"
	"coplay/internal/session"
	"coplay/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Catalog collaborators (optional: the coordinator runs without them)
	cat := catalog.Disabled()
	redisClient, err := redis_client.NewRedisClient(cfg.RedisCatalogHost, int(cfg.RedisCatalogPort))
	if err != nil {
		Log.Warn("Catalog Redis unavailable, catalog disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Warn("Catalog Postgres unavailable, catalog disabled", zap.Error(err))
	} else {
		defer pgDb.Close()
	}
	if redisClient != nil && pgDb != nil {
		cat = catalog.NewCatalogService(redisClient, pgDb, cfg.CatalogCacheTTL)
	}

	// 4. WebSocket transport + session coordinator
	wsSrv := ws.NewWsServer(cfg.PingPeriod)
	coord := session.NewCoordinator(wsSrv, session.Limits{
		MaxSlots:     cfg.MaxSlots,
		RoomIDMaxLen: cfg.RoomIdMaxLen,
		NameMaxLen:   cfg.NameMaxLen,
		ChatMaxLen:   cfg.ChatMaxLen,
		ReapInterval: cfg.ReapInterval,
	})
	wsSrv.Attach(coord)

	// 5. Coordinator loop: single goroutine owns all room state
	go coord.Run(ctx)

	// 6. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, coord, cat)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
