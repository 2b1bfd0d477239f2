package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tezbeat/cache"
	"tezbeat/config"
	"tezbeat/core/analytics"
	"tezbeat/core/auth"
	"tezbeat/core/ipfs"
	"tezbeat/core/objkt"
	"tezbeat/core/player"
	"tezbeat/core/tzkt"
	"tezbeat/db"
	"tezbeat/logger"
	"tezbeat/model"
	"tezbeat/repository"
	"tezbeat/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until SIGINT or
// SIGTERM.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.MarketplaceListing{}, &model.SaleEvent{}); err != nil {
		logger.Fatal("Failed to migrate marketplace models", logger.ErrorField(err))
	}

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer cache.CloseRedis()

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	gateways := config.NewGatewayList(cfg)
	if cfg.GatewayListFile != "" {
		if err := gateways.Watch(cfg.GatewayListFile); err != nil {
			logger.Warn("gateway list watch failed, using static gateways",
				logger.String("file", cfg.GatewayListFile), logger.ErrorField(err))
		} else {
			defer gateways.Close()
			gateways.OnChange(func(urls []string) {
				logger.Info("IPFS gateway list reloaded", logger.Int("count", len(urls)))
			})
		}
	}

	nftRepo := repository.NewMySQLNFTRepository()
	walletRepo := repository.NewMySQLWalletRepository()
	faucetRepo := repository.NewMySQLFaucetRepository()
	marketRepo := repository.NewGormMarketRepository(db.GormDB)

	tzktClient := tzkt.NewClient(cfg.TzktBaseURL, cfg.TokenPageLimit)
	objktClient := objkt.NewClient(cfg.ObjktGraphQLURL)
	resolver := ipfs.NewResolver(gateways)

	blobs := cache.NewAnalyticsBlobStore(cache.RedisClient, 0)
	analyticsStore := analytics.NewStore(blobs)

	// the analytics store doubles as queue persistence and play recorder;
	// the NFT repository already satisfies the track resolver
	players := player.NewManager(analyticsStore, nftRepo, analyticsStore)

	apiHandler := NewAPIHandler(nftRepo, walletRepo, faucetRepo, marketRepo,
		tzktClient, objktClient, resolver, analyticsStore, players, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// wallet sessions
	router.HandleFunc("/api/auth/connect", apiHandler.ConnectWalletHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/disconnect", apiHandler.AuthMiddleware(apiHandler.DisconnectHandler)).Methods(http.MethodPost)

	// library
	router.HandleFunc("/api/library", apiHandler.AuthMiddleware(apiHandler.GetLibraryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/library/refresh", apiHandler.AuthMiddleware(apiHandler.RefreshLibraryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/library/search", apiHandler.AuthMiddleware(apiHandler.SearchLibraryHandler)).Methods(http.MethodGet)

	// player
	router.HandleFunc("/api/player", apiHandler.AuthMiddleware(apiHandler.PlayerStateHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/player/track", apiHandler.AuthMiddleware(apiHandler.SetCurrentTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/player/queue", apiHandler.AuthMiddleware(apiHandler.AddToQueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue", apiHandler.AuthMiddleware(apiHandler.ClearQueueHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/player/queue/all", apiHandler.AuthMiddleware(apiHandler.AddMultipleToQueueHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue/next", apiHandler.AuthMiddleware(apiHandler.InsertNextHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/queue/{index}", apiHandler.AuthMiddleware(apiHandler.RemoveFromQueueHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/player/play/{index}", apiHandler.AuthMiddleware(apiHandler.PlayAtIndexHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/toggle", apiHandler.AuthMiddleware(apiHandler.TogglePlayHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/next", apiHandler.AuthMiddleware(apiHandler.PlayNextHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/previous", apiHandler.AuthMiddleware(apiHandler.PlayPreviousHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/shuffle", apiHandler.AuthMiddleware(apiHandler.ToggleShuffleHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/repeat", apiHandler.AuthMiddleware(apiHandler.ToggleRepeatHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/volume", apiHandler.AuthMiddleware(apiHandler.SetVolumeHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/player/mute", apiHandler.AuthMiddleware(apiHandler.ToggleMuteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/seek", apiHandler.AuthMiddleware(apiHandler.SeekHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/player/progress", apiHandler.AuthMiddleware(apiHandler.ProgressHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/player/ended", apiHandler.AuthMiddleware(apiHandler.EndedHandler)).Methods(http.MethodPost)
	router.HandleFunc("/ws/player", apiHandler.QueryAuthMiddleware(apiHandler.WebSocketPlayerHandler))

	// analytics
	router.HandleFunc("/api/analytics/history", apiHandler.AuthMiddleware(apiHandler.GetHistoryHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/analytics/tracks", apiHandler.AuthMiddleware(apiHandler.GetTrackStatsHandler)).Methods(http.MethodGet)

	// favorites and playlists
	router.HandleFunc("/api/favorites", apiHandler.AuthMiddleware(apiHandler.GetFavoritesHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/favorites/toggle", apiHandler.AuthMiddleware(apiHandler.ToggleFavoriteHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddToPlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{track_id}", apiHandler.AuthMiddleware(apiHandler.RemoveFromPlaylistHandler)).Methods(http.MethodDelete)

	// marketplace
	router.HandleFunc("/api/market/{track_id}", apiHandler.GetMarketDataHandler).Methods(http.MethodGet)

	// faucet
	router.HandleFunc("/api/faucet/claim", apiHandler.FaucetClaimHandler).Methods(http.MethodPost)

	// audio streaming
	router.HandleFunc("/stream/{track_id}", apiHandler.AuthMiddleware(apiHandler.StreamHandler)).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", logger.ErrorField(err))
	}
	logger.Info("Server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
