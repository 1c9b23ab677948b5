package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/config"
	"github.com/zhouzirui/menu-assistant/backend/internal/handler"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/ai"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/orders"
	"github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := cfg.Log.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, using system environment only", zap.Error(envErr))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	catalogs, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Int("branches", len(catalogs.List())), zap.String("file", cfg.Catalog.File))

	records, sink, closeDB, err := openStorage(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	answerer, err := ai.NewAnswerer(ctx, cfg.AI, logger)
	if err != nil {
		logger.Warn("continuing without AI answers", zap.Error(err))
		answerer = nil
	} else if answerer == nil {
		logger.Info("AI credentials not configured, generic questions use canned replies")
	} else {
		logger.Info("AI answers enabled", zap.String("provider", string(cfg.AI.Provider)))
	}

	machine := recommendation.NewMachine(catalogs, records, recommendation.Policy{
		SmallMax:  cfg.Recommendation.SmallMax,
		MediumMax: cfg.Recommendation.MediumMax,
		Shortlist: cfg.Recommendation.Shortlist,
	}, logger)

	engine := conversation.NewEngine(catalogs, machine, sink, records, conversation.Options{
		RecentTemplates: cfg.Conversation.RecentTemplates,
		HistoryLimit:    cfg.AI.HistoryLimit,
		Answerer:        answerer,
		Transcript:      chat.NewService(0),
		Logger:          logger,
	})

	router := handler.NewRouter(handler.Deps{
		Catalog:     catalogs,
		Engine:      engine,
		Machine:     machine,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("menu assistant listening", zap.String("addr", cfg.Server.Addr))
	return runServer(ctx, srv)
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.MemoryStore, error) {
	if cfg.File == "" {
		return catalog.NewMemoryStore(catalog.Seed()), nil
	}
	store, err := catalog.LoadFile(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return store, nil
}

// openStorage picks postgres when DATABASE_URL is set and memory otherwise.
func openStorage(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (store.Store, orders.Sink, func(), error) {
	if !cfg.Durable() {
		logger.Info("DATABASE_URL not set, conversation state and orders stay in memory")
		return store.NewMemoryStore(), orders.NewMemorySink(), func() {}, nil
	}

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	records := store.NewPostgresStore(db)
	sink := orders.NewPostgresSink(db)
	if err := migrate(ctx, records, sink); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	logger.Info("postgres storage ready")
	return records, sink, closeDB, nil
}

func migrate(ctx context.Context, records *store.PostgresStore, sink *orders.PostgresSink) error {
	if err := records.Migrate(ctx); err != nil {
		return err
	}
	return sink.Migrate(ctx)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
