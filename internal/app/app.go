package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"patron-crm-go/internal/config"
	"patron-crm-go/internal/db"
	relationsdomain "patron-crm-go/internal/domain/relations"
	"patron-crm-go/internal/repository/inmemory"
	relationsrepo "patron-crm-go/internal/repository/postgres/relations"
	"patron-crm-go/internal/transport/httpserver"
	"patron-crm-go/internal/transport/httpserver/handler"
	"patron-crm-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(ctx context.Context, log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var (
		dbConn *gorm.DB
		repo   relationsdomain.Repository
	)
	if cfg.Store.Driver == config.DriverMemory {
		log.Info("app: using in-memory store")
		repo = relationsdomain.NewNoopRepository()
	} else {
		log.Info("app: initializing database", "driver", cfg.Store.Driver)
		dbConn, err = db.Open(cfg.Store, log)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(dbConn, log); err != nil {
			closeDB(dbConn)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo = relationsrepo.NewPostgres(dbConn)
	}

	service := relationsdomain.NewService(repo, inmemory.NewInMemoryLinkCache(), log.With("component", "relations"), relationsdomain.Options{
		HistoryDepth: cfg.History.Depth,
		LinkTTL:      cfg.Links.TTL,
	})
	log.Info("app: loading patron graph")
	if err := service.Load(ctx); err != nil {
		closeDB(dbConn)
		return nil, err
	}

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handler.New(service, log.With("component", "http")), log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(dbConn *gorm.DB) {
	if dbConn == nil {
		return
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
