package app

import (
	"context"
	"errors"

	"github.com/meghashyamc/wordindex/config"
	"github.com/meghashyamc/wordindex/db/kvdb"
	"github.com/meghashyamc/wordindex/db/searchdb"
	"github.com/meghashyamc/wordindex/logger"
	"github.com/meghashyamc/wordindex/services/extract"
	"github.com/meghashyamc/wordindex/services/index"
	"github.com/meghashyamc/wordindex/services/paths"
	"github.com/meghashyamc/wordindex/services/search"
)

// App holds the opened stores and the services built on them. The HTTP server and the
// CLI commands share it.
type App struct {
	Logger logger.Logger

	KVDB     *kvdb.BoltDB
	SearchDB *searchdb.BleveDB

	Index  *index.Service
	Search *search.Service
	Paths  *paths.Service
}

// New opens the stores described by cfg. The index service worker runs until ctx is done.
func New(ctx context.Context, cfg *config.Config, logger logger.Logger) (*App, error) {
	kvDB, err := kvdb.New(logger, cfg.GetKVDBPath())
	if err != nil {
		logger.Error("error creating kvDB", "err", err.Error())
		return nil, err
	}

	searchDB, err := searchdb.Open(logger, searchdb.Options{
		Path:           cfg.GetIndexPath(),
		MaxTokenLength: cfg.GetMaxTokenLength(),
		CommitEvery:    cfg.GetCommitEvery(),
	})
	if err != nil {
		logger.Error("error creating searchDB", "err", err.Error())
		kvDB.Close()
		return nil, err
	}

	extractor := extract.New(logger, extract.NewPandoc(cfg.GetConverterCommand(), cfg.GetConverterTimeout()))
	indexService := index.New(ctx, logger, searchDB, extractor, kvDB)

	return &App{
		Logger:   logger,
		KVDB:     kvDB,
		SearchDB: searchDB,
		Index:    indexService,
		Search:   search.New(logger, searchDB),
		Paths:    paths.New(logger, kvDB, indexService),
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.SearchDB.Close(), a.KVDB.Close())
}
