package main

import (
	"github.com/dustin/go-humanize"
	"summarycube/config"
	"summarycube/core"
	"summarycube/logger"
	"summarycube/storage"
)

// app is one opened snapshot for the lifetime of a command.
type app struct {
	backend storage.Backend
	query   *core.Query
}

func openApp(configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.LoggerConfig())

	db, err := storage.OpenBadger(cfg.Store.Path, cfg.Store.InMemory)
	if err != nil {
		return nil, err
	}
	var backend storage.Backend = storage.NewBadgerBackend(db).SetChunkRows(cfg.Store.ChunkRows)
	if cfg.Cache.Enabled {
		cached, err := storage.NewCachedBackend(backend, cfg.CacheConfig())
		if err != nil {
			db.Close()
			return nil, err
		}
		backend = cached
	}

	snapshot, err := core.LoadSnapshot(storage.NewBadgerMetadataStore(db), backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	sideTableRows := 0
	if table, ok := snapshot.SideTable(core.CellCountsTable); ok {
		sideTableRows = table.Len()
	}
	logger.Info("loaded snapshot",
		"version", snapshot.Version(),
		"diffexp_cubes", len(snapshot.DiffExpKeys()),
		"dimensions", len(snapshot.Cardinality()),
		"side_table_rows", humanize.Comma(int64(sideTableRows)))

	var params *core.CubeQueryParams
	if len(cfg.Query.ValidAttrs) > 0 || len(cfg.Query.ValidDims) > 0 {
		params = core.NewCubeQueryParams(cfg.Query.ValidAttrs, cfg.Query.ValidDims)
	}
	logger.Debug("opened store",
		"path", cfg.Store.Path,
		"chunk_rows", humanize.Comma(int64(cfg.Store.ChunkRows)),
		"cache", cfg.Cache.Enabled)

	return &app{
		backend: backend,
		query:   core.NewQuery(snapshot, params),
	}, nil
}

// Close closes the backend, which closes the badger database.
func (a *app) Close() error {
	return a.backend.Close()
}
