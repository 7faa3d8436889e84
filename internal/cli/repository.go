package cli

import (
	"context"

	"depot-helpdesk/internal/config"
	"depot-helpdesk/internal/database"
	"depot-helpdesk/internal/repository"
	"depot-helpdesk/internal/store"

	"github.com/rs/zerolog/log"
)

// openStore picks the backend named in the config.
func openStore(c config.Config) (store.Store, func(), error) {
	switch c.StoreBackend {
	case config.BackendMySQL, config.BackendSQLite:
		db, err := database.Connect(c.StoreBackend, c.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return database.NewStore(db), closeFn, nil
	default:
		log.Info().Str("requests", c.RequestsFile).Str("comments", c.CommentsFile).Msg("Using JSON files")
		return store.NewJSONStore(c.RequestsFile, c.CommentsFile), func() {}, nil
	}
}

func openRepository(ctx context.Context, c config.Config) (*repository.Repository, func(), error) {
	st, closeFn, err := openStore(c)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.New(ctx, st)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	log.Info().Int("requests", repo.Len()).Str("backend", c.StoreBackend).Msg("Requests loaded")
	return repo, closeFn, nil
}
