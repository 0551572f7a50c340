// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/Aischii/mangaWebsite/internal/core/content"
	"github.com/Aischii/mangaWebsite/internal/core/library"
	"github.com/Aischii/mangaWebsite/internal/platform/config"
	"github.com/Aischii/mangaWebsite/internal/platform/constants"
	"github.com/Aischii/mangaWebsite/internal/platform/imageopt"
	pgstore "github.com/Aischii/mangaWebsite/internal/platform/postgres"
	redisstore "github.com/Aischii/mangaWebsite/internal/platform/redis"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
	"github.com/Aischii/mangaWebsite/internal/platform/storage"
	"github.com/Aischii/mangaWebsite/internal/users/auth"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

// cliEnv holds the connections shared by the data-touching subcommands.
type cliEnv struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
	rdb  *goredis.Client
	disk *storage.Disk
}

func openEnv(ctx context.Context, cmd *cli.Command) (*cliEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := newLogger(cmd)

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	disk, err := storage.NewDisk(cfg.MediaRoot, cfg.MediaURLPrefix)
	if err != nil {
		pool.Close()
		_ = rdb.Close()
		return nil, err
	}

	return &cliEnv{cfg: cfg, log: log, pool: pool, rdb: rdb, disk: disk}, nil
}

func (env *cliEnv) Close() {
	env.pool.Close()
	if err := env.rdb.Close(); err != nil {
		env.log.Warn("redis_close_failed", slog.Any("error", err))
	}
}

func (env *cliEnv) auth() (*auth.Service, error) {
	tokens, err := sec.NewTokenService(env.cfg.SessionSecret, constants.AuthIssuer)
	if err != nil {
		return nil, err
	}
	return auth.NewService(
		auth.NewUserRepository(env.pool),
		auth.NewSessionRepository(env.rdb),
		tokens,
		env.disk,
		env.cfg.SessionTTL,
		env.log,
	), nil
}

func (env *cliEnv) content() *content.Service {
	var optimizer imageopt.Optimizer = imageopt.Noop{}
	if env.cfg.ImageOptimize {
		optimizer = imageopt.NewResizer(env.cfg.ImageMaxWidth, env.cfg.ImageQuality, env.log)
	}

	catalog := library.NewRepository(env.pool)
	cache := library.NewCachedRepository(catalog, env.rdb, env.cfg.CacheTTL, env.log)
	return content.NewService(content.NewRepository(env.pool), catalog, env.disk, optimizer, cache, env.log)
}
