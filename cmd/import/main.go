// Command import loads the product catalog from a JSON file into an empty database.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"storefront/internal/app/di"
	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
	infradb "storefront/internal/platform/db"
	infraredis "storefront/internal/platform/redis"
)

const (
	exitOK = iota
	exitFailure
	exitAlreadyImported
	exitFileNotFound
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	path := flag.String("file", envOr("IMPORT_FILE", "products.json"), "path of the products JSON file")
	flag.Parse()

	dbCfg := infradb.LoadConfigFromEnv()
	dbCfg.Migrate = true
	db, err := infradb.OpenDB(dbCfg, &entity.Product{}, &entity.ProductImage{})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return exitFailure
	}

	// キャッシュを無効化するためRedisがあれば使う
	var rdb *redisv9.Client
	if redisCfg := infraredis.LoadConfigFromEnv(); redisCfg.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err = infraredis.NewRedisClient(ctx, redisCfg)
		cancel()
		if err != nil {
			slog.Warn("Redis unavailable; catalog cache will expire on its own", "error", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	uc := usecase.NewImportUsecase(di.NewProductRepository(db, rdb, 0))
	n, err := uc.ImportFile(ctx, *path)
	switch {
	case err == nil:
		slog.Info("import ok", "products", n, "file", *path)
		return exitOK
	case errors.Is(err, usecase.ErrAlreadyImported):
		slog.Warn("products already imported; nothing to do")
		return exitAlreadyImported
	case errors.Is(err, usecase.ErrImportFileNotFound):
		slog.Error("import file not found", "file", *path)
		return exitFileNotFound
	default:
		slog.Error("import failed", "error", err, "file", *path)
		return exitFailure
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
