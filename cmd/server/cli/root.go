package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/mnuddindev/foodgram/internal/config"
	"github.com/mnuddindev/foodgram/internal/db"
	"github.com/mnuddindev/foodgram/internal/models"
	"github.com/mnuddindev/foodgram/pkg/logger"
	storage "github.com/mnuddindev/foodgram/pkg/redis"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type VersionInfo struct {
	Version string
	Commit  string
}

var configPath string

func NewRootCommand(info VersionInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodgram",
		Short:         "Foodgram recipe service",
		Long:          "Recipe sharing backend with favorites, subscriptions and a downloadable shopping list.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default reads .env and the environment)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

// runtime bundles what every command opens and must close.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *gorm.DB
	rclient *storage.RedisClient
}

func bootstrap(ctx context.Context, withRedis bool) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger(
		logger.WithOutputDir(cfg.LogDir),
		logger.WithMinLevel(logger.LogLevel(cfg.LogLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	pool := db.WithPool(25, 5, time.Hour)
	if cfg.DBDriver == "sqlite" {
		pool = db.WithPool(1, 1, 0)
	}
	gormDB, err := db.NewDB(ctx, db.Dialector(cfg), models.RegisterModels(),
		db.WithLogger(log, gormLogger.Warn),
		pool,
	)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error(), "driver": cfg.DBDriver}).Logs("Failed to initialize database")
		log.Close()
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log, db: gormDB}
	if withRedis && cfg.RedisAddr != "" {
		rclient, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Redis unavailable, running without cache and token blacklist")
		} else {
			rt.rclient = rclient
		}
	}
	return rt, nil
}

func (rt *runtime) close() {
	db.CloseDB(rt.db, rt.log)
	rt.rclient.Close(rt.log)
	rt.log.Close()
}
