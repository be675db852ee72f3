package db

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mnuddindev/foodgram/internal/config"
	"github.com/mnuddindev/foodgram/pkg/logger"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type DBOptions func(*gorm.DB) error

// Dialector picks the GORM driver for the configured backend.
func Dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "sqlite" {
		return sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	}
	return postgres.Open(cfg.DSN())
}

// SQLiteDSN enables foreign keys and a busy timeout on a SQLite path.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewDB opens the database, applies options and migrates models.
func NewDB(ctx context.Context, dialector gorm.Dialector, models []interface{}, opts ...DBOptions) (*gorm.DB, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "DB initialization canceled")
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, utils.NewError(utils.ErrInternalServerError.Code, "Failed to connect to Database", err.Error())
	}

	for _, opt := range opts {
		if err := opt(db); err != nil {
			return nil, utils.NewError(utils.ErrInternalServerError.Code, "Failed to apply DB Options", err.Error())
		}
	}

	if len(models) > 0 {
		if err := Migrate(ctx, db, models); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the schema for models.
func Migrate(ctx context.Context, db *gorm.DB, models []interface{}) error {
	select {
	case <-ctx.Done():
		return utils.WrapError(ctx.Err(), utils.ErrInternalServerError.Code, "db migration canceled")
	default:
	}
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to Migrate models", err.Error())
	}
	return nil
}

// CloseDB releases the connection pool.
func CloseDB(db *gorm.DB, log *logger.Logger) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Failed to get DB handle for closing")
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to close database", err.Error())
	}

	if err := sqlDB.Close(); err != nil {
		log.Error(context.Background()).WithMeta(utils.Map{"error": err.Error()}).Logs("Database close failed")
		return utils.NewError(utils.ErrInternalServerError.Code, "Failed to close database", err.Error())
	}
	log.Info(context.Background()).Logs("Database connection closed successfully")
	return nil
}
