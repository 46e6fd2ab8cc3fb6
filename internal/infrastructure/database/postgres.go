package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	AutoMigrate     bool
	Debug           bool
}

// Open connects to Postgres and configures the pool. Driver errors are
// translated so unique violations surface as gorm.ErrDuplicatedKey.
func Open(cfg Config, logger *zap.SugaredLogger) (*gorm.DB, error) {
	gormLog := NewGormLogger(logger, cfg.SlowThreshold)
	if cfg.Debug {
		gormLog = gormLog.LogMode(gormlogger.Info).(*GormZapLogger)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Infow("database connection established",
		logging.KeyCategory, logging.Postgres,
		logging.KeySubCategory, logging.Startup,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return db, nil
}

// Models lists every table owned by the application, in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Tag{},
		&domain.Client{},
		&domain.Vehicle{},
		&domain.Event{},
		&domain.Team{},
		&domain.TeamMessage{},
		&domain.Note{},
		&domain.Call{},
		&domain.Email{},
	}
}

func Migrate(db *gorm.DB, logger *zap.SugaredLogger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	logger.Infow("tables migrated",
		logging.KeyCategory, logging.Postgres,
		logging.KeySubCategory, logging.Migration,
		"tables", len(Models()),
	)
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
