package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jayabdulraman/social-agent-backend/internal/conf"
	"github.com/jayabdulraman/social-agent-backend/internal/pkg/cache"
	applogger "github.com/jayabdulraman/social-agent-backend/internal/pkg/logger"
	socialmodels "github.com/jayabdulraman/social-agent-backend/internal/social/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Data bundles the shared storage handles. Both are optional: a missing
// database disables card persistence and a missing redis disables
// response caching, the API keeps serving either way.
type Data struct {
	DB    *gorm.DB
	Cache *cache.Client
}

// New connects to PostgreSQL and Redis per config. Returns the handles
// and a cleanup function.
func New(config *conf.Config, log *applogger.Logger) (*Data, func(), error) {
	d := &Data{}

	if config.Database.Host != "" {
		db, err := initDB(config, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to init database: %w", err)
		}
		d.DB = db
	} else {
		log.Warn("database not configured, card persistence disabled")
	}

	if config.Redis.Host != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := cache.New(ctx, &cache.Config{
			Addr:     fmt.Sprintf("%s:%d", config.Redis.Host, config.Redis.Port),
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		}, log)
		if err != nil {
			log.Warn("redis unavailable, response caching disabled", zap.Error(err))
		} else {
			d.Cache = client
		}
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if d.DB != nil {
			if sqlDB, err := d.DB.DB(); err == nil {
				sqlDB.Close()
			}
		}
		if d.Cache != nil {
			d.Cache.Close()
		}
	}

	return d, cleanup, nil
}

func initDB(config *conf.Config, log *applogger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(config.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := socialmodels.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	log.Info("database initialized successfully")
	return db, nil
}
