package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"herboscope/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGORM opens a SQL store for the given driver ("postgres" or "sqlite")
// and migrates the schema. There is no retry: a store that cannot be reached
// at boot is fatal to the caller.
func OpenGORM(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         zapGormLogger{zap: log, level: gormlogger.Warn},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Plant{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := backfillSearchNames(db); err != nil {
		return nil, fmt.Errorf("failed to backfill plant search names: %w", err)
	}
	return db, nil
}

// backfillSearchNames fills search_name for rows stored before the column
// existed.
func backfillSearchNames(db *gorm.DB) error {
	var stale []models.Plant
	if err := db.Select("id", "plant_name").Where("search_name = ''").Find(&stale).Error; err != nil {
		return err
	}
	for _, p := range stale {
		err := db.Model(&models.Plant{}).
			Where("id = ?", p.ID).
			Update("search_name", strings.ToLower(p.PlantName)).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// CloseGORM releases the pool behind db.
func CloseGORM(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type zapGormLogger struct {
	zap   *zap.Logger
	level gormlogger.LogLevel
}

func (l zapGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	l.level = level
	return l
}

func (l zapGormLogger) Info(_ context.Context, s string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.zap.Sugar().Infof(s, args...)
	}
}

func (l zapGormLogger) Warn(_ context.Context, s string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.zap.Sugar().Warnf(s, args...)
	}
}

func (l zapGormLogger) Error(_ context.Context, s string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.zap.Sugar().Errorf(s, args...)
	}
}

func (l zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == gormlogger.Silent {
		return
	}
	sql, rows := fc()
	dur := time.Since(begin)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.zap.Warn("gorm query error", zap.Duration("duration", dur), zap.Int64("rows", rows), zap.String("sql", sql), zap.Error(err))
		return
	}
	l.zap.Debug("gorm query", zap.Duration("duration", dur), zap.Int64("rows", rows), zap.String("sql", sql))
}
