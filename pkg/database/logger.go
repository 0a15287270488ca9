package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// gormLogger routes GORM output through the service logger
type gormLogger struct {
	logger        interfaces.Logger
	slowThreshold time.Duration
	debug         bool
}

// NewGormLogger adapts log for GORM. Errors are always logged, queries slower
// than slowThreshold are logged as warnings, and every query is traced when
// debug is set.
func NewGormLogger(log interfaces.Logger, slowThreshold time.Duration, debug bool) gormlogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &gormLogger{
		logger:        log.WithFields(interfaces.String("component", "gorm")),
		slowThreshold: slowThreshold,
		debug:         debug,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Info(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Warn(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Error(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []interfaces.Field{
		interfaces.String("sql", sql),
		interfaces.Int64("rows", rows),
		interfaces.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.Error("sql error", append(fields, interfaces.Error(err))...)
	case elapsed > l.slowThreshold:
		l.logger.Warn("slow sql query", fields...)
	case l.debug:
		l.logger.Debug("sql trace", fields...)
	}
}
