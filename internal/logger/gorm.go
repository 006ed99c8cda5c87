package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter направляет логи GORM в slog.
// SQL запросы пишутся на уровне debug, медленные и ошибочные на warn.
type GormAdapter struct {
	log           *slog.Logger
	slowThreshold time.Duration
}

var _ gormlogger.Interface = (*GormAdapter)(nil)

// NewGormAdapter создает адаптер. slowThreshold == 0 отключает предупреждения о медленных запросах.
func NewGormAdapter(log *slog.Logger, slowThreshold time.Duration) *GormAdapter {
	if log == nil {
		log = Discard()
	}
	return &GormAdapter{log: log, slowThreshold: slowThreshold}
}

// LogMode уровень управляется slog, поэтому возвращаем сам адаптер
func (a *GormAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return a
}

func (a *GormAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.log.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.log.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *GormAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.log.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace логирует выполненный SQL запрос
func (a *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.log.WarnContext(ctx, "query error",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		a.log.WarnContext(ctx, "slow query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"threshold", a.slowThreshold)
	default:
		a.log.DebugContext(ctx, "sql query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds())
	}
}
