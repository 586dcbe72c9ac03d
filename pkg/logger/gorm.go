package logger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// Gorm adapts the context logger to gorm's logger interface. Queries slower
// than SlowThreshold are logged at warn level; others only at trace level.
type Gorm struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

func NewGorm(level gormlogger.LogLevel) *Gorm {
	return &Gorm{Level: level, SlowThreshold: 200 * time.Millisecond}
}

func (g *Gorm) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *g
	copied.Level = level
	return &copied
}

func (g *Gorm) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.Level >= gormlogger.Info {
		l := Ctx(ctx)
		l.Info().Msgf(msg, args...)
	}
}

func (g *Gorm) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.Level >= gormlogger.Warn {
		l := Ctx(ctx)
		l.Warn().Msgf(msg, args...)
	}
}

func (g *Gorm) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.Level >= gormlogger.Error {
		l := Ctx(ctx)
		l.Error().Msgf(msg, args...)
	}
}

func (g *Gorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	l := Ctx(ctx)

	var evt *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && g.Level >= gormlogger.Error:
		evt = l.Error().Err(err)
	case elapsed > g.SlowThreshold && g.SlowThreshold > 0 && g.Level >= gormlogger.Warn:
		evt = l.Warn().Str("slow", elapsed.String())
	case g.Level >= gormlogger.Info:
		evt = l.Trace()
	default:
		return
	}
	sql, rows := fc()
	evt.Str("sql", sql).Int64("rows", rows).Dur("elapsed", elapsed).Msg("gorm query")
}
