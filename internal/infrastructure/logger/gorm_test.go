package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("error is logged", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)
		gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("syntax"))
		assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)
		gl.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("slow query warns without sql when disabled", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond), WithSQL(false))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		entries := recorded.FilterMessage("Slow SQL").All()
		if assert.Len(t, entries, 1) {
			assert.NotContains(t, entries[0].ContextMap(), "sql")
		}
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("x"))
		assert.Equal(t, 0, recorded.Len())
	})

	t.Run("info level logs queries with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Info)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-7")
		gl.Trace(ctx, time.Now(), sqlFn, nil)
		entries := recorded.FilterMessage("SQL Query").All()
		if assert.Len(t, entries, 1) {
			assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
			assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
		}
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
}
