package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.Mutex
	global = zap.NewNop()
	rotate *lumberjack.Logger
)

// New строит zap логгер. Если file задан, пишет JSON в файл с ротацией,
// иначе в stderr.
func New(level, file string) (*zap.Logger, *lumberjack.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	// Настройка формата времени
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var (
		ws zapcore.WriteSyncer
		lj *lumberjack.Logger
	)
	if file != "" {
		lj = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
		}
		ws = zapcore.AddSync(lj)
	} else {
		ws = zapcore.Lock(os.Stderr)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), ws, zap.NewAtomicLevelAt(lvl))
	return zap.New(core, zap.AddCaller()), lj, nil
}

// Init инициализирует глобальный логгер
func Init(level, file string) error {
	l, lj, err := New(level, file)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	global, rotate = l, lj
	return nil
}

// L глобальный логгер, до Init это zap.NewNop
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = global.Sync()
	if rotate != nil {
		_ = rotate.Close()
		rotate = nil
	}
}

// RequestLogger — middleware-логер для входящих HTTP-запросов.
func RequestLogger(l *zap.Logger) gin.HandlerFunc {
	sugar := l.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		uri := c.Request.RequestURI
		method := c.Request.Method

		c.Next()

		sugar.Infow("request",
			"uri", uri,
			"method", method,
			"duration", time.Since(start),
			"status", c.Writer.Status(),
			"size", c.Writer.Size(),
		)
	}
}
