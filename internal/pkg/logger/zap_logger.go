package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ILogger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
	Close() error
}

type ZapLogger struct {
	logger   *zap.Logger
	rotators []*lumberjack.Logger
	stop     chan struct{}
	once     sync.Once
}

func newRotator(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,   // Megabytes
		MaxBackups: 30,   // Files
		MaxAge:     30,   // Days
		Compress:   true, // gzip
	}
}

func jsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

// NewZapLogger writes INFO records to file_info.log, ERROR and above to
// file_error.log and everything to stdout. Both files rotate at local midnight.
func NewZapLogger(logFolder string, isProd bool) *ZapLogger {
	if err := os.MkdirAll(logFolder, 0o755); err != nil {
		// Console still works; lumberjack retries the directory on first write.
		os.Stderr.WriteString("logger: cannot create log folder: " + err.Error() + "\n")
	}

	infoRotator := newRotator(filepath.Join(logFolder, "file_info.log"))
	errorRotator := newRotator(filepath.Join(logFolder, "file_error.log"))

	encoder := jsonEncoder()

	infoCore := zapcore.NewCore(
		encoder,
		zapcore.AddSync(infoRotator),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l == zapcore.InfoLevel }),
	)
	errorCore := zapcore.NewCore(
		encoder,
		zapcore.AddSync(errorRotator),
		zap.ErrorLevel,
	)

	var consoleEncoder zapcore.Encoder
	if isProd {
		consoleEncoder = encoder
	} else {
		devConfig := zap.NewDevelopmentEncoderConfig()
		devConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(devConfig)
	}
	consoleLevel := zap.DebugLevel
	if isProd {
		consoleLevel = zap.InfoLevel
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), consoleLevel)

	core := zapcore.NewTee(infoCore, errorCore, consoleCore)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zap.ErrorLevel)) // Skip 1 to point to caller of wrapper

	zl := &ZapLogger{
		logger:   l,
		rotators: []*lumberjack.Logger{infoRotator, errorRotator},
		stop:     make(chan struct{}),
	}
	go zl.rotateDaily()
	return zl
}

// NewIsolatedLogger creates a logger that ONLY writes to the file, not console.
// Used for the clinical interaction audit trail.
func NewIsolatedLogger(logFilePath string) *ZapLogger {
	rotator := newRotator(logFilePath)

	fileCore := zapcore.NewCore(
		jsonEncoder(),
		zapcore.AddSync(rotator),
		zap.InfoLevel,
	)

	l := zap.New(fileCore, zap.AddCaller(), zap.AddCallerSkip(1))

	zl := &ZapLogger{
		logger:   l,
		rotators: []*lumberjack.Logger{rotator},
		stop:     make(chan struct{}),
	}
	go zl.rotateDaily()
	return zl
}

// NewNopLogger discards everything. Handy in tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop(), stop: make(chan struct{})}
}

func (l *ZapLogger) rotateDaily() {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			for _, r := range l.rotators {
				if err := r.Rotate(); err != nil {
					l.logger.Warn("log rotation failed", zap.Error(err))
				}
			}
		case <-l.stop:
			timer.Stop()
			return
		}
	}
}

func fields(module string, details map[string]interface{}) []zap.Field {
	if details == nil {
		details = make(map[string]interface{})
	}
	return []zap.Field{zap.String("module", module), zap.Any("details", details)}
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.logger.Debug(message, fields(module, details)...)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.logger.Info(message, fields(module, details)...)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.logger.Warn(message, fields(module, details)...)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	fs := fields(module, details)
	// Keep the raw error next to the details so stack traces stay searchable
	if err, ok := details["error"]; ok {
		fs = append(fs, zap.Any("error_ref", err))
	}
	l.logger.Error(message, fs...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func (l *ZapLogger) Close() error {
	l.once.Do(func() { close(l.stop) })
	_ = l.logger.Sync()
	var firstErr error
	for _, r := range l.rotators {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
