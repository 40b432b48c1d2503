package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *zap.Logger
var consoleLogger *zap.Logger // SUCCESS and ERROR lines for the operator
var mu sync.Mutex

const (
	// DefaultDir is where app.log lives unless Init says otherwise.
	DefaultDir = "logs"

	// MaxLogFileSizeMB is the lumberjack rotation threshold.
	MaxLogFileSizeMB = 50
	maxLogFileAge    = 7 // days
)

// Options controls where and how the loggers write.
type Options struct {
	Dir     string
	Console bool
}

func init() {
	if err := Init(Options{Dir: DefaultDir, Console: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize loggers: %v\n", err)
		Logger = zap.NewNop()
		consoleLogger = zap.NewNop()
	}
}

// Init (re)builds the package loggers. Safe to call more than once.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	fileLogger, err := newFileLogger(opts.Dir)
	if err != nil {
		return err
	}

	console := zap.NewNop()
	if opts.Console {
		console, err = newConsoleLogger()
		if err != nil {
			return err
		}
	}

	Logger = fileLogger
	consoleLogger = console
	return nil
}

func newFileLogger(dir string) (*zap.Logger, error) {
	if dir == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename: filepath.Join(dir, "app.log"),
		MaxSize:  MaxLogFileSizeMB,
		MaxAge:   maxLogFileAge,
		Compress: true,
	})

	core := zapcore.NewCore(
		&fileEncoder{Encoder: zapcore.NewConsoleEncoder(fileConfig)},
		writer,
		zapcore.DebugLevel,
	)
	return zap.New(core), nil
}

func newConsoleLogger() (*zap.Logger, error) {
	consoleConfig := zap.NewDevelopmentConfig()
	consoleConfig.EncoderConfig.EncodeLevel = levelEncoder
	consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleConfig.EncoderConfig.EncodeCaller = nil
	consoleConfig.Development = false
	consoleConfig.DisableStacktrace = true
	consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	logger, err := consoleConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build console logger: %w", err)
	}
	return logger, nil
}

// GenerateRequestID returns an ID used to correlate request and response lines.
func GenerateRequestID() string {
	return uuid.NewString()
}

// LogRequest records an outgoing HTTP request in the file log.
func LogRequest(requestID, method, endpoint string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
	}, fields...)
	Logger.Info("HTTP request", allFields...)
}

// LogResponse records an HTTP response. Non-2xx responses also reach the console.
func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", durationMs),
	}, fields...)

	if statusCode >= 200 && statusCode < 300 {
		Logger.Info("HTTP response", allFields...)
		return
	}

	Logger.Error("HTTP response", allFields...)
	if endpoint := endpointField(fields); endpoint != "" {
		consoleLogger.Error(fmt.Sprintf("✗ HTTP request failed [%d] %s", statusCode, endpoint))
	} else {
		consoleLogger.Error(fmt.Sprintf("✗ HTTP request failed [%d]", statusCode))
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func levelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "SUCCESS" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel:
		enc.AppendString(colorRed + "ERROR" + colorReset)
	case zapcore.FatalLevel:
		enc.AppendString(colorRed + "FATAL" + colorReset)
	case zapcore.PanicLevel:
		enc.AppendString(colorRed + "PANIC" + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

// LogInfo writes to the file log only.
func LogInfo(message string, fields ...zap.Field) {
	Logger.Info(message, fields...)
}

// LogStatus writes to the file log and echoes the line on the console.
// Used for the human-readable cycle status lines.
func LogStatus(message string, fields ...zap.Field) {
	Logger.Info(message, fields...)
	consoleLogger.Info(message, fields...)
}

// LogSuccess writes to the file log and prints a ✓ line on the console.
func LogSuccess(message string, fields ...zap.Field) {
	Logger.Info(message, fields...)

	if durationMs := extractDuration(fields); durationMs > 0 {
		consoleLogger.Info(fmt.Sprintf("✓ %s (%dms)", message, durationMs))
	} else {
		consoleLogger.Info("✓ " + message)
	}
}

// LogError writes to the file log and prints a ✗ line on the console.
func LogError(message string, fields ...zap.Field) {
	Logger.Error(message, fields...)

	if durationMs := extractDuration(fields); durationMs > 0 {
		consoleLogger.Error(fmt.Sprintf("✗ %s (%dms)", message, durationMs))
	} else {
		consoleLogger.Error("✗ " + message)
	}
}

func LogWarn(message string, fields ...zap.Field) {
	Logger.Warn(message, fields...)
}

func LogDebug(message string, fields ...zap.Field) {
	Logger.Debug(message, fields...)
}

// LogJSON pretty-prints a JSON payload into the file log at debug level.
func LogJSON(data []byte, label string) {
	var pretty interface{}
	if err := json.Unmarshal(data, &pretty); err == nil {
		if formatted, err := json.MarshalIndent(pretty, "", "  "); err == nil {
			Logger.Debug(label)
			Logger.Sugar().Debugf("\n%s\n", string(formatted))
			return
		}
	}
	Logger.Debug(label, zap.String("response", string(data)))
}

// Sync flushes both loggers.
func Sync() {
	_ = Logger.Sync()
	_ = consoleLogger.Sync()
}

func extractDuration(fields []zap.Field) int64 {
	for _, field := range fields {
		if field.Key == "duration_ms" && field.Type == zapcore.Int64Type {
			return field.Integer
		}
	}
	return 0
}

func endpointField(fields []zap.Field) string {
	for _, field := range fields {
		if field.Key == "endpoint" {
			return field.String
		}
	}
	return ""
}

// fileEncoder renders "time     LEVEL msg\t{json fields}" lines.
type fileEncoder struct {
	zapcore.Encoder
}

func (e *fileEncoder) Clone() zapcore.Encoder {
	return &fileEncoder{Encoder: e.Encoder.Clone()}
}

func (e *fileEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := buffer.NewPool().Get()

	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")
	buf.AppendString(entry.Level.CapitalString())
	buf.AppendString(" ")
	buf.AppendString(entry.Message)

	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, field := range fields {
			field.AddTo(enc)
		}
		if jsonData, err := json.Marshal(enc.Fields); err == nil {
			buf.AppendString("\t")
			buf.AppendString(string(jsonData))
		}
	}

	buf.AppendString("\n")
	return buf, nil
}
