package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	sugar *zap.SugaredLogger

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *LoggerRotation
}

type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type LoggerOption func(*Logger)

// WithJSON switches the encoder to one JSON object per line.
func WithJSON() LoggerOption {
	return func(l *Logger) {
		l.JSON = true
	}
}

// WithNoColor disables ANSI colors on terminal output.
func WithNoColor() LoggerOption {
	return func(l *Logger) {
		l.NoColor = true
	}
}

// WithRotation overrides the rotation settings of the log file.
func WithRotation(rotation *LoggerRotation) LoggerOption {
	return func(l *Logger) {
		l.Rotation = rotation
	}
}

func NewLogger(name string, level LogLevel, file string, noTerminal bool, opts ...LoggerOption) *Logger {
	l := &Logger{
		Name:       name,
		Level:      level,
		File:       file,
		NoTerminal: noTerminal,

		TimeFormat: "2006-01-02 15:04:05",
		Rotation: &LoggerRotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
			Compress:   false,
		},
	}

	for _, opt := range opts {
		opt(l)
	}

	l.setupCore()

	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{
		sugar: zap.NewNop().Sugar(),
		Level: Fatal,
	}
}

func (l *Logger) setupCore() {
	var writers []io.Writer

	if !l.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if l.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		}
		writers = append(writers, fileWriter)
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	config := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "service",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(l.TimeFormat),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeLevel:    l.encodeLevel,
	}

	var encoder zapcore.Encoder
	if l.JSON {
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(config)
	} else {
		config.ConsoleSeparator = " "
		encoder = zapcore.NewConsoleEncoder(config)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(io.MultiWriter(writers...)), l.Level.zapLevel())
	logger := zap.New(core)
	if l.Name != "" {
		logger = logger.Named(l.Name)
	}

	l.sugar = logger.Sugar()
}

func (l *Logger) encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	ll := fromZapLevel(level)
	if l.NoTerminal || l.NoColor {
		enc.AppendString(ll.String())
		return
	}

	enc.AppendString(Color(ll) + ll.String() + ColorReset)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugf(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infof(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnf(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorf(msg, args...)
}

// Fatal logs the message and exits the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.sugar.Fatalf(msg, args...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) Named(name string) *Logger {
	fullName := name
	if l.Name != "" {
		fullName = l.Name + "/" + name
	}

	return &Logger{
		sugar: l.sugar.Named(name), // Share the same core

		Name:  fullName,
		Level: l.Level,

		TimeFormat: l.TimeFormat,
		File:       l.File,
		NoColor:    l.NoColor,
		NoTerminal: l.NoTerminal,
		JSON:       l.JSON,
		Rotation:   l.Rotation,
	}
}
