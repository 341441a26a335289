package walk

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// --------------------------------------------------------------------------
// Progress monitoring
// --------------------------------------------------------------------------

// ProgressFn is called after every record a walk produces.
type ProgressFn func(stats Stats)

// Stats holds traversal statistics for a single walk.
type Stats struct {
	DirsVisited     int64         // Records produced
	SubdirsSeen     int64         // Names placed in Record.Dirs
	NondirsSeen     int64         // Names placed in Record.Nondirs
	Errors          int64         // Listing failures (at most one per walk)
	MaxDepthReached int           // Deepest Record.Depth produced
	ElapsedTime     time.Duration // Time since the first listing
	EntriesPerSec   float64       // Classified entries per second
}

// updateDerivedStats calculates derived statistics like rates.
func (s *Stats) updateDerivedStats() {
	entries := s.SubdirsSeen + s.NondirsSeen
	elapsedSec := s.ElapsedTime.Seconds()
	if elapsedSec > 0 && entries > 0 {
		s.EntriesPerSec = float64(entries) / elapsedSec
	} else {
		s.EntriesPerSec = 0
	}
}

// LoggingProgress returns a ProgressFn that logs each update at debug level.
func LoggingProgress(logger *zap.Logger) ProgressFn {
	return func(stats Stats) {
		logger.Debug("walk progress",
			zap.Int64("dirs_visited", stats.DirsVisited),
			zap.Int64("entries", stats.SubdirsSeen+stats.NondirsSeen),
			zap.Int("max_depth_reached", stats.MaxDepthReached),
			zap.Duration("elapsed", stats.ElapsedTime),
			zap.Float64("entries_per_sec", stats.EntriesPerSec),
		)
	}
}

// --------------------------------------------------------------------------
// Configuration types
// --------------------------------------------------------------------------

// LogLevel defines the verbosity of logging.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Options configures a walk. The zero value walks the host file system with
// an error-level logger.
type Options struct {
	FS       FS              // Backend to list through; a fresh HostFS when nil
	Context  context.Context // Checked before every listing; nil means never cancelled
	Logger   *zap.Logger     // Used as is when set
	LogLevel LogLevel        // Level of the logger built when Logger is nil
	Progress ProgressFn      // Called after each record

	// BufferSize is the scratch buffer size of the HostFS built when FS is
	// nil. Zero uses the default.
	BufferSize int
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	var config zap.Config

	switch level {
	case LogLevelError:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case LogLevelWarn:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case LogLevelInfo:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case LogLevelDebug:
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
