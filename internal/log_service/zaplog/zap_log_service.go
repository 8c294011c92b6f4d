package zaplog

import (
	"fmt"

	"github.com/AnishMulay/fatstore/internal/log_service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogService renders LogEvents through a zap.Logger. Metadata keys become
// structured fields.
type ZapLogService struct {
	nodeID string
	logger *zap.Logger
	level  zap.AtomicLevel
}

func NewZapLogService(nodeID string, minLogLevel string, development bool) (*ZapLogService, error) {
	level := zap.NewAtomicLevelAt(toZapLevel(minLogLevel))

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building zap logger: %w", err)
	}

	return &ZapLogService{
		nodeID: nodeID,
		logger: logger.With(zap.String("node", nodeID)),
		level:  level,
	}, nil
}

// NewFromLogger wraps an existing logger. The level of the returned service
// only gates events before they reach the logger's own core.
func NewFromLogger(logger *zap.Logger, nodeID string) *ZapLogService {
	return &ZapLogService{
		nodeID: nodeID,
		logger: logger.With(zap.String("node", nodeID)),
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

func (zs *ZapLogService) SetMinLogLevel(level string) {
	zs.level.SetLevel(toZapLevel(level))
}

func (zs *ZapLogService) Sync() error {
	return zs.logger.Sync()
}

func toZapLevel(level string) zapcore.Level {
	switch log_service.GetLevelValue(level) {
	case log_service.DebugLevelValue:
		return zapcore.DebugLevel
	case log_service.WarnLevelValue:
		return zapcore.WarnLevel
	case log_service.ErrorLevelValue:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func fields(event log_service.LogEvent) []zap.Field {
	keys := event.SortedKeys()
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, event.Metadata[k]))
	}
	return out
}

func (zs *ZapLogService) write(lvl zapcore.Level, event log_service.LogEvent) {
	if !zs.level.Enabled(lvl) {
		return
	}
	if ce := zs.logger.Check(lvl, event.Message); ce != nil {
		ce.Write(fields(event)...)
	}
}

func (zs *ZapLogService) Debug(event log_service.LogEvent) {
	zs.write(zapcore.DebugLevel, event)
}

func (zs *ZapLogService) Info(event log_service.LogEvent) {
	zs.write(zapcore.InfoLevel, event)
}

func (zs *ZapLogService) Warn(event log_service.LogEvent) {
	zs.write(zapcore.WarnLevel, event)
}

func (zs *ZapLogService) Error(event log_service.LogEvent) {
	zs.write(zapcore.ErrorLevel, event)
}

var _ log_service.LogService = (*ZapLogService)(nil)
