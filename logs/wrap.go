package logs

import (
	"github.com/Trinoooo/pingpong/consts"
	"go.uber.org/zap"
)

type Wrapper struct {
	logger *zap.Logger
}

func NewWrapper(role string, fields ...zap.Field) *Wrapper {
	commonFields := append([]zap.Field{zap.String(consts.LogFieldRole, role)}, fields...)
	return &Wrapper{
		logger: Logger.WithOptions(zap.AddCallerSkip(1)).With(commonFields...),
	}
}

func (w *Wrapper) With(fields ...zap.Field) *Wrapper {
	return &Wrapper{
		logger: w.logger.With(fields...),
	}
}

func (w *Wrapper) Debug(msg string, fields ...zap.Field) {
	w.logger.Debug(msg, fields...)
}

func (w *Wrapper) Info(msg string, fields ...zap.Field) {
	w.logger.Info(msg, fields...)
}

func (w *Wrapper) Warn(msg string, fields ...zap.Field) {
	w.logger.Warn(msg, fields...)
}

func (w *Wrapper) Error(msg string, fields ...zap.Field) {
	w.logger.Error(msg, fields...)
}
