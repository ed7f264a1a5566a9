package logs

import (
	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func init() {
	var cfg zap.Config
	if utils.IsTest() {
		cfg = zap.NewDevelopmentConfig()
		level.SetLevel(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}
	// 所有logger共享同一个level，运行时调整即可全局生效
	cfg.Level = level

	var err error
	Logger, err = cfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
}

// SetLevel accepts zap level names: debug, info, warn, error...
func SetLevel(lvl string) error {
	l, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return errs.NewInvalidParamErr().WithErr(err)
	}
	level.SetLevel(l)
	return nil
}

func Level() zapcore.Level {
	return level.Level()
}

func Sync() {
	_ = Logger.Sync()
}
