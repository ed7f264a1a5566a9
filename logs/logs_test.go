package logs

import (
	"testing"

	"github.com/Trinoooo/pingpong/errs"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	origin := Level()
	defer level.SetLevel(origin)

	assert.Nil(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, Level())

	assert.Nil(t, SetLevel("WARN"))
	assert.Equal(t, zapcore.WarnLevel, Level())

	err := SetLevel("loud")
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
	assert.Equal(t, zapcore.WarnLevel, Level())
}

func TestWrapperFollowsLevel(t *testing.T) {
	origin := Level()
	defer level.SetLevel(origin)

	w := NewWrapper("tester")
	assert.Nil(t, SetLevel("error"))
	assert.False(t, w.logger.Core().Enabled(zapcore.InfoLevel))

	assert.Nil(t, SetLevel("debug"))
	assert.True(t, w.With().logger.Core().Enabled(zapcore.DebugLevel))
}
