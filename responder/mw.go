package responder

import (
	"github.com/Trinoooo/pingpong/consts"
	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/logs"
	"github.com/Trinoooo/pingpong/message"
	"github.com/Trinoooo/pingpong/metrics"
	"github.com/luci/go-render/render"
	"go.uber.org/zap"
)

// HandleFunc 判断收到的payload是否为期望的ping
type HandleFunc func(payload []byte) bool

type MiddlewareFunc func(handleFn HandleFunc) HandleFunc

func LogMw(log *logs.Wrapper) MiddlewareFunc {
	return func(handleFn HandleFunc) HandleFunc {
		return func(payload []byte) bool {
			log.Debug("validate payload", zap.String(consts.LogFieldPayload, render.Render(payload)))
			matched := handleFn(payload)
			log.Debug("validate result", zap.Bool("matched", matched))
			return matched
		}
	}
}

func MetricsMw(mh *metrics.MetricsHelper) MiddlewareFunc {
	return func(handleFn HandleFunc) HandleFunc {
		return func(payload []byte) bool {
			matched := handleFn(payload)
			mh.IncMessage(matched)
			return matched
		}
	}
}

// ParamsValidateMw 空payload和超过ping长度的payload直接判为不匹配，不再进入校验
func ParamsValidateMw(log *logs.Wrapper) MiddlewareFunc {
	maxLength := len(message.Ping)
	return func(handleFn HandleFunc) HandleFunc {
		return func(payload []byte) bool {
			payloadLength := len(payload)
			if payloadLength <= 0 || payloadLength > maxLength {
				e := errs.NewInvalidParamErr()
				log.Error(e.Error(), zap.String(consts.LogFieldParams, "payloadLength"), zap.Int(consts.LogFieldValue, payloadLength))
				return false
			}
			return handleFn(payload)
		}
	}
}
