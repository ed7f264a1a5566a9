package responder

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync/atomic"

	"github.com/Trinoooo/pingpong/config"
	"github.com/Trinoooo/pingpong/consts"
	"github.com/Trinoooo/pingpong/errs"
	"github.com/Trinoooo/pingpong/logs"
	"github.com/Trinoooo/pingpong/message"
	"github.com/Trinoooo/pingpong/metrics"
	"github.com/Trinoooo/pingpong/transport"
	perrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

type Responder struct {
	cfg     *config.Config
	log     *logs.Wrapper
	metrics *metrics.MetricsHelper
	mws     []MiddlewareFunc
	state   atomic.Int32
}

func NewResponder(cfg *config.Config, mh *metrics.MetricsHelper) *Responder {
	if mh == nil {
		mh = metrics.NewMetricsHelper(consts.RoleResponder, "", cfg.MetricsJob)
	}
	r := &Responder{
		cfg:     cfg,
		log:     logs.NewWrapper(consts.RoleResponder),
		metrics: mh,
	}
	r.withMiddleware(
		ParamsValidateMw(r.log),
		MetricsMw(mh),
		LogMw(r.log),
	)
	return r
}

func (r *Responder) withMiddleware(mws ...MiddlewareFunc) {
	r.mws = append(r.mws, mws...)
}

// Use appends middlewares around payload validation, the last one is the outermost.
func (r *Responder) Use(mws ...MiddlewareFunc) {
	r.withMiddleware(mws...)
}

func (r *Responder) State() State {
	return State(r.state.Load())
}

func (r *Responder) setState(s State) {
	old := State(r.state.Swap(int32(s)))
	r.log.Debug("state transition", zap.String(consts.LogFieldState, old.String()+" -> "+s.String()))
}

// BindAndListen binds host:port with a pending-connection queue of backlog.
// Port 0 picks a free port.
func BindAndListen(host string, port, backlog int) (*transport.Listener, error) {
	if port < 0 || port > 65535 {
		return nil, errs.NewInvalidParamErr()
	}

	listener, err := transport.NewListener(net.JoinHostPort(host, strconv.Itoa(port)), backlog)
	if err != nil {
		return nil, err
	}
	if err = listener.Listen(); err != nil {
		return nil, err
	}
	return listener, nil
}

func (r *Responder) AcceptOnce(listener *transport.Listener) (*transport.Connection, net.Addr, error) {
	r.log.Info("waiting to accept a connection", zap.String(consts.LogFieldAddr, listener.Addr().String()))
	conn, err := listener.Accept()
	if err != nil {
		return nil, nil, err
	}
	conn.SetReadTimeout(r.cfg.ReadTimeout)

	r.metrics.IncConnection()
	r.log.Info("accepted a connection",
		zap.String(consts.LogFieldRemoteAddr, conn.RemoteAddr().String()),
		zap.String(consts.LogFieldExchangeId, conn.Id()))
	return conn, conn.RemoteAddr(), nil
}

// ReceiveMessage performs one bounded read, empty when the peer closed immediately.
func (r *Responder) ReceiveMessage(conn *transport.Connection) ([]byte, error) {
	buf := make([]byte, r.cfg.ReadBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.NewReadSocketErr().WithErr(err)
	}
	return []byte{}, nil
}

func Validate(data []byte) bool {
	return message.IsPing(data)
}

func (r *Responder) SendPong(conn *transport.Connection) error {
	if _, err := conn.Write(message.Pong.Bytes()); err != nil {
		return errs.NewWriteSocketErr().WithErr(err)
	}
	return nil
}

// Run binds the configured address and serves until one ping is answered.
func (r *Responder) Run(ctx context.Context) error {
	listener, err := BindAndListen(r.cfg.Host, r.cfg.Port, r.cfg.Backlog)
	if err != nil {
		r.metrics.IncError(err)
		r.log.Error(err.Error(), zap.String(consts.LogFieldAddr, r.cfg.Addr()))
		return err
	}
	r.log.Info("socket listening", zap.String(consts.LogFieldAddr, listener.Addr().String()), zap.Int("backlog", listener.Backlog()))
	return r.Serve(ctx, listener)
}

// Serve takes ownership of listener and releases it on every exit path.
// It returns nil once a ping was answered, ctx.Err() when cancelled, or the
// accept error that stopped the loop.
func (r *Responder) Serve(ctx context.Context, listener *transport.Listener) (err error) {
	defer func() {
		if e := listener.Close(); e != nil {
			r.log.Error(e.Error())
			if err != nil {
				err = perrors.Wrap(err, e.Error())
			} else {
				err = e
			}
			return
		}
		r.log.Info("listener closed")
	}()

	// ctx 结束时关闭listener，打断阻塞中的Accept
	stop := transport.CloseOnDone(ctx, listener)
	defer stop()

	handler := r.buildHandler()
	for {
		r.setState(StateWaiting)
		conn, remote, err := r.AcceptOnce(listener)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Info("responder cancelled")
				return ctx.Err()
			}
			r.metrics.IncError(err)
			r.log.Error(err.Error())
			return err
		}

		r.setState(StateAccepted)
		if r.serve(ctx, conn, remote, handler) {
			r.setState(StateDone)
			return nil
		}
		if ctx.Err() != nil {
			r.log.Info("responder cancelled")
			return ctx.Err()
		}
	}
}

func (r *Responder) buildHandler() HandleFunc {
	handler := HandleFunc(Validate)
	for _, mw := range r.mws {
		handler = mw(handler)
	}
	return handler
}

// serve handles one accepted connection and always closes it. It reports true
// only when the payload was ping and pong was written back. Cancelling ctx
// closes the connection and unblocks a pending read.
func (r *Responder) serve(ctx context.Context, conn *transport.Connection, remote net.Addr, handler HandleFunc) bool {
	log := r.log.With(
		zap.String(consts.LogFieldExchangeId, conn.Id()),
		zap.String(consts.LogFieldRemoteAddr, remote.String()),
	)
	defer func() {
		if e := conn.Close(); e != nil {
			log.Error(e.Error())
			return
		}
		log.Info("closed socket")
	}()
	stop := transport.CloseOnDone(ctx, conn)
	defer stop()

	payload, err := r.ReceiveMessage(conn)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		r.metrics.IncError(err)
		log.Warn(err.Error())
		return false
	}

	matched := handler(payload)
	r.setState(StateValidated)
	if !matched {
		log.Info("not a ping, drop connection", zap.ByteString(consts.LogFieldPayload, payload))
		return false
	}
	log.Info("received ping")

	if err = r.SendPong(conn); err != nil {
		if ctx.Err() != nil {
			return false
		}
		r.metrics.IncError(err)
		log.Warn(err.Error())
		return false
	}
	log.Info("sent pong")
	return true
}
