package initiator

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"

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

// Result 一次交互的结果，Matched 为 false 时表示没有收到 pong，并不是错误
type Result struct {
	ExchangeId string
	Sent       []byte
	Reply      []byte
	Matched    bool
}

type Initiator struct {
	cfg     *config.Config
	log     *logs.Wrapper
	metrics *metrics.MetricsHelper
}

func NewInitiator(cfg *config.Config, mh *metrics.MetricsHelper) *Initiator {
	if mh == nil {
		mh = metrics.NewMetricsHelper(consts.RoleInitiator, "", cfg.MetricsJob)
	}
	return &Initiator{
		cfg:     cfg,
		log:     logs.NewWrapper(consts.RoleInitiator),
		metrics: mh,
	}
}

func (i *Initiator) Connect(ctx context.Context, host string, port int) (*transport.Connection, error) {
	if port <= 0 || port > 65535 {
		e := errs.NewInvalidParamErr()
		i.log.Error(e.Error(), zap.String(consts.LogFieldParams, "port"), zap.Int(consts.LogFieldValue, port))
		return nil, e
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := transport.Dial(ctx, addr, i.cfg.DialTimeout)
	if err != nil {
		i.metrics.IncError(err)
		i.log.Error(err.Error(), zap.String(consts.LogFieldAddr, addr))
		return nil, err
	}
	conn.SetReadTimeout(i.cfg.ReadTimeout)

	i.metrics.IncConnection()
	i.log.Info("connected", zap.String(consts.LogFieldAddr, addr), zap.String(consts.LogFieldExchangeId, conn.Id()))
	return conn, nil
}

func (i *Initiator) SendPing(conn *transport.Connection) error {
	return i.send(conn, message.Ping.Bytes())
}

func (i *Initiator) send(conn *transport.Connection, payload []byte) error {
	if _, err := conn.Write(payload); err != nil {
		e := errs.NewWriteSocketErr().WithErr(err)
		i.metrics.IncError(e)
		i.log.Error(e.Error(), zap.String(consts.LogFieldExchangeId, conn.Id()))
		return e
	}
	i.log.Info("payload sent", zap.String(consts.LogFieldExchangeId, conn.Id()), zap.ByteString(consts.LogFieldPayload, payload))
	return nil
}

// ReceiveReply performs one bounded read. An empty result means the peer closed
// without sending anything.
func (i *Initiator) ReceiveReply(conn *transport.Connection) ([]byte, error) {
	buf := make([]byte, i.cfg.ReadBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		e := errs.NewReadSocketErr().WithErr(err)
		i.metrics.IncError(e)
		i.log.Error(e.Error(), zap.String(consts.LogFieldExchangeId, conn.Id()))
		return nil, e
	}
	return []byte{}, nil
}

func Validate(data []byte) bool {
	return message.IsPong(data)
}

// Run does one ping exchange against the configured address.
func (i *Initiator) Run(ctx context.Context) (*Result, error) {
	return i.Exchange(ctx, message.Ping.Bytes())
}

// Exchange connects, sends payload, reads a single reply and checks it is pong.
// The connection is closed exactly once whatever the outcome; transport failures
// are returned, a wrong reply is only reported through Result.Matched.
// Cancelling ctx closes the connection and Exchange returns ctx.Err().
func (i *Initiator) Exchange(ctx context.Context, payload []byte) (result *Result, err error) {
	// 空payload不会产生任何数据，两端都会一直阻塞在读上
	if len(payload) <= 0 {
		e := errs.NewInvalidParamErr()
		i.log.Error(e.Error(), zap.String(consts.LogFieldParams, "payloadLength"), zap.Int(consts.LogFieldValue, len(payload)))
		return nil, e
	}

	conn, err := i.Connect(ctx, i.cfg.Host, i.cfg.Port)
	if err != nil {
		return nil, err
	}

	log := i.log.With(zap.String(consts.LogFieldExchangeId, conn.Id()))
	defer func() {
		if e := conn.Close(); e != nil {
			log.Error(e.Error())
			if err != nil {
				err = perrors.Wrap(err, e.Error())
			} else {
				err = e
			}
			return
		}
		log.Info("closed socket")
	}()
	stop := transport.CloseOnDone(ctx, conn)
	defer stop()

	if err = i.send(conn, payload); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	reply, err := i.ReceiveReply(conn)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("exchange cancelled")
			return nil, ctx.Err()
		}
		return nil, err
	}
	log.Debug("data received", zap.ByteString(consts.LogFieldPayload, reply))

	result = &Result{
		ExchangeId: conn.Id(),
		Sent:       payload,
		Reply:      reply,
		Matched:    Validate(reply),
	}
	i.metrics.IncMessage(result.Matched)
	if result.Matched {
		log.Info("successfully received pong")
	} else {
		log.Warn("no pong received", zap.ByteString(consts.LogFieldPayload, reply))
	}
	return result, nil
}
