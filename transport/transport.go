package transport

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Trinoooo/pingpong/errs"
	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
)

var _ IServerTransport = &Listener{}
var _ ITransport = &Connection{}

type IServerTransport interface {
	Listen() error
	Accept() (*Connection, error)
	Addr() net.Addr
	Close() error
}

type ITransport interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
	LocalAddr() net.Addr
}

// Listener 绑定地址并接受连接，Close 只会真正执行一次
type Listener struct {
	addr     *net.TCPAddr
	backlog  int
	mutex    sync.Mutex
	listener net.Listener
	closed   bool
}

func NewListener(addr string, backlog int) (*Listener, error) {
	if backlog <= 0 {
		return nil, errs.NewInvalidParamErr()
	}

	address, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, errs.NewInvalidParamErr().WithErr(err)
	}

	return &Listener{
		addr:    address,
		backlog: backlog,
	}, nil
}

func (l *Listener) Listen() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return errs.NewBindErr().WithErr(net.ErrClosed)
	}
	if l.listener != nil {
		return nil
	}

	listener, err := listen(l.addr, l.backlog)
	if err != nil {
		return errs.NewBindErr().WithErr(err)
	}

	l.listener = listener
	return nil
}

// Accept blocks until one inbound connection arrives. After Close the returned
// error wraps net.ErrClosed.
func (l *Listener) Accept() (*Connection, error) {
	l.mutex.Lock()
	listener := l.listener
	l.mutex.Unlock()
	if listener == nil {
		return nil, errs.NewAcceptErr().WithErr(net.ErrClosed)
	}

	conn, err := listener.Accept()
	if err != nil {
		return nil, errs.NewAcceptErr().WithErr(err)
	}

	return NewConnection(conn), nil
}

func (l *Listener) Addr() net.Addr {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.listener != nil {
		return l.listener.Addr()
	}
	return l.addr
}

func (l *Listener) Backlog() int {
	return l.backlog
}

func (l *Listener) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if l.listener == nil {
		return nil
	}
	if err := l.listener.Close(); err != nil {
		return errs.NewCloseSocketErr().WithErr(err)
	}
	return nil
}

// Connection 由创建或接受它的一方独占，交互结束时关闭且只关闭一次
type Connection struct {
	conn        net.Conn
	id          string
	readTimeout time.Duration
	closed      atomic.Bool
}

func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		conn: conn,
		id:   uuid.NewString(),
	}
}

// Dial opens a new Connection to addr. timeout 0 means the dial only ends with ctx.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Connection, error) {
	dialer := &net.Dialer{
		Timeout: timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errs.NewConnectionErr().WithErr(err)
	}

	return NewConnection(conn), nil
}

func (c *Connection) Id() string {
	return c.id
}

func (c *Connection) SetReadTimeout(timeout time.Duration) {
	c.readTimeout = timeout
}

// Read is a single read call: it returns whatever the first chunk holds,
// n == 0 with io.EOF when the peer closed without sending.
func (c *Connection) Read(buf []byte) (int, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, errs.NewReadSocketErr().WithErr(err)
		}
	}
	return c.conn.Read(buf)
}

func (c *Connection) Write(buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := c.conn.Write(buf[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Connection) Closed() bool {
	return c.closed.Load()
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return errs.NewCloseSocketErr().WithErr(err)
	}
	return nil
}

// CloseOnDone closes c once ctx is done, which unblocks a pending Accept or Read
// on it. stop releases the watcher and must be called when c is no longer in use.
func CloseOnDone(ctx context.Context, c io.Closer) (stop func()) {
	done := make(chan struct{})
	gopool.Go(func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-done:
		}
	})

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
