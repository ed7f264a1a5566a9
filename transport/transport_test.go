package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/Trinoooo/pingpong/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListener(t *testing.T) *Listener {
	l, err := NewListener("127.0.0.1:0", 3)
	require.Nil(t, err)
	require.Nil(t, l.Listen())
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestNewListenerInvalid(t *testing.T) {
	_, err := NewListener("127.0.0.1:0", 0)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))

	_, err = NewListener("127.0.0.1:not-a-port", 3)
	assert.Equal(t, int64(errs.InvalidParamErrCode), errs.GetCode(err))
}

func TestListenIdempotent(t *testing.T) {
	l := newTestListener(t)
	addr := l.Addr().String()
	assert.Nil(t, l.Listen())
	assert.Equal(t, addr, l.Addr().String())
	assert.Equal(t, 3, l.Backlog())
	assert.NotEqual(t, 0, l.Addr().(*net.TCPAddr).Port)
}

func TestBindConflict(t *testing.T) {
	l := newTestListener(t)

	other, err := NewListener(l.Addr().String(), 3)
	require.Nil(t, err)
	err = other.Listen()
	assert.Equal(t, int64(errs.BindErrCode), errs.GetCode(err))
}

func TestAcceptAndExchange(t *testing.T) {
	l := newTestListener(t)

	accepted := make(chan *Connection, 1)
	go func() {
		conn, err := l.Accept()
		if err == nil {
			accepted <- conn
		}
		close(accepted)
	}()

	client, err := Dial(context.Background(), l.Addr().String(), time.Second)
	require.Nil(t, err)
	defer client.Close()

	server, ok := <-accepted
	require.True(t, ok)
	defer server.Close()
	assert.NotEqual(t, client.Id(), server.Id())
	assert.Equal(t, client.LocalAddr().String(), server.RemoteAddr().String())

	n, err := client.Write([]byte("ping"))
	assert.Nil(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	n, err = server.Read(buf)
	assert.Nil(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestReadAfterPeerClose(t *testing.T) {
	l := newTestListener(t)

	go func() {
		conn, err := l.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()

	client, err := Dial(context.Background(), l.Addr().String(), time.Second)
	require.Nil(t, err)
	defer client.Close()

	n, err := client.Read(make([]byte, 16))
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReadTimeout(t *testing.T) {
	l := newTestListener(t)

	go func() {
		conn, err := l.Accept()
		if err == nil {
			time.Sleep(500 * time.Millisecond)
			_ = conn.Close()
		}
	}()

	client, err := Dial(context.Background(), l.Addr().String(), time.Second)
	require.Nil(t, err)
	defer client.Close()

	client.SetReadTimeout(50 * time.Millisecond)
	_, err = client.Read(make([]byte, 16))
	var ne net.Error
	require.True(t, errors.As(err, &ne))
	assert.True(t, ne.Timeout())
}

func TestConnectionCloseOnce(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	conn := NewConnection(a)
	assert.False(t, conn.Closed())
	assert.Nil(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.Nil(t, conn.Close())
}

func TestDialRefused(t *testing.T) {
	l := newTestListener(t)
	addr := l.Addr().String()
	require.Nil(t, l.Close())

	_, err := Dial(context.Background(), addr, time.Second)
	assert.Equal(t, int64(errs.ConnectionErrCode), errs.GetCode(err))
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Dial(ctx, "127.0.0.1:10001", 0)
	assert.Equal(t, int64(errs.ConnectionErrCode), errs.GetCode(err))
}

func TestAcceptAfterClose(t *testing.T) {
	l := newTestListener(t)
	assert.Nil(t, l.Close())
	assert.Nil(t, l.Close())

	_, err := l.Accept()
	assert.Equal(t, int64(errs.AcceptErrCode), errs.GetCode(err))
	assert.True(t, errors.Is(err, net.ErrClosed))

	err = l.Listen()
	assert.Equal(t, int64(errs.BindErrCode), errs.GetCode(err))
}

func TestCloseUnblocksAccept(t *testing.T) {
	l := newTestListener(t)

	result := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		result <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.Nil(t, l.Close())

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, net.ErrClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("accept still blocked after close")
	}
}

func TestCloseOnDoneUnblocksRead(t *testing.T) {
	l := newTestListener(t)

	client, err := Dial(context.Background(), l.Addr().String(), time.Second)
	require.Nil(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stop := CloseOnDone(ctx, client)
	defer stop()

	result := make(chan error, 1)
	go func() {
		_, err := client.Read(make([]byte, 16))
		result <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		assert.True(t, errors.Is(err, net.ErrClosed))
		assert.True(t, client.Closed())
	case <-time.After(2 * time.Second):
		t.Fatal("read still blocked after ctx cancel")
	}
}

func TestCloseOnDoneStopped(t *testing.T) {
	l := newTestListener(t)

	ctx, cancel := context.WithCancel(context.Background())
	stop := CloseOnDone(ctx, l)
	stop()
	stop()
	cancel()

	time.Sleep(50 * time.Millisecond)
	client, err := Dial(context.Background(), l.Addr().String(), time.Second)
	require.Nil(t, err)
	assert.Nil(t, client.Close())
}
