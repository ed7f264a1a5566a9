//go:build linux

package transport

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestListenFdCloseOnExec(t *testing.T) {
	ln, err := listen(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)}, 3)
	require.Nil(t, err)
	defer ln.Close()

	raw, err := ln.(*net.TCPListener).SyscallConn()
	require.Nil(t, err)

	var flags int
	var fcntlErr error
	require.Nil(t, raw.Control(func(fd uintptr) {
		flags, fcntlErr = unix.FcntlInt(fd, unix.F_GETFD, 0)
	}))
	require.Nil(t, fcntlErr)
	assert.NotZero(t, flags&unix.FD_CLOEXEC)
}
