//go:build linux

package transport

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// listen 手动创建socket，以便把backlog传给listen(2)；net.Listen 固定使用系统上限
func listen(addr *net.TCPAddr, backlog int) (net.Listener, error) {
	ip4 := addr.IP.To4()
	if addr.IP != nil && ip4 == nil {
		// ipv6 走标准库，backlog 由系统决定
		return net.ListenTCP("tcp", addr)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, fmt.Errorf("socket create: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip4 != nil {
		copy(sa.Addr[:], ip4)
	}

	// same as net.Listen, lets a restarted responder rebind while old sockets sit in TIME_WAIT
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("setsockopt: %w", err)
	}
	if err = unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	if err = unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	// FileListener dups the fd, the original is released with f
	f := os.NewFile(uintptr(fd), fmt.Sprintf("tcp:%s", addr))
	defer f.Close()
	return net.FileListener(f)
}
