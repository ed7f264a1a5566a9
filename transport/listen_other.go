//go:build !linux

package transport

import (
	"net"
)

func listen(addr *net.TCPAddr, _ int) (net.Listener, error) {
	return net.ListenTCP("tcp", addr)
}
