//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package core

import "net"

// listenConfig ignores reusePort where the socket option is unavailable
func listenConfig(reusePort bool) net.ListenConfig {
	return net.ListenConfig{}
}
