package daemon

import (
	"net"
	"time"
)

const internetProbeTimeout = 2 * time.Second

// Overridable in tests.
var internetProbeAddress = "8.8.8.8:53"

// probeInternet reports whether the host can reach the public
// internet. A plain TCP dial to a well-known resolver avoids depending
// on DNS being functional.
func probeInternet(timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", internetProbeAddress, timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// localIP returns the LAN address the panel is reachable on. The UDP
// dial never sends a packet; it just asks the kernel which interface
// would route there.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
