package geo

import (
	"net"
	"strings"
)

// privatePrefixes are matched textually against the resolved IP string.
var privatePrefixes = []string{"10.", "172.", "192.168."}

// IsLocal reports whether ip is loopback or falls in a private range that a
// public geolocation provider cannot resolve.
func IsLocal(ip string) bool {
	if ip == "localhost" {
		return true
	}
	if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
		return true
	}
	for _, p := range privatePrefixes {
		if strings.HasPrefix(ip, p) {
			return true
		}
	}
	return false
}
