// Package clientip resolves the originating client address of an HTTP request
// from proxy headers, falling back to the transport peer address.
//
// Header values are trusted as received. Any client can forge them, so the
// result is only suitable for display, never for access control.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// Header names consulted by Resolve and Proxy.
const (
	HeaderForwardedFor   = "X-Forwarded-For"
	HeaderRealIP         = "X-Real-IP"
	HeaderCFConnectingIP = "CF-Connecting-IP"
	HeaderForwardedProto = "X-Forwarded-Proto"
	HeaderForwardedHost  = "X-Forwarded-Host"
)

// NotApplicable is shown for proxy headers the request did not carry.
const NotApplicable = "N/A"

// ProxyHeaders holds the raw values of the common reverse proxy headers.
type ProxyHeaders struct {
	ForwardedFor   string `json:"x_forwarded_for"`
	RealIP         string `json:"x_real_ip"`
	ForwardedProto string `json:"x_forwarded_proto"`
	ForwardedHost  string `json:"x_forwarded_host"`
}

// Resolve returns the best-guess client IP. First match wins:
// the first X-Forwarded-For entry, X-Real-IP, CF-Connecting-IP, then the
// peer address with its port removed. Values are not validated.
func Resolve(h http.Header, remoteAddr string) string {
	if xff := h.Get(HeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := h.Get(HeaderRealIP); ip != "" {
		return ip
	}
	if ip := h.Get(HeaderCFConnectingIP); ip != "" {
		return ip
	}
	return PeerIP(remoteAddr)
}

// PeerIP strips the port from a transport address such as http.Request.RemoteAddr.
// It returns the address unchanged if it carries no port.
func PeerIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// Proxy collects the raw proxy headers, substituting NotApplicable for absent ones.
func Proxy(h http.Header) ProxyHeaders {
	return ProxyHeaders{
		ForwardedFor:   valueOr(h, HeaderForwardedFor),
		RealIP:         valueOr(h, HeaderRealIP),
		ForwardedProto: valueOr(h, HeaderForwardedProto),
		ForwardedHost:  valueOr(h, HeaderForwardedHost),
	}
}

func valueOr(h http.Header, name string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	return NotApplicable
}
