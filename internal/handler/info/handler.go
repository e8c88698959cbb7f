package info

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TomasB/ipinfo/internal/clientip"
	"github.com/TomasB/ipinfo/internal/geo"
	"github.com/gin-gonic/gin"
)

// Locator resolves an IP address to a geo record without failing.
type Locator interface {
	Lookup(ctx context.Context, ip string) geo.Record
}

// RequestInfo describes the request line as the server received it.
type RequestInfo struct {
	Method    string `json:"method"`
	Scheme    string `json:"scheme"`
	Host      string `json:"host"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	UserAgent string `json:"user_agent"`
}

// Page is everything rendered for GET /.
type Page struct {
	ClientIP   string                `json:"client_ip"`
	RemoteAddr string                `json:"remote_addr"`
	Proxy      clientip.ProxyHeaders `json:"proxy_headers"`
	Request    RequestInfo           `json:"request"`
	Geo        geo.Record            `json:"geo"`
	Headers    map[string]string     `json:"headers"`
}

// Handler serves the request information page.
type Handler struct {
	locator Locator
}

// NewHandler creates a new info handler with the given Locator.
func NewHandler(locator Locator) *Handler {
	return &Handler{locator: locator}
}

// Show handles GET /
// HTML is the default; JSON is served for ?format=json or a JSON Accept header.
func (h *Handler) Show(c *gin.Context) {
	r := c.Request
	ip := clientip.Resolve(r.Header, r.RemoteAddr)

	slog.Debug("info request received", "client_ip", ip, "remote_addr", r.RemoteAddr)

	page := Page{
		ClientIP:   ip,
		RemoteAddr: clientip.PeerIP(r.RemoteAddr),
		Proxy:      clientip.Proxy(r.Header),
		Request:    requestInfo(r),
		Geo:        h.locator.Lookup(r.Context(), ip),
		Headers:    flattenHeaders(r),
	}

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, page)
		return
	}

	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(http.StatusOK, page)
	default:
		c.HTML(http.StatusOK, TemplateName, page)
	}
}

func requestInfo(r *http.Request) RequestInfo {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	ua := r.UserAgent()
	if ua == "" {
		ua = clientip.NotApplicable
	}

	return RequestInfo{
		Method:    r.Method,
		Scheme:    scheme,
		Host:      r.Host,
		Path:      r.URL.Path,
		URL:       scheme + "://" + r.Host + r.URL.RequestURI(),
		UserAgent: ua,
	}
}

// flattenHeaders joins repeated header values. Go moves Host out of the
// header map, so it is added back to show what the client sent.
func flattenHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+1)
	for name, values := range r.Header {
		out[name] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		out["Host"] = r.Host
	}
	return out
}
