package geo

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/TomasB/ipinfo/internal/metrics"
)

// Service applies the lookup policy on top of a Provider: local addresses are
// answered without a provider call, and provider failures become UnknownRecord.
type Service struct {
	provider Provider
}

// NewService creates a Service backed by the given Provider.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Lookup never fails; it always returns a best-effort Record.
func (s *Service) Lookup(ctx context.Context, ip string) Record {
	name := s.provider.Name()

	if IsLocal(ip) {
		slog.Debug("geo lookup skipped for local address", "ip", ip)
		metrics.ObserveLookup(name, metrics.ResultLocal, 0)
		return LocalRecord()
	}

	// An empty path segment makes some providers geolocate the caller, i.e. this server.
	if strings.TrimSpace(ip) == "" {
		slog.Warn("geo lookup skipped for empty address", "provider", name)
		metrics.ObserveLookup(name, metrics.ResultFailure, 0)
		return UnknownRecord()
	}

	start := time.Now()
	rec, err := s.provider.Lookup(ctx, ip)
	duration := time.Since(start)
	if err != nil {
		slog.Warn("geo lookup failed", "ip", ip, "provider", name, "duration_ms", duration.Milliseconds(), "error", err)
		metrics.ObserveLookup(name, metrics.ResultFailure, duration)
		return UnknownRecord()
	}

	slog.Debug("geo lookup completed", "ip", ip, "provider", name, "country", rec.Country, "duration_ms", duration.Milliseconds())
	metrics.ObserveLookup(name, metrics.ResultSuccess, duration)
	return rec.normalize()
}

// Close releases the underlying provider.
func (s *Service) Close() error {
	return s.provider.Close()
}
