package geo

import (
	"context"
	"errors"
)

var (
	// ErrLookupFailed wraps every provider failure.
	ErrLookupFailed = errors.New("geolocation lookup failed")

	// ErrInvalidIP is returned by providers that need a parseable address.
	ErrInvalidIP = errors.New("invalid IP address")
)

// Provider resolves an IP address to a Record.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Lookup returns the geolocation for ip. Fields the provider does not know
	// may be left empty. Any failure is returned as an error.
	Lookup(ctx context.Context, ip string) (Record, error)

	// Close releases any resources held by the provider.
	Close() error
}
