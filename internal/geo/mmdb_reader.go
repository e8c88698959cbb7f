package geo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// ErrNotLoaded is returned when no City database is open.
var ErrNotLoaded = errors.New("mmdb not loaded")

// MMDB implements Provider using MaxMind City and, optionally, ASN databases.
// Readers can be swapped at runtime by Reload.
type MMDB struct {
	cityPath string
	asnPath  string

	mu   sync.RWMutex
	city *geoip2.Reader
	asn  *geoip2.Reader
}

// NewMMDB opens the City database at cityPath and, if asnPath is non-empty,
// the ASN database at asnPath.
func NewMMDB(cityPath, asnPath string) (*MMDB, error) {
	m := &MMDB{cityPath: cityPath, asnPath: asnPath}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Name returns the provider name.
func (m *MMDB) Name() string { return "mmdb" }

// Reload reopens both databases and swaps them in. On error the previously
// loaded readers stay in use.
func (m *MMDB) Reload() error {
	city, err := geoip2.Open(m.cityPath)
	if err != nil {
		return fmt.Errorf("failed to open MMDB file: %w", err)
	}

	var asn *geoip2.Reader
	if m.asnPath != "" {
		asn, err = geoip2.Open(m.asnPath)
		if err != nil {
			city.Close()
			return fmt.Errorf("failed to open ASN MMDB file: %w", err)
		}
	}

	m.mu.Lock()
	oldCity, oldASN := m.city, m.asn
	m.city, m.asn = city, asn
	m.mu.Unlock()

	if oldCity != nil {
		oldCity.Close()
	}
	if oldASN != nil {
		oldASN.Close()
	}
	return nil
}

// Lookup resolves ip from the loaded databases.
func (m *MMDB) Lookup(_ context.Context, ip string) (Record, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Record{}, fmt.Errorf("%w: %w: %q", ErrLookupFailed, ErrInvalidIP, ip)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.city == nil {
		return Record{}, fmt.Errorf("%w: %w", ErrLookupFailed, ErrNotLoaded)
	}

	city, err := m.city.City(parsed)
	if err != nil {
		return Record{}, fmt.Errorf("%w: city lookup: %w", ErrLookupFailed, err)
	}

	rec := Record{
		Country:  city.Country.Names["en"],
		City:     city.City.Names["en"],
		Zip:      city.Postal.Code,
		Timezone: city.Location.TimeZone,
	}
	if len(city.Subdivisions) > 0 {
		rec.Region = city.Subdivisions[0].Names["en"]
	}
	if city.Location.Latitude != 0 || city.Location.Longitude != 0 {
		rec.Latitude = strconv.FormatFloat(city.Location.Latitude, 'f', -1, 64)
		rec.Longitude = strconv.FormatFloat(city.Location.Longitude, 'f', -1, 64)
	}

	if m.asn != nil {
		if asn, err := m.asn.ASN(parsed); err == nil && asn.AutonomousSystemNumber != 0 {
			rec.ISP = asn.AutonomousSystemOrganization
			rec.Org = asn.AutonomousSystemOrganization
			rec.AS = "AS" + strconv.FormatUint(uint64(asn.AutonomousSystemNumber), 10) + " " + asn.AutonomousSystemOrganization
		}
	}

	return rec.normalize(), nil
}

// Ready reports whether a City database is loaded.
func (m *MMDB) Ready() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.city == nil {
		return ErrNotLoaded
	}
	return nil
}

// Close releases the MMDB reader resources.
func (m *MMDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.city != nil {
		errs = append(errs, m.city.Close())
		m.city = nil
	}
	if m.asn != nil {
		errs = append(errs, m.asn.Close())
		m.asn = nil
	}
	return errors.Join(errs...)
}
