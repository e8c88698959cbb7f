package geo

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/require"
)

func names(en string) mmdbtype.Map {
	return mmdbtype.Map{"names": mmdbtype.Map{"en": mmdbtype.String(en)}}
}

// cityFixtures is the content written by writeCityDB.
var cityFixtures = map[string]mmdbtype.Map{
	"2.125.160.0/24": {
		"country":      names("United Kingdom"),
		"subdivisions": mmdbtype.Slice{names("England")},
		"city":         names("Boxford"),
		"postal":       mmdbtype.Map{"code": mmdbtype.String("OX1")},
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(51.75),
			"longitude": mmdbtype.Float64(-1.25),
			"time_zone": mmdbtype.String("Europe/London"),
		},
	},
	"216.160.83.0/24": {
		"country": names("United States"),
		"city":    names("Milton"),
		"location": mmdbtype.Map{
			"latitude":  mmdbtype.Float64(47.2513),
			"longitude": mmdbtype.Float64(-122.3149),
			"time_zone": mmdbtype.String("America/Los_Angeles"),
		},
	},
	"1.128.0.0/16": {
		"country": names("Australia"),
	},
}

// writeDB writes records into a new database of dbType at dir/name.
func writeDB(t *testing.T, dir, name, dbType string, records map[string]mmdbtype.Map) string {
	t.Helper()

	w, err := mmdbwriter.New(mmdbwriter.Options{DatabaseType: dbType, RecordSize: 24})
	require.NoError(t, err)

	for cidr, rec := range records {
		_, network, err := net.ParseCIDR(cidr)
		require.NoError(t, err)
		require.NoError(t, w.Insert(network, rec))
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = w.WriteTo(f)
	require.NoError(t, err)
	return path
}

// writeCityDB writes a small GeoIP2-City database into dir.
func writeCityDB(t *testing.T, dir string) string {
	t.Helper()
	return writeDB(t, dir, "city.mmdb", "GeoIP2-City", cityFixtures)
}

// writeASNDB writes a small GeoLite2-ASN database into dir.
func writeASNDB(t *testing.T, dir string) string {
	t.Helper()
	return writeDB(t, dir, "asn.mmdb", "GeoLite2-ASN", map[string]mmdbtype.Map{
		"1.128.0.0/16": {
			"autonomous_system_number":       mmdbtype.Uint32(1221),
			"autonomous_system_organization": mmdbtype.String("Telstra Pty Ltd"),
		},
	})
}
