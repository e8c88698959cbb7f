package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullResponse = `{
	"status": "success",
	"country": "United States",
	"regionName": "Virginia",
	"city": "Ashburn",
	"zip": "20149",
	"lat": 39.03,
	"lon": -77.5,
	"timezone": "America/New_York",
	"isp": "Google LLC",
	"org": "Google Public DNS",
	"as": "AS15169 Google LLC"
}`

func newProviderServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestIPAPI_Success(t *testing.T) {
	var gotPath, gotFields string
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fullResponse))
	})

	p := NewIPAPI(srv.URL+"/json/", time.Second)
	rec, err := p.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "/json/8.8.8.8", gotPath)
	assert.Equal(t, ipAPIFields, gotFields)
	assert.Equal(t, Record{
		Country:   "United States",
		Region:    "Virginia",
		City:      "Ashburn",
		Zip:       "20149",
		Latitude:  "39.03",
		Longitude: "-77.5",
		Timezone:  "America/New_York",
		ISP:       "Google LLC",
		Org:       "Google Public DNS",
		AS:        "AS15169 Google LLC",
	}, rec)
}

func TestIPAPI_MissingFieldsBecomeUnknown(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","country":"France","lat":0}`))
	})

	rec, err := NewIPAPI(srv.URL, time.Second).Lookup(context.Background(), "1.1.1.1")
	require.NoError(t, err)

	assert.Equal(t, "France", rec.Country)
	assert.Equal(t, "0", rec.Latitude)
	assert.Equal(t, Unknown, rec.Longitude)
	assert.Equal(t, Unknown, rec.City)
	assert.Equal(t, Unknown, rec.ISP)
}

func TestIPAPI_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":`))
			},
		},
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newProviderServer(t, tt.handler)

			_, err := NewIPAPI(srv.URL, time.Second).Lookup(context.Background(), "8.8.8.8")
			assert.ErrorIs(t, err, ErrLookupFailed)
		})
	}
}

func TestIPAPI_Timeout(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	start := time.Now()
	_, err := NewIPAPI(srv.URL, 50*time.Millisecond).Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.Less(t, time.Since(start), time.Second)
}

func TestIPAPI_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewIPAPI(url, time.Second).Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestService_EmptyForwardedEntryNeverReachesIPAPI(t *testing.T) {
	called := false
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"status":"success","country":"ServerCountry"}`))
	})

	rec := NewService(NewIPAPI(srv.URL+"/json", time.Second)).Lookup(context.Background(), "")

	assert.Equal(t, UnknownRecord(), rec)
	assert.False(t, called)
}

func TestIPAPI_Defaults(t *testing.T) {
	p := NewIPAPI("", 0)
	assert.Equal(t, DefaultIPAPIURL, p.baseURL)
	assert.Equal(t, DefaultTimeout, p.client.Timeout)
	assert.Equal(t, "ip-api", p.Name())
	assert.NoError(t, p.Close())
}

func TestService_IPAPITimeoutYieldsUnknown(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	svc := NewService(NewIPAPI(srv.URL, 50*time.Millisecond))
	assert.Equal(t, UnknownRecord(), svc.Lookup(context.Background(), "8.8.8.8"))
}

func TestService_IPAPISuccessCopiesEveryField(t *testing.T) {
	srv := newProviderServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fullResponse))
	})

	rec := NewService(NewIPAPI(srv.URL, time.Second)).Lookup(context.Background(), "8.8.8.8")

	assert.Equal(t, "United States", rec.Country)
	assert.Equal(t, "Virginia", rec.Region)
	assert.Equal(t, "Ashburn", rec.City)
	assert.Equal(t, "20149", rec.Zip)
	assert.Equal(t, "39.03", rec.Latitude)
	assert.Equal(t, "-77.5", rec.Longitude)
	assert.Equal(t, "America/New_York", rec.Timezone)
	assert.Equal(t, "Google LLC", rec.ISP)
	assert.Equal(t, "Google Public DNS", rec.Org)
	assert.Equal(t, "AS15169 Google LLC", rec.AS)
}
