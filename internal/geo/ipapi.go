package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultIPAPIURL is the public ip-api.com JSON endpoint.
const DefaultIPAPIURL = "http://ip-api.com/json"

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 3 * time.Second

// ipAPIFields is the fixed field list requested from ip-api.com.
const ipAPIFields = "status,message,country,regionName,city,zip,lat,lon,timezone,isp,org,as"

// ipAPIResponse mirrors the ip-api.com JSON body for ipAPIFields.
type ipAPIResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Country    string   `json:"country"`
	RegionName string   `json:"regionName"`
	City       string   `json:"city"`
	Zip        string   `json:"zip"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	Timezone   string   `json:"timezone"`
	ISP        string   `json:"isp"`
	Org        string   `json:"org"`
	AS         string   `json:"as"`
}

// IPAPI implements Provider against the ip-api.com HTTP API.
type IPAPI struct {
	baseURL string
	client  *http.Client
}

// NewIPAPI creates an ip-api.com provider. An empty baseURL selects
// DefaultIPAPIURL and a non-positive timeout selects DefaultTimeout.
func NewIPAPI(baseURL string, timeout time.Duration) *IPAPI {
	if baseURL == "" {
		baseURL = DefaultIPAPIURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &IPAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (p *IPAPI) Name() string { return "ip-api" }

// Lookup issues one request to ip-api.com. It does not retry.
func (p *IPAPI) Lookup(ctx context.Context, ip string) (Record, error) {
	u := p.baseURL + "/" + url.PathEscape(ip) + "?fields=" + ipAPIFields
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Record{}, fmt.Errorf("%w: build request: %w", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Record{}, fmt.Errorf("%w: unexpected status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Record{}, fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}
	if body.Status != "success" {
		return Record{}, fmt.Errorf("%w: provider status %q: %s", ErrLookupFailed, body.Status, body.Message)
	}

	return Record{
		Country:   body.Country,
		Region:    body.RegionName,
		City:      body.City,
		Zip:       body.Zip,
		Latitude:  formatCoord(body.Lat),
		Longitude: formatCoord(body.Lon),
		Timezone:  body.Timezone,
		ISP:       body.ISP,
		Org:       body.Org,
		AS:        body.AS,
	}.normalize(), nil
}

// Close releases idle connections.
func (p *IPAPI) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
