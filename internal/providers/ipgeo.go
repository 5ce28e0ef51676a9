package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

// IPGeolocationClient resolves client IPs through an ipdata-style API.
type IPGeolocationClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewIPGeolocationClient(baseURL, apiKey string, timeout time.Duration) *IPGeolocationClient {
	return &IPGeolocationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *IPGeolocationClient) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type ipResponse struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyRadius float64 `json:"accuracy_radius"` // kilometers
	ConnectionType string  `json:"connection_type"`
	CountryName    string  `json:"country_name"`
	RegionName     string  `json:"region_name"`
	City           string  `json:"city"`
	ISP            string  `json:"isp"`
	Threat         struct {
		IsVPN        bool `json:"is_vpn"`
		IsProxy      bool `json:"is_proxy"`
		IsTor        bool `json:"is_tor"`
		IsDatacenter bool `json:"is_datacenter"`
	} `json:"threat"`
}

func (c *IPGeolocationClient) LocateIP(ctx context.Context, ip string) (*IPLocation, error) {
	if _, err := netip.ParseAddr(ip); err != nil {
		return nil, fmt.Errorf("invalid client IP %q: %w", ip, err)
	}

	url := fmt.Sprintf("%s/%s?api-key=%s", c.baseURL, ip, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build IP lookup request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("IP lookup failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("IP lookup returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read IP lookup response: %w", err)
	}

	var parsed ipResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode IP lookup response: %w", err)
	}
	if parsed.Latitude == 0 && parsed.Longitude == 0 {
		return nil, fmt.Errorf("IP lookup response missing coordinates")
	}

	connType := strings.ToLower(parsed.ConnectionType)

	return &IPLocation{
		Latitude:       parsed.Latitude,
		Longitude:      parsed.Longitude,
		AccuracyMeters: parsed.AccuracyRadius * 1000,
		ConnectionType: parsed.ConnectionType,
		IsVPN:          parsed.Threat.IsVPN,
		IsProxy:        parsed.Threat.IsProxy,
		IsTor:          parsed.Threat.IsTor,
		IsDatacenter:   parsed.Threat.IsDatacenter || connType == "hosting" || connType == "datacenter",
		CountryName:    parsed.CountryName,
		RegionName:     parsed.RegionName,
		City:           parsed.City,
		ISP:            parsed.ISP,
	}, nil
}
