package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kofoworola/geogate/internal/models"
)

// NetworkGeolocationClient resolves WiFi and cell observations through a
// geolocate-style HTTP API.
type NetworkGeolocationClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewNetworkGeolocationClient(baseURL, apiKey string, timeout time.Duration) *NetworkGeolocationClient {
	return &NetworkGeolocationClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *NetworkGeolocationClient) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type geolocateRequest struct {
	ConsiderIP       bool               `json:"considerIp"`
	WiFiAccessPoints []wifiAccessPoint  `json:"wifiAccessPoints,omitempty"`
	CellTowers       []cellTowerPayload `json:"cellTowers,omitempty"`
}

type wifiAccessPoint struct {
	MACAddress     string  `json:"macAddress"`
	SignalStrength int     `json:"signalStrength"`
	Frequency      float64 `json:"frequency,omitempty"`
}

type cellTowerPayload struct {
	MobileCountryCode int `json:"mobileCountryCode"`
	MobileNetworkCode int `json:"mobileNetworkCode"`
	LocationAreaCode  int `json:"locationAreaCode"`
	CellID            int `json:"cellId"`
	SignalStrength    int `json:"signalStrength"`
}

type geolocateResponse struct {
	Location *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
}

func (c *NetworkGeolocationClient) LocateWiFi(ctx context.Context, networks []models.WiFiNetwork) (*Position, error) {
	payload := geolocateRequest{ConsiderIP: false}
	for _, n := range networks {
		payload.WiFiAccessPoints = append(payload.WiFiAccessPoints, wifiAccessPoint{
			MACAddress:     n.BSSID,
			SignalStrength: n.Signal,
			Frequency:      n.Frequency,
		})
	}
	return c.geolocate(ctx, payload)
}

func (c *NetworkGeolocationClient) LocateCellTowers(ctx context.Context, towers []models.CellTower) (*Position, error) {
	payload := geolocateRequest{ConsiderIP: false}
	for _, t := range towers {
		payload.CellTowers = append(payload.CellTowers, cellTowerPayload{
			MobileCountryCode: t.MCC,
			MobileNetworkCode: t.MNC,
			LocationAreaCode:  t.LAC,
			CellID:            t.CID,
			SignalStrength:    t.Signal,
		})
	}
	return c.geolocate(ctx, payload)
}

func (c *NetworkGeolocationClient) geolocate(ctx context.Context, payload geolocateRequest) (*Position, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geolocate request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocate returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("failed to read geolocate response: %w", err)
	}

	var parsed geolocateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode geolocate response: %w", err)
	}
	if parsed.Location == nil {
		return nil, fmt.Errorf("geolocate response missing location")
	}

	return &Position{
		Latitude:  parsed.Location.Lat,
		Longitude: parsed.Location.Lng,
		Accuracy:  parsed.Accuracy,
	}, nil
}
