package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kofoworola/geogate/internal/models"
)

func TestNetworkGeolocationClient_LocateWiFi(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"location":{"lat":31.2,"lng":29.9},"accuracy":42.5}`))
	}))
	defer server.Close()

	client := NewNetworkGeolocationClient(server.URL, "test-key", 5*time.Second)

	pos, err := client.LocateWiFi(context.Background(), []models.WiFiNetwork{
		{BSSID: "aa:bb:cc:dd:ee:ff", Signal: -60},
	})
	if err != nil {
		t.Fatalf("LocateWiFi() failed: %v", err)
	}

	if pos.Latitude != 31.2 || pos.Longitude != 29.9 {
		t.Errorf("Unexpected position: %+v", pos)
	}
	if pos.Accuracy != 42.5 {
		t.Errorf("Expected accuracy 42.5, got %f", pos.Accuracy)
	}
}

func TestNetworkGeolocationClient_MissingLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accuracy":10}`))
	}))
	defer server.Close()

	client := NewNetworkGeolocationClient(server.URL, "test-key", 5*time.Second)

	if _, err := client.LocateWiFi(context.Background(), []models.WiFiNetwork{{BSSID: "aa:bb:cc:dd:ee:ff"}}); err == nil {
		t.Error("Expected error for response without a location")
	}
}

func TestNetworkGeolocationClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewNetworkGeolocationClient(server.URL, "test-key", 5*time.Second)

	if _, err := client.LocateCellTowers(context.Background(), []models.CellTower{{MCC: 602, MNC: 1, LAC: 1, CID: 1}}); err == nil {
		t.Error("Expected error for upstream 502")
	}
}

func TestNetworkGeolocationClient_Configured(t *testing.T) {
	if NewNetworkGeolocationClient("https://example.com", "", time.Second).Configured() {
		t.Error("Expected unconfigured without an API key")
	}
	if !NewNetworkGeolocationClient("https://example.com", "key", time.Second).Configured() {
		t.Error("Expected configured with URL and key")
	}
}

func TestIPGeolocationClient_LocateIP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 30.05,
			"longitude": 31.23,
			"accuracy_radius": 20,
			"connection_type": "hosting",
			"country_name": "Egypt",
			"city": "Cairo",
			"isp": "ExampleNet",
			"threat": {"is_vpn": true, "is_proxy": false, "is_tor": false}
		}`))
	}))
	defer server.Close()

	client := NewIPGeolocationClient(server.URL, "test-key", 5*time.Second)

	loc, err := client.LocateIP(context.Background(), "203.0.113.10")
	if err != nil {
		t.Fatalf("LocateIP() failed: %v", err)
	}

	if loc.Latitude != 30.05 || loc.Longitude != 31.23 {
		t.Errorf("Unexpected coordinates: %+v", loc)
	}
	if loc.AccuracyMeters != 20000 {
		t.Errorf("Expected accuracy radius converted to 20000 m, got %f", loc.AccuracyMeters)
	}
	if !loc.IsVPN {
		t.Error("Expected is_vpn carried through")
	}
	if !loc.IsDatacenter {
		t.Error("Expected hosting connection type to mark datacenter")
	}
}

func TestIPGeolocationClient_InvalidIP(t *testing.T) {
	client := NewIPGeolocationClient("https://example.com", "test-key", time.Second)

	if _, err := client.LocateIP(context.Background(), "not-an-ip"); err == nil {
		t.Error("Expected error for malformed IP")
	}
}

func TestIPGeolocationClient_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"latitude": "oops"`))
	}))
	defer server.Close()

	client := NewIPGeolocationClient(server.URL, "test-key", 5*time.Second)

	if _, err := client.LocateIP(context.Background(), "203.0.113.10"); err == nil {
		t.Error("Expected error for malformed response body")
	}
}
