package verifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/providers"
)

type fakeLocator struct {
	configured bool
	position   *providers.Position
	err        error
}

func (f *fakeLocator) Configured() bool { return f.configured }

func (f *fakeLocator) LocateWiFi(_ context.Context, _ []models.WiFiNetwork) (*providers.Position, error) {
	return f.position, f.err
}

func (f *fakeLocator) LocateCellTowers(_ context.Context, _ []models.CellTower) (*providers.Position, error) {
	return f.position, f.err
}

type fakeIPLocator struct {
	configured bool
	location   *providers.IPLocation
	err        error
}

func (f *fakeIPLocator) Configured() bool { return f.configured }

func (f *fakeIPLocator) LocateIP(_ context.Context, _ string) (*providers.IPLocation, error) {
	return f.location, f.err
}

func TestWiFiVerifier_Success(t *testing.T) {
	target := testTarget()
	locator := &fakeLocator{
		configured: true,
		position: &providers.Position{
			Latitude:  target.Latitude,
			Longitude: target.Longitude,
			Accuracy:  40,
		},
	}
	v := NewWiFiVerifier(locator)

	sample := testSample(target, 20)
	sample.WiFiNetworks = []models.WiFiNetwork{{BSSID: "aa:bb:cc:dd:ee:ff", Signal: -60}}

	result, err := v.Verify(context.Background(), sample, target)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected a result")
	}

	if !result.Success {
		t.Error("Expected success at the target coordinate")
	}
	if result.Confidence != 75 {
		t.Errorf("Expected confidence 75, got %f", result.Confidence)
	}
}

func TestWiFiVerifier_SkipConditions(t *testing.T) {
	target := testTarget()

	tests := []struct {
		name    string
		locator *fakeLocator
		wifi    []models.WiFiNetwork
	}{
		{"no networks", &fakeLocator{configured: true}, nil},
		{"not configured", &fakeLocator{configured: false}, []models.WiFiNetwork{{BSSID: "aa:bb:cc:dd:ee:ff"}}},
		{"provider error", &fakeLocator{configured: true, err: errors.New("timeout")}, []models.WiFiNetwork{{BSSID: "aa:bb:cc:dd:ee:ff"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewWiFiVerifier(tt.locator)
			sample := testSample(target, 20)
			sample.WiFiNetworks = tt.wifi

			result, err := v.Verify(context.Background(), sample, target)
			if err != nil {
				t.Fatalf("Verify() failed: %v", err)
			}
			if result != nil {
				t.Error("Expected skip, got a result")
			}
		})
	}
}

func TestCellTowerVerifier_Threshold(t *testing.T) {
	target := testTarget()
	locator := &fakeLocator{
		configured: true,
		position: &providers.Position{
			// ~650 m north of the target, past the 500 m threshold.
			Latitude:  target.Latitude + 0.00585,
			Longitude: target.Longitude,
			Accuracy:  300,
		},
	}
	v := NewCellTowerVerifier(locator)

	sample := testSample(target, 20)
	sample.CellTowers = []models.CellTower{{MCC: 602, MNC: 1, LAC: 100, CID: 5531, Signal: -80}}

	result, err := v.Verify(context.Background(), sample, target)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected a result")
	}

	if result.Success {
		t.Error("Expected failure beyond the 500 m cell threshold")
	}
	if result.Confidence != 65 {
		t.Errorf("Expected confidence 65, got %f", result.Confidence)
	}
}

func TestIPVerifier_VPNDetection(t *testing.T) {
	target := testTarget()
	locator := &fakeIPLocator{
		configured: true,
		location: &providers.IPLocation{
			Latitude:       target.Latitude,
			Longitude:      target.Longitude,
			AccuracyMeters: 20000,
			IsVPN:          true,
			IsDatacenter:   true,
		},
	}
	v := NewIPVerifier(locator)

	sample := testSample(target, 20)
	sample.ClientIP = "203.0.113.10"

	result, err := v.Verify(context.Background(), sample, target)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected a result")
	}

	if result.Confidence != 20 {
		t.Errorf("Expected VPN-capped confidence 20, got %f", result.Confidence)
	}
	if !result.Indicators.VPNDetected {
		t.Error("Expected vpn_detected")
	}
	if !result.Indicators.DatacenterIP {
		t.Error("Expected datacenter_ip")
	}
	if !result.Success {
		t.Error("Expected success within the 50 km IP threshold")
	}
}

func TestIPVerifier_SkipsWithoutIP(t *testing.T) {
	target := testTarget()
	v := NewIPVerifier(&fakeIPLocator{configured: true})

	result, err := v.Verify(context.Background(), testSample(target, 20), target)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if result != nil {
		t.Error("Expected skip without a client IP")
	}
}
