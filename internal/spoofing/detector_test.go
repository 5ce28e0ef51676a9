package spoofing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/internal/models"
)

type fakeHistory struct {
	samples []models.RecentSample
	err     error
}

func (f *fakeHistory) RecentSamples(_ context.Context, _ uuid.UUID, _ time.Duration, _ int) ([]models.RecentSample, error) {
	return f.samples, f.err
}

func testConfig() config.DetectionConfig {
	return config.DetectionConfig{
		RelocationWindow:    10 * time.Minute,
		RelocationSamples:   3,
		RapidSpeedMPS:       50,
		AccuracyWindow:      time.Hour,
		AccuracySamples:     5,
		AccuracyMinVariance: 1.0,
		ImpossibleSpeedMPS:  300,
		MaxClockSkew:        5 * time.Minute,
	}
}

func cleanSample() *models.LocationSample {
	now := time.Now()
	return &models.LocationSample{
		InvitationID: uuid.New(),
		Latitude:     31.0,
		Longitude:    30.0,
		Accuracy:     25,
		Timestamp:    now,
		ReceivedAt:   now,
		Device: models.DeviceInfo{
			UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		},
	}
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"curl/7.68.0", true},
		{"python-requests/2.31.0", true},
		{"Wget/1.21", true},
		{"Googlebot/2.1", true},
		{"my-crawler v1", true},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSuspiciousUserAgent(tt.ua); got != tt.want {
			t.Errorf("IsSuspiciousUserAgent(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}

func TestDetect_CleanSample(t *testing.T) {
	d := NewDetector(&fakeHistory{}, testConfig())

	indicators := d.Detect(context.Background(), cleanSample(), nil)

	if indicators.Any() {
		t.Errorf("Expected no indicators for a clean sample, got %+v", indicators)
	}
}

func TestDetect_MergesVectorIndicators(t *testing.T) {
	d := NewDetector(&fakeHistory{}, testConfig())

	results := []models.VectorResult{
		{Method: models.MethodIP, Indicators: models.SpoofingIndicators{VPNDetected: true, TorDetected: true}},
		{Method: models.MethodGPS, Indicators: models.SpoofingIndicators{GPSSpoofingLikely: true}},
	}

	indicators := d.Detect(context.Background(), cleanSample(), results)

	if !indicators.VPNDetected || !indicators.TorDetected || !indicators.GPSSpoofingLikely {
		t.Errorf("Expected merged vector indicators, got %+v", indicators)
	}
}

func TestDetect_ClockSkew(t *testing.T) {
	d := NewDetector(&fakeHistory{}, testConfig())

	sample := cleanSample()
	sample.Timestamp = sample.ReceivedAt.Add(-8 * time.Minute)

	indicators := d.Detect(context.Background(), sample, nil)

	if !indicators.DeviceTimeInconsistent {
		t.Error("Expected device_time_inconsistent for 8 minute skew")
	}

	// Skew within tolerance must not flag, regardless of sign.
	sample = cleanSample()
	sample.Timestamp = sample.ReceivedAt.Add(3 * time.Minute)

	indicators = d.Detect(context.Background(), sample, nil)

	if indicators.DeviceTimeInconsistent {
		t.Error("Did not expect device_time_inconsistent for 3 minute skew")
	}
}

func TestDetect_RapidRelocation(t *testing.T) {
	sample := cleanSample()
	history := &fakeHistory{
		samples: []models.RecentSample{
			{
				// ~10 km away one minute earlier: ~166 m/s implied.
				Latitude:  sample.Latitude + 0.0899321,
				Longitude: sample.Longitude,
				Accuracy:  30,
				Timestamp: sample.Timestamp.Add(-time.Minute),
			},
		},
	}
	d := NewDetector(history, testConfig())

	indicators := d.Detect(context.Background(), sample, nil)

	if !indicators.RapidLocationChanges {
		t.Error("Expected rapid_location_changes for 10 km in 60 s")
	}
}

func TestDetect_SlowRelocationNotFlagged(t *testing.T) {
	sample := cleanSample()
	history := &fakeHistory{
		samples: []models.RecentSample{
			{
				// ~1 km away ten minutes earlier: ~1.7 m/s.
				Latitude:  sample.Latitude + 0.009,
				Longitude: sample.Longitude,
				Accuracy:  30,
				Timestamp: sample.Timestamp.Add(-10 * time.Minute),
			},
		},
	}
	d := NewDetector(history, testConfig())

	indicators := d.Detect(context.Background(), sample, nil)

	if indicators.RapidLocationChanges {
		t.Error("Did not expect rapid_location_changes for walking pace")
	}
}

func TestDetect_HistoryErrorFailsOpen(t *testing.T) {
	d := NewDetector(&fakeHistory{err: errors.New("db down")}, testConfig())

	indicators := d.Detect(context.Background(), cleanSample(), nil)

	if indicators.RapidLocationChanges {
		t.Error("Expected rapid_location_changes to default false on lookup error")
	}
}
