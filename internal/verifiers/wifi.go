package verifiers

import (
	"context"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/providers"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

const (
	wifiSuccessThresholdMeters = 200.0
	wifiBaseConfidence         = 75.0
)

// WiFiVerifier resolves the observed access points through the network
// geolocation provider.
type WiFiVerifier struct {
	locator providers.Locator
}

func NewWiFiVerifier(locator providers.Locator) *WiFiVerifier {
	return &WiFiVerifier{locator: locator}
}

func (v *WiFiVerifier) Method() models.Method {
	return models.MethodWiFi
}

func (v *WiFiVerifier) Verify(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) (*models.VectorResult, error) {
	if len(sample.WiFiNetworks) == 0 || !v.locator.Configured() {
		return nil, nil
	}

	pos, err := v.locator.LocateWiFi(ctx, sample.WiFiNetworks)
	if err != nil {
		logger.Warn("WiFi geolocation failed, skipping vector", map[string]any{
			"invitation_id": sample.InvitationID.String(),
			"error":         err.Error(),
		})
		return nil, nil
	}

	distance := geo.Distance(pos.Latitude, pos.Longitude, target.Latitude, target.Longitude)

	return &models.VectorResult{
		Method:     models.MethodWiFi,
		Success:    distance <= wifiSuccessThresholdMeters,
		Accuracy:   pos.Accuracy,
		Distance:   distance,
		Confidence: wifiBaseConfidence,
		Details: map[string]any{
			"access_points":    len(sample.WiFiNetworks),
			"threshold_meters": wifiSuccessThresholdMeters,
		},
	}, nil
}
