package verifiers

import (
	"context"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/providers"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

// IP geolocation is city-level at best, so the pass threshold is loose
// and the confidence ceiling low.
const (
	ipSuccessThresholdMeters = 50000.0
	ipBaseConfidence         = 40.0
	ipVPNConfidence          = 20.0
)

// IPVerifier resolves the client IP through the IP geolocation provider
// and carries its threat classification into the vector indicators.
type IPVerifier struct {
	locator providers.IPLocator
}

func NewIPVerifier(locator providers.IPLocator) *IPVerifier {
	return &IPVerifier{locator: locator}
}

func (v *IPVerifier) Method() models.Method {
	return models.MethodIP
}

func (v *IPVerifier) Verify(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) (*models.VectorResult, error) {
	if sample.ClientIP == "" || !v.locator.Configured() {
		return nil, nil
	}

	loc, err := v.locator.LocateIP(ctx, sample.ClientIP)
	if err != nil {
		logger.Warn("IP geolocation failed, skipping vector", map[string]any{
			"invitation_id": sample.InvitationID.String(),
			"error":         err.Error(),
		})
		return nil, nil
	}

	distance := geo.Distance(loc.Latitude, loc.Longitude, target.Latitude, target.Longitude)

	confidence := ipBaseConfidence
	if loc.IsVPN {
		confidence = ipVPNConfidence
	}

	result := &models.VectorResult{
		Method:     models.MethodIP,
		Success:    distance <= ipSuccessThresholdMeters,
		Accuracy:   loc.AccuracyMeters,
		Distance:   distance,
		Confidence: confidence,
		Details: map[string]any{
			"country":          loc.CountryName,
			"region":           loc.RegionName,
			"city":             loc.City,
			"isp":              loc.ISP,
			"connection_type":  loc.ConnectionType,
			"threshold_meters": ipSuccessThresholdMeters,
		},
	}

	result.Indicators.VPNDetected = loc.IsVPN
	result.Indicators.ProxyDetected = loc.IsProxy
	result.Indicators.TorDetected = loc.IsTor
	result.Indicators.DatacenterIP = loc.IsDatacenter

	return result, nil
}
