package verifiers

import (
	"context"
	"math"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

// gpsSuccessThresholdMeters is the distance within which the
// device-reported coordinate counts as a vector-level pass.
const gpsSuccessThresholdMeters = 100.0

// GPSVerifier scores the device-reported coordinate directly. It is the
// only vector with no outbound call; its spoofing signals come from the
// sample itself and from the invitation's recent history.
type GPSVerifier struct {
	history SampleHistory
	cfg     config.DetectionConfig
}

func NewGPSVerifier(history SampleHistory, cfg config.DetectionConfig) *GPSVerifier {
	return &GPSVerifier{history: history, cfg: cfg}
}

func (v *GPSVerifier) Method() models.Method {
	return models.MethodGPS
}

func (v *GPSVerifier) Verify(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) (*models.VectorResult, error) {
	// No usable device accuracy means no usable GPS reading.
	if sample.Accuracy <= 0 {
		return nil, nil
	}

	distance := geo.Distance(sample.Latitude, sample.Longitude, target.Latitude, target.Longitude)

	confidence := 60.0
	switch {
	case sample.Accuracy < 50:
		confidence = 95
	case sample.Accuracy < 200:
		confidence = 80
	}

	result := &models.VectorResult{
		Method:     models.MethodGPS,
		Success:    distance <= gpsSuccessThresholdMeters,
		Accuracy:   sample.Accuracy,
		Distance:   distance,
		Confidence: confidence,
		Details: map[string]any{
			"reported_accuracy": sample.Accuracy,
			"threshold_meters":  gpsSuccessThresholdMeters,
		},
	}

	// Sub-meter reported accuracy does not occur on real consumer GPS.
	if sample.Accuracy < 1 {
		result.Indicators.GPSSpoofingLikely = true
	}

	v.applyHistorySignals(ctx, sample, result)

	return result, nil
}

// applyHistorySignals checks the implied speed against the immediately
// preceding sample and the accuracy variance over the recent window.
// History lookup failures leave the signals unset.
func (v *GPSVerifier) applyHistorySignals(ctx context.Context, sample *models.LocationSample, result *models.VectorResult) {
	samples, err := v.history.RecentSamples(ctx, sample.InvitationID, v.cfg.AccuracyWindow, v.cfg.AccuracySamples)
	if err != nil {
		logger.Warn("GPS history lookup failed", map[string]any{
			"invitation_id": sample.InvitationID.String(),
			"error":         err.Error(),
		})
		return
	}
	if len(samples) == 0 {
		return
	}

	// samples come back newest first; samples[0] is the previous attempt.
	prev := samples[0]
	elapsed := sample.Timestamp.Sub(prev.Timestamp).Seconds()
	if elapsed > 0 {
		speed := geo.ImpliedSpeed(prev.Latitude, prev.Longitude, sample.Latitude, sample.Longitude, elapsed)
		if speed > v.cfg.ImpossibleSpeedMPS {
			result.Indicators.ImpossibleSpeed = true
			result.Details["implied_speed_mps"] = speed
		}
	}

	if len(samples) >= v.cfg.AccuracySamples {
		accuracies := make([]float64, 0, len(samples)+1)
		for _, s := range samples {
			accuracies = append(accuracies, s.Accuracy)
		}
		accuracies = append(accuracies, sample.Accuracy)

		if variance(accuracies) < v.cfg.AccuracyMinVariance {
			// Real GPS accuracy fluctuates; a flat series suggests replay.
			result.Indicators.ConsistentGPSAccuracy = true
		}
	}
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return math.Inf(1)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}
