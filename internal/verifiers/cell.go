package verifiers

import (
	"context"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/providers"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

const (
	cellSuccessThresholdMeters = 500.0
	cellBaseConfidence         = 65.0
)

// CellTowerVerifier resolves observed towers through the network
// geolocation provider.
type CellTowerVerifier struct {
	locator providers.Locator
}

func NewCellTowerVerifier(locator providers.Locator) *CellTowerVerifier {
	return &CellTowerVerifier{locator: locator}
}

func (v *CellTowerVerifier) Method() models.Method {
	return models.MethodCellTower
}

func (v *CellTowerVerifier) Verify(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) (*models.VectorResult, error) {
	if len(sample.CellTowers) == 0 || !v.locator.Configured() {
		return nil, nil
	}

	pos, err := v.locator.LocateCellTowers(ctx, sample.CellTowers)
	if err != nil {
		logger.Warn("Cell tower geolocation failed, skipping vector", map[string]any{
			"invitation_id": sample.InvitationID.String(),
			"error":         err.Error(),
		})
		return nil, nil
	}

	distance := geo.Distance(pos.Latitude, pos.Longitude, target.Latitude, target.Longitude)

	return &models.VectorResult{
		Method:     models.MethodCellTower,
		Success:    distance <= cellSuccessThresholdMeters,
		Accuracy:   pos.Accuracy,
		Distance:   distance,
		Confidence: cellBaseConfidence,
		Details: map[string]any{
			"towers":           len(sample.CellTowers),
			"threshold_meters": cellSuccessThresholdMeters,
		},
	}, nil
}
