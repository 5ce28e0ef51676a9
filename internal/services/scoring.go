package services

import (
	"errors"
	"sort"

	"github.com/kofoworola/geogate/internal/models"
)

// ErrNoResults is returned when every vector skipped and there is no
// signal to decide on. Callers must treat this as "could not verify",
// not as a rejection.
var ErrNoResults = errors.New("no verification results")

// Penalty points subtracted from the selected vector's confidence for
// each active indicator. Additive and independent.
const (
	penaltyVPN             = 30.0
	penaltyGPSSpoofing     = 40.0
	penaltyRapidRelocation = 20.0
	penaltyImpossibleSpeed = 25.0
	penaltyClockSkew       = 15.0
)

// selectResult picks the best vector result: confidence descending,
// ties broken by tighter (smaller) accuracy.
func selectResult(results []models.VectorResult) (*models.VectorResult, error) {
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	sorted := make([]models.VectorResult, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Accuracy < sorted[j].Accuracy
	})

	return &sorted[0], nil
}

// scoreConfidence applies the indicator penalties to a base confidence
// and clamps the result to [0, 100].
func scoreConfidence(base float64, indicators models.SpoofingIndicators) float64 {
	score := base

	if indicators.VPNDetected {
		score -= penaltyVPN
	}
	if indicators.GPSSpoofingLikely {
		score -= penaltyGPSSpoofing
	}
	if indicators.RapidLocationChanges {
		score -= penaltyRapidRelocation
	}
	if indicators.ImpossibleSpeed {
		score -= penaltyImpossibleSpeed
	}
	if indicators.DeviceTimeInconsistent {
		score -= penaltyClockSkew
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
