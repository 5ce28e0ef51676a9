// Package verifiers implements the independent location-estimation
// vectors. Each verifier either produces a VectorResult or skips: a nil
// result with a nil error means the vector had nothing to contribute
// (missing signal, missing credential, provider failure). A verifier
// never fails the attempt on its own.
package verifiers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/models"
)

// Verifier is one location-estimation vector.
type Verifier interface {
	Method() models.Method
	Verify(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) (*models.VectorResult, error)
}

// SampleHistory provides read access to prior stored samples for an
// invitation. Backed by the audit log.
type SampleHistory interface {
	RecentSamples(ctx context.Context, invitationID uuid.UUID, window time.Duration, limit int) ([]models.RecentSample, error)
}
