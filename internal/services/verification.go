package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/spoofing"
	"github.com/kofoworola/geogate/internal/verifiers"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	GetGeofenceTarget(ctx context.Context, invitationID uuid.UUID) (*models.GeofenceTarget, error)
	CreateGeofenceTarget(ctx context.Context, target *models.GeofenceTarget) error
	InsertVerificationRecord(ctx context.Context, rec *models.VerificationRecord) error
	RecentSamples(ctx context.Context, invitationID uuid.UUID, window time.Duration, limit int) ([]models.RecentSample, error)
}

// TargetCache is the optional read-through cache for geofence targets
// plus the service metric counters.
type TargetCache interface {
	GetTarget(ctx context.Context, invitationID uuid.UUID) (*models.GeofenceTarget, error)
	SetTarget(ctx context.Context, target *models.GeofenceTarget) error
	InvalidateTarget(ctx context.Context, invitationID uuid.UUID) error
	IncrementMetric(ctx context.Context, metric string) error
}

// VerificationService is the public entry point for the geofence
// verification engine.
type VerificationService struct {
	store     Store
	cache     TargetCache
	verifiers []verifiers.Verifier
	detector  *spoofing.Detector
	geofence  config.GeofenceConfig
	timeout   time.Duration
	region    geo.Bounds
}

func NewVerificationService(
	store Store,
	cache TargetCache,
	vectorVerifiers []verifiers.Verifier,
	detector *spoofing.Detector,
	geofenceCfg config.GeofenceConfig,
	vectorTimeout time.Duration,
) *VerificationService {
	return &VerificationService{
		store:     store,
		cache:     cache,
		verifiers: vectorVerifiers,
		detector:  detector,
		geofence:  geofenceCfg,
		timeout:   vectorTimeout,
		region: geo.Bounds{
			North: geofenceCfg.RegionNorth,
			South: geofenceCfg.RegionSouth,
			East:  geofenceCfg.RegionEast,
			West:  geofenceCfg.RegionWest,
		},
	}
}

// Verify runs one verification attempt end to end: load target, fan out
// the vectors, select and score, detect spoofing, persist the audit row,
// decide. The only hard errors are a missing target, zero usable
// vectors, and an audit-write failure.
func (s *VerificationService) Verify(ctx context.Context, invitationID uuid.UUID, sample *models.LocationSample) (*models.VerificationOutcome, error) {
	target, err := s.loadTarget(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	results, err := s.runVectors(ctx, sample, target)
	if err != nil {
		return nil, err
	}

	selected, err := selectResult(results)
	if err != nil {
		return nil, err
	}

	indicators := s.detector.Detect(ctx, sample, results)
	confidence := scoreConfidence(selected.Confidence, indicators)

	methods := make([]models.Method, 0, len(results))
	for _, r := range results {
		methods = append(methods, r.Method)
	}

	outcome := &models.VerificationOutcome{
		AttemptID:  uuid.New(),
		Success:    s.decide(selected.Distance, target.RadiusMeters, confidence, indicators),
		Method:     selected.Method,
		Accuracy:   selected.Accuracy,
		Distance:   selected.Distance,
		Indicators: indicators,
		Confidence: confidence,
		Details: models.OutcomeDetails{
			RequiredRadius: target.RadiusMeters,
			InRegion:       s.region.Contains(sample.Latitude, sample.Longitude),
			MethodsRun:     methods,
		},
	}

	if err := s.persistAudit(ctx, outcome, invitationID, sample); err != nil {
		return nil, fmt.Errorf("failed to persist verification record: %w", err)
	}

	s.trackMetrics(ctx, outcome)

	logger.Info("Verification decided", map[string]any{
		"invitation_id": invitationID.String(),
		"attempt_id":    outcome.AttemptID.String(),
		"method":        outcome.Method,
		"success":       outcome.Success,
		"distance_m":    outcome.Distance,
		"confidence":    outcome.Confidence,
	})

	return outcome, nil
}

// RegisterTarget stores the activation location for an invitation,
// clamping the radius into the configured bounds.
func (s *VerificationService) RegisterTarget(ctx context.Context, invitationID uuid.UUID, lat, lng, radiusMeters float64) (*models.GeofenceTarget, error) {
	radius := radiusMeters
	if radius < s.geofence.MinRadiusMeters {
		radius = s.geofence.MinRadiusMeters
	}
	if radius > s.geofence.MaxRadiusMeters {
		radius = s.geofence.MaxRadiusMeters
	}

	target := &models.GeofenceTarget{
		InvitationID: invitationID,
		Latitude:     lat,
		Longitude:    lng,
		RadiusMeters: radius,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateGeofenceTarget(ctx, target); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTarget(ctx, invitationID); err != nil {
			logger.Warn("Failed to invalidate cached target", map[string]any{
				"invitation_id": invitationID.String(),
				"error":         err.Error(),
			})
		}
	}

	return target, nil
}

func (s *VerificationService) loadTarget(ctx context.Context, invitationID uuid.UUID) (*models.GeofenceTarget, error) {
	if s.cache != nil {
		if target, err := s.cache.GetTarget(ctx, invitationID); err == nil && target != nil {
			return target, nil
		}
	}

	target, err := s.store.GetGeofenceTarget(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetTarget(ctx, target); err != nil {
			logger.Warn("Failed to cache target", map[string]any{
				"invitation_id": invitationID.String(),
				"error":         err.Error(),
			})
		}
	}

	return target, nil
}

// runVectors fans the verifiers out concurrently. Each call gets its own
// deadline so a slow provider cannot hold up the other vectors. A skipped
// vector contributes nothing; a verifier error aborts the attempt.
func (s *VerificationService) runVectors(ctx context.Context, sample *models.LocationSample, target *models.GeofenceTarget) ([]models.VectorResult, error) {
	type vectorOutput struct {
		result *models.VectorResult
		err    error
	}

	outputs := make(chan vectorOutput, len(s.verifiers))
	var wg sync.WaitGroup

	for _, v := range s.verifiers {
		wg.Add(1)
		go func(v verifiers.Verifier) {
			defer wg.Done()

			vctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			result, err := v.Verify(vctx, sample, target)
			outputs <- vectorOutput{result: result, err: err}
		}(v)
	}

	wg.Wait()
	close(outputs)

	var results []models.VectorResult
	for out := range outputs {
		if out.err != nil {
			return nil, fmt.Errorf("vector verifier failed: %w", out.err)
		}
		if out.result != nil {
			results = append(results, *out.result)
		}
	}

	return results, nil
}

// decide applies the three-part success invariant. All conditions are
// independently necessary.
func (s *VerificationService) decide(distance, radius, confidence float64, indicators models.SpoofingIndicators) bool {
	return distance <= radius && confidence > 70 && !indicators.GPSSpoofingLikely
}

func (s *VerificationService) persistAudit(ctx context.Context, outcome *models.VerificationOutcome, invitationID uuid.UUID, sample *models.LocationSample) error {
	rec := &models.VerificationRecord{
		AttemptID:         outcome.AttemptID,
		InvitationID:      invitationID,
		Latitude:          sample.Latitude,
		Longitude:         sample.Longitude,
		Accuracy:          outcome.Accuracy,
		Distance:          outcome.Distance,
		Method:            outcome.Method,
		Success:           outcome.Success,
		Confidence:        outcome.Confidence,
		ClientIP:          sample.ClientIP,
		UserAgent:         sample.Device.UserAgent,
		DeviceFingerprint: sample.DeviceFingerprint,
		Indicators:        outcome.Indicators,
		SampleTimestamp:   sample.Timestamp,
		CreatedAt:         time.Now(),
	}

	return s.store.InsertVerificationRecord(ctx, rec)
}

func (s *VerificationService) trackMetrics(ctx context.Context, outcome *models.VerificationOutcome) {
	if s.cache == nil {
		return
	}

	_ = s.cache.IncrementMetric(ctx, "total_verifications")
	if outcome.Success {
		_ = s.cache.IncrementMetric(ctx, "verifications_passed")
	} else {
		_ = s.cache.IncrementMetric(ctx, "verifications_rejected")
	}
	if outcome.Indicators.Any() {
		_ = s.cache.IncrementMetric(ctx, "spoofing_flagged")
	}
}
