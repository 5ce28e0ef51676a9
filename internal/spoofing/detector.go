// Package spoofing aggregates the per-vector indicator sets with the
// behavioral checks that look at the raw sample and the invitation's
// recent history. The detection subsystem fails open: when a history
// lookup errors, the affected indicator stays false and verification
// proceeds.
package spoofing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/pkg/geo"
	"github.com/kofoworola/geogate/pkg/logger"
)

// suspiciousAgentPatterns are matched case-insensitively against the
// reported user agent.
var suspiciousAgentPatterns = []string{
	"bot",
	"crawler",
	"spider",
	"curl",
	"wget",
	"python",
	"automated",
}

// SampleHistory provides the recent stored samples for an invitation.
type SampleHistory interface {
	RecentSamples(ctx context.Context, invitationID uuid.UUID, window time.Duration, limit int) ([]models.RecentSample, error)
}

// Detector computes the unified indicator set for one attempt.
type Detector struct {
	history SampleHistory
	cfg     config.DetectionConfig
}

func NewDetector(history SampleHistory, cfg config.DetectionConfig) *Detector {
	return &Detector{history: history, cfg: cfg}
}

// Detect OR-merges the vector indicator sets and adds the standalone
// behavioral checks.
func (d *Detector) Detect(ctx context.Context, sample *models.LocationSample, results []models.VectorResult) models.SpoofingIndicators {
	var indicators models.SpoofingIndicators

	for _, r := range results {
		indicators.Merge(r.Indicators)
	}

	if IsSuspiciousUserAgent(sample.Device.UserAgent) {
		indicators.SuspiciousUserAgent = true
	}

	if d.clockSkew(sample) > d.cfg.MaxClockSkew {
		indicators.DeviceTimeInconsistent = true
	}

	if d.rapidRelocation(ctx, sample) {
		indicators.RapidLocationChanges = true
	}

	return indicators
}

// IsSuspiciousUserAgent reports whether the user agent matches a known
// automation pattern.
func IsSuspiciousUserAgent(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, pattern := range suspiciousAgentPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

func (d *Detector) clockSkew(sample *models.LocationSample) time.Duration {
	skew := sample.ReceivedAt.Sub(sample.Timestamp)
	if skew < 0 {
		skew = -skew
	}
	return skew
}

// rapidRelocation compares the current sample against the most recent
// stored samples and flags any consecutive pair whose implied ground
// speed exceeds the configured threshold.
func (d *Detector) rapidRelocation(ctx context.Context, sample *models.LocationSample) bool {
	history, err := d.history.RecentSamples(ctx, sample.InvitationID, d.cfg.RelocationWindow, d.cfg.RelocationSamples)
	if err != nil {
		logger.Warn("Relocation history lookup failed, check skipped", map[string]any{
			"invitation_id": sample.InvitationID.String(),
			"error":         err.Error(),
		})
		return false
	}
	if len(history) == 0 {
		return false
	}

	// Build a newest-first chain: current sample, then stored history.
	chain := make([]models.RecentSample, 0, len(history)+1)
	chain = append(chain, models.RecentSample{
		Latitude:  sample.Latitude,
		Longitude: sample.Longitude,
		Accuracy:  sample.Accuracy,
		Timestamp: sample.Timestamp,
	})
	chain = append(chain, history...)

	for i := 0; i < len(chain)-1; i++ {
		newer, older := chain[i], chain[i+1]
		elapsed := newer.Timestamp.Sub(older.Timestamp).Seconds()
		if elapsed <= 0 {
			continue
		}
		speed := geo.ImpliedSpeed(older.Latitude, older.Longitude, newer.Latitude, newer.Longitude, elapsed)
		if speed > d.cfg.RapidSpeedMPS {
			return true
		}
	}

	return false
}
