package services

import (
	"errors"
	"testing"

	"github.com/kofoworola/geogate/internal/models"
)

func TestSelectResult_HighestConfidenceWins(t *testing.T) {
	results := []models.VectorResult{
		{Method: models.MethodIP, Confidence: 40, Accuracy: 20000},
		{Method: models.MethodGPS, Confidence: 95, Accuracy: 20},
		{Method: models.MethodWiFi, Confidence: 75, Accuracy: 40},
	}

	selected, err := selectResult(results)
	if err != nil {
		t.Fatalf("selectResult() failed: %v", err)
	}

	if selected.Method != models.MethodGPS {
		t.Errorf("Expected gps selected, got %s", selected.Method)
	}
}

func TestSelectResult_TieBreak(t *testing.T) {
	// Equal confidence: tighter accuracy wins.
	results := []models.VectorResult{
		{Method: models.MethodWiFi, Confidence: 75, Accuracy: 120},
		{Method: models.MethodCellTower, Confidence: 75, Accuracy: 45},
	}

	selected, err := selectResult(results)
	if err != nil {
		t.Fatalf("selectResult() failed: %v", err)
	}

	if selected.Method != models.MethodCellTower {
		t.Errorf("Expected cell_tower (accuracy 45) to win tie-break, got %s", selected.Method)
	}
}

func TestSelectResult_Empty(t *testing.T) {
	_, err := selectResult(nil)
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("Expected ErrNoResults, got %v", err)
	}
}

func TestSelectResult_DoesNotMutateInput(t *testing.T) {
	results := []models.VectorResult{
		{Method: models.MethodIP, Confidence: 40},
		{Method: models.MethodGPS, Confidence: 95},
	}

	if _, err := selectResult(results); err != nil {
		t.Fatalf("selectResult() failed: %v", err)
	}

	if results[0].Method != models.MethodIP {
		t.Error("selectResult reordered the caller's slice")
	}
}

func TestScoreConfidence_NoIndicators(t *testing.T) {
	score := scoreConfidence(95, models.SpoofingIndicators{})
	if score != 95 {
		t.Errorf("Expected unchanged 95, got %f", score)
	}
}

func TestScoreConfidence_Penalties(t *testing.T) {
	tests := []struct {
		name       string
		indicators models.SpoofingIndicators
		base       float64
		want       float64
	}{
		{"vpn", models.SpoofingIndicators{VPNDetected: true}, 95, 65},
		{"gps spoofing", models.SpoofingIndicators{GPSSpoofingLikely: true}, 95, 55},
		{"rapid relocation", models.SpoofingIndicators{RapidLocationChanges: true}, 95, 75},
		{"impossible speed", models.SpoofingIndicators{ImpossibleSpeed: true}, 95, 70},
		{"clock skew", models.SpoofingIndicators{DeviceTimeInconsistent: true}, 95, 80},
		{
			"penalties are additive",
			models.SpoofingIndicators{VPNDetected: true, RapidLocationChanges: true},
			95, 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreConfidence(tt.base, tt.indicators); got != tt.want {
				t.Errorf("scoreConfidence(%f) = %f, want %f", tt.base, got, tt.want)
			}
		})
	}
}

func TestScoreConfidence_ClampsAtZero(t *testing.T) {
	indicators := models.SpoofingIndicators{
		VPNDetected:            true,
		GPSSpoofingLikely:      true,
		RapidLocationChanges:   true,
		ImpossibleSpeed:        true,
		DeviceTimeInconsistent: true,
	}

	// 40 - 130 in raw penalties must report exactly 0.
	if got := scoreConfidence(40, indicators); got != 0 {
		t.Errorf("Expected clamp to 0, got %f", got)
	}
}
