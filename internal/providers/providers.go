// Package providers wraps the third-party geolocation services the
// verification vectors call out to. Every client applies a bounded
// per-request timeout and parses responses defensively; any failure
// surfaces as an error the calling verifier turns into a skip.
package providers

import (
	"context"

	"github.com/kofoworola/geogate/internal/models"
)

// Position is a provider location estimate.
type Position struct {
	Latitude  float64
	Longitude float64
	// Accuracy is the estimate's error radius in meters.
	Accuracy float64
}

// IPLocation is the resolved geolocation and threat profile of an IP.
type IPLocation struct {
	Latitude       float64
	Longitude      float64
	AccuracyMeters float64
	ConnectionType string
	IsVPN          bool
	IsProxy        bool
	IsTor          bool
	IsDatacenter   bool
	CountryName    string
	RegionName     string
	City           string
	ISP            string
}

// Locator resolves WiFi access points or cell towers to a position.
type Locator interface {
	Configured() bool
	LocateWiFi(ctx context.Context, networks []models.WiFiNetwork) (*Position, error)
	LocateCellTowers(ctx context.Context, towers []models.CellTower) (*Position, error)
}

// IPLocator resolves a client IP to a location and threat profile.
type IPLocator interface {
	Configured() bool
	LocateIP(ctx context.Context, ip string) (*IPLocation, error)
}
