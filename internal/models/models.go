package models

import (
	"time"

	"github.com/google/uuid"
)

// Method identifies one location-estimation vector.
type Method string

const (
	MethodGPS       Method = "gps"
	MethodWiFi      Method = "wifi"
	MethodIP        Method = "ip"
	MethodCellTower Method = "cell_tower"
)

// GeofenceTarget is the registered activation location for an invitation.
// Immutable once written.
type GeofenceTarget struct {
	InvitationID uuid.UUID `db:"invitation_id" json:"invitation_id"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	RadiusMeters float64   `db:"radius_meters" json:"radius_meters"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// DeviceInfo carries client-reported device metadata. Untrusted.
type DeviceInfo struct {
	UserAgent string `json:"user_agent"`
	Timezone  string `json:"timezone"`
	Language  string `json:"language"`
	Platform  string `json:"platform"`
}

// WiFiNetwork is one observed access point.
type WiFiNetwork struct {
	SSID      string  `json:"ssid,omitempty"`
	BSSID     string  `json:"bssid"`
	Signal    int     `json:"signal"`
	Frequency float64 `json:"frequency,omitempty"`
}

// CellTower is one observed tower.
type CellTower struct {
	MCC    int `json:"mcc"`
	MNC    int `json:"mnc"`
	LAC    int `json:"lac"`
	CID    int `json:"cid"`
	Signal int `json:"signal"`
}

// LocationSample is a single client observation for one verification
// attempt. Never mutated after construction.
type LocationSample struct {
	InvitationID      uuid.UUID     `json:"invitation_id"`
	Latitude          float64       `json:"latitude"`
	Longitude         float64       `json:"longitude"`
	Accuracy          float64       `json:"accuracy,omitempty"`
	Altitude          float64       `json:"altitude,omitempty"`
	Heading           float64       `json:"heading,omitempty"`
	Speed             float64       `json:"speed,omitempty"`
	Timestamp         time.Time     `json:"timestamp"`
	ReceivedAt        time.Time     `json:"received_at"`
	Device            DeviceInfo    `json:"device"`
	WiFiNetworks      []WiFiNetwork `json:"wifi_networks,omitempty"`
	CellTowers        []CellTower   `json:"cell_towers,omitempty"`
	ClientIP          string        `json:"client_ip,omitempty"`
	DeviceFingerprint string        `json:"device_fingerprint,omitempty"`
}

// SpoofingIndicators is the fixed indicator set. Every field is always
// serialized so callers can branch on individual flags.
type SpoofingIndicators struct {
	VPNDetected            bool `json:"vpn_detected"`
	ProxyDetected          bool `json:"proxy_detected"`
	TorDetected            bool `json:"tor_detected"`
	DatacenterIP           bool `json:"datacenter_ip"`
	GPSSpoofingLikely      bool `json:"gps_spoofing_likely"`
	DeviceTimeInconsistent bool `json:"device_time_inconsistent"`
	SuspiciousUserAgent    bool `json:"suspicious_user_agent"`
	RapidLocationChanges   bool `json:"rapid_location_changes"`
	ImpossibleSpeed        bool `json:"impossible_speed"`
	ConsistentGPSAccuracy  bool `json:"consistent_gps_accuracy"`
}

// Merge ORs another indicator set into this one.
func (s *SpoofingIndicators) Merge(other SpoofingIndicators) {
	s.VPNDetected = s.VPNDetected || other.VPNDetected
	s.ProxyDetected = s.ProxyDetected || other.ProxyDetected
	s.TorDetected = s.TorDetected || other.TorDetected
	s.DatacenterIP = s.DatacenterIP || other.DatacenterIP
	s.GPSSpoofingLikely = s.GPSSpoofingLikely || other.GPSSpoofingLikely
	s.DeviceTimeInconsistent = s.DeviceTimeInconsistent || other.DeviceTimeInconsistent
	s.SuspiciousUserAgent = s.SuspiciousUserAgent || other.SuspiciousUserAgent
	s.RapidLocationChanges = s.RapidLocationChanges || other.RapidLocationChanges
	s.ImpossibleSpeed = s.ImpossibleSpeed || other.ImpossibleSpeed
	s.ConsistentGPSAccuracy = s.ConsistentGPSAccuracy || other.ConsistentGPSAccuracy
}

// Any reports whether at least one indicator is raised.
func (s SpoofingIndicators) Any() bool {
	return s.VPNDetected || s.ProxyDetected || s.TorDetected || s.DatacenterIP ||
		s.GPSSpoofingLikely || s.DeviceTimeInconsistent || s.SuspiciousUserAgent ||
		s.RapidLocationChanges || s.ImpossibleSpeed || s.ConsistentGPSAccuracy
}

// VectorResult is the outcome of one verifier. Ephemeral; only the selected
// result is persisted.
type VectorResult struct {
	Method     Method             `json:"method"`
	Success    bool               `json:"success"`
	Accuracy   float64            `json:"accuracy"`
	Distance   float64            `json:"distance"`
	Indicators SpoofingIndicators `json:"indicators"`
	Confidence float64            `json:"confidence"`
	Details    map[string]any     `json:"details,omitempty"`
}

// OutcomeDetails is contextual reporting attached to a decision.
type OutcomeDetails struct {
	RequiredRadius float64  `json:"required_radius"`
	InRegion       bool     `json:"in_region"`
	MethodsRun     []Method `json:"methods_run"`
}

// VerificationOutcome is the full decision returned to the caller.
type VerificationOutcome struct {
	AttemptID  uuid.UUID          `json:"attempt_id"`
	Success    bool               `json:"success"`
	Method     Method             `json:"method"`
	Accuracy   float64            `json:"accuracy"`
	Distance   float64            `json:"distance"`
	Indicators SpoofingIndicators `json:"indicators"`
	Confidence float64            `json:"confidence"`
	Details    OutcomeDetails     `json:"details"`
}

// VerificationRecord is the append-only audit row for one attempt.
type VerificationRecord struct {
	AttemptID         uuid.UUID          `db:"attempt_id" json:"attempt_id"`
	InvitationID      uuid.UUID          `db:"invitation_id" json:"invitation_id"`
	Latitude          float64            `db:"latitude" json:"latitude"`
	Longitude         float64            `db:"longitude" json:"longitude"`
	Accuracy          float64            `db:"accuracy" json:"accuracy"`
	Distance          float64            `db:"distance" json:"distance"`
	Method            Method             `db:"method" json:"method"`
	Success           bool               `db:"success" json:"success"`
	Confidence        float64            `db:"confidence" json:"confidence"`
	ClientIP          string             `db:"client_ip" json:"client_ip"`
	UserAgent         string             `db:"user_agent" json:"user_agent"`
	DeviceFingerprint string             `db:"device_fingerprint" json:"device_fingerprint"`
	Indicators        SpoofingIndicators `db:"-" json:"indicators"`
	SampleTimestamp   time.Time          `db:"sample_timestamp" json:"sample_timestamp"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
}

// RecentSample is the slice of an audit row the spoofing checks read back.
type RecentSample struct {
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	Accuracy  float64   `db:"accuracy" json:"accuracy"`
	Timestamp time.Time `db:"sample_timestamp" json:"timestamp"`
}

// VerifyRequest is the inbound HTTP contract for POST /v1/verify.
type VerifyRequest struct {
	InvitationID string      `json:"invitation_id"`
	Coordinates  Coordinates `json:"coordinates"`
	Accuracy     float64     `json:"accuracy,omitempty"`
	Altitude     float64     `json:"altitude,omitempty"`
	Heading      float64     `json:"heading,omitempty"`
	Speed        float64     `json:"speed,omitempty"`
	// Unix milliseconds, client clock.
	Timestamp         int64         `json:"timestamp"`
	DeviceInfo        DeviceInfo    `json:"device_info"`
	WiFiNetworks      []WiFiNetwork `json:"wifi_networks,omitempty"`
	CellTowers        []CellTower   `json:"cell_towers,omitempty"`
	ClientIP          string        `json:"client_ip,omitempty"`
	DeviceFingerprint string        `json:"device_fingerprint,omitempty"`
}

// Coordinates is a bare lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RegisterTargetRequest is the inbound contract for POST /v1/targets.
type RegisterTargetRequest struct {
	InvitationID string  `json:"invitation_id"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
}
