package validator

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/models"
)

var bssidRegex = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

const (
	maxUserAgentLength = 1000
	maxWiFiNetworks    = 50
	maxCellTowers      = 20
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	errors []ValidationError
}

func New() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, ValidationError{Field: field, Message: message})
}

func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

func (v *Validator) ErrorMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v.errors {
		result[err.Field] = err.Message
	}
	return result
}

func ValidateVerifyRequest(req models.VerifyRequest) error {
	v := New()

	if _, err := uuid.Parse(req.InvitationID); err != nil {
		v.AddError("invitation_id", "must be a valid UUID")
	}

	validateCoordinates(v, req.Coordinates.Lat, req.Coordinates.Lng)

	if req.Accuracy < 0 {
		v.AddError("accuracy", "must not be negative")
	}

	if req.Timestamp <= 0 {
		v.AddError("timestamp", "required")
	}

	if len(req.DeviceInfo.UserAgent) > maxUserAgentLength {
		v.AddError("device_info.user_agent", "too long")
	}

	if len(req.WiFiNetworks) > maxWiFiNetworks {
		v.AddError("wifi_networks", "too many entries")
	}
	for i, n := range req.WiFiNetworks {
		if !bssidRegex.MatchString(n.BSSID) {
			v.AddError(fmt.Sprintf("wifi_networks[%d].bssid", i), "invalid format")
			break
		}
	}

	if len(req.CellTowers) > maxCellTowers {
		v.AddError("cell_towers", "too many entries")
	}
	for i, t := range req.CellTowers {
		if t.MCC <= 0 || t.MNC < 0 || t.CID <= 0 {
			v.AddError(fmt.Sprintf("cell_towers[%d]", i), "invalid tower identifiers")
			break
		}
	}

	if !v.IsValid() {
		return fmt.Errorf("validation failed: %v", v.ErrorMap())
	}
	return nil
}

func ValidateRegisterTargetRequest(req models.RegisterTargetRequest) error {
	v := New()

	if _, err := uuid.Parse(req.InvitationID); err != nil {
		v.AddError("invitation_id", "must be a valid UUID")
	}

	validateCoordinates(v, req.Lat, req.Lng)

	if req.RadiusMeters <= 0 {
		v.AddError("radius_meters", "must be positive")
	}

	if !v.IsValid() {
		return fmt.Errorf("validation failed: %v", v.ErrorMap())
	}
	return nil
}

func validateCoordinates(v *Validator, lat, lng float64) {
	if lat < -90 || lat > 90 {
		v.AddError("lat", "out of range")
	}
	if lng < -180 || lng > 180 {
		v.AddError("lng", "out of range")
	}
}
