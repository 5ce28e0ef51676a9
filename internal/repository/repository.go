package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/pkg/logger"
)

// ErrTargetNotFound is returned when an invitation has no registered
// activation location.
var ErrTargetNotFound = errors.New("geofence target not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(dsn string, maxConns, maxIdleConns int) (*Repository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	return &Repository{db: db}, nil
}

// CreateGeofenceTarget registers the activation location for an invitation.
// Re-registering an invitation replaces the previous target.
func (r *Repository) CreateGeofenceTarget(ctx context.Context, target *models.GeofenceTarget) error {
	query := `
		INSERT INTO geofence_targets (invitation_id, latitude, longitude, radius_meters, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (invitation_id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    radius_meters = EXCLUDED.radius_meters
	`

	_, err := r.db.ExecContext(ctx, query,
		target.InvitationID, target.Latitude, target.Longitude,
		target.RadiusMeters, target.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create geofence target: %w", err)
	}

	return nil
}

// GetGeofenceTarget retrieves the target for an invitation.
func (r *Repository) GetGeofenceTarget(ctx context.Context, invitationID uuid.UUID) (*models.GeofenceTarget, error) {
	var target models.GeofenceTarget
	query := `SELECT * FROM geofence_targets WHERE invitation_id = $1`

	if err := r.db.GetContext(ctx, &target, query, invitationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("failed to get geofence target: %w", err)
	}

	return &target, nil
}

// InsertVerificationRecord appends one audit row. The row doubles as the
// sample history the spoofing checks read back.
func (r *Repository) InsertVerificationRecord(ctx context.Context, rec *models.VerificationRecord) error {
	indicatorsJSON, err := json.Marshal(rec.Indicators)
	if err != nil {
		return fmt.Errorf("failed to marshal indicators: %w", err)
	}

	query := `
		INSERT INTO verification_records
		(attempt_id, invitation_id, latitude, longitude, accuracy, distance, method,
		 success, confidence, client_ip, user_agent, device_fingerprint, indicators,
		 sample_timestamp, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.AttemptID, rec.InvitationID, rec.Latitude, rec.Longitude,
		rec.Accuracy, rec.Distance, rec.Method, rec.Success, rec.Confidence,
		rec.ClientIP, rec.UserAgent, rec.DeviceFingerprint, indicatorsJSON,
		rec.SampleTimestamp, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification record: %w", err)
	}

	return nil
}

// RecentSamples returns the most recent stored samples for an invitation
// within the window, newest first.
func (r *Repository) RecentSamples(ctx context.Context, invitationID uuid.UUID, window time.Duration, limit int) ([]models.RecentSample, error) {
	query := `
		SELECT latitude, longitude, accuracy, sample_timestamp
		FROM verification_records
		WHERE invitation_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var samples []models.RecentSample
	since := time.Now().Add(-window)
	if err := r.db.SelectContext(ctx, &samples, query, invitationID, since, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent samples: %w", err)
	}

	return samples, nil
}

// GetRecentVerifications retrieves recent audit rows with pagination.
func (r *Repository) GetRecentVerifications(ctx context.Context, limit, offset int) ([]models.VerificationRecord, error) {
	query := `
		SELECT * FROM verification_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var records []models.VerificationRecord
	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent verifications: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Warn("Failed to close database rows", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	for rows.Next() {
		var rec models.VerificationRecord
		var indicatorsJSON []byte

		err := rows.Scan(
			&rec.AttemptID, &rec.InvitationID, &rec.Latitude, &rec.Longitude,
			&rec.Accuracy, &rec.Distance, &rec.Method, &rec.Success, &rec.Confidence,
			&rec.ClientIP, &rec.UserAgent, &rec.DeviceFingerprint, &indicatorsJSON,
			&rec.SampleTimestamp, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification record: %w", err)
		}

		if err := json.Unmarshal(indicatorsJSON, &rec.Indicators); err != nil {
			return nil, fmt.Errorf("failed to unmarshal indicators: %w", err)
		}

		records = append(records, rec)
	}

	return records, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
