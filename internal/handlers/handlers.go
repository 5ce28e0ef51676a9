package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kofoworola/geogate/internal/models"
	"github.com/kofoworola/geogate/internal/repository"
	"github.com/kofoworola/geogate/internal/services"
	"github.com/kofoworola/geogate/pkg/cache"
	"github.com/kofoworola/geogate/pkg/logger"
	"github.com/kofoworola/geogate/pkg/validator"
)

type Handler struct {
	verifyService *services.VerificationService
	repo          *repository.Repository
	cache         *cache.Cache
}

func NewHandler(verifyService *services.VerificationService, repo *repository.Repository, cache *cache.Cache) *Handler {
	return &Handler{
		verifyService: verifyService,
		repo:          repo,
		cache:         cache,
	}
}

// Verify handles POST /v1/verify.
func (h *Handler) Verify(c *fiber.Ctx) error {
	requestID := uuid.New().String()
	log := logger.WithField("request_id", requestID)

	var req models.VerifyRequest

	if err := c.BodyParser(&req); err != nil {
		log.Warn("Failed to parse request body", map[string]any{
			"error": err.Error(),
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "Invalid request body",
			"request_id": requestID,
		})
	}

	if err := validator.ValidateVerifyRequest(req); err != nil {
		log.Warn("Request validation failed", map[string]any{
			"error": err.Error(),
		})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      err.Error(),
			"request_id": requestID,
		})
	}

	invitationID, _ := uuid.Parse(req.InvitationID)
	sample := buildSample(c, invitationID, req)

	outcome, err := h.verifyService.Verify(c.Context(), invitationID, sample)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTargetNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":      "No activation location registered for this invitation",
				"request_id": requestID,
			})
		case errors.Is(err, services.ErrNoResults):
			// Insufficient signal is not a rejection.
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":      "No verification results: insufficient location signal",
				"request_id": requestID,
			})
		default:
			log.Error("Verification failed", map[string]any{
				"error":         err.Error(),
				"invitation_id": req.InvitationID,
			})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":      "Failed to run verification",
				"request_id": requestID,
			})
		}
	}

	log.Info("Verification completed", map[string]any{
		"invitation_id": req.InvitationID,
		"attempt_id":    outcome.AttemptID,
		"success":       outcome.Success,
		"method":        outcome.Method,
		"confidence":    outcome.Confidence,
	})

	return c.Status(fiber.StatusOK).JSON(outcome)
}

// RegisterTarget handles POST /v1/targets.
func (h *Handler) RegisterTarget(c *fiber.Ctx) error {
	requestID := uuid.New().String()

	var req models.RegisterTargetRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "Invalid request body",
			"request_id": requestID,
		})
	}

	if err := validator.ValidateRegisterTargetRequest(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      err.Error(),
			"request_id": requestID,
		})
	}

	invitationID, _ := uuid.Parse(req.InvitationID)

	target, err := h.verifyService.RegisterTarget(c.Context(), invitationID, req.Lat, req.Lng, req.RadiusMeters)
	if err != nil {
		logger.Error("Target registration failed", map[string]any{
			"error":         err.Error(),
			"invitation_id": req.InvitationID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":      "Failed to register target",
			"request_id": requestID,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(target)
}

// Health handles GET /health.
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "healthy",
		"service": "geogate-api",
	})
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(c *fiber.Ctx) error {
	ctx := c.Context()

	total, _ := h.cache.GetMetric(ctx, "total_verifications")
	passed, _ := h.cache.GetMetric(ctx, "verifications_passed")
	rejected, _ := h.cache.GetMetric(ctx, "verifications_rejected")
	flagged, _ := h.cache.GetMetric(ctx, "spoofing_flagged")

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total_verifications":    total,
		"verifications_passed":   passed,
		"verifications_rejected": rejected,
		"spoofing_flagged":       flagged,
		"pass_rate":              calculateRate(passed, total),
	})
}

// RecentVerifications handles GET /api/verifications.
func (h *Handler) RecentVerifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	if limit > 100 {
		limit = 100
	}

	records, err := h.repo.GetRecentVerifications(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch verifications",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"verifications": records,
		"limit":         limit,
		"offset":        offset,
	})
}

// buildSample converts the HTTP contract into the engine's sample. The
// client timestamp stays untrusted; ReceivedAt is the server clock.
func buildSample(c *fiber.Ctx, invitationID uuid.UUID, req models.VerifyRequest) *models.LocationSample {
	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = c.IP()
	}

	return &models.LocationSample{
		InvitationID:      invitationID,
		Latitude:          req.Coordinates.Lat,
		Longitude:         req.Coordinates.Lng,
		Accuracy:          req.Accuracy,
		Altitude:          req.Altitude,
		Heading:           req.Heading,
		Speed:             req.Speed,
		Timestamp:         time.UnixMilli(req.Timestamp),
		ReceivedAt:        time.Now(),
		Device:            req.DeviceInfo,
		WiFiNetworks:      req.WiFiNetworks,
		CellTowers:        req.CellTowers,
		ClientIP:          clientIP,
		DeviceFingerprint: req.DeviceFingerprint,
	}
}

func calculateRate(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0.0
	}
	return (float64(numerator) / float64(denominator)) * 100
}
