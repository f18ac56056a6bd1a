package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
)

const (
	defaultDeliveryLimit = 20
	maxDeliveryLimit     = 100
)

type energyPayload struct {
	Level int `json:"level"`
}

type notificationsPayload struct {
	Enabled *bool `json:"enabled"`
}

func (handler *Handler) GetStatus(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	status, err := handler.profiles.Status(c.UserContext(), userID, handler.currentTime())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}

func (handler *Handler) GetRecommendations(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	bundle, err := handler.profiles.Recommendations(c.UserContext(), userID, handler.currentTime())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(bundle)
}

func (handler *Handler) LogEnergy(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload energyPayload
	if err := parseBody(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := handler.energy.LogEnergy(c.UserContext(), userID, payload.Level, handler.currentTime())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"date":         result.Date.Format(apiDateLayout),
		"cycle_day":    result.CycleDay,
		"phase":        result.Phase,
		"energy_level": result.EnergyLevel,
	})
}

// GetStatistics answers 204 while the user has no energy entries yet.
func (handler *Handler) GetStatistics(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.energy.Statistics(c.UserContext(), userID)
	if errors.Is(err, services.ErrNoEnergyData) {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}

func (handler *Handler) UpdateNotifications(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload notificationsPayload
	if err := parseBody(c, &payload); err != nil || payload.Enabled == nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := handler.notifications.SetNotifications(c.UserContext(), userID, *payload.Enabled); err != nil {
		return respondServiceError(c, err)
	}

	response := fiber.Map{"enabled": *payload.Enabled}
	if *payload.Enabled {
		response["next_fire_at"] = handler.notifications.NextFire(handler.currentTime())
	}
	return c.JSON(response)
}

func (handler *Handler) ListDeliveries(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseDeliveryLimit(c.Query("limit"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid limit")
	}

	deliveries, err := handler.deliveries.ListByUser(c.UserContext(), userID, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	views := make([]deliveryView, 0, len(deliveries))
	for _, delivery := range deliveries {
		views = append(views, deliveryView{
			ID:      delivery.ID,
			FiredAt: delivery.FiredAt,
			Status:  delivery.Status,
			Error:   delivery.Error,
		})
	}
	return c.JSON(fiber.Map{"deliveries": views})
}

func parseDeliveryLimit(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultDeliveryLimit, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 || limit > maxDeliveryLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxDeliveryLimit)
	}
	return limit, nil
}
