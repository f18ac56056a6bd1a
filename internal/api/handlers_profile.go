package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
)

type registerPayload struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	LastPeriodDate string `json:"last_period_date"`
	PeriodDuration int    `json:"period_duration"`
	CycleLength    int    `json:"cycle_length"`
	Language       string `json:"language"`
}

type cycleSettingsPayload struct {
	LastPeriodDate *string `json:"last_period_date"`
	PeriodDuration *int    `json:"period_duration"`
	CycleLength    *int    `json:"cycle_length"`
}

type languagePayload struct {
	Language string `json:"language"`
}

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.Profile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}

// RegisterProfile creates the profile or replaces every registration field of an existing one.
func (handler *Handler) RegisterProfile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload registerPayload
	if err := parseBody(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	lastPeriod, err := parseAPIDate(payload.LastPeriodDate, handler.location)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid last_period_date")
	}

	profile, err := handler.profiles.Register(c.UserContext(), services.RegistrationInput{
		UserID:         userID,
		Name:           payload.Name,
		Age:            payload.Age,
		LastPeriodDate: lastPeriod,
		PeriodDuration: payload.PeriodDuration,
		CycleLength:    payload.CycleLength,
		Language:       payload.Language,
	}, handler.currentTime())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProfileView(profile))
}

func (handler *Handler) UpdateCycleSettings(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload cycleSettingsPayload
	if err := parseBody(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if payload.LastPeriodDate == nil && payload.PeriodDuration == nil && payload.CycleLength == nil {
		return apiError(c, fiber.StatusBadRequest, "no settings to update")
	}

	input := services.CycleSettingsInput{
		PeriodDuration: payload.PeriodDuration,
		CycleLength:    payload.CycleLength,
	}
	if payload.LastPeriodDate != nil {
		lastPeriod, err := parseAPIDate(*payload.LastPeriodDate, handler.location)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid last_period_date")
		}
		input.LastPeriodDate = &lastPeriod
	}

	profile, err := handler.profiles.UpdateCycleSettings(c.UserContext(), userID, input, handler.currentTime())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}

func (handler *Handler) UpdateLanguage(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload languagePayload
	if err := parseBody(c, &payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid payload")
	}

	profile, err := handler.profiles.SetLanguage(c.UserContext(), userID, payload.Language)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}
