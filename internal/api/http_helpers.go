package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

var errInvalidDate = errors.New("invalid date")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps domain errors onto status codes. Unknown errors are logged and hidden.
func respondServiceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": validationErr.Err.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, store.ErrProfileNotFound):
		return apiError(c, fiber.StatusNotFound, "profile not found")
	default:
		log.Printf("api: %s %s: %v", c.Method(), c.Path(), err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func parseBody(c *fiber.Ctx, target any) error {
	if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return errors.New("content type must be application/json")
	}
	return c.BodyParser(target)
}

func parseAPIDate(raw string, location *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errInvalidDate
	}
	parsed, err := time.ParseInLocation(apiDateLayout, value, location)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return parsed, nil
}
