package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const contextUserIDKey = "current_user_id"

var errMissingBearer = errors.New("missing bearer token")

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	userID, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserIDKey, userID)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (int64, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return 0, errMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errMissingBearer
	}
	return handler.tokens.Parse(token)
}

func currentUserID(c *fiber.Ctx) (int64, bool) {
	userID, ok := c.Locals(contextUserIDKey).(int64)
	return userID, ok && userID != 0
}
