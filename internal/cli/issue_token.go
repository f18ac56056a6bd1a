package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/db"
	"github.com/terraincognita07/ovumcy-bot/internal/security"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

type IssueTokenOptions struct {
	DBPath    string
	SecretKey string
	TTL       time.Duration
}

// RunIssueTokenCommand prints a bearer token for the HTTP API. The user must already be
// registered through the bot.
func RunIssueTokenCommand(ctx context.Context, out io.Writer, options IssueTokenOptions, rawUserID string) error {
	userID, err := parseUserID(rawUserID)
	if err != nil {
		return err
	}

	issuer, err := security.NewTokenIssuer(options.SecretKey, options.TTL)
	if err != nil {
		return fmt.Errorf("token issuer init failed: %w", err)
	}

	database, err := db.OpenSQLite(options.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	repos := db.NewRepositories(database)
	profiles := store.NewProfileStore(repos.Profiles, repos.EnergyLogs)
	if _, err := profiles.Get(ctx, userID); err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return fmt.Errorf("user %d is not registered", userID)
		}
		return fmt.Errorf("load profile: %w", err)
	}

	token, expiresAt, err := issuer.Issue(userID)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(out, "✅ API token issued")
	fmt.Fprintf(out, "Token: %s\n", token)
	fmt.Fprintf(out, "Expires: %s\n", expiresAt.Format(time.RFC3339))
	return nil
}

func parseUserID(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, errors.New("user id is required")
	}
	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return userID, nil
}
