package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/terraincognita07/ovumcy-bot/internal/api"
	"github.com/terraincognita07/ovumcy-bot/internal/bot"
	"github.com/terraincognita07/ovumcy-bot/internal/cli"
	"github.com/terraincognita07/ovumcy-bot/internal/config"
	"github.com/terraincognita07/ovumcy-bot/internal/db"
	"github.com/terraincognita07/ovumcy-bot/internal/i18n"
	"github.com/terraincognita07/ovumcy-bot/internal/scheduler"
	"github.com/terraincognita07/ovumcy-bot/internal/security"
	"github.com/terraincognita07/ovumcy-bot/internal/services"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
	"github.com/terraincognita07/ovumcy-bot/internal/telegram"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

const usage = "usage: ovumcy-bot [serve | issue-token <user-id>]"

func main() {
	command, args, err := parseCommand(os.Args[1:])
	if err != nil {
		log.Fatalf("%v\n%s", err, usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	time.Local = cfg.Location

	switch command {
	case "issue-token":
		options := cli.IssueTokenOptions{DBPath: cfg.DBPath, SecretKey: cfg.SecretKey, TTL: cfg.APITokenTTL}
		if err := cli.RunIssueTokenCommand(context.Background(), os.Stdout, options, args[0]); err != nil {
			log.Fatalf("issue-token: %v", err)
		}
	default:
		if err := serve(cfg); err != nil {
			log.Fatalf("server exited: %v", err)
		}
	}
}

func parseCommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "serve", nil, nil
	}

	switch args[0] {
	case "serve":
		if len(args) > 1 {
			return "", nil, errors.New("serve takes no arguments")
		}
		return "serve", nil, nil
	case "issue-token":
		if len(args) != 2 {
			return "", nil, errors.New("issue-token requires exactly one user id")
		}
		return "issue-token", args[1:], nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(cfg config.Config) error {
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}

	messages, err := i18n.NewManager(cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("i18n init failed: %w", err)
	}

	tokens, err := security.NewTokenIssuer(cfg.SecretKey, cfg.APITokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer init failed: %w", err)
	}

	client, err := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAPIURL)
	if err != nil {
		return fmt.Errorf("telegram client init failed: %w", err)
	}

	repos := db.NewRepositories(database)
	profiles := store.NewProfileStore(repos.Profiles, repos.EnergyLogs)
	jobs := scheduler.New(cfg.Location)

	sender := telegram.NewSender(client, menuKeyboardFor(profiles, messages))
	notifications := services.NewNotificationService(profiles, jobs, sender, repos.Deliveries, messages, services.NotificationOptions{
		At:       cfg.NotifyAt,
		Location: cfg.Location,
	})
	profileService := services.NewProfileService(profiles, messages)
	energyService := services.NewEnergyService(profiles)

	dialog := bot.NewDialog(profileService, energyService, notifications, tokens, messages, bot.Options{
		NotifyAt: cfg.NotifyAtText(),
	})
	poller := bot.NewPoller(client, dialog, cfg.PollTimeout)

	handler, err := api.NewHandler(api.Dependencies{
		Profiles:      profileService,
		Energy:        energyService,
		Notifications: notifications,
		Deliveries:    repos.Deliveries,
		Tokens:        tokens,
		Location:      cfg.Location,
	})
	if err != nil {
		return fmt.Errorf("handler init failed: %w", err)
	}
	app := newApp(handler)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	restored, err := notifications.Restore(sigCtx)
	if err != nil {
		return err
	}
	log.Printf("notifications: restored %d daily jobs", restored)
	jobs.Start()

	group, groupCtx := errgroup.WithContext(sigCtx)
	group.Go(func() error {
		return poller.Run(groupCtx)
	})
	group.Go(func() error {
		log.Printf("Ovumcy bot API listening on http://0.0.0.0:%s (db: %s, tz: %s, notify at: %s)",
			cfg.Port, cfg.DBPath, cfg.Location.String(), cfg.NotifyAtText())
		if err := app.Listen(":" + cfg.Port); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		select {
		case <-jobs.Stop().Done():
		case <-shutdownCtx.Done():
			log.Printf("scheduler: running jobs did not finish before shutdown")
		}
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("server shutdown failed: %v", err)
		}
		return nil
	})

	return group.Wait()
}

func newApp(handler *api.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Ovumcy Bot",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	api.RegisterRoutes(app, handler)
	return app
}

// menuKeyboardFor attaches the main menu, in the recipient's language, to scheduled messages.
func menuKeyboardFor(profiles *store.ProfileStore, messages *i18n.Manager) func(userID int64) *telegram.ReplyKeyboard {
	return func(userID int64) *telegram.ReplyKeyboard {
		language := messages.DefaultLanguage()
		if profile, err := profiles.Get(context.Background(), userID); err == nil {
			language = profile.Language
		}
		return bot.MainMenuKeyboard(messages, language)
	}
}
