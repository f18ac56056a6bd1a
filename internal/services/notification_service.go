package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/ovumcy-bot/internal/models"
	"github.com/terraincognita07/ovumcy-bot/internal/store"
)

const (
	notificationPeriod       = 24 * time.Hour
	defaultSendTimeout       = 15 * time.Second
	notificationJobKeyPrefix = "notification:"
)

var ErrDeliveryFailed = errors.New("notification delivery failed")

type NotificationStore interface {
	Get(ctx context.Context, userID int64) (models.UserProfile, error)
	SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error
	ListNotificationSubscribers(ctx context.Context) ([]int64, error)
}

// JobScheduler arms keyed repeating jobs. Arming an existing key replaces its job.
type JobScheduler interface {
	Arm(key string, firstDelay time.Duration, period time.Duration, job func())
	Cancel(key string) bool
}

type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

type DeliveryRecorder interface {
	Record(ctx context.Context, delivery *models.NotificationDelivery) error
}

type NotificationOptions struct {
	// At is the local clock time of the daily message; only hour and minute are used.
	At          time.Time
	Location    *time.Location
	Now         func() time.Time
	SendTimeout time.Duration
}

type NotificationService struct {
	profiles    NotificationStore
	jobs        JobScheduler
	sender      Sender
	deliveries  DeliveryRecorder
	messages    MessageCatalog
	at          time.Time
	location    *time.Location
	now         func() time.Time
	sendTimeout time.Duration
	locks       *store.KeyedMutex
}

func NewNotificationService(profiles NotificationStore, jobs JobScheduler, sender Sender, deliveries DeliveryRecorder, messages MessageCatalog, options NotificationOptions) *NotificationService {
	if options.Location == nil {
		options.Location = time.Local
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.At.IsZero() {
		options.At = time.Date(0, time.January, 1, 9, 0, 0, 0, options.Location)
	}
	if options.SendTimeout <= 0 {
		options.SendTimeout = defaultSendTimeout
	}

	return &NotificationService{
		profiles:    profiles,
		jobs:        jobs,
		sender:      sender,
		deliveries:  deliveries,
		messages:    messages,
		at:          options.At,
		location:    options.Location,
		now:         options.Now,
		sendTimeout: options.SendTimeout,
		locks:       store.NewKeyedMutex(),
	}
}

func NotificationJobKey(userID int64) string {
	return fmt.Sprintf("%s%d", notificationJobKeyPrefix, userID)
}

// Enable arms the daily job and stores the flag. The per-user lock keeps the job and the flag
// in agreement when Enable, Disable and Toggle overlap for the same user.
func (service *NotificationService) Enable(ctx context.Context, userID int64) error {
	unlock := service.locks.Lock(userID)
	defer unlock()
	return service.enable(ctx, userID)
}

func (service *NotificationService) Disable(ctx context.Context, userID int64) error {
	unlock := service.locks.Lock(userID)
	defer unlock()
	return service.disable(ctx, userID)
}

func (service *NotificationService) SetNotifications(ctx context.Context, userID int64, enabled bool) error {
	if enabled {
		return service.Enable(ctx, userID)
	}
	return service.Disable(ctx, userID)
}

// Toggle flips the stored flag and returns the new state.
func (service *NotificationService) Toggle(ctx context.Context, userID int64) (bool, error) {
	unlock := service.locks.Lock(userID)
	defer unlock()

	profile, err := service.profiles.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	enabled := !profile.NotificationsEnabled
	if enabled {
		return true, service.enable(ctx, userID)
	}
	return false, service.disable(ctx, userID)
}

func (service *NotificationService) enable(ctx context.Context, userID int64) error {
	if _, err := service.profiles.Get(ctx, userID); err != nil {
		return err
	}

	service.arm(userID)
	if err := service.profiles.SetNotificationsEnabled(ctx, userID, true); err != nil {
		service.jobs.Cancel(NotificationJobKey(userID))
		return err
	}
	return nil
}

func (service *NotificationService) disable(ctx context.Context, userID int64) error {
	service.jobs.Cancel(NotificationJobKey(userID))
	return service.profiles.SetNotificationsEnabled(ctx, userID, false)
}

// Restore re-arms every profile that had notifications enabled before a restart.
func (service *NotificationService) Restore(ctx context.Context) (int, error) {
	userIDs, err := service.profiles.ListNotificationSubscribers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list notification subscribers: %w", err)
	}
	for _, userID := range userIDs {
		unlock := service.locks.Lock(userID)
		service.arm(userID)
		unlock()
	}
	return len(userIDs), nil
}

// NextFire returns the first fire time for a job armed at now.
func (service *NotificationService) NextFire(now time.Time) time.Time {
	return NextDailyFire(now.In(service.location), service.at)
}

func (service *NotificationService) arm(userID int64) {
	key := NotificationJobKey(userID)
	service.jobs.Cancel(key)

	now := service.now()
	next := service.NextFire(now)
	service.jobs.Arm(key, next.Sub(now), notificationPeriod, func() {
		ctx, cancel := context.WithTimeout(context.Background(), service.sendTimeout)
		defer cancel()
		if err := service.Deliver(ctx, userID); err != nil {
			log.Printf("notifications: deliver to user %d failed: %v", userID, err)
		}
	})
	log.Printf("notifications: armed daily notification for user %d, first at %s", userID, next.Format(time.RFC3339))
}

// Deliver sends one occurrence of the daily notification. A missing profile skips the
// occurrence and leaves the job armed so a later registration resumes delivery.
func (service *NotificationService) Deliver(ctx context.Context, userID int64) error {
	now := service.now().In(service.location)

	profile, err := service.profiles.Get(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		log.Printf("notifications: profile for user %d not found, skipping", userID)
		service.record(ctx, userID, now, models.DeliverySkipped, err)
		return nil
	}
	if err != nil {
		service.record(ctx, userID, now, models.DeliveryFailed, err)
		return fmt.Errorf("load profile: %w", err)
	}

	body := ComposeDailyNotification(service.messages, profile, now)
	if err := service.sender.Send(ctx, userID, body); err != nil {
		service.record(ctx, userID, now, models.DeliveryFailed, err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	service.record(ctx, userID, now, models.DeliverySent, nil)
	return nil
}

func (service *NotificationService) record(ctx context.Context, userID int64, firedAt time.Time, status string, cause error) {
	if service.deliveries == nil {
		return
	}

	delivery := models.NotificationDelivery{
		ID:      uuid.NewString(),
		UserID:  userID,
		FiredAt: firedAt,
		Status:  status,
	}
	if cause != nil {
		delivery.Error = cause.Error()
	}
	if err := service.deliveries.Record(ctx, &delivery); err != nil {
		log.Printf("notifications: record delivery for user %d failed: %v", userID, err)
	}
}
