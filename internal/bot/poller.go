package bot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/terraincognita07/ovumcy-bot/internal/telegram"
)

const (
	defaultPollTimeout = 30 * time.Second
	pollRetryDelay     = 3 * time.Second
)

type UpdatesClient interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.ReplyKeyboard) error
}

// Poller long-polls the Bot API and feeds private messages through the dialog in order.
type Poller struct {
	client  UpdatesClient
	dialog  *Dialog
	timeout time.Duration
	offset  int64
}

func NewPoller(client UpdatesClient, dialog *Dialog, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &Poller{client: client, dialog: dialog, timeout: timeout}
}

// Run polls until ctx is cancelled and then returns nil.
func (poller *Poller) Run(ctx context.Context) error {
	log.Printf("bot: polling for updates")
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := poller.client.GetUpdates(ctx, poller.offset, poller.timeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("bot: get updates failed: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			poller.process(ctx, update)
		}
	}
}

func (poller *Poller) process(ctx context.Context, update telegram.Update) {
	if update.UpdateID >= poller.offset {
		poller.offset = update.UpdateID + 1
	}

	message := update.Message
	if message == nil || message.From == nil || message.Text == "" {
		return
	}

	input := ParseInput(message.From.ID, message.Text, message.From.LanguageCode)
	reply := poller.dialog.Handle(ctx, input)
	if reply.Text == "" {
		return
	}
	if err := poller.client.SendMessage(ctx, message.Chat.ID, reply.Text, reply.Keyboard); err != nil {
		log.Printf("bot: reply to user %d failed: %v", message.From.ID, err)
	}
}
