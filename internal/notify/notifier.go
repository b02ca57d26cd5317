// Package notify delivers Telegram messages off the request path. Sends are
// queued, retried with backoff and parked in the dead letter table when the
// API stays down, so a Telegram outage never fails a domain write.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
	"github.com/saharamess/messbot/internal/service"
)

const (
	queueSize   = 256
	workerCount = 2
	sendTimeout = 30 * time.Second
	maxAttempts = 3
)

// Sender performs one actual Telegram call.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error
	SendButtons(ctx context.Context, chatID int64, text string, buttons []service.Button) error
}

type jobKind int

const (
	kindText jobKind = iota
	kindPhoto
	kindButtons
)

type job struct {
	kind    jobKind
	chatID  int64
	text    string
	photo   []byte
	buttons []service.Button
}

// Notifier is the queued implementation of service.Notifier.
type Notifier struct {
	sender   Sender
	dlq      *repository.DeadLetterRepository
	adminIDs []int64
	queue    chan job
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   *zap.Logger
}

var _ service.Notifier = (*Notifier)(nil)

func NewNotifier(sender Sender, dlq *repository.DeadLetterRepository, adminIDs []int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		dlq:      dlq,
		adminIDs: adminIDs,
		queue:    make(chan job, queueSize),
		logger:   logger,
	}
}

// Start launches the delivery workers. Call Stop to drain and finish.
func (n *Notifier) Start() {
	for i := 0; i < workerCount; i++ {
		n.wg.Add(1)
		go n.worker()
	}
	n.logger.Info("🔔 Notifier started", zap.Int("workers", workerCount))
}

// Stop closes the queue and waits for queued messages to be delivered.
func (n *Notifier) Stop() {
	n.stopOnce.Do(func() { close(n.queue) })
	n.wg.Wait()
	n.logger.Info("Notifier stopped")
}

func (n *Notifier) Text(chatID int64, text string) {
	n.enqueue(job{kind: kindText, chatID: chatID, text: text})
}

func (n *Notifier) Photo(chatID int64, photo []byte, caption string) {
	n.enqueue(job{kind: kindPhoto, chatID: chatID, photo: photo, text: caption})
}

func (n *Notifier) NotifyAdmins(text string) {
	for _, id := range n.adminIDs {
		n.enqueue(job{kind: kindText, chatID: id, text: text})
	}
}

func (n *Notifier) AdminsPrompt(text string, buttons []service.Button) {
	for _, id := range n.adminIDs {
		n.enqueue(job{kind: kindButtons, chatID: id, text: text, buttons: buttons})
	}
}

func (n *Notifier) enqueue(j job) {
	select {
	case n.queue <- j:
	default:
		// Queue full. Park it instead of blocking the caller.
		n.logger.Warn("Notification queue full", zap.Int64("chat_id", j.chatID))
		n.deadLetter(j, fmt.Errorf("notification queue full"))
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for j := range n.queue {
		n.deliver(j)
	}
}

// deliver sends one message with exponential backoff. Terminal failures go to
// the dead letter table.
func (n *Notifier) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.send(ctx, j); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		n.logger.Error("Failed to deliver notification",
			zap.Int64("chat_id", j.chatID),
			zap.Error(err),
		)
		n.deadLetter(j, err)
	}
}

func (n *Notifier) send(ctx context.Context, j job) error {
	switch j.kind {
	case kindPhoto:
		return n.sender.SendPhoto(ctx, j.chatID, j.photo, j.text)
	case kindButtons:
		return n.sender.SendButtons(ctx, j.chatID, j.text, j.buttons)
	default:
		return n.sender.SendText(ctx, j.chatID, j.text)
	}
}

// deadLetter parks the message for the hourly retry job. Photo bytes are not
// stored; the caption is retried as plain text.
func (n *Notifier) deadLetter(j job, cause error) {
	if n.dlq == nil {
		return
	}

	payload := map[string]any{
		"chat_id": j.chatID,
		"text":    j.text,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	letter := &model.DeadLetter{
		Operation: model.OpTelegramSend,
		Payload:   payload,
		ErrorMsg:  cause.Error(),
	}
	if err := n.dlq.Create(ctx, letter); err != nil {
		n.logger.Error("Failed to park notification", zap.Error(err))
	}
}

// Replay attempts one dead letter delivery. The retry budget lives in the
// dead letter row, so a single attempt is made here.
func (n *Notifier) Replay(ctx context.Context, letter *model.DeadLetter) error {
	chatID, ok := payloadInt64(letter.Payload, "chat_id")
	if !ok {
		return fmt.Errorf("dead letter %d: no chat_id", letter.ID)
	}
	text, _ := letter.Payload["text"].(string)
	if text == "" {
		return fmt.Errorf("dead letter %d: no text", letter.ID)
	}
	return n.sender.SendText(ctx, chatID, text)
}

// payloadInt64 reads a numeric JSONB field, which decodes as float64.
func payloadInt64(payload map[string]any, key string) (int64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}
