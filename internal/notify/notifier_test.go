package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/service"
)

type sentMessage struct {
	chatID  int64
	text    string
	photo   []byte
	buttons []service.Button
}

// fakeSender records sends, optionally failing the first failFirst attempts.
type fakeSender struct {
	mu        sync.Mutex
	sent      []sentMessage
	attempts  int
	failFirst int
}

func (f *fakeSender) SendText(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.attempts <= f.failFirst {
		return fmt.Errorf("telegram down")
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) SendPhoto(_ context.Context, chatID int64, photo []byte, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: caption, photo: photo})
	return nil
}

func (f *fakeSender) SendButtons(_ context.Context, chatID int64, text string, buttons []service.Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, buttons: buttons})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestNotifierDelivers(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, nil, []int64{10, 20}, zap.NewNop())
	n.Start()

	n.Text(5, "hello")
	n.Photo(6, []byte{0x89, 0x50}, "your card")
	n.NotifyAdmins("heads up")
	n.Stop()

	sent := sender.messages()
	require.Len(t, sent, 4)

	byChat := make(map[int64]sentMessage)
	for _, m := range sent {
		byChat[m.chatID] = m
	}
	assert.Equal(t, "hello", byChat[5].text)
	assert.Equal(t, []byte{0x89, 0x50}, byChat[6].photo)
	assert.Equal(t, "heads up", byChat[10].text)
	assert.Equal(t, "heads up", byChat[20].text)
}

func TestNotifierAdminsPrompt(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, nil, []int64{10}, zap.NewNop())
	n.Start()

	buttons := []service.Button{
		{Label: "✅ Approve", Data: "approve_student:3"},
		{Label: "❌ Deny", Data: "deny_student:3"},
	}
	n.AdminsPrompt("new registration", buttons)
	n.Stop()

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(10), sent[0].chatID)
	assert.Equal(t, buttons, sent[0].buttons)
}

func TestNotifierRetriesTransientFailure(t *testing.T) {
	sender := &fakeSender{failFirst: 1}
	n := NewNotifier(sender, nil, nil, zap.NewNop())
	n.Start()

	n.Text(5, "eventually")
	n.Stop()

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "eventually", sent[0].text)
	assert.Equal(t, 2, sender.attempts)
}

func TestReplay(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, nil, nil, zap.NewNop())

	letter := &model.DeadLetter{
		ID:        1,
		Operation: model.OpTelegramSend,
		// JSONB numbers decode as float64.
		Payload: map[string]any{"chat_id": float64(9), "text": "parked"},
	}
	require.NoError(t, n.Replay(context.Background(), letter))

	sent := sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(9), sent[0].chatID)
	assert.Equal(t, "parked", sent[0].text)
}

func TestReplayRejectsBrokenPayloads(t *testing.T) {
	n := NewNotifier(&fakeSender{}, nil, nil, zap.NewNop())

	assert.Error(t, n.Replay(context.Background(), &model.DeadLetter{
		ID:      2,
		Payload: map[string]any{"text": "no chat"},
	}))
	assert.Error(t, n.Replay(context.Background(), &model.DeadLetter{
		ID:      3,
		Payload: map[string]any{"chat_id": float64(9)},
	}))
}

func TestPayloadInt64(t *testing.T) {
	v, ok := payloadInt64(map[string]any{"k": float64(42)}, "k")
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	v, ok = payloadInt64(map[string]any{"k": int64(7)}, "k")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = payloadInt64(map[string]any{"k": "9"}, "k")
	assert.False(t, ok)
	_, ok = payloadInt64(map[string]any{}, "k")
	assert.False(t, ok)
}
