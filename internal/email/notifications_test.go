package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"yuvai/internal/config"
	"yuvai/internal/tasks"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func newTestQueue(t *testing.T) *tasks.Queue {
	t.Helper()
	q := tasks.NewQueue(1, 4, nil)
	t.Cleanup(func() { q.Close(context.Background()) })
	return q
}

func testConfig() *config.Config {
	return &config.Config{SiteTitle: "YUVAi", BaseURL: "https://yuvai.example.com"}
}

func TestNotifier_SendOTP(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(testConfig(), sender, newTestQueue(t))

	if err := n.SendOTP("alice", "alice@example.com", "4821").Err(); err != nil {
		t.Fatalf("SendOTP() handle error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if len(msg.To) != 1 || msg.To[0] != "alice@example.com" {
		t.Errorf("To = %v", msg.To)
	}
	if !strings.Contains(msg.Text, "4821") || !strings.Contains(msg.HTML, "4821") {
		t.Error("message missing code")
	}
}

func TestNotifier_SendOTP_DeliveryFailure(t *testing.T) {
	want := errors.New("connection refused")
	n := NewNotifier(testConfig(), &fakeSender{err: want}, newTestQueue(t))

	if err := n.SendOTP("alice", "alice@example.com", "4821").Err(); !errors.Is(err, want) {
		t.Errorf("SendOTP() handle error = %v, want %v", err, want)
	}
}

func TestNotifier_SendOTP_Disabled(t *testing.T) {
	n := NewNotifier(testConfig(), nil, newTestQueue(t))

	if err := n.SendOTP("alice", "alice@example.com", "4821").Err(); err != nil {
		t.Errorf("SendOTP() handle error = %v, want nil when email is disabled", err)
	}
}

func TestNotifier_SendOTP_QueueClosed(t *testing.T) {
	q := tasks.NewQueue(1, 1, nil)
	q.Close(context.Background())
	n := NewNotifier(testConfig(), &fakeSender{}, q)

	if err := n.SendOTP("alice", "alice@example.com", "4821").Err(); !errors.Is(err, tasks.ErrQueueClosed) {
		t.Errorf("SendOTP() handle error = %v, want ErrQueueClosed", err)
	}
}
