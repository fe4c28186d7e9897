package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clientespro/client-manager/internal/core/ports"
)

func TestLogSender_DoesNotLogBody(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(zerolog.New(&buf))

	err := s.Send(context.Background(), ports.Notification{
		To:      "alice@example.com",
		Subject: "Password reset",
		Body:    "code 0123456789abcdef",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "alice@example.com") || !strings.Contains(out, "Password reset") {
		t.Fatalf("expected recipient and subject in log, got %s", out)
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Fatal("notification body leaked into the log")
	}
}

func TestLogSender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewLogSender(zerolog.Nop()).Send(ctx, ports.Notification{}); err == nil {
		t.Fatal("expected context error")
	}
}
