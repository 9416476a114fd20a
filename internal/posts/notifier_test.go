package posts_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agora/internal/moderation"
	"github.com/JaimeStill/agora/internal/posts"
)

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := posts.NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	id := uuid.New()
	err := n.Publish(context.Background(), posts.Event{
		Type:   posts.EventStatus,
		PostID: id,
		Status: moderation.StatusRejected,
		At:     time.Now(),
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"post.status", id.String(), "status=rejected"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
