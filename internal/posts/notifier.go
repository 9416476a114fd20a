package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/agora/internal/moderation"
)

// EventStatus is published when a post is manually moderated.
const EventStatus = "post.status"

// Event tells subscribers that a post changed status.
type Event struct {
	Type        string            `json:"type"`
	PostID      uuid.UUID         `json:"postId"`
	AuthorID    uuid.UUID         `json:"authorId"`
	Status      moderation.Status `json:"status"`
	Note        string            `json:"note,omitempty"`
	ModeratedBy uuid.UUID         `json:"moderatedBy"`
	At          time.Time         `json:"at"`
}

// Notifier delivers post events.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

type logNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a Notifier that only logs events.
func NewLogNotifier(logger *slog.Logger) Notifier {
	return &logNotifier{logger: logger.With("system", "post-events")}
}

func (n *logNotifier) Publish(_ context.Context, e Event) error {
	n.logger.Info("post event",
		"type", e.Type,
		"post", e.PostID,
		"author", e.AuthorID,
		"status", e.Status.String(),
	)
	return nil
}

type redisNotifier struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisNotifier publishes events as JSON on channel.
func NewRedisNotifier(client redis.UniversalClient, channel string) Notifier {
	return &redisNotifier{client: client, channel: channel}
}

func (n *redisNotifier) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
