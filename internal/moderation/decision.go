package moderation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
)

// Status is a post's publication status.
type Status int

const (
	StatusPending  Status = 1
	StatusApproved Status = 2
	StatusRejected Status = 3
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusRejected
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	}
	return strconv.Itoa(int(s))
}

// Decision messages returned to the author.
const (
	MessagePublished   = "Post created successfully"
	MessageAwaiting    = "Post created and awaiting manual review"
	MessageAutoApprove = "Post created and automatically approved"
	MessageRejected    = "Post created but rejected for violating community rules"
	MessageDegraded    = "Post created and awaiting review (automatic review temporarily unavailable)"

	// NoteViolation is the moderation note stored on automatically rejected posts.
	NoteViolation = "Content violates community rules"
)

// Mode is the part of a moderation policy the engine acts on.
type Mode struct {
	Required bool
	Auto     bool
}

// Content is the moderated part of a post.
type Content struct {
	Text      string
	ImageURLs []string
}

// Details is the analysis stored with a rejected post.
type Details struct {
	TextAnalysis  Result             `json:"textAnalysis"`
	ImageAnalysis []ImageAnalysis    `json:"imageAnalysis"`
	Confidence    map[string]float64 `json:"confidence"`
}

// Decision is the status a new post is created with.
type Decision struct {
	Status            Status
	Message           string
	Note              *string
	FlaggedCategories []string
	Details           *Details
	// AutoModerated is true when a classification decided the status.
	AutoModerated bool
}

// TextClassifier is satisfied by *Chain.
type TextClassifier interface {
	Run(ctx context.Context, text string) (Outcome, error)
}

// Engine turns a policy mode and post content into a Decision.
type Engine struct {
	classifier TextClassifier
	logger     *slog.Logger
}

// NewEngine creates an Engine that classifies through classifier.
func NewEngine(classifier TextClassifier, logger *slog.Logger) *Engine {
	return &Engine{
		classifier: classifier,
		logger:     logger.With("system", "moderation-engine"),
	}
}

// Decide picks the initial status for a post. A total provider outage
// degrades to pending instead of failing; only context errors are returned.
func (e *Engine) Decide(ctx context.Context, mode Mode, content Content) (Decision, error) {
	d, err := e.decide(ctx, mode, content)
	if err == nil {
		decisions.WithLabelValues(d.Status.String()).Inc()
	}
	return d, err
}

func (e *Engine) decide(ctx context.Context, mode Mode, content Content) (Decision, error) {
	if !mode.Required {
		return Decision{Status: StatusApproved, Message: MessagePublished}, nil
	}
	if !mode.Auto {
		return Decision{Status: StatusPending, Message: MessageAwaiting}, nil
	}

	out, err := e.classifier.Run(ctx, content.Text)
	if errors.Is(err, ErrAllProvidersFailed) {
		e.logger.Warn("automatic review unavailable, holding post for review", "error", err)
		return Decision{Status: StatusPending, Message: MessageDegraded}, nil
	}
	if err != nil {
		return Decision{}, err
	}

	text := out.Result
	images := AnalyzeImages(ctx, content.ImageURLs)

	if text.IsSafe && imagesSafe(images) {
		return Decision{Status: StatusApproved, Message: MessageAutoApprove, AutoModerated: true}, nil
	}

	e.logger.Info("post rejected by automatic review",
		"provider", text.Provider, "categories", text.FlaggedCategories, "source", string(out.Source))

	note := NoteViolation
	return Decision{
		Status:            StatusRejected,
		Message:           MessageRejected,
		Note:              &note,
		FlaggedCategories: text.FlaggedCategories,
		Details: &Details{
			TextAnalysis:  text,
			ImageAnalysis: images,
			Confidence:    text.Confidence,
		},
		AutoModerated: true,
	}, nil
}
