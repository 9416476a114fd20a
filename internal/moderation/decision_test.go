package moderation_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JaimeStill/agora/internal/moderation"
)

type mockTextClassifier struct {
	calls int
	runFn func(ctx context.Context, text string) (moderation.Outcome, error)
}

func (m *mockTextClassifier) Run(ctx context.Context, text string) (moderation.Outcome, error) {
	m.calls++
	return m.runFn(ctx, text)
}

func TestDecide(t *testing.T) {
	unsafe := moderation.Outcome{Result: moderation.Result{
		IsSafe:            false,
		FlaggedCategories: []string{"toxic"},
		Confidence:        map[string]float64{"toxic": 0.93},
		Provider:          "huggingface",
	}}
	allFailed := &moderation.AllProvidersFailedError{Attempts: []moderation.Attempt{{Provider: "a", Message: "down"}}}

	tests := []struct {
		name       string
		mode       moderation.Mode
		outcome    moderation.Outcome
		err        error
		wantStatus moderation.Status
		wantMsg    string
		wantCalls  int
		wantFlags  []string
	}{
		{
			name:       "not required",
			mode:       moderation.Mode{Required: false, Auto: true},
			wantStatus: moderation.StatusApproved,
			wantMsg:    moderation.MessagePublished,
		},
		{
			name:       "manual review",
			mode:       moderation.Mode{Required: true, Auto: false},
			wantStatus: moderation.StatusPending,
			wantMsg:    moderation.MessageAwaiting,
		},
		{
			name:       "auto safe",
			mode:       moderation.Mode{Required: true, Auto: true},
			outcome:    moderation.Outcome{Result: moderation.Result{IsSafe: true}},
			wantStatus: moderation.StatusApproved,
			wantMsg:    moderation.MessageAutoApprove,
			wantCalls:  1,
		},
		{
			name:       "auto unsafe",
			mode:       moderation.Mode{Required: true, Auto: true},
			outcome:    unsafe,
			wantStatus: moderation.StatusRejected,
			wantMsg:    moderation.MessageRejected,
			wantCalls:  1,
			wantFlags:  []string{"toxic"},
		},
		{
			name:       "outage degrades to pending",
			mode:       moderation.Mode{Required: true, Auto: true},
			err:        allFailed,
			wantStatus: moderation.StatusPending,
			wantMsg:    moderation.MessageDegraded,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTextClassifier{runFn: func(context.Context, string) (moderation.Outcome, error) {
				return tt.outcome, tt.err
			}}
			engine := moderation.NewEngine(mock, discard())

			d, err := engine.Decide(context.Background(), tt.mode, moderation.Content{Text: "hello"})
			if err != nil {
				t.Fatalf("decide: %v", err)
			}
			if d.Status != tt.wantStatus || d.Message != tt.wantMsg {
				t.Errorf("decision = %d %q", d.Status, d.Message)
			}
			if mock.calls != tt.wantCalls {
				t.Errorf("classifier calls = %d, want %d", mock.calls, tt.wantCalls)
			}
			if !reflect.DeepEqual(d.FlaggedCategories, tt.wantFlags) {
				t.Errorf("flags = %v, want %v", d.FlaggedCategories, tt.wantFlags)
			}
		})
	}
}

func TestDecideRejectedDetails(t *testing.T) {
	mock := &mockTextClassifier{runFn: func(context.Context, string) (moderation.Outcome, error) {
		return moderation.Outcome{Result: moderation.Result{
			FlaggedCategories: []string{"toxic"},
			Confidence:        map[string]float64{"toxic": 0.8},
			Provider:          "p",
		}}, nil
	}}
	engine := moderation.NewEngine(mock, discard())

	d, err := engine.Decide(context.Background(), moderation.Mode{Required: true, Auto: true}, moderation.Content{
		Text:      "bad words",
		ImageURLs: []string{"https://example.com/a.png"},
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}

	if d.Note == nil || *d.Note != moderation.NoteViolation {
		t.Errorf("note = %v", d.Note)
	}
	if !d.AutoModerated || d.Details == nil {
		t.Fatalf("decision = %+v", d)
	}
	if d.Details.TextAnalysis.Provider != "p" || d.Details.Confidence["toxic"] != 0.8 {
		t.Errorf("details = %+v", d.Details)
	}
	if len(d.Details.ImageAnalysis) != 1 || !d.Details.ImageAnalysis[0].IsSafe || d.Details.ImageAnalysis[0].Provider != "none" {
		t.Errorf("image analysis = %+v", d.Details.ImageAnalysis)
	}
}

func TestDecideContextError(t *testing.T) {
	mock := &mockTextClassifier{runFn: func(context.Context, string) (moderation.Outcome, error) {
		return moderation.Outcome{}, context.Canceled
	}}
	engine := moderation.NewEngine(mock, discard())

	_, err := engine.Decide(context.Background(), moderation.Mode{Required: true, Auto: true}, moderation.Content{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestDecideWithChainOutage(t *testing.T) {
	p := &mockClassifier{name: "p", priority: 1, classifyFn: failing(moderation.KindUnavailable)}
	engine := moderation.NewEngine(newChain(t, newClock(), p), discard())

	d, err := engine.Decide(context.Background(), moderation.Mode{Required: true, Auto: true}, moderation.Content{Text: "x"})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.Status != moderation.StatusPending {
		t.Errorf("status = %v", d.Status)
	}
}

func TestDecideNotRequiredSkipsChain(t *testing.T) {
	p := &mockClassifier{name: "p", priority: 1, classifyFn: safe("p")}
	engine := moderation.NewEngine(newChain(t, newClock(), p), discard())

	for _, text := range []string{"", "anything", "really offensive content"} {
		d, _ := engine.Decide(context.Background(), moderation.Mode{Required: false}, moderation.Content{Text: text})
		if d.Status != moderation.StatusApproved {
			t.Errorf("status = %v for %q", d.Status, text)
		}
	}
	if p.calls.Load() != 0 {
		t.Errorf("provider calls = %d", p.calls.Load())
	}
}
