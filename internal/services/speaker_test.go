package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSpeaker_SpeaksLine(t *testing.T) {
	mock := NewMockNarrator()
	s := NewSpeaker(mock, Utterance{Rate: 0.9, Pitch: 0.8, Volume: 1.0}, testLogger())
	defer s.Close()

	s.Narrate("The attic remembers you.")

	waitFor(t, func() bool { return len(mock.Spoken()) == 1 }, "narrator was never called")

	got := mock.Spoken()[0]
	if got.Text != "The attic remembers you." {
		t.Errorf("Expected line text, got %q", got.Text)
	}
	if got.Rate != 0.9 || got.Pitch != 0.8 || got.Volume != 1.0 {
		t.Errorf("Expected delivery defaults on utterance, got %+v", got)
	}
}

func TestSpeaker_EmptyLineIgnored(t *testing.T) {
	mock := NewMockNarrator()
	s := NewSpeaker(mock, Utterance{}, testLogger())
	defer s.Close()

	s.Narrate("")
	time.Sleep(20 * time.Millisecond)

	if n := len(mock.Spoken()); n != 0 {
		t.Errorf("Expected no narration for empty line, got %d calls", n)
	}
}

func TestSpeaker_SupersedesInFlight(t *testing.T) {
	firstCancelled := make(chan struct{})
	started := make(chan string, 2)

	mock := NewMockNarrator()
	mock.SpeakFunc = func(ctx context.Context, u Utterance) error {
		started <- u.Text
		if u.Text == "first" {
			// Block until superseded.
			<-ctx.Done()
			close(firstCancelled)
			return ctx.Err()
		}
		return nil
	}

	s := NewSpeaker(mock, Utterance{}, testLogger())
	defer s.Close()

	s.Narrate("first")
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first utterance never started")
	}

	s.Narrate("second")
	select {
	case <-firstCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("first utterance was not cancelled by the second")
	}

	waitFor(t, func() bool { return len(mock.Spoken()) == 2 }, "second utterance never spoken")
}

func TestSpeaker_CloseCancelsInFlight(t *testing.T) {
	mock := NewMockNarrator()
	mock.SpeakFunc = func(ctx context.Context, u Utterance) error {
		<-ctx.Done()
		return ctx.Err()
	}

	s := NewSpeaker(mock, Utterance{}, testLogger())
	s.Narrate("endless line")
	waitFor(t, func() bool { return len(mock.Spoken()) == 1 }, "utterance never started")

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight utterance")
	}
}

func TestSpeaker_NarrateAfterCloseIsNoop(t *testing.T) {
	mock := NewMockNarrator()
	s := NewSpeaker(mock, Utterance{}, testLogger())
	s.Close()

	s.Narrate("too late")
	time.Sleep(20 * time.Millisecond)

	if n := len(mock.Spoken()); n != 0 {
		t.Errorf("Expected no narration after close, got %d calls", n)
	}
}
