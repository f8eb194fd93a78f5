package chat

import "testing"

func TestRelayFormatsSpeakerAndMessage(t *testing.T) {
	got := Relay("Alice", "hello world")
	want := "Alice: hello world"
	if got != want {
		t.Errorf("Relay() = %q, want %q", got, want)
	}
}

func TestGoodbyeIsPlainText(t *testing.T) {
	got := Goodbye("Alice")
	want := "goodbye Alice"
	if got != want {
		t.Errorf("Goodbye() = %q, want %q", got, want)
	}
}

func TestWelcomeIsNonEmpty(t *testing.T) {
	lines := Welcome()
	if len(lines) == 0 {
		t.Fatal("Welcome() returned no lines")
	}
}
