package cmd

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/owlandlion/access-cli/internal"
)

func newScriptedChat(reply string) *internal.ChatLog {
	respond := func(ctx context.Context, text string) (string, error) {
		return reply, nil
	}
	fallback := func(string) string { return "offline" }
	return internal.NewChatLog("Welcome!", respond, fallback)
}

func TestRunChatLoop_SendAndQuit(t *testing.T) {
	chat := newScriptedChat("Here's your answer.")
	scanner := bufio.NewScanner(strings.NewReader("How do I schedule?\n/quit\n"))

	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, nil)

	msgs := chat.Messages()
	if len(msgs) != 3 {
		t.Fatalf("log has %d messages after one turn, want 3", len(msgs))
	}
	if msgs[1].Text != "How do I schedule?" {
		t.Errorf("user message = %q", msgs[1].Text)
	}
	if msgs[2].Text != "Here's your answer." {
		t.Errorf("bot message = %q", msgs[2].Text)
	}
}

func TestRunChatLoop_StarterByNumber(t *testing.T) {
	chat := newScriptedChat("ok")
	scanner := bufio.NewScanner(strings.NewReader("2\n/quit\n"))

	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, nil)

	msgs := chat.Messages()
	if len(msgs) != 3 {
		t.Fatalf("log has %d messages, want 3", len(msgs))
	}
	if msgs[1].Text != internal.StudentStarters[1] {
		t.Errorf("user message = %q, want starter %q", msgs[1].Text, internal.StudentStarters[1])
	}
}

func TestRunChatLoop_EmptyInputSkipped(t *testing.T) {
	chat := newScriptedChat("ok")
	scanner := bufio.NewScanner(strings.NewReader("\n   \n/quit\n"))

	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, nil)

	if chat.Len() != 1 {
		t.Errorf("log grew to %d on empty input, want 1", chat.Len())
	}
}

func TestRunChatLoop_EndsOnEOF(t *testing.T) {
	chat := newScriptedChat("ok")
	scanner := bufio.NewScanner(strings.NewReader("hello\n"))

	// No /quit: the loop must end when input runs out.
	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, nil)

	if chat.Len() != 3 {
		t.Errorf("log has %d messages, want 3", chat.Len())
	}
}

func TestRunChatLoop_DoneChannelStops(t *testing.T) {
	chat := newScriptedChat("ok")
	done := make(chan struct{})
	close(done)
	scanner := bufio.NewScanner(strings.NewReader("should never be read\n"))

	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, done)

	if chat.Len() != 1 {
		t.Errorf("log grew to %d with a closed done channel, want 1", chat.Len())
	}
}

func TestRunChatLoop_ClearsObserver(t *testing.T) {
	chat := newScriptedChat("ok")
	scanner := bufio.NewScanner(strings.NewReader("/quit\n"))

	runChatLoop(context.Background(), chat, internal.StudentStarters, scanner, nil)

	if chat.OnAppend != nil {
		t.Error("OnAppend observer left attached after the loop")
	}
}
