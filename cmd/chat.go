package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/owlandlion/access-cli/internal"
)

// runChatLoop drives an interactive chat session. Each input line is one
// turn; typing a starter's number sends that starter. The loop ends on EOF,
// /quit, or when done is closed (used by the waiting room once the match
// resolves).
func runChatLoop(ctx context.Context, chat *internal.ChatLog, starters []string, scanner *bufio.Scanner, done <-chan struct{}) {
	// Live rendering: every append (user echo, typing indicator, reply)
	// prints as it lands in the log.
	chat.OnAppend = func(msg internal.ChatMessage) {
		fmt.Println(renderMessage(msg))
	}
	defer func() { chat.OnAppend = nil }()

	for _, msg := range chat.Messages() {
		fmt.Println(renderMessage(msg))
	}
	fmt.Println()
	fmt.Println(renderStarters(starters))
	fmt.Println(idStyle.Render("Type /quit to leave the chat."))

	for {
		if done != nil {
			select {
			case <-done:
				return
			default:
			}
		}

		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return
		}

		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(starters) {
			line = starters[n-1]
		}

		// Empty input is a no-op in the log; skip the round trip entirely.
		if line == "" {
			continue
		}

		chat.Send(ctx, line)
		fmt.Println()
	}
}
