package internal

import (
	"context"
	"strings"
	"time"
)

// Responder produces the bot reply for one user message, usually by calling
// a remote chat endpoint.
type Responder func(ctx context.Context, text string) (string, error)

// Fallback produces the degraded reply shown when the responder fails.
type Fallback func(text string) string

// ChatLog is the append-only ordered message log behind a chat surface.
//
// Sends are serialized: the lock is held for the whole round trip, so the
// typing placeholder of one send can never interleave with another. The
// placeholder is always inserted after the user message and removed before
// the resolution message is appended, success or failure.
type ChatLog struct {
	respond  Responder
	fallback Fallback

	messages []ChatMessage

	// OnAppend and OnRemove, when set, observe log mutations as they happen
	// (for live terminal rendering). Called with the lock held.
	OnAppend func(ChatMessage)
	OnRemove func(id string)

	sendMu chan struct{} // buffered size 1, acts as the send lock
}

// NewChatLog creates a log seeded with a greeting from the bot.
func NewChatLog(greeting string, respond Responder, fallback Fallback) *ChatLog {
	l := &ChatLog{
		respond:  respond,
		fallback: fallback,
		sendMu:   make(chan struct{}, 1),
	}
	if greeting != "" {
		l.messages = append(l.messages, NewChatMessage(greeting, SenderBot))
	}
	return l
}

// Send runs one full chat turn. Empty or whitespace-only input is a no-op
// and leaves the log untouched. Returns the resolution message and whether
// a turn actually happened.
func (l *ChatLog) Send(ctx context.Context, text string) (ChatMessage, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ChatMessage{}, false
	}

	l.sendMu <- struct{}{}
	defer func() { <-l.sendMu }()

	l.append(NewChatMessage(text, SenderUser))

	l.append(ChatMessage{
		ID:        TypingID,
		Text:      "Typing...",
		Sender:    SenderBot,
		Timestamp: time.Now(),
	})

	reply, err := l.respond(ctx, trimmed)

	l.removeTyping()

	if err != nil {
		// Degraded, never fatal: the conversation continues on the
		// offline reply and the outage only shows up in the logs.
		LogWarn("Chat send failed, using offline reply: %v", err)
		reply = l.fallback(trimmed)
	}

	bot := NewChatMessage(reply, SenderBot)
	l.append(bot)
	return bot, true
}

// Messages returns a copy of the current log.
func (l *ChatLog) Messages() []ChatMessage {
	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the current log length.
func (l *ChatLog) Len() int {
	return len(l.messages)
}

func (l *ChatLog) append(msg ChatMessage) {
	l.messages = append(l.messages, msg)
	if l.OnAppend != nil {
		l.OnAppend(msg)
	}
}

func (l *ChatLog) removeTyping() {
	kept := l.messages[:0]
	removed := false
	for _, msg := range l.messages {
		if msg.ID == TypingID {
			removed = true
			continue
		}
		kept = append(kept, msg)
	}
	l.messages = kept
	if removed && l.OnRemove != nil {
		l.OnRemove(TypingID)
	}
}

// StudentGreeting opens the student-facing chat.
const StudentGreeting = "Hi! I'm here to help with your tutoring experience. Here are some things you can ask me about:"

// StudentStarters are the canned prompts offered to students.
var StudentStarters = []string{
	"How will I be matched with a tutor?",
	"What accommodations are available?",
	"How do I schedule tutoring sessions?",
	"What if I need to change my availability?",
	"How do I contact my tutor?",
	"What study strategies work best for my learning style?",
}

// TutorGreeting opens the tutor-facing chat about one student.
func TutorGreeting(studentName string) string {
	return "Hi! I'm here to help you understand " + studentName +
		"'s learning needs and answer any questions about their accommodations or preferences. What would you like to know?"
}

// TutorStarters are the canned prompts offered to tutors.
var TutorStarters = []string{
	"What accommodations does this student need?",
	"How should I adapt my teaching style for this student?",
	"What are this student's learning preferences?",
	"Can you suggest teaching strategies for this student's disability?",
	"What subjects is this student most interested in?",
	"When is this student available for sessions?",
}

// studentTroubleReply is the static apology the student chat falls back to.
const studentTroubleReply = "I'm having trouble connecting right now. Please try again or contact support at support@fhda.edu for immediate assistance."

// NewStudentChat wires a chat log to the student chatbot endpoint. Failures
// degrade to a static apology.
func NewStudentChat(client *Client, studentID string) *ChatLog {
	respond := func(ctx context.Context, text string) (string, error) {
		return client.StudentChat(ctx, studentID, text, "General")
	}
	fallback := func(string) string { return studentTroubleReply }
	return NewChatLog(StudentGreeting, respond, fallback)
}

// NewTutorChat wires a chat log to the tutor chat endpoint for one student.
// Failures degrade to the offline profile responder, so the tutor still gets
// a useful answer from the student record.
func NewTutorChat(client *Client, student *Student) *ChatLog {
	respond := func(ctx context.Context, text string) (string, error) {
		return client.TutorChat(ctx, student.StudentID, TutorChatRequest{
			Message: text,
			Subject: "General",
			TutorID: student.TutorID,
		})
	}
	fallback := func(text string) string {
		return ProfileReply(text, student)
	}
	return NewChatLog(TutorGreeting(student.DisplayName), respond, fallback)
}
