package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/owlandlion/access-cli/internal"
	"github.com/spf13/cobra"
)

// studentCmd represents the student command
var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Register as a student and get matched with a tutor",
	Long: `Run the full student flow: fill in your learning profile, wait while the
backend finds your tutor match, and chat with the assistant afterwards.

While the match search runs you can already ask the assistant questions in
the waiting room. The finished conversation is archived locally; browse it
later with 'access-cli transcript list'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := activeSession(cfg)
		if err != nil {
			return err
		}
		client := apiClient(cfg, session)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println(sectionStyle.Render("📝 Student Registration"))
		fmt.Println(infoStyle.Render("Help us understand your learning needs and preferences."))
		fmt.Println()

		student := promptStudent(scanner, session)

		flow := internal.NewMatchFlow(client, cfg.MinSearchDelay, cfg.CelebrationDuration)

		fmt.Println()
		fmt.Println(successStyle.Render("✅ Registration submitted!"))
		fmt.Println(infoStyle.Render("🔍 Finding your perfect tutor match..."))
		fmt.Println()

		// The registration call and the minimum search delay run in the
		// background; the waiting-room chat stays interactive meanwhile.
		done := make(chan struct{})
		var match internal.TutorMatch
		var submitErr error
		go func() {
			defer close(done)
			match, submitErr = flow.Submit(ctx, student)
		}()

		chat := internal.NewStudentChat(client, student.StudentID)
		fmt.Println(headerStyle.Render("While you wait, feel free to ask questions!"))
		runChatLoop(ctx, chat, internal.StudentStarters, scanner, done)

		<-done
		if submitErr != nil {
			return fmt.Errorf("match search aborted: %w", submitErr)
		}
		if flow.RegistrationErr != nil {
			// Mirror of the web client's alert: visible, then the flow
			// continues with the fallback match.
			fmt.Println(warningStyle.Render("⚠️  Registration could not be confirmed with the backend. Please try again later if your tutor does not reach out."))
		}

		fmt.Println()
		fmt.Println(sectionStyle.Render("🎓 Perfect Match Found!"))
		fmt.Println(infoStyle.Render(match.MatchReason))
		fmt.Println()
		fmt.Println(renderTutorCard(match))
		fmt.Println(successStyle.Render("🎊 🎊 🎊"))

		// Hold the celebration on screen for its duration, then move on.
		// The disposer guarantees the timer dies with this view.
		hidden := make(chan struct{})
		stop := flow.StartCelebration(func() { close(hidden) })
		defer stop()
		select {
		case <-hidden:
		case <-ctx.Done():
			return ctx.Err()
		}

		fmt.Println()
		fmt.Print(infoStyle.Render("Press Enter for what's next... "))
		scanner.Scan()

		if err := flow.AdvanceToChat(); err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(headerStyle.Render("You're All Set!"))
		fmt.Printf("You've been matched with %s. While you wait for them to contact you, continue chatting below!\n\n", match.Name)
		runChatLoop(ctx, chat, internal.StudentStarters, scanner, nil)

		return archiveStudentChat(cfg, flow.Student(), chat)
	},
}

// promptStudent collects the registration profile interactively. The student
// id comes from the session, never from input.
func promptStudent(scanner *bufio.Scanner, session *internal.Session) *internal.Student {
	student := &internal.Student{
		StudentID:   session.User(),
		DisplayName: promptLine(scanner, "Display name", session.Name),
		Email:       promptLine(scanner, "Email", session.Email),
		PrimaryDisability: promptChoice(scanner, "Primary disability", []string{
			"Dyslexia", "ADHD", "Autism Spectrum Disorder",
			"Visual Impairment", "Hearing Impairment", "Physical Disability",
		}),
		AccommodationsNeeded: promptList(scanner, "Accommodations needed (comma-separated)"),
		LearningPreferences: internal.LearningPreferences{
			Style:    promptChoice(scanner, "Learning style", []string{"Visual", "Auditory", "Reading/Writing", "Kinesthetic"}),
			Format:   promptChoice(scanner, "Session format", []string{"1-on-1", "Small group"}),
			Modality: promptChoice(scanner, "Modality", []string{"In-person", "Online", "Hybrid"}),
		},
		PreferredSubjects: promptList(scanner, "Preferred subjects (comma-separated)"),
	}

	fmt.Println(infoStyle.Render("Weekly availability (blank day to finish):"))
	for {
		day := promptLine(scanner, "  Day", "")
		if day == "" {
			break
		}
		start := promptLine(scanner, "  Start time (e.g. 15:00)", "")
		end := promptLine(scanner, "  End time (e.g. 17:00)", "")
		student.Availability = append(student.Availability, internal.AvailabilitySlot{
			Day: day, StartTime: start, EndTime: end,
		})
	}

	student.AdditionalInfo = promptLine(scanner, "Anything else we should know?", "")
	return student
}

func promptLine(scanner *bufio.Scanner, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}
	if !scanner.Scan() {
		return defaultValue
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return defaultValue
	}
	return line
}

func promptChoice(scanner *bufio.Scanner, label string, options []string) string {
	fmt.Printf("%s:\n", label)
	for i, opt := range options {
		fmt.Printf("  [%d] %s\n", i+1, opt)
	}
	for {
		choice := promptLine(scanner, "Choose", "1")
		for i, opt := range options {
			if choice == fmt.Sprintf("%d", i+1) || strings.EqualFold(choice, opt) {
				return options[i]
			}
		}
		fmt.Println(warningStyle.Render("Please pick one of the listed options."))
	}
}

func promptList(scanner *bufio.Scanner, label string) []string {
	line := promptLine(scanner, label, "")
	if line == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(line, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func archiveStudentChat(cfg internal.Config, student *internal.Student, chat *internal.ChatLog) error {
	messages := chat.Messages()
	if len(messages) <= 1 {
		// Nothing beyond the greeting; not worth archiving.
		return nil
	}

	store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
	if err != nil {
		internal.LogWarn("Failed to open transcript archive: %v", err)
		return nil
	}
	defer func() { _ = store.Close() }()

	startedAt := messages[0].Timestamp
	id, err := store.ArchiveChat(uuid.NewString(), "student", student, startedAt, messages)
	if err != nil {
		internal.LogWarn("Failed to archive conversation: %v", err)
		return nil
	}

	fmt.Println()
	fmt.Println(idStyle.Render("💾 Conversation archived as " + id))
	return nil
}

func init() {
	rootCmd.AddCommand(studentCmd)
}
