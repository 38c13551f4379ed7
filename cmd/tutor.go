package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/owlandlion/access-cli/internal"
	"github.com/spf13/cobra"
)

// tutorCmd represents the tutor command
var tutorCmd = &cobra.Command{
	Use:   "tutor",
	Short: "Tutor tools: browse matched students, chat, study plans",
}

// tutorListCmd represents the tutor list command
var tutorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your matched students",
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

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		students, err := client.ListStudents(ctx)
		if err != nil {
			return fmt.Errorf("failed to load students: %w", err)
		}

		displayRoster(students)
		return nil
	},
}

func displayRoster(students []internal.Student) {
	if len(students) == 0 {
		fmt.Println(headerStyle.Render("📋 No students matched yet"))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 %d matched student(s)", len(students)))
	fmt.Println(header)
	fmt.Println()

	// Aligned columns, same layout the transcript listing uses
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Disability")+"\t"+titleStyle.Render("Subjects")+"\t"+titleStyle.Render("Style")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, s := range students {
		shortID := s.StudentID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		subjects := strings.Join(s.PreferredSubjects, ", ")
		if len(subjects) > 30 {
			subjects = subjects[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID),
			s.DisplayName,
			s.PrimaryDisability,
			subjects,
			dateStyle.Render(s.LearningPreferences.Style))
	}

	_ = w.Flush()
	fmt.Println()
	if len(students) > 0 {
		fmt.Println(idStyle.Render("💡 Tip: Use the full ID (e.g., ") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(students[0].StudentID) +
			idStyle.Render(") with `access-cli tutor chat <id>`"))
	}
}

// tutorChatCmd represents the tutor chat command
var tutorChatCmd = &cobra.Command{
	Use:   "chat <student-id>",
	Short: "Chat with the assistant about one student",
	Long: `Ask the assistant about a student's accommodations, learning preferences,
or teaching strategies. When the backend is unreachable the assistant still
answers from the student's profile, so the conversation never dead-ends.`,
	Args: cobra.ExactArgs(1),
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

		student, err := findStudent(ctx, client, args[0])
		if err != nil {
			return err
		}

		fmt.Println(sectionStyle.Render("💬 Chat about " + student.DisplayName))
		fmt.Println()

		chat := internal.NewTutorChat(client, student)
		scanner := bufio.NewScanner(os.Stdin)
		runChatLoop(ctx, chat, internal.TutorStarters, scanner, nil)

		return archiveTutorChat(cfg, student, chat)
	},
}

// tutorPlanCmd represents the tutor plan command
var tutorPlanCmd = &cobra.Command{
	Use:   "plan <student-id>",
	Short: "Show a student's personalized study plan",
	Args:  cobra.ExactArgs(1),
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

		student, err := findStudent(ctx, client, args[0])
		if err != nil {
			return err
		}

		fmt.Println(sectionStyle.Render("📖 Creating Your Personalized Study Plan"))

		// Rotating status lines while the backend generates the plan. The
		// disposer runs before rendering so no line fires into the output.
		stopRotation := internal.RotateMessages(internal.PlanLoadingMessages, 6*time.Second, func(msg string) {
			fmt.Println(dateStyle.Render("   " + msg))
		})

		body, err := client.FetchStudyPlan(ctx, student.StudentID)
		stopRotation()
		if err != nil {
			return fmt.Errorf("failed to load study plan: %w", err)
		}

		plan, err := internal.DecodeStudyPlan(body)
		if err != nil {
			return fmt.Errorf("failed to read study plan: %w", err)
		}

		fmt.Println()
		fmt.Println(renderStudyPlan(plan, student))
		return nil
	},
}

// findStudent resolves a student id (full or unique prefix) via the roster.
func findStudent(ctx context.Context, client *internal.Client, id string) (*internal.Student, error) {
	students, err := client.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}

	var found *internal.Student
	for i := range students {
		if students[i].StudentID == id {
			return &students[i], nil
		}
		if strings.HasPrefix(students[i].StudentID, id) {
			if found != nil {
				return nil, fmt.Errorf("student id %q is ambiguous", id)
			}
			found = &students[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no student with id %q", id)
	}
	return found, nil
}

func archiveTutorChat(cfg internal.Config, student *internal.Student, chat *internal.ChatLog) error {
	messages := chat.Messages()
	if len(messages) <= 1 {
		return nil
	}

	store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
	if err != nil {
		internal.LogWarn("Failed to open transcript archive: %v", err)
		return nil
	}
	defer func() { _ = store.Close() }()

	id, err := store.ArchiveChat(uuid.NewString(), "tutor", student, messages[0].Timestamp, messages)
	if err != nil {
		internal.LogWarn("Failed to archive conversation: %v", err)
		return nil
	}

	fmt.Println()
	fmt.Println(idStyle.Render("💾 Conversation archived as " + id))
	return nil
}

func init() {
	rootCmd.AddCommand(tutorCmd)
	tutorCmd.AddCommand(tutorListCmd)
	tutorCmd.AddCommand(tutorChatCmd)
	tutorCmd.AddCommand(tutorPlanCmd)
}
