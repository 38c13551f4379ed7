package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/owlandlion/access-cli/internal"
)

var (
	// Styles
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("125")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	typingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	starterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("125")).
			Padding(1, 2)
)

// renderMessage formats one chat message for the terminal.
func renderMessage(msg internal.ChatMessage) string {
	if msg.ID == internal.TypingID {
		return typingStyle.Render("🤖 Typing...")
	}
	switch msg.Sender {
	case internal.SenderBot:
		return botStyle.Render("🤖 Assistant: ") + msg.Text
	default:
		return userStyle.Render("🧑 You: ") + msg.Text
	}
}

// renderStarters prints the numbered conversation starters.
func renderStarters(starters []string) string {
	var b strings.Builder
	b.WriteString(infoStyle.Render("Conversation starters (type a number to use one):"))
	b.WriteString("\n")
	for i, starter := range starters {
		b.WriteString(starterStyle.Render(fmt.Sprintf("  [%d] %s", i+1, starter)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTutorCard formats the matched tutor profile.
func renderTutorCard(match internal.TutorMatch) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(match.Name))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(match.Specialty))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("⏱  Experience: %s\n", match.Experience))
	b.WriteString(fmt.Sprintf("⭐ Rating: %.1f/5.0\n\n", match.Rating))
	b.WriteString("About Your Tutor\n")
	b.WriteString(match.Bio)
	b.WriteString("\n\n")
	b.WriteString(dateStyle.Render("🎉 Your tutor will contact you within 24 hours to schedule your first session!"))
	return cardStyle.Render(b.String())
}

// renderStudyPlan formats a study plan with its section lists.
func renderStudyPlan(plan *internal.StudyPlan, student *internal.Student) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("🎯 Personalized Learning Plan"))
	b.WriteString("\n\n")
	if plan.Overview != "" {
		b.WriteString(plan.Overview)
		b.WriteString("\n")
	}
	b.WriteString(dateStyle.Render(fmt.Sprintf(
		"This plan is tailored for %s with %s learning style in a %s format.",
		student.PrimaryDisability,
		strings.ToLower(student.LearningPreferences.Style),
		strings.ToLower(student.LearningPreferences.Format))))
	b.WriteString("\n")

	if len(plan.Strategies) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("💡 Core Learning Strategies"))
		b.WriteString("\n")
		for _, s := range plan.Strategies {
			b.WriteString("  • " + s + "\n")
		}
	}

	if len(plan.Activities) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("📚 Recommended Activities"))
		b.WriteString("\n")
		for _, a := range plan.Activities {
			b.WriteString("  • " + a + "\n")
		}
	}

	b.WriteString("\n")
	if len(plan.SubjectAdaptations) > 0 {
		b.WriteString(titleStyle.Render("🕐 Subject-Specific Adaptations"))
		b.WriteString("\n")
		for _, sa := range plan.SubjectAdaptations {
			b.WriteString(fmt.Sprintf("  %s — %s\n", countStyle.Render(sa.Subject), sa.Recommendation))
		}
	} else if len(student.PreferredSubjects) > 0 {
		b.WriteString(titleStyle.Render("🕐 Subject Focus Areas"))
		b.WriteString("\n")
		for _, subject := range student.PreferredSubjects {
			b.WriteString(fmt.Sprintf("  %s — personalized strategies will be included in your detailed study plan.\n",
				countStyle.Render(subject)))
		}
	}

	b.WriteString("\n")
	if len(plan.Accommodations) > 0 {
		b.WriteString(titleStyle.Render("Accommodation Implementation"))
		b.WriteString("\n")
		for _, a := range plan.Accommodations {
			b.WriteString("  • " + a + "\n")
		}
	} else if len(student.AccommodationsNeeded) > 0 {
		b.WriteString(titleStyle.Render("Required Accommodations"))
		b.WriteString("\n")
		b.WriteString("  " + strings.Join(student.AccommodationsNeeded, ", ") + "\n")
	}

	return b.String()
}
