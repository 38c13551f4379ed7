package export

import (
	"fmt"
	"io"
	"time"

	"github.com/owlandlion/access-cli/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(t *internal.Transcript, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Transcript %s\n\n", t.ID)

	_, _ = fmt.Fprintf(w, "**Role:** %s  \n", t.Role)
	if t.StudentName != "" {
		_, _ = fmt.Fprintf(w, "**Student:** %s  \n", t.StudentName)
	}
	if t.TutorName != "" {
		_, _ = fmt.Fprintf(w, "**Tutor:** %s  \n", t.TutorName)
	}
	if !t.StartedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", t.StartedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	// Messages
	for i, msg := range t.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format("2006-01-02 15:04"))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Sender, timestamp, msg.Text)

		// Horizontal rule after each message (except the last one)
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
