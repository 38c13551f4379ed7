package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/owlandlion/access-cli/internal"
	"github.com/owlandlion/access-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Browse and export archived conversations",
	Long: `Conversations finished with 'access-cli student' or 'access-cli tutor chat'
are archived locally. List them, replay one, or export it to a file.`,
}

// transcriptListCmd represents the transcript list command
var transcriptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
		if err != nil {
			return fmt.Errorf("failed to open transcript archive: %w", err)
		}
		defer func() { _ = store.Close() }()

		summaries, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list transcripts: %w", err)
		}

		displayTranscripts(summaries)
		return nil
	},
}

func displayTranscripts(summaries []internal.TranscriptSummary) {
	if len(summaries) == 0 {
		fmt.Println(headerStyle.Render("📋 No archived conversations"))
		fmt.Println(idStyle.Render("Finish a chat with `access-cli student` or `access-cli tutor chat` first."))
		return
	}

	header := headerStyle.Render(fmt.Sprintf("📋 %d archived conversation(s)", len(summaries)))
	fmt.Println(header)
	fmt.Println()

	// Use tabwriter for aligned columns with better spacing
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Role")+"\t"+titleStyle.Render("Student")+"\t"+titleStyle.Render("Tutor")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Started")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, sum := range summaries {
		shortID := sum.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		tutor := sum.TutorName
		if tutor == "" {
			tutor = "—"
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID),
			sum.Role,
			sum.StudentName,
			tutor,
			countStyle.Render(fmt.Sprintf("%d", sum.MessageCount)),
			dateStyle.Render(sum.StartedAt.Local().Format("2006-01-02 15:04")))
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: `access-cli transcript show <id>` replays a conversation (prefixes work)."))
}

// transcriptShowCmd represents the transcript show command
var transcriptShowCmd = &cobra.Command{
	Use:   "show <transcript-id>",
	Short: "Replay one archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
		if err != nil {
			return fmt.Errorf("failed to open transcript archive: %w", err)
		}
		defer func() { _ = store.Close() }()

		t, err := loadTranscript(store, args[0])
		if err != nil {
			return err
		}

		title := fmt.Sprintf("💬 %s conversation with %s", t.Role, t.StudentName)
		fmt.Println(sectionStyle.Render(title))
		fmt.Println(dateStyle.Render(fmt.Sprintf("Started %s, %d message(s)",
			t.StartedAt.Local().Format("2006-01-02 15:04"), len(t.Messages))))
		fmt.Println()

		for _, msg := range t.Messages {
			fmt.Println(renderMessage(msg))
		}
		return nil
	},
}

// transcriptExportCmd represents the transcript export command
var transcriptExportCmd = &cobra.Command{
	Use:   "export <transcript-id>",
	Short: "Export an archived conversation to a file",
	Long: `Export one archived conversation in jsonl, md, yaml, or json format.
Without --output the file is named after the transcript id in the current
directory; use --output - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
		if err != nil {
			return fmt.Errorf("failed to open transcript archive: %w", err)
		}
		defer func() { _ = store.Close() }()

		t, err := loadTranscript(store, args[0])
		if err != nil {
			return err
		}

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		if exportOutput == "-" {
			return exporter.Export(t, os.Stdout)
		}

		path := exportOutput
		if path == "" {
			path = t.ID + "." + exporter.Extension()
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := exporter.Export(t, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Println(successStyle.Render("✅ Exported to " + path))
		return nil
	},
}

// loadTranscript resolves a transcript id (full or unique prefix).
func loadTranscript(store *internal.TranscriptStore, id string) (*internal.Transcript, error) {
	summaries, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	resolved := ""
	for _, sum := range summaries {
		if sum.ID == id {
			resolved = sum.ID
			break
		}
		if strings.HasPrefix(sum.ID, id) {
			if resolved != "" {
				return nil, fmt.Errorf("transcript id %q is ambiguous", id)
			}
			resolved = sum.ID
		}
	}
	if resolved == "" {
		return nil, fmt.Errorf("no transcript with id %q", id)
	}
	return store.Load(resolved)
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptListCmd)
	transcriptCmd.AddCommand(transcriptShowCmd)
	transcriptCmd.AddCommand(transcriptExportCmd)
	transcriptExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "md", "Export format: jsonl, md, yaml, json")
	transcriptExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path ('-' for stdout)")
}
