package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/owlandlion/access-cli/internal"
	"github.com/owlandlion/access-cli/testutil"
)

func seedTranscript(t *testing.T, dir, id string) {
	t.Helper()
	store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(dir))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	start := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	err = store.Save(&internal.Transcript{
		ID:          id,
		Role:        "student",
		StudentID:   "s1",
		StudentName: "Alex Chen",
		TutorName:   "Jane Doe",
		StartedAt:   start,
		EndedAt:     start.Add(5 * time.Minute),
		Messages: []internal.ChatMessage{
			{ID: "m1", Text: "Hello!", Sender: internal.SenderBot, Timestamp: start},
			{ID: "m2", Text: "Hi!", Sender: internal.SenderUser, Timestamp: start.Add(time.Minute)},
		},
	})
	if err != nil {
		t.Fatalf("failed to seed transcript: %v", err)
	}
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	resetHelpFlags(rootCmd)
	return err
}

func TestTranscriptList_EmptyArchive(t *testing.T) {
	dir := t.TempDir()
	if err := runCommand(t, "transcript", "list", "--data-dir", dir); err != nil {
		t.Errorf("transcript list on empty archive error = %v", err)
	}
}

func TestTranscriptShow(t *testing.T) {
	dir := t.TempDir()
	seedTranscript(t, dir, "tr-cmd-1")

	if err := runCommand(t, "transcript", "show", "tr-cmd-1", "--data-dir", dir); err != nil {
		t.Errorf("transcript show error = %v", err)
	}

	// Prefix resolution works too.
	if err := runCommand(t, "transcript", "show", "tr-cmd", "--data-dir", dir); err != nil {
		t.Errorf("transcript show by prefix error = %v", err)
	}
}

func TestTranscriptShow_Missing(t *testing.T) {
	dir := t.TempDir()
	if err := runCommand(t, "transcript", "show", "nope", "--data-dir", dir); err == nil {
		t.Error("transcript show of a missing id succeeded")
	}
}

func TestTranscriptExport(t *testing.T) {
	dir := t.TempDir()
	seedTranscript(t, dir, "tr-cmd-2")
	outPath := filepath.Join(dir, "out.json")

	err := runCommand(t, "transcript", "export", "tr-cmd-2",
		"--data-dir", dir, "--format", "json", "--output", outPath)
	if err != nil {
		t.Fatalf("transcript export error = %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("exported file unreadable: %v", err)
	}
	var decoded internal.Transcript
	testutil.JSONUnmarshal(t, data, &decoded)
	if decoded.ID != "tr-cmd-2" || len(decoded.Messages) != 2 {
		t.Errorf("exported transcript = %+v", decoded)
	}
}

func TestTranscriptExport_AfterHelp(t *testing.T) {
	// A --help run on the shared command instance must not make later
	// executions short-circuit to help output.
	if err := runCommand(t, "transcript", "export", "--help"); err != nil {
		t.Fatalf("transcript export --help error = %v", err)
	}

	dir := t.TempDir()
	seedTranscript(t, dir, "tr-cmd-4")
	outPath := filepath.Join(dir, "after-help.json")

	err := runCommand(t, "transcript", "export", "tr-cmd-4",
		"--data-dir", dir, "--format", "json", "--output", outPath)
	if err != nil {
		t.Fatalf("transcript export after help error = %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("export after help wrote no file: %v", err)
	}

	err = runCommand(t, "transcript", "export", "tr-cmd-4",
		"--data-dir", dir, "--format", "csv")
	if err == nil {
		t.Error("unsupported format accepted after a help run")
	}
}

func TestTranscriptExport_InvalidFormat(t *testing.T) {
	dir := t.TempDir()
	seedTranscript(t, dir, "tr-cmd-3")

	err := runCommand(t, "transcript", "export", "tr-cmd-3",
		"--data-dir", dir, "--format", "csv")
	if err == nil {
		t.Error("transcript export with an unsupported format succeeded")
	}
}
