package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/owlandlion/access-cli/internal"
	"github.com/owlandlion/access-cli/internal/export"
	"github.com/owlandlion/access-cli/testutil"
	"gopkg.in/yaml.v3"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format    string
		extension string
		wantErr   bool
	}{
		{format: "json", extension: "json"},
		{format: "jsonl", extension: "jsonl"},
		{format: "yaml", extension: "yaml"},
		{format: "md", extension: "md"},
		{format: "markdown", extension: "md"},
		{format: "csv", wantErr: true},
		{format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			exporter, err := export.NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := exporter.Extension(); got != tt.extension {
				t.Errorf("Extension() = %q, want %q", got, tt.extension)
			}
		})
	}
}

func TestJSONExporter(t *testing.T) {
	transcript := testutil.SampleTranscript("tr-1")

	var buf bytes.Buffer
	exporter, _ := export.NewExporter("json")
	if err := exporter.Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.Transcript
	testutil.JSONUnmarshal(t, buf.Bytes(), &decoded)
	if decoded.ID != "tr-1" || decoded.StudentName != "Alex Chen" {
		t.Errorf("decoded transcript = %+v", decoded)
	}
	if len(decoded.Messages) != 3 {
		t.Errorf("decoded %d messages, want 3", len(decoded.Messages))
	}
}

func TestJSONLExporter(t *testing.T) {
	transcript := testutil.SampleTranscript("tr-1")

	var buf bytes.Buffer
	exporter, _ := export.NewExporter("jsonl")
	if err := exporter.Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(transcript.Messages) {
		t.Fatalf("output has %d lines, want one per message (%d)", len(lines), len(transcript.Messages))
	}
	for i, line := range lines {
		var obj map[string]interface{}
		testutil.JSONUnmarshal(t, []byte(line), &obj)
		if obj["text"] != transcript.Messages[i].Text {
			t.Errorf("line %d text = %v, want %q", i, obj["text"], transcript.Messages[i].Text)
		}
	}
}

func TestMarkdownExporter(t *testing.T) {
	transcript := testutil.SampleTranscript("tr-1")

	var buf bytes.Buffer
	exporter, _ := export.NewExporter("md")
	if err := exporter.Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Transcript tr-1",
		"**Student:** Alex Chen",
		"**Tutor:** Jane Doe",
		"How do I schedule a session?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestYAMLExporter(t *testing.T) {
	transcript := testutil.SampleTranscript("tr-1")

	var buf bytes.Buffer
	exporter, _ := export.NewExporter("yaml")
	if err := exporter.Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var decoded internal.Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.ID != "tr-1" || len(decoded.Messages) != 3 {
		t.Errorf("decoded transcript = %+v", decoded)
	}
}

func TestExport_EmptyTranscript(t *testing.T) {
	empty := &internal.Transcript{ID: "empty", Role: "student"}

	for _, format := range []string{"json", "jsonl", "md", "yaml"} {
		exporter, err := export.NewExporter(format)
		if err != nil {
			t.Fatalf("NewExporter(%q) error = %v", format, err)
		}
		var buf bytes.Buffer
		if err := exporter.Export(empty, &buf); err != nil {
			t.Errorf("Export(%q) of empty transcript error = %v", format, err)
		}
	}
}
