package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/owlandlion/access-cli/internal"
)

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(t *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range t.Messages {
		obj := map[string]interface{}{
			"sender": string(msg.Sender),
			"text":   msg.Text,
		}

		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.UTC().Format(time.RFC3339)
		}

		// Encode to single line
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
