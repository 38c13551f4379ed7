package internal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// TranscriptStore archives finished chat sessions in a local SQLite
// database. It is an archive, not client-side truth: the backend owns live
// conversation state.
type TranscriptStore struct {
	db *sql.DB
}

// TranscriptDBPath returns the archive location inside the data directory.
func TranscriptDBPath(dataDir string) string {
	return filepath.Join(dataDir, "transcripts.db")
}

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id           TEXT PRIMARY KEY,
	role         TEXT NOT NULL,
	student_id   TEXT NOT NULL,
	student_name TEXT,
	tutor_name   TEXT,
	started_at   TEXT NOT NULL,
	ended_at     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	transcript_id TEXT NOT NULL REFERENCES transcripts(id),
	seq           INTEGER NOT NULL,
	msg_id        TEXT NOT NULL,
	sender        TEXT NOT NULL,
	text          TEXT NOT NULL,
	sent_at       TEXT NOT NULL,
	PRIMARY KEY (transcript_id, seq)
);`

// OpenTranscriptStore opens (and if needed creates) the archive database.
func OpenTranscriptStore(path string) (*TranscriptStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(transcriptSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &TranscriptStore{db: db}, nil
}

// Close closes the underlying database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

// Save archives a transcript and its messages in one transaction. Saving an
// existing id replaces the prior archive of that conversation.
func (s *TranscriptStore) Save(t *Transcript) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages WHERE transcript_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO transcripts (id, role, student_id, student_name, tutor_name, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ended_at = excluded.ended_at`,
		t.ID, t.Role, t.StudentID, t.StudentName, t.TutorName,
		t.StartedAt.UTC().Format(time.RFC3339Nano), t.EndedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert transcript: %w", err)
	}

	for i, msg := range t.Messages {
		_, err := tx.Exec(`
			INSERT INTO messages (transcript_id, seq, msg_id, sender, text, sent_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, i, msg.ID, string(msg.Sender), msg.Text,
			msg.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// TranscriptSummary is one row of the archive listing.
type TranscriptSummary struct {
	ID           string
	Role         string
	StudentName  string
	TutorName    string
	StartedAt    time.Time
	MessageCount int
}

// List returns summaries of all archived transcripts, newest first.
func (s *TranscriptStore) List() ([]TranscriptSummary, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.role, t.student_name, t.tutor_name, t.started_at, COUNT(m.seq)
		FROM transcripts t
		LEFT JOIN messages m ON m.transcript_id = t.id
		GROUP BY t.id
		ORDER BY t.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []TranscriptSummary
	for rows.Next() {
		var sum TranscriptSummary
		var studentName, tutorName sql.NullString
		var started string
		if err := rows.Scan(&sum.ID, &sum.Role, &studentName, &tutorName, &started, &sum.MessageCount); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		sum.StudentName = studentName.String
		sum.TutorName = tutorName.String
		sum.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return out, nil
}

// Load reads one archived transcript with its messages in order.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	var t Transcript
	var studentName, tutorName sql.NullString
	var started, ended string
	err := s.db.QueryRow(`
		SELECT id, role, student_id, student_name, tutor_name, started_at, ended_at
		FROM transcripts WHERE id = ?`, id).
		Scan(&t.ID, &t.Role, &t.StudentID, &studentName, &tutorName, &started, &ended)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transcript %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	t.StudentName = studentName.String
	t.TutorName = tutorName.String
	t.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	t.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)

	rows, err := s.db.Query(`
		SELECT msg_id, sender, text, sent_at
		FROM messages WHERE transcript_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg ChatMessage
		var sender, sentAt string
		if err := rows.Scan(&msg.ID, &sender, &msg.Text, &sentAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		msg.Sender = Sender(sender)
		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, sentAt)
		t.Messages = append(t.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return &t, nil
}

// ArchiveChat saves a finished chat log as a transcript and returns its id.
func (s *TranscriptStore) ArchiveChat(id, role string, student *Student, startedAt time.Time, messages []ChatMessage) (string, error) {
	t := &Transcript{
		ID:          id,
		Role:        role,
		StudentID:   student.StudentID,
		StudentName: student.DisplayName,
		TutorName:   student.TutorName,
		StartedAt:   startedAt,
		EndedAt:     time.Now(),
		Messages:    messages,
	}
	if err := s.Save(t); err != nil {
		return "", err
	}
	return t.ID, nil
}
