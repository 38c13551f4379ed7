package internal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	store, err := OpenTranscriptStore(TranscriptDBPath(t.TempDir()))
	if err != nil {
		t.Fatalf("OpenTranscriptStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testTranscript(id string, startedAt time.Time) *Transcript {
	return &Transcript{
		ID:          id,
		Role:        "student",
		StudentID:   "s1",
		StudentName: "Alex Chen",
		TutorName:   "Jane Doe",
		StartedAt:   startedAt,
		EndedAt:     startedAt.Add(10 * time.Minute),
		Messages: []ChatMessage{
			{ID: "m1", Text: "Hello!", Sender: SenderBot, Timestamp: startedAt},
			{ID: "m2", Text: "Hi, how do I schedule?", Sender: SenderUser, Timestamp: startedAt.Add(time.Minute)},
			{ID: "m3", Text: "Pick a slot on the scheduling page.", Sender: SenderBot, Timestamp: startedAt.Add(2 * time.Minute)},
		},
	}
}

func TestTranscriptStore_SaveLoad(t *testing.T) {
	store := openTestStore(t)
	start := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	if err := store.Save(testTranscript("tr-1", start)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load("tr-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Role != "student" || loaded.StudentName != "Alex Chen" || loaded.TutorName != "Jane Doe" {
		t.Errorf("loaded transcript header = %+v", loaded)
	}
	if !loaded.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", loaded.StartedAt, start)
	}
	if len(loaded.Messages) != 3 {
		t.Fatalf("loaded %d messages, want 3", len(loaded.Messages))
	}
	// Order survives the round trip.
	for i, want := range []string{"m1", "m2", "m3"} {
		if loaded.Messages[i].ID != want {
			t.Errorf("Messages[%d].ID = %q, want %q", i, loaded.Messages[i].ID, want)
		}
	}
	if loaded.Messages[1].Sender != SenderUser {
		t.Errorf("Messages[1].Sender = %q, want user", loaded.Messages[1].Sender)
	}
}

func TestTranscriptStore_SaveReplaces(t *testing.T) {
	store := openTestStore(t)
	start := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	first := testTranscript("tr-1", start)
	if err := store.Save(first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	second := testTranscript("tr-1", start)
	second.Messages = second.Messages[:1]
	if err := store.Save(second); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, err := store.Load("tr-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(loaded.Messages) != 1 {
		t.Errorf("loaded %d messages after replace, want 1", len(loaded.Messages))
	}
}

func TestTranscriptStore_List(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)

	if err := store.Save(testTranscript("older", base)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(testTranscript("newer", base.Add(time.Hour))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("List() returned %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "newer" || summaries[1].ID != "older" {
		t.Errorf("List() order = %s, %s; want newest first", summaries[0].ID, summaries[1].ID)
	}
	if summaries[0].MessageCount != 3 {
		t.Errorf("MessageCount = %d, want 3", summaries[0].MessageCount)
	}
	if summaries[0].StudentName != "Alex Chen" {
		t.Errorf("StudentName = %q", summaries[0].StudentName)
	}
}

func TestTranscriptStore_ListEmpty(t *testing.T) {
	store := openTestStore(t)
	summaries, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("List() on empty store = %v", summaries)
	}
}

func TestTranscriptStore_LoadMissing(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.Load("nope"); err == nil {
		t.Error("Load() of a missing id succeeded")
	}
}

func TestTranscriptStore_ArchiveChat(t *testing.T) {
	store := openTestStore(t)
	start := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	student := &Student{StudentID: "s1", DisplayName: "Alex Chen", TutorName: "Jane Doe"}
	messages := []ChatMessage{
		{ID: "m1", Text: "Hi", Sender: SenderBot, Timestamp: start},
		{ID: "m2", Text: "Hello", Sender: SenderUser, Timestamp: start.Add(time.Minute)},
	}

	id, err := store.ArchiveChat("tr-9", "tutor", student, start, messages)
	if err != nil {
		t.Fatalf("ArchiveChat() error = %v", err)
	}
	if id != "tr-9" {
		t.Errorf("ArchiveChat() id = %q, want tr-9", id)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Role != "tutor" || loaded.StudentID != "s1" || loaded.TutorName != "Jane Doe" {
		t.Errorf("archived transcript = %+v", loaded)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("archived %d messages, want 2", len(loaded.Messages))
	}
}

func TestOpenTranscriptStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "transcripts.db")
	store, err := OpenTranscriptStore(path)
	if err != nil {
		t.Fatalf("OpenTranscriptStore() error = %v", err)
	}
	_ = store.Close()
}
