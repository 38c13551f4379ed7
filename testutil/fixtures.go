package testutil

import (
	"time"

	"github.com/owlandlion/access-cli/internal"
)

// SampleStudent returns a fully populated student profile for tests.
func SampleStudent() *internal.Student {
	return &internal.Student{
		StudentID:            "student-001",
		DisplayName:          "Alex Chen",
		Email:                "alex.chen@example.edu",
		PrimaryDisability:    "Dyslexia",
		AccommodationsNeeded: []string{"Extended time", "Audio materials"},
		LearningPreferences: internal.LearningPreferences{
			Style:    "Visual",
			Format:   "1-on-1",
			Modality: "Online",
		},
		PreferredSubjects: []string{"Mathematics", "Physics"},
		Availability: []internal.AvailabilitySlot{
			{Day: "Monday", StartTime: "15:00", EndTime: "17:00"},
			{Day: "Thursday", StartTime: "10:00", EndTime: "12:00"},
		},
		AdditionalInfo: "Prefers worked examples over lecture-style explanations.",
	}
}

// SampleTranscript returns an archived conversation with a few messages.
func SampleTranscript(id string) *internal.Transcript {
	start := time.Date(2026, 3, 14, 15, 9, 0, 0, time.UTC)
	return &internal.Transcript{
		ID:          id,
		Role:        "student",
		StudentID:   "student-001",
		StudentName: "Alex Chen",
		TutorName:   "Jane Doe",
		StartedAt:   start,
		EndedAt:     start.Add(10 * time.Minute),
		Messages: []internal.ChatMessage{
			{ID: "m1", Text: "Hello!", Sender: internal.SenderBot, Timestamp: start},
			{ID: "m2", Text: "How do I schedule a session?", Sender: internal.SenderUser, Timestamp: start.Add(time.Minute)},
			{ID: "m3", Text: "Use the scheduling page to pick a slot.", Sender: internal.SenderBot, Timestamp: start.Add(2 * time.Minute)},
		},
	}
}
