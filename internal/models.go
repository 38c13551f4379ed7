package internal

import (
	"time"

	"github.com/google/uuid"
)

// LearningPreferences describes how a student prefers to be taught.
type LearningPreferences struct {
	Style    string `json:"style" yaml:"style"`
	Format   string `json:"format" yaml:"format"`
	Modality string `json:"modality" yaml:"modality"`
}

// AvailabilitySlot is one weekly availability window.
type AvailabilitySlot struct {
	Day       string `json:"day" yaml:"day"`
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
}

// Student is the full registration profile submitted to the backend.
// Tutor fields are filled in from the registration response once matched.
type Student struct {
	StudentID           string              `json:"student_id" yaml:"student_id"`
	DisplayName         string              `json:"display_name" yaml:"display_name"`
	Email               string              `json:"email" yaml:"email"`
	PrimaryDisability   string              `json:"primary_disability" yaml:"primary_disability"`
	AccommodationsNeeded []string           `json:"accommodations_needed" yaml:"accommodations_needed"`
	LearningPreferences LearningPreferences `json:"learning_preferences" yaml:"learning_preferences"`
	Availability        []AvailabilitySlot  `json:"availability" yaml:"availability"`
	PreferredSubjects   []string            `json:"preferred_subjects" yaml:"preferred_subjects"`
	AdditionalInfo      string              `json:"additional_info" yaml:"additional_info"`
	TutorID             string              `json:"tutor_id,omitempty" yaml:"tutor_id,omitempty"`
	TutorName           string              `json:"tutor_name,omitempty" yaml:"tutor_name,omitempty"`
}

// TutorMatch is the display projection of an assigned tutor.
// Once set for a session it never changes.
type TutorMatch struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Specialty   string  `json:"specialty" yaml:"specialty"`
	Experience  string  `json:"experience" yaml:"experience"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Bio         string  `json:"bio" yaml:"bio"`
	MatchReason string  `json:"match_reason" yaml:"match_reason"`
}

const (
	matchReasonAPI      = "Perfect match found based on your learning preferences and needs!"
	matchReasonFallback = "Perfect match based on your preferences!"
)

// MatchFromResponse builds a TutorMatch from the tutor id and name returned
// by the registration endpoint. Only id and name come from the backend; the
// descriptive fields are static placeholders until tutor profiles are served.
func MatchFromResponse(tutorID, tutorName string) TutorMatch {
	return TutorMatch{
		ID:          tutorID,
		Name:        tutorName,
		Specialty:   "Personalized Tutoring",
		Experience:  "Experienced Tutor",
		Rating:      4.8,
		Bio:         "Dedicated tutor committed to helping you succeed with personalized learning strategies.",
		MatchReason: matchReasonAPI,
	}
}

// FallbackMatch is the tutor shown when the backend fails to produce one.
// The user is never shown an error for that condition, only this match.
func FallbackMatch() TutorMatch {
	return TutorMatch{
		ID:          "tutor_fallback",
		Name:        "Dr. Sarah Martinez",
		Specialty:   "Mathematics & Learning Disabilities",
		Experience:  "8 years",
		Rating:      4.9,
		Bio:         "Specialized in teaching students with learning differences, particularly in STEM subjects. PhD in Special Education.",
		MatchReason: matchReasonFallback,
	}
}

// Sender tags who produced a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// TypingID is the sentinel id of the transient "typing" placeholder message.
// The placeholder is always removed before the real response is appended.
const TypingID = "typing"

// ChatMessage is one entry in a chat log.
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Sender    Sender    `json:"sender" yaml:"sender"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewChatMessage creates a message with a fresh id.
func NewChatMessage(text string, sender Sender) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// Transcript is an archived chat session.
type Transcript struct {
	ID          string        `json:"id" yaml:"id"`
	Role        string        `json:"role" yaml:"role"` // "student" or "tutor"
	StudentID   string        `json:"student_id" yaml:"student_id"`
	StudentName string        `json:"student_name,omitempty" yaml:"student_name,omitempty"`
	TutorName   string        `json:"tutor_name,omitempty" yaml:"tutor_name,omitempty"`
	StartedAt   time.Time     `json:"started_at" yaml:"started_at"`
	EndedAt     time.Time     `json:"ended_at" yaml:"ended_at"`
	Messages    []ChatMessage `json:"messages" yaml:"messages"`
}

// MessageCount returns the number of messages in the transcript.
func (t *Transcript) MessageCount() int {
	return len(t.Messages)
}
