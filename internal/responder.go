package internal

import (
	"fmt"
	"strings"
)

// ProfileReply is the offline responder used when the tutor chat endpoint is
// unreachable. It pattern-matches the question against a fixed keyword table
// and answers deterministically from the student's profile. No I/O.
func ProfileReply(question string, student *Student) string {
	input := strings.ToLower(question)

	switch {
	case containsAny(input, "accommodation", "need"):
		return fmt.Sprintf("%s needs these accommodations: %s. Make sure to implement these consistently in your tutoring sessions.",
			student.DisplayName, strings.Join(student.AccommodationsNeeded, ", "))

	case containsAny(input, "learning style", "prefer"):
		p := student.LearningPreferences
		return fmt.Sprintf("This student learns best through %s methods in a %s setting. They prefer %s sessions.",
			strings.ToLower(p.Style), strings.ToLower(p.Format), strings.ToLower(p.Modality))

	case containsAny(input, "disability", strings.ToLower(student.PrimaryDisability)):
		return fmt.Sprintf("For %s, here are some key tips: %s",
			student.PrimaryDisability, disabilityTips(student.PrimaryDisability))

	case containsAny(input, "subject", "topic"):
		return fmt.Sprintf("The student is interested in: %s. Focus on these areas and connect new concepts to their interests when possible.",
			strings.Join(student.PreferredSubjects, ", "))

	case containsAny(input, "time", "schedule"):
		return scheduleReply(student)

	case containsAny(input, "help", "support"):
		return "I can help you understand the student's needs, suggest teaching strategies, or clarify their accommodations. What specific aspect would you like to know more about?"
	}

	return "That's a great question! Based on the student's profile, I'd recommend focusing on their preferred learning style and ensuring all accommodations are met. Is there a specific aspect of their learning needs you'd like me to elaborate on?"
}

func scheduleReply(student *Student) string {
	var slots []string
	for _, slot := range student.Availability {
		if slot.StartTime != "" && slot.EndTime != "" {
			slots = append(slots, fmt.Sprintf("%s %s-%s", slot.Day, slot.StartTime, slot.EndTime))
		}
	}
	if len(slots) == 0 {
		return "The student hasn't specified their availability yet. You may want to discuss scheduling directly with them."
	}
	return fmt.Sprintf("The student is available on: %s.", strings.Join(slots, ", "))
}

var disabilityTipTable = map[string]string{
	"Dyslexia":                 "Use multi-sensory approaches, provide extra time for reading, use visual aids, and break information into smaller chunks.",
	"ADHD":                     "Keep sessions structured but flexible, use frequent breaks, minimize distractions, and incorporate movement when possible.",
	"Autism Spectrum Disorder": "Maintain consistent routines, use clear and literal communication, provide advance notice of changes, and incorporate their special interests.",
	"Visual Impairment":        "Use audio descriptions, tactile materials, and ensure good lighting. Describe visual content verbally.",
	"Hearing Impairment":       "Face the student when speaking, use visual aids, write key points, and ensure good lighting for lip reading.",
	"Physical Disability":      "Ensure accessible seating and materials, allow extra time for physical tasks, and adapt activities as needed.",
}

func disabilityTips(disability string) string {
	if tips, ok := disabilityTipTable[disability]; ok {
		return tips
	}
	return "Focus on the student's individual strengths and adapt your teaching methods to their specific needs and preferences."
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
