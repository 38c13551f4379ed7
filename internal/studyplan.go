package internal

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SubjectAdaptation pairs a subject with a teaching recommendation.
type SubjectAdaptation struct {
	Subject        string `json:"subject" yaml:"subject"`
	Recommendation string `json:"recommendation" yaml:"recommendation"`
}

// StudyPlan is the structured personalized plan for a student.
type StudyPlan struct {
	Overview           string              `json:"overview" yaml:"overview"`
	Strategies         []string            `json:"strategies" yaml:"strategies"`
	Activities         []string            `json:"activities" yaml:"activities"`
	SubjectAdaptations []SubjectAdaptation `json:"subjectAdaptations" yaml:"subject_adaptations"`
	Accommodations     []string            `json:"accommodations" yaml:"accommodations"`
}

// summaryEnvelope is the raw-text form of the summary response.
type summaryEnvelope struct {
	Summary string `json:"summary"`
}

// DecodeStudyPlan turns a summary response body into a StudyPlan. The
// endpoint answers either the structured object directly or a free-text
// block under "summary" that needs section parsing.
func DecodeStudyPlan(body []byte) (*StudyPlan, error) {
	var plan StudyPlan
	if err := json.Unmarshal(body, &plan); err == nil && !planEmpty(&plan) {
		return &plan, nil
	}

	var env summaryEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("summary response is neither a plan nor a summary block: %w", err)
	}
	if strings.TrimSpace(env.Summary) == "" {
		return nil, fmt.Errorf("summary response is empty")
	}
	parsed := ParseStudyPlan(env.Summary)
	return &parsed, nil
}

func planEmpty(p *StudyPlan) bool {
	return p.Overview == "" && len(p.Strategies) == 0 && len(p.Activities) == 0 &&
		len(p.SubjectAdaptations) == 0 && len(p.Accommodations) == 0
}

type planSection int

const (
	sectionOverview planSection = iota
	sectionStrategies
	sectionActivities
	sectionSubjects
	sectionAccommodations
	sectionUnknown
)

// ParseStudyPlan extracts plan sections from a free-text model response.
// Pure function: headings are matched loosely (markdown markers, numbering
// and trailing colons are ignored), bullet lines become list items, and
// "Subject: recommendation" bullets under the adaptations heading split
// into pairs. Text before the first heading joins the overview.
func ParseStudyPlan(text string) StudyPlan {
	var plan StudyPlan
	current := sectionOverview
	var overview []string

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		if section, ok := matchHeading(line); ok {
			current = section
			continue
		}

		item, isBullet := stripBullet(line)

		switch current {
		case sectionOverview:
			overview = append(overview, item)
		case sectionStrategies:
			if isBullet {
				plan.Strategies = append(plan.Strategies, item)
			}
		case sectionActivities:
			if isBullet {
				plan.Activities = append(plan.Activities, item)
			}
		case sectionSubjects:
			if isBullet {
				plan.SubjectAdaptations = append(plan.SubjectAdaptations, splitAdaptation(item))
			}
		case sectionAccommodations:
			if isBullet {
				plan.Accommodations = append(plan.Accommodations, item)
			}
		}
	}

	plan.Overview = strings.Join(overview, " ")
	return plan
}

// matchHeading reports whether a line is a section heading and which section
// it opens.
func matchHeading(line string) (planSection, bool) {
	h := strings.TrimLeft(line, "#*- \t")
	h = strings.TrimRight(h, ":* \t")
	h = strings.TrimLeft(h, "0123456789.) ")
	if h == "" {
		return sectionUnknown, false
	}
	// Headings are short; a long line with a matching word is body text.
	if len(h) > 60 {
		return sectionUnknown, false
	}
	lower := strings.ToLower(h)

	switch {
	case strings.Contains(lower, "overview") || strings.Contains(lower, "learning plan"):
		return sectionOverview, true
	case strings.Contains(lower, "strateg"):
		return sectionStrategies, true
	case strings.Contains(lower, "activit"):
		return sectionActivities, true
	case strings.Contains(lower, "subject") || strings.Contains(lower, "adaptation"):
		return sectionSubjects, true
	case strings.Contains(lower, "accommodation"):
		return sectionAccommodations, true
	}
	return sectionUnknown, false
}

// stripBullet removes a leading list marker. Returns the cleaned line and
// whether a marker was present.
func stripBullet(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	// Numbered list: "1. item" or "1) item"
	trimmed := strings.TrimLeft(line, "0123456789")
	if trimmed != line && (strings.HasPrefix(trimmed, ". ") || strings.HasPrefix(trimmed, ") ")) {
		return strings.TrimSpace(trimmed[2:]), true
	}
	return line, false
}

// splitAdaptation splits "Math: use manipulatives" into subject and
// recommendation. Bold markers around the subject are tolerated.
func splitAdaptation(item string) SubjectAdaptation {
	subject, rec, found := strings.Cut(item, ":")
	if !found {
		return SubjectAdaptation{Subject: "General", Recommendation: strings.TrimSpace(item)}
	}
	subject = strings.Trim(strings.TrimSpace(subject), "*_")
	return SubjectAdaptation{
		Subject:        subject,
		Recommendation: strings.TrimSpace(rec),
	}
}

// PlanLoadingMessages rotate on the study plan loading view.
var PlanLoadingMessages = []string{
	"Matching lessons to student brainwaves…",
	"Calibrating difficulty so no one cries… including the tutor.",
	"Balancing 'cover the syllabus' with 'don't bore them to sleep.'",
	"Checking if we can teach calculus with cat memes.",
	"Allocating enough review time to actually stick in memory.",
	"Avoiding scheduling lessons during universally sleepy hours.",
	"Loading optimal 'aha!' moments…",
	"Making sure practice problems aren't secretly puzzles from the 1800s.",
	"Strategizing to outsmart student procrastination.",
	"Inserting well-timed breaks to prevent brain overheating.",
	"Weighing lecture time vs. hands-on learning for maximum retention.",
	"Adding emergency 'explain again' slots.",
	"Reinforcing concepts before exams sneak up.",
	"Minimizing tutor caffeine intake… or not.",
	"Finalizing a plan that makes both sides feel like geniuses.",
}

// RotateMessages calls onMessage with the next message every interval,
// starting from the first. The returned stop function is the disposer; once
// called, no further callbacks fire.
func RotateMessages(messages []string, interval time.Duration, onMessage func(string)) (stop func()) {
	if len(messages) == 0 {
		return func() {}
	}
	onMessage(messages[0])

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ticker.C:
				i = (i + 1) % len(messages)
				onMessage(messages[i])
			case <-done:
				return
			}
		}
	}()

	var once func()
	closed := false
	once = func() {
		if !closed {
			closed = true
			close(done)
		}
	}
	return once
}
