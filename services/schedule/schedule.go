package schedule

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ics "github.com/arran4/golang-ical"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
)

type ScheduleService struct{}

func NewScheduleService() *ScheduleService {
	return &ScheduleService{}
}

// ParseCourses returns the distinct courses named in event summaries, in order of first appearance
func (s *ScheduleService) ParseCourses(ctx context.Context, calendar []byte) ([]models.Course, error) {
	log.Info("📋 Starting to parse schedule", "bytes", len(calendar))

	cal, err := ics.ParseCalendar(bytes.NewReader(calendar))
	if err != nil {
		return nil, core.NewValidationError("That file doesn't look like a calendar export: %v", err)
	}

	seen := make(map[models.Course]bool)
	var courses []models.Course
	for _, event := range cal.Events() {
		summary := event.GetProperty(ics.ComponentPropertySummary)
		if summary == nil {
			continue
		}
		for _, course := range models.FindCourses(summary.Value) {
			if seen[course] {
				continue
			}
			seen[course] = true
			courses = append(courses, course)
		}
	}

	log.Info("✅ Parsed schedule", "events", len(cal.Events()), "courses", len(courses))
	return courses, nil
}

// ValidateCount checks the operator's cap against the parsed course count
func ValidateCount(courses []models.Course, max int) error {
	if max < 1 {
		return core.NewValidationError("The maximum number of courses must be at least 1.")
	}
	if len(courses) == 0 {
		return core.NewValidationError("No courses were found in the calendar.")
	}
	if len(courses) > max {
		return core.NewValidationError(
			"Found %d courses, which is more than the maximum of %d. %s", len(courses), max, describe(courses))
	}
	return nil
}

func describe(courses []models.Course) string {
	names := make([]string, 0, len(courses))
	for _, course := range courses {
		names = append(names, fmt.Sprintf("`%s`", course))
	}
	return strings.Join(names, ", ")
}
