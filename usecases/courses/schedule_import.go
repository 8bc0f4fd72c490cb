package courses

import (
	"context"
	"fmt"
	"strings"

	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/metrics"
	"ecessbot/models"
	"ecessbot/services/schedule"
)

// skippedCourse is a course the import will not create, and why
type skippedCourse struct {
	course models.Course
	reason string
}

func (s skippedCourse) String() string {
	return fmt.Sprintf("`%s` (%s)", s.course, s.reason)
}

// ImportFromSchedule creates threads for the courses of an attached calendar export.
// The operator confirms twice: once after parsing and once after the lookups, right before anything is created.
func (u *CoursesUseCase) ImportFromSchedule(
	ctx context.Context,
	inv models.Invocation,
	maxCourses int,
) (*models.CommandResult, error) {
	log.Info("📋 Starting to import courses from schedule", "user_id", inv.UserID, "max", maxCourses)

	if len(inv.Attachments) == 0 {
		return nil, core.NewValidationError("Attach your calendar export (`.ics`) to the command.")
	}
	calendar, err := u.discordClient.FetchAttachment(ctx, inv.Attachments[0])
	if err != nil {
		return nil, fmt.Errorf("failed to download calendar: %w", err)
	}

	parsed, err := u.scheduleService.ParseCourses(ctx, calendar)
	if err != nil {
		return nil, err
	}
	if err := schedule.ValidateCount(parsed, maxCourses); err != nil {
		return nil, err
	}

	confirmed, err := u.confirm(ctx, inv, fmt.Sprintf(
		"Found %d course(s) in the calendar: %s\nLook them up?", len(parsed), courseList(parsed)))
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return models.NewCommandResult("Import cancelled. Nothing was created."), nil
	}

	candidates, skipped, err := u.resolveCandidates(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		result := models.NewCommandResult("None of the courses can be imported. Nothing was created.")
		result.Warnings = describeSkipped(skipped)
		return result, nil
	}

	confirmed, err = u.confirm(ctx, inv, fmt.Sprintf(
		"These threads will be created: %s\nThis can't be undone from here. Continue?", courseList(candidates)))
	if err != nil {
		return nil, err
	}
	if !confirmed {
		return models.NewCommandResult("Import cancelled. Nothing was created."), nil
	}

	created, createSkipped, err := u.createCandidates(ctx, candidates)
	skipped = append(skipped, createSkipped...)

	result := models.NewCommandResult(fmt.Sprintf("Done! Created %d thread(s).", len(created)))
	if len(created) > 0 {
		mentions := make([]string, 0, len(created))
		for _, thread := range created {
			mentions = append(mentions, thread.Mention())
		}
		result.Message += " " + strings.Join(mentions, " ")
	}
	result.Warnings = describeSkipped(skipped)
	if err != nil {
		log.Error("❌ Failed to finish schedule import", "created", len(created), "error", err)
		result.Warnings = append(result.Warnings, "The import stopped early because of an unexpected error.")
	}

	log.Info("✅ Finished schedule import", "created", len(created), "skipped", len(skipped))
	return result, nil
}

func (u *CoursesUseCase) confirm(ctx context.Context, inv models.Invocation, content string) (bool, error) {
	confirmed, err := u.promptsService.ConfirmButtons(ctx, inv.ChannelID, inv.UserID, models.OutgoingMessage{
		Content: content,
		ReplyTo: inv.MessageID,
	}, u.buttonConfirmTimeout)
	if err != nil {
		return false, fmt.Errorf("failed to confirm import: %w", err)
	}
	return confirmed, nil
}

// resolveCandidates drops courses that already exist or have no base, then looks the rest up.
// Lookups are spaced by the lookup limiter.
func (u *CoursesUseCase) resolveCandidates(
	ctx context.Context,
	parsed []models.Course,
) ([]models.Course, []skippedCourse, error) {
	var candidates []models.Course
	var skipped []skippedCourse
	for _, course := range parsed {
		existing, err := u.courseThreadsService.GetCourseThread(ctx, course)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up course %s: %w", course, err)
		}
		if existing.IsPresent() {
			skipped = append(skipped, skippedCourse{course: course, reason: "already has a thread"})
			continue
		}
		base, err := u.courseThreadsService.GetBase(ctx, course.YearLevel())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up base channel: %w", err)
		}
		if !base.IsPresent() {
			skipped = append(skipped, skippedCourse{course: course, reason: "no base channel for its year level"})
			continue
		}

		if err := u.lookupLimiter.Wait(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to wait for course lookup: %w", err)
		}
		info, err := u.courseInfoClient.Lookup(ctx, course)
		if err != nil {
			metrics.CourseLookups.WithLabelValues("error").Inc()
			log.Warn("⚠️ Course lookup failed during import", "course", course.String(), "error", err)
			skipped = append(skipped, skippedCourse{course: course, reason: "lookup failed"})
			continue
		}
		if !info.IsPresent() {
			metrics.CourseLookups.WithLabelValues("not_found").Inc()
			skipped = append(skipped, skippedCourse{course: course, reason: "not a known course"})
			continue
		}
		metrics.CourseLookups.WithLabelValues("found").Inc()
		candidates = append(candidates, course)
	}
	return candidates, skipped, nil
}

// createCandidates runs under the course lock. Each course is re-checked by createThreadLocked,
// so courses created since the lookup are skipped rather than duplicated.
func (u *CoursesUseCase) createCandidates(
	ctx context.Context,
	candidates []models.Course,
) ([]*models.Thread, []skippedCourse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var created []*models.Thread
	var skipped []skippedCourse
	for _, course := range candidates {
		thread, err := u.createThreadLocked(ctx, course)
		if err != nil {
			if msg, ok := core.UserMessage(err); ok {
				skipped = append(skipped, skippedCourse{course: course, reason: strings.TrimSuffix(msg, ".")})
				continue
			}
			return created, skipped, err
		}
		created = append(created, thread)
	}
	return created, skipped, nil
}

func describeSkipped(skipped []skippedCourse) []string {
	if len(skipped) == 0 {
		return nil
	}
	parts := make([]string, 0, len(skipped))
	for _, s := range skipped {
		parts = append(parts, s.String())
	}
	return []string{"Skipped: " + strings.Join(parts, ", ")}
}

func courseList(courses []models.Course) string {
	names := make([]string, 0, len(courses))
	for _, course := range courses {
		names = append(names, fmt.Sprintf("`%s`", course))
	}
	return strings.Join(names, ", ")
}
